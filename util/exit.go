package util

import "os"

const (
	ExitCodeOK                  = 0
	ExitCodeInvalidConfig       = 1
	ExitCodeConformanceFailures = 2
	ExitCodeRuntimeFailure      = 3
)

// OsExit is swapped out by tests that exercise the CLI.
var OsExit = os.Exit
