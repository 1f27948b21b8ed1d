//go:build !test

package main

import (
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// CONFORMANCE_NOLOGS=1 silences all zerolog output.
	if os.Getenv("CONFORMANCE_NOLOGS") == "1" {
		zerolog.SetGlobalLevel(zerolog.Disabled)
		log.Logger = zerolog.New(io.Discard)
	}

	// CONFORMANCE_NOMETRICS=1 swaps in an empty registry so collectors
	// register but are never exported.
	if os.Getenv("CONFORMANCE_NOMETRICS") == "1" {
		r := prometheus.NewRegistry()
		prometheus.DefaultRegisterer = r
		prometheus.DefaultGatherer = r
	}
}
