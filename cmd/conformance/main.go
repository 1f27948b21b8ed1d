package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/harness"
	"github.com/erpc/conformance/telemetry"
	"github.com/erpc/conformance/tracing"
	"github.com/erpc/conformance/util"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "./conformance.yaml"

// exitError carries the process exit code out of a command action.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is the normal case.
	_ = godotenv.Load()

	err := newApp(afero.NewOsFs()).Run(ctx, os.Args)
	code := exitCodeOf(err)
	if err != nil && code != util.ExitCodeConformanceFailures {
		log.Error().Err(err).Msg("conformance run did not complete")
	}
	stop()
	util.OsExit(code)
}

func exitCodeOf(err error) int {
	if err == nil {
		return util.ExitCodeOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return util.ExitCodeInvalidConfig
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "config",
		Value: defaultConfigPath,
		Usage: "path to the conformance config file",
	}
}

func nameFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "name",
		Usage: "run name recorded in the report (defaults to a timestamp)",
	}
}

func newApp(fs afero.Fs) *cli.Command {
	return &cli.Command{
		Name:  "conformance",
		Usage: "check blockchain data providers against golden fixtures",
		// Without a subcommand the first argument is the config path.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runAction(ctx, fs, configPath(cmd), "")
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "execute the conformance matrix",
				Flags: []cli.Flag{configFlag(), nameFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runAction(ctx, fs, configPath(cmd), cmd.String("name"))
				},
			},
			{
				Name:  "validate",
				Usage: "load the config and fixtures, then print the planned matrix",
				Flags: []cli.Flag{configFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return validateAction(ctx, fs, configPath(cmd))
				},
			},
		},
	}
}

// configPath prefers the --config flag and falls back to the first
// positional argument.
func configPath(cmd *cli.Command) string {
	if cmd.IsSet("config") {
		return cmd.String("config")
	}
	if first := cmd.Args().First(); first != "" {
		return first
	}
	return defaultConfigPath
}

func loadConfig(fs afero.Fs, path string) (*common.Config, error) {
	if _, err := fs.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, &exitError{code: util.ExitCodeInvalidConfig, err: fmt.Errorf("config file '%s' does not exist", path)}
	}
	log.Info().Msgf("loading configuration from %s", path)
	cfg, err := common.LoadConfig(fs, path)
	if err != nil {
		return nil, &exitError{code: util.ExitCodeInvalidConfig, err: fmt.Errorf("failed to load configuration: %w", err)}
	}
	zerolog.SetGlobalLevel(cfg.LogLevelOrDefault())
	return cfg, nil
}

func runAction(ctx context.Context, fs afero.Fs, path, name string) error {
	cfg, err := loadConfig(fs, path)
	if err != nil {
		return err
	}
	logger := log.Logger.With().Str("component", "conformance").Logger()

	if err := tracing.Initialize(ctx, &logger, cfg.Tracing); err != nil {
		logger.Warn().Err(err).Msg("tracing is unavailable for this run")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	defer stopMetrics()
	telemetry.StartMetricsServer(metricsCtx, &logger, cfg.Metrics)

	h, err := harness.Bootstrap(ctx, &logger, fs, cfg)
	if err != nil {
		return &exitError{code: util.ExitCodeInvalidConfig, err: err}
	}
	defer h.Close()

	if name == "" {
		name = time.Now().UTC().Format("20060102T150405Z")
	}
	summary, err := h.Run(ctx, name)
	if err != nil {
		return &exitError{code: util.ExitCodeRuntimeFailure, err: err}
	}
	if failed := summary.Failed(); failed > 0 {
		return &exitError{
			code: util.ExitCodeConformanceFailures,
			err:  fmt.Errorf("%d of %d conformance cases failed", failed, summary.Total),
		}
	}
	return nil
}
