package harness

import (
	"context"
	"fmt"

	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/data"
	"github.com/erpc/conformance/fixtures"
	"github.com/erpc/conformance/stats"
	"github.com/erpc/conformance/thirdparty"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Harness wires a loaded config into a runnable matrix.
type Harness struct {
	logger    *zerolog.Logger
	fs        afero.Fs
	cfg       *common.Config
	Store     *fixtures.Store
	Providers *thirdparty.ProvidersRegistry
	Skip      *SkipMatrix
	Driver    *Driver
	History   *data.VerdictHistory
}

func Bootstrap(ctx context.Context, logger *zerolog.Logger, fs afero.Fs, cfg *common.Config) (*Harness, error) {
	store, err := fixtures.Load(fs, cfg.Fixtures...)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}
	logger.Info().Strs("networks", store.Networks()).Msg("loaded fixtures")

	providers, err := thirdparty.NewProvidersRegistry(ctx, logger, thirdparty.NewVendorsRegistry(), cfg.Providers)
	if err != nil {
		return nil, err
	}

	skip, err := NewSkipMatrix(cfg.Skip...)
	if err != nil {
		providers.Close()
		return nil, err
	}

	h := &Harness{
		logger:    logger,
		fs:        fs,
		cfg:       cfg,
		Store:     store,
		Providers: providers,
		Skip:      skip,
		Driver:    NewDriver(logger, cfg, store, providers, skip),
	}

	if cfg.History != nil {
		connector, err := data.NewConnector(ctx, logger, cfg.History)
		if err != nil {
			// Verdict history is optional; the run goes ahead without it.
			logger.Warn().Err(err).Str("driver", string(cfg.History.Driver)).Msg("failed to initialize verdict history")
		} else {
			h.History = data.NewVerdictHistory(logger, connector)
		}
	}

	return h, nil
}

// Run executes the matrix, compares verdicts with the previous run when
// history is enabled, then logs and optionally writes the report.
func (h *Harness) Run(ctx context.Context, name string) (*stats.Summary, error) {
	collector := stats.NewCollector(h.logger)
	summary, runErr := h.Driver.Execute(ctx, name, collector)
	if summary == nil {
		return nil, runErr
	}

	if h.History != nil {
		if err := h.History.Reconcile(context.WithoutCancel(ctx), summary); err != nil {
			h.logger.Warn().Err(err).Msg("verdict history is incomplete for this run")
		}
	}

	LogSummary(h.logger, summary)

	if h.cfg.Report != nil && h.cfg.Report.Path != "" {
		if err := WriteReport(h.fs, h.cfg.Report.Path, summary); err != nil {
			return summary, err
		}
		h.logger.Info().Str("path", h.cfg.Report.Path).Msg("wrote conformance report")
	}

	return summary, runErr
}

func (h *Harness) Close() {
	h.Providers.Close()
	if h.History != nil {
		if err := h.History.Close(); err != nil {
			h.logger.Warn().Err(err).Msg("failed to close verdict history")
		}
	}
}
