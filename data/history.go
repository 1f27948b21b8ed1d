package data

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/stats"
	"github.com/rs/zerolog"
)

// Verdict is the stored outcome of one case from a previous run.
type Verdict struct {
	Outcome    stats.Outcome `json:"outcome"`
	Error      string        `json:"error,omitempty"`
	RecordedAt time.Time     `json:"recordedAt"`
}

// VerdictHistory keeps the last pass/fail verdict of every case name so that
// consecutive runs can report which cases flipped.
type VerdictHistory struct {
	logger    *zerolog.Logger
	connector Connector
}

func NewVerdictHistory(logger *zerolog.Logger, connector Connector) *VerdictHistory {
	lg := logger.With().Str("component", "history").Str("connector", connector.Id()).Logger()
	return &VerdictHistory{
		logger:    &lg,
		connector: connector,
	}
}

// Last returns the previous verdict of a case, or nil if none was stored.
func (h *VerdictHistory) Last(ctx context.Context, caseName string) (*Verdict, error) {
	raw, err := h.connector.Get(ctx, caseName)
	if err != nil {
		if common.HasErrorCode(err, common.ErrCodeRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var v Verdict
	if err := sonic.UnmarshalString(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (h *VerdictHistory) Record(ctx context.Context, caseName string, v *Verdict) error {
	raw, err := sonic.MarshalString(v)
	if err != nil {
		return err
	}
	return h.connector.Set(ctx, caseName, raw)
}

// Reconcile compares the summary's pass/fail cases with their previous
// verdicts, fills Regressions and Recoveries, then stores the new verdicts.
// Skipped cases neither flip nor overwrite a stored verdict.
func (h *VerdictHistory) Reconcile(ctx context.Context, summary *stats.Summary) error {
	var errs []error
	now := time.Now().UTC()
	for _, c := range summary.Cases {
		if c.Outcome != stats.OutcomePass && c.Outcome != stats.OutcomeFail {
			continue
		}
		prev, err := h.Last(ctx, c.Name)
		if err != nil {
			h.logger.Warn().Err(err).Str("case", c.Name).Msg("failed to read previous verdict")
			errs = append(errs, err)
			continue
		}
		if prev != nil && prev.Outcome != c.Outcome {
			if c.Outcome == stats.OutcomeFail {
				summary.Regressions = append(summary.Regressions, c.Name)
				h.logger.Warn().Str("case", c.Name).Str("error", c.Error).Msg("case regressed since previous run")
			} else {
				summary.Recoveries = append(summary.Recoveries, c.Name)
				h.logger.Info().Str("case", c.Name).Msg("case recovered since previous run")
			}
		}
		if err := h.Record(ctx, c.Name, &Verdict{Outcome: c.Outcome, Error: c.Error, RecordedAt: now}); err != nil {
			h.logger.Warn().Err(err).Str("case", c.Name).Msg("failed to store verdict")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *VerdictHistory) Close() error {
	return h.connector.Close()
}
