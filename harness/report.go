package harness

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dustin/go-humanize"
	"github.com/erpc/conformance/stats"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// WriteReport writes the summary as indented JSON.
func WriteReport(fs afero.Fs, path string, summary *stats.Summary) error {
	data, err := sonic.ConfigStd.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory %s: %w", dir, err)
		}
	}
	return afero.WriteFile(fs, path, data, 0o644)
}

// LogSummary prints the run totals, one line per provider, and every failed
// case.
func LogSummary(logger *zerolog.Logger, summary *stats.Summary) {
	logger.Info().
		Str("run", summary.Name).
		Str("duration", summary.Duration.Round(time.Millisecond).String()).
		Str("cases", humanize.Comma(int64(summary.Total))).
		Str("passed", humanize.Comma(int64(summary.Counts[stats.OutcomePass]))).
		Str("failed", humanize.Comma(int64(summary.Counts[stats.OutcomeFail]))).
		Str("skippedUnsupported", humanize.Comma(int64(summary.Counts[stats.OutcomeSkippedUnsupported]))).
		Str("skipped", humanize.Comma(int64(summary.Counts[stats.OutcomeSkipped]))).
		Str("attempts", humanize.Comma(int64(summary.Attempts))).
		Str("retries", humanize.Comma(int64(summary.Retries))).
		Str("p50", summary.Latency.P50.String()).
		Str("p90", summary.Latency.P90.String()).
		Str("p99", summary.Latency.P99.String()).
		Msgf("conformance run finished, %s of cases passed", passRate(summary))

	for _, name := range summary.ProviderNames() {
		ps := summary.Providers[name]
		logger.Info().
			Str("provider", name).
			Int("total", ps.Total).
			Int("passed", ps.Counts[stats.OutcomePass]).
			Int("failed", ps.Counts[stats.OutcomeFail]).
			Int("attempts", ps.Attempts).
			Msg("provider summary")
	}

	for _, c := range summary.Cases {
		if c.Outcome == stats.OutcomeFail {
			logger.Warn().Str("case", c.Name).Int("attempts", c.Attempts).Msg(c.Error)
		}
	}
	for _, name := range summary.Regressions {
		logger.Warn().Str("case", name).Msg("regressed since previous run")
	}
	for _, name := range summary.Recoveries {
		logger.Info().Str("case", name).Msg("recovered since previous run")
	}
}

func passRate(summary *stats.Summary) string {
	judged := summary.Counts[stats.OutcomePass] + summary.Counts[stats.OutcomeFail]
	if judged == 0 {
		return "n/a"
	}
	return humanize.FormatFloat("#.#", 100*float64(summary.Counts[stats.OutcomePass])/float64(judged)) + "%"
}
