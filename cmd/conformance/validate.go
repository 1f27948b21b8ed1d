package main

import (
	"context"
	"sort"

	"github.com/erpc/conformance/harness"
	"github.com/erpc/conformance/util"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// PlanStats summarizes a planned matrix without running it.
type PlanStats struct {
	Total       int
	Negative    int
	Skipped     int
	Providers   []string
	Networks    []string
	ByProvider  map[string]int
	SkipEntries int
}

func validateAction(ctx context.Context, fs afero.Fs, path string) error {
	cfg, err := loadConfig(fs, path)
	if err != nil {
		return err
	}
	logger := log.Logger.With().Str("component", "validate").Logger()

	h, err := harness.Bootstrap(ctx, &logger, fs, cfg)
	if err != nil {
		return &exitError{code: util.ExitCodeInvalidConfig, err: err}
	}
	defer h.Close()

	cases, err := h.Driver.Plan()
	if err != nil {
		return &exitError{code: util.ExitCodeInvalidConfig, err: err}
	}

	stats := calculatePlanStats(cases)
	stats.SkipEntries = len(h.Skip.Entries())
	printPlanStats(logger, stats)
	return nil
}

func calculatePlanStats(cases []*harness.Case) PlanStats {
	stats := PlanStats{ByProvider: make(map[string]int)}
	networks := make(map[string]bool)
	for _, c := range cases {
		stats.Total++
		if c.Negative {
			stats.Negative++
		}
		if c.SkipReason != "" {
			stats.Skipped++
		}
		if _, ok := stats.ByProvider[c.Provider]; !ok {
			stats.Providers = append(stats.Providers, c.Provider)
		}
		stats.ByProvider[c.Provider]++
		if c.Network != "" && !networks[c.Network] {
			networks[c.Network] = true
			stats.Networks = append(stats.Networks, c.Network)
		}
	}
	sort.Strings(stats.Networks)
	return stats
}

func printPlanStats(logger zerolog.Logger, stats PlanStats) {
	logger.Info().
		Int("cases", stats.Total).
		Int("negative", stats.Negative).
		Int("skipped", stats.Skipped).
		Int("skipEntries", stats.SkipEntries).
		Strs("networks", stats.Networks).
		Msg("planned conformance matrix")

	for _, provider := range stats.Providers {
		logger.Info().
			Str("provider", provider).
			Int("cases", stats.ByProvider[provider]).
			Msg("provider plan")
	}
}
