package stats

import (
	"sort"
	"time"
)

type ProviderSummary struct {
	Total    int             `json:"total"`
	Attempts int             `json:"attempts"`
	Counts   map[Outcome]int `json:"counts"`
}

// Summary is the report of a finished run.
type Summary struct {
	Name      string                      `json:"name"`
	StartedAt time.Time                   `json:"startedAt"`
	Duration  time.Duration               `json:"duration"`
	Total     int                         `json:"total"`
	Counts    map[Outcome]int             `json:"counts"`
	Attempts  int                         `json:"attempts"`
	Retries   int                         `json:"retries"`
	Latency   LatencySummary              `json:"latency"`
	Providers map[string]*ProviderSummary `json:"providers"`
	Cases     []CaseResult                `json:"cases"`

	// Regressions and Recoveries are case names whose verdict flipped since
	// the previous run; only set when verdict history is enabled.
	Regressions []string `json:"regressions,omitempty"`
	Recoveries  []string `json:"recoveries,omitempty"`
}

func (s *Summary) Failed() int {
	return s.Counts[OutcomeFail]
}

// ProviderNames returns the providers that produced at least one case, sorted.
func (s *Summary) ProviderNames() []string {
	names := make([]string, 0, len(s.Providers))
	for name := range s.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
