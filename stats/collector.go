package stats

import (
	"time"

	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/telemetry"
	"github.com/rs/zerolog"
)

type Outcome string

const (
	OutcomePass               Outcome = "pass"
	OutcomeFail               Outcome = "fail"
	OutcomeSkippedUnsupported Outcome = "skipped-unsupported"
	OutcomeSkipped            Outcome = "skipped"
)

// CaseInfo identifies one planned case.
type CaseInfo struct {
	Name      string           `json:"name"`
	Provider  string           `json:"provider"`
	Network   string           `json:"network"`
	Operation common.Operation `json:"operation"`
}

type CaseResult struct {
	CaseInfo
	Outcome  Outcome       `json:"outcome"`
	Attempts int           `json:"attempts"`
	Elapsed  time.Duration `json:"elapsed"`
	Error    string        `json:"error,omitempty"`
}

// Collector gathers the statistics of one run between Start and End.
//
// It is not safe for concurrent use: a run is driven from a single goroutine
// and concurrent runs must each use their own Collector.
type Collector struct {
	logger *zerolog.Logger

	name      string
	active    bool
	startedAt time.Time
	current   *CaseInfo

	results  []CaseResult
	attempts int
	retries  int
	latency  *QuantileTracker
}

func NewCollector(logger *zerolog.Logger) *Collector {
	lg := logger.With().Str("component", "stats").Logger()
	return &Collector{
		logger:  &lg,
		latency: NewQuantileTracker(),
	}
}

// Start resets the collector and opens a run.
func (c *Collector) Start(name string) error {
	if c.active {
		return common.NewErrRunAlreadyActive(c.name)
	}
	c.name = name
	c.active = true
	c.startedAt = time.Now()
	c.current = nil
	c.results = nil
	c.attempts = 0
	c.retries = 0
	c.latency.Reset()
	telemetry.MetricRunActive.Set(1)
	c.logger.Info().Str("run", name).Msg("run started")
	return nil
}

func (c *Collector) Active() bool {
	return c.active
}

// BeginCase marks the case that subsequent attempts belong to.
func (c *Collector) BeginCase(info CaseInfo) error {
	if !c.active {
		return common.NewErrRunNotActive("beginCase")
	}
	c.current = &info
	return nil
}

// RecordAttempt implements resiliency.AttemptRecorder.
func (c *Collector) RecordAttempt(description string, attempt int, duration time.Duration, err error) error {
	if !c.active {
		return common.NewErrRunNotActive("recordAttempt")
	}
	c.attempts++
	info := c.caseInfo(description)
	if attempt > 1 {
		c.retries++
		telemetry.CounterHandle(telemetry.MetricCaseRetryTotal, info.Provider, info.Network, string(info.Operation)).Inc()
	}
	result := "success"
	if err != nil {
		result = "failure"
		c.logger.Debug().Str("case", description).Int("attempt", attempt).Dur("duration", duration).Err(err).Msg("attempt failed")
	}
	telemetry.CounterHandle(telemetry.MetricCaseAttemptTotal, info.Provider, info.Network, string(info.Operation), result).Inc()
	return nil
}

// RecordCase stores the final verdict of a case.
func (c *Collector) RecordCase(result CaseResult) error {
	if !c.active {
		return common.NewErrRunNotActive("recordCase")
	}
	c.results = append(c.results, result)
	c.current = nil
	if result.Outcome == OutcomePass || result.Outcome == OutcomeFail || result.Outcome == OutcomeSkippedUnsupported {
		c.latency.Add(result.Elapsed)
		telemetry.ObserverHandle(telemetry.MetricCaseDuration, result.Provider, result.Network, string(result.Operation)).Observe(result.Elapsed.Seconds())
	}
	telemetry.CounterHandle(telemetry.MetricCaseOutcomeTotal, result.Provider, result.Network, string(result.Operation), string(result.Outcome)).Inc()

	evt := c.logger.Info()
	if result.Outcome == OutcomeFail {
		evt = c.logger.Warn().Str("error", result.Error)
	}
	evt.Str("case", result.Name).Str("outcome", string(result.Outcome)).Int("attempts", result.Attempts).Dur("elapsed", result.Elapsed).Msg("case finished")
	return nil
}

// Results returns the verdicts recorded so far, in order.
func (c *Collector) Results() []CaseResult {
	return append([]CaseResult(nil), c.results...)
}

// End closes the run and returns its summary.
func (c *Collector) End() (*Summary, error) {
	if !c.active {
		return nil, common.NewErrRunNotActive("end")
	}
	c.active = false
	c.current = nil
	telemetry.MetricRunActive.Set(0)

	s := &Summary{
		Name:      c.name,
		StartedAt: c.startedAt,
		Duration:  time.Since(c.startedAt),
		Counts:    make(map[Outcome]int),
		Attempts:  c.attempts,
		Retries:   c.retries,
		Latency:   c.latency.Summary(),
		Providers: make(map[string]*ProviderSummary),
		Cases:     append([]CaseResult(nil), c.results...),
	}
	for _, r := range c.results {
		s.Total++
		s.Counts[r.Outcome]++
		ps, ok := s.Providers[r.Provider]
		if !ok {
			ps = &ProviderSummary{Counts: make(map[Outcome]int)}
			s.Providers[r.Provider] = ps
		}
		ps.Total++
		ps.Counts[r.Outcome]++
		ps.Attempts += r.Attempts
	}

	c.logger.Info().
		Str("run", c.name).
		Int("total", s.Total).
		Int("passed", s.Counts[OutcomePass]).
		Int("failed", s.Counts[OutcomeFail]).
		Int("attempts", s.Attempts).
		Int("retries", s.Retries).
		Msg("run ended")
	return s, nil
}

func (c *Collector) caseInfo(description string) CaseInfo {
	if c.current != nil && c.current.Name == description {
		return *c.current
	}
	return CaseInfo{Name: description}
}
