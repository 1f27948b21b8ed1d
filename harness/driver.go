package harness

import (
	"context"
	"testing"
	"time"

	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/fixtures"
	"github.com/erpc/conformance/resiliency"
	"github.com/erpc/conformance/stats"
	"github.com/erpc/conformance/telemetry"
	"github.com/erpc/conformance/tracing"
	"github.com/rs/zerolog"
)

// ProviderSource resolves live providers. GetProvider returns nil without an
// error when the pair has no endpoint. ProviderVendor names the backend kind
// behind an id, or "" when it is unknown.
type ProviderSource interface {
	ProviderIds() []string
	ProviderVendor(providerId string) string
	GetProvider(providerId, network string) (common.Provider, error)
}

// Driver plans the provider x network x fixture matrix and runs it, one case
// at a time.
type Driver struct {
	logger    *zerolog.Logger
	cfg       *common.Config
	store     *fixtures.Store
	providers ProviderSource
	skip      *SkipMatrix
	policy    resiliency.Policy
	throttle  time.Duration
}

func NewDriver(
	logger *zerolog.Logger,
	cfg *common.Config,
	store *fixtures.Store,
	providers ProviderSource,
	skip *SkipMatrix,
) *Driver {
	lg := logger.With().Str("component", "driver").Logger()
	throttle := common.DefaultThrottle
	if cfg.Throttle != nil {
		throttle = cfg.Throttle.Duration()
	}
	return &Driver{
		logger:    &lg,
		cfg:       cfg,
		store:     store,
		providers: providers,
		skip:      skip,
		policy:    resiliency.PolicyFromConfig(cfg.Retry),
		throttle:  throttle,
	}
}

func (d *Driver) networks() []string {
	if len(d.cfg.Networks) > 0 {
		return d.cfg.Networks
	}
	return d.store.Networks()
}

func (d *Driver) isExcluded(providerId, vendor string) bool {
	for _, pattern := range d.cfg.ExcludedProviders {
		if MatchesProvider(pattern, providerId, vendor) {
			return true
		}
	}
	return false
}

// Plan lists every case of the run in execution order: per provider, each
// network's addresses, blocks, transactions and receipts, then the provider's
// pending-block case.
func (d *Driver) Plan() ([]*Case, error) {
	networks := d.networks()
	for _, network := range networks {
		if _, ok := d.store.Get(network); !ok {
			return nil, common.NewErrNetworkFixturesNotFound(network)
		}
	}

	var cases []*Case
	for _, providerId := range d.providers.ProviderIds() {
		vendor := d.providers.ProviderVendor(providerId)
		for _, network := range networks {
			provider, reason := d.resolve(providerId, vendor, network)
			if provider == nil {
				d.logger.Info().Str("reason", reason).Msgf("skipping %s:%s", providerId, network)
				telemetry.CounterHandle(telemetry.MetricProviderExcludedTotal, providerId, network, reason).Inc()
				continue
			}
			nf, _ := d.store.Get(network)
			b := &caseBuilder{provider: provider, providerId: providerId, vendor: vendor, network: network, skip: d.skip}
			for _, a := range nf.Addresses {
				cases = append(cases, b.addressCases(a, d.cfg.Checks != nil && d.cfg.Checks.ReverseLookup)...)
			}
			for _, blk := range nf.Blocks {
				cases = append(cases, b.blockCases(blk)...)
			}
			for _, tx := range nf.Transactions {
				cases = append(cases, b.transactionCase(tx))
			}
			for _, rcpt := range nf.Receipts {
				cases = append(cases, b.receiptCase(rcpt))
			}
		}

		pendingNetwork := d.cfg.PendingNetwork
		if pendingNetwork == "" {
			pendingNetwork = common.DefaultPendingNetwork
		}
		provider, err := d.providers.GetProvider(providerId, pendingNetwork)
		if err != nil {
			d.logger.Warn().Err(err).Str("provider", providerId).Str("network", pendingNetwork).Msg("failed to build provider for pending block case")
		}
		cases = append(cases, pendingCase(providerId, pendingNetwork, provider))
	}

	return cases, nil
}

// resolve returns the live provider for a pair, or nil and the reason it is
// left out of the matrix.
func (d *Driver) resolve(providerId, vendor, network string) (common.Provider, string) {
	if d.isExcluded(providerId, vendor) {
		return nil, "excluded"
	}
	provider, err := d.providers.GetProvider(providerId, network)
	if err != nil {
		d.logger.Warn().Err(err).Str("provider", providerId).Str("network", network).Msg("failed to build provider")
		return nil, "error"
	}
	if provider == nil {
		return nil, "unavailable"
	}
	return provider, ""
}

// Execute runs the plan between collector.Start and collector.End. A failing
// case never stops the run; a cancelled ctx does, after closing the run.
func (d *Driver) Execute(ctx context.Context, name string, collector *stats.Collector) (*stats.Summary, error) {
	cases, err := d.Plan()
	if err != nil {
		return nil, err
	}
	if err := collector.Start(name); err != nil {
		return nil, err
	}
	runner := resiliency.NewRunner(d.logger, collector)

	d.logger.Info().Int("cases", len(cases)).Str("run", name).Msg("executing conformance matrix")
	for _, c := range cases {
		if ctx.Err() != nil {
			break
		}
		d.runCase(ctx, runner, collector, c)
	}

	summary, err := collector.End()
	if err != nil {
		return nil, err
	}
	return summary, ctx.Err()
}

// RunT runs the plan as sub-tests of t. Failed cases fail their sub-test and
// skipped ones call t.Skip.
func (d *Driver) RunT(t *testing.T, collector *stats.Collector) *stats.Summary {
	t.Helper()

	cases, err := d.Plan()
	if err != nil {
		t.Fatalf("failed to plan conformance matrix: %v", err)
	}
	if err := collector.Start(t.Name()); err != nil {
		t.Fatalf("failed to start run: %v", err)
	}
	runner := resiliency.NewRunner(d.logger, collector)

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			result := d.runCase(context.Background(), runner, collector, c)
			switch result.Outcome {
			case stats.OutcomeFail:
				t.Error(result.Error)
			case stats.OutcomeSkipped:
				t.Skip(c.SkipReason)
			}
		})
	}

	summary, err := collector.End()
	if err != nil {
		t.Fatalf("failed to end run: %v", err)
	}
	return summary
}

func (d *Driver) runCase(ctx context.Context, runner *resiliency.Runner, collector *stats.Collector, c *Case) stats.CaseResult {
	result := stats.CaseResult{CaseInfo: c.CaseInfo}

	if err := d.pause(ctx); err != nil {
		result.Outcome = stats.OutcomeFail
		result.Error = err.Error()
		d.record(collector, result)
		return result
	}

	if err := collector.BeginCase(c.CaseInfo); err != nil {
		d.logger.Warn().Err(err).Str("case", c.Name).Msg("failed to begin case")
	}
	ctx, span := tracing.StartCaseSpan(ctx, c.Name, c.Provider, c.Network, c.Operation)

	var caseErr error
	if c.SkipReason != "" {
		result.Outcome = stats.OutcomeSkipped
		d.logger.Debug().Str("case", c.Name).Str("reason", c.SkipReason).Msg("case skipped")
	} else {
		policy := d.policy
		if c.Pending {
			policy = policy.WithSingleAttempt(d.pendingTimeout())
		}
		outcome := runner.Run(ctx, c.Name, c.attempt, policy)
		result.Attempts = outcome.Attempts
		result.Elapsed = outcome.Elapsed
		caseErr = outcome.Err
		switch {
		case outcome.Err != nil:
			result.Outcome = stats.OutcomeFail
			result.Error = common.ErrorSummary(outcome.Err)
		case c.Negative:
			result.Outcome = stats.OutcomeSkippedUnsupported
		default:
			result.Outcome = stats.OutcomePass
		}
	}

	tracing.EndCaseSpan(span, string(result.Outcome), result.Attempts, caseErr)
	d.record(collector, result)
	return result
}

func (d *Driver) record(collector *stats.Collector, result stats.CaseResult) {
	if err := collector.RecordCase(result); err != nil {
		d.logger.Warn().Err(err).Str("case", result.Name).Msg("failed to record case")
	}
}

func (d *Driver) pendingTimeout() time.Duration {
	if d.cfg.Pending != nil && d.cfg.Pending.Timeout > 0 {
		return d.cfg.Pending.Timeout.Duration()
	}
	return common.DefaultPendingTimeout
}

// pause waits out the fixed throttle that precedes every case.
func (d *Driver) pause(ctx context.Context) error {
	if d.throttle <= 0 {
		return nil
	}
	timer := time.NewTimer(d.throttle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
