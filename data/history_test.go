package data

import (
	"context"
	"testing"

	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/stats"
	"github.com/erpc/conformance/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caseResult(name string, outcome stats.Outcome) stats.CaseResult {
	return stats.CaseResult{
		CaseInfo: stats.CaseInfo{Name: name, Provider: "alchemy", Network: "homestead", Operation: common.OperationGetBalance},
		Outcome:  outcome,
	}
}

func TestVerdictHistory_Reconcile(t *testing.T) {
	ctx := context.Background()
	logger := util.TestLogger(t.Name())

	connector, err := NewMemoryConnector(ctx, logger, &common.MemoryConnectorConfig{MaxItems: 100})
	require.NoError(t, err)
	history := NewVerdictHistory(logger, connector)
	defer history.Close()

	first := &stats.Summary{Cases: []stats.CaseResult{
		caseResult("a", stats.OutcomePass),
		caseResult("b", stats.OutcomeFail),
		caseResult("c", stats.OutcomePass),
		caseResult("d", stats.OutcomeSkipped),
	}}
	require.NoError(t, history.Reconcile(ctx, first))
	assert.Empty(t, first.Regressions, "first run has nothing to compare against")
	assert.Empty(t, first.Recoveries)

	last, err := history.Last(ctx, "d")
	require.NoError(t, err)
	assert.Nil(t, last, "skipped cases are not stored")

	second := &stats.Summary{Cases: []stats.CaseResult{
		caseResult("a", stats.OutcomeFail),
		caseResult("b", stats.OutcomePass),
		caseResult("c", stats.OutcomePass),
		caseResult("d", stats.OutcomeFail),
	}}
	require.NoError(t, history.Reconcile(ctx, second))
	assert.Equal(t, []string{"a"}, second.Regressions)
	assert.Equal(t, []string{"b"}, second.Recoveries)

	last, err = history.Last(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, stats.OutcomeFail, last.Outcome)
	assert.False(t, last.RecordedAt.IsZero())
}

func TestVerdictHistory_SkippedKeepsPreviousVerdict(t *testing.T) {
	ctx := context.Background()
	logger := util.TestLogger(t.Name())

	connector, err := NewMemoryConnector(ctx, logger, &common.MemoryConnectorConfig{MaxItems: 100})
	require.NoError(t, err)
	history := NewVerdictHistory(logger, connector)
	defer history.Close()

	require.NoError(t, history.Reconcile(ctx, &stats.Summary{Cases: []stats.CaseResult{caseResult("a", stats.OutcomeFail)}}))
	require.NoError(t, history.Reconcile(ctx, &stats.Summary{Cases: []stats.CaseResult{caseResult("a", stats.OutcomeSkippedUnsupported)}}))

	third := &stats.Summary{Cases: []stats.CaseResult{caseResult("a", stats.OutcomePass)}}
	require.NoError(t, history.Reconcile(ctx, third))
	assert.Equal(t, []string{"a"}, third.Recoveries)
}
