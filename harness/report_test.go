package harness

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/erpc/conformance/stats"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	fs := afero.NewMemMapFs()
	summary := &stats.Summary{
		Name:      "nightly",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Total:     2,
		Counts:    map[stats.Outcome]int{stats.OutcomePass: 1, stats.OutcomeFail: 1},
		Cases: []stats.CaseResult{
			{CaseInfo: stats.CaseInfo{Name: "fetches address code: alpha.homestead.0xAC16..cBB5"}, Outcome: stats.OutcomePass, Attempts: 1},
			{CaseInfo: stats.CaseInfo{Name: "fetches transaction: alpha.homestead.0x5c50..2060"}, Outcome: stats.OutcomeFail, Attempts: 3, Error: "ErrFieldMismatch: gasPrice"},
		},
		Regressions: []string{"fetches transaction: alpha.homestead.0x5c50..2060"},
	}

	require.NoError(t, WriteReport(fs, "out/deep/report.json", summary))

	raw, err := afero.ReadFile(fs, "out/deep/report.json")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"name\": \"nightly\"")

	var decoded map[string]interface{}
	require.NoError(t, sonic.Unmarshal(raw, &decoded))
	assert.EqualValues(t, 2, decoded["total"])
	assert.Len(t, decoded["cases"], 2)
	assert.Len(t, decoded["regressions"], 1)
	assert.NotContains(t, decoded, "recoveries")
}

func TestPassRate(t *testing.T) {
	assert.Equal(t, "n/a", passRate(&stats.Summary{Counts: map[stats.Outcome]int{stats.OutcomeSkipped: 4}}))
	assert.Equal(t, "75.0%", passRate(&stats.Summary{Counts: map[stats.Outcome]int{stats.OutcomePass: 3, stats.OutcomeFail: 1}}))
}
