package harness

import (
	"testing"

	"github.com/erpc/conformance/common"
	"github.com/stretchr/testify/assert"
)

func TestSumhash(t *testing.T) {
	assert.Equal(t, "0x5c50..2060", Sumhash("0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"))
	assert.Equal(t, "0xAC16..cBB5", Sumhash("0xAC1639CF97a3A46D431e6d1216f576622894cBB5"))
	assert.Equal(t, "0x1234", Sumhash("0x1234"))
}

func TestCaseName(t *testing.T) {
	tests := []struct {
		operation common.Operation
		negative  bool
		network   string
		short     string
		want      string
	}{
		{common.OperationGetBalance, false, "homestead", "0xAC16..cBB5", "fetches address balance: alchemy.homestead.0xAC16..cBB5"},
		{common.OperationGetBlockByNumber, false, "goerli", "46147", "fetches block by number: alchemy.goerli.46147"},
		{common.OperationGetBlockByHash, true, "homestead", "0x4e3a..1bdd", "throws unsupported operation for fetching block by hash: alchemy.homestead.0x4e3a..1bdd"},
		{common.OperationGetPendingBlock, false, "", "", "fetches a pending block: alchemy"},
		{"traceBlock", false, "homestead", "1", "traceBlock: alchemy.homestead.1"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, CaseName(tt.operation, tt.negative, "alchemy", tt.network, tt.short))
		})
	}
}
