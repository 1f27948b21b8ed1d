package upstream

import (
	"context"
	"net/url"
	"testing"

	"github.com/erpc/conformance/clients"
	"github.com/erpc/conformance/common"
	"github.com/h2non/gock"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEtherscanProvider() *EtherscanProvider {
	client := clients.NewEtherscanClient(&log.Logger, &url.URL{Scheme: "http", Host: "api.etherscan.localhost", Path: "/api"}, "test-key", nil)
	return NewEtherscanProvider(&log.Logger, "etherscan", "homestead", client)
}

func TestEtherscanProvider(t *testing.T) {
	t.Run("BalanceUsesAccountModule", func(t *testing.T) {
		defer gock.Off()
		gock.New("http://api.etherscan.localhost").
			Get("/api").
			MatchParam("module", "^account$").
			MatchParam("action", "^balance$").
			MatchParam("apikey", "^test-key$").
			Reply(200).
			BodyString(`{"status":"1","message":"OK","result":"4918774100000000"}`)

		balance, err := newTestEtherscanProvider().GetBalance(context.Background(), "0xAC1639CF97a3A46D431e6d1216f576622894cBB5")
		require.NoError(t, err)
		assert.True(t, balance.Equal("0x11799956f5fd00"))
	})

	t.Run("BlockByNumberUsesProxy", func(t *testing.T) {
		defer gock.Off()
		gock.New("http://api.etherscan.localhost").
			Get("/api").
			MatchParam("module", "^proxy$").
			MatchParam("action", "^eth_getBlockByNumber$").
			MatchParam("tag", "^0xb443$").
			Reply(200).
			BodyString(`{"jsonrpc":"2.0","id":1,"result":{"hash":"0x4e3a3754410177e6937ef1f84bba68ea139e8d1a2258c5f85db9f1cd715a1bdd","number":"0xb443","timestamp":"0x55c42659","transactions":[]}}`)

		block, err := newTestEtherscanProvider().GetBlock(context.Background(), common.BlockTagFromNumber(46147))
		require.NoError(t, err)
		assert.True(t, block.Number.Equal("46147"))
	})

	t.Run("BlockByHashIsUnsupported", func(t *testing.T) {
		_, err := newTestEtherscanProvider().GetBlock(context.Background(),
			common.BlockTagFromHash("0x4e3a3754410177e6937ef1f84bba68ea139e8d1a2258c5f85db9f1cd715a1bdd"))
		unsupported, ok := common.AsUnsupportedOperation(err)
		require.True(t, ok)
		assert.Equal(t, "getBlock(blockHash)", unsupported.Operation)
	})

	t.Run("LookupAddressIsUnsupported", func(t *testing.T) {
		_, err := newTestEtherscanProvider().LookupAddress(context.Background(), "0x8ba1f109551bD432803012645Ac136ddd64DBA72")
		unsupported, ok := common.AsUnsupportedOperation(err)
		require.True(t, ok)
		assert.Equal(t, "lookupAddress", unsupported.Operation)
	})

	t.Run("RateLimitNotice", func(t *testing.T) {
		defer gock.Off()
		gock.New("http://api.etherscan.localhost").
			Get("/api").
			Reply(200).
			BodyString(`{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`)

		_, err := newTestEtherscanProvider().GetBalance(context.Background(), "0xAC1639CF97a3A46D431e6d1216f576622894cBB5")
		assert.True(t, common.HasErrorCode(err, common.ErrCodeEndpointCapacityExceeded))
	})

	t.Run("InvalidApiKey", func(t *testing.T) {
		defer gock.Off()
		gock.New("http://api.etherscan.localhost").
			Get("/api").
			Reply(200).
			BodyString(`{"status":"0","message":"NOTOK","result":"Invalid API Key"}`)

		_, err := newTestEtherscanProvider().GetCode(context.Background(), "0xAC1639CF97a3A46D431e6d1216f576622894cBB5")
		assert.True(t, common.HasErrorCode(err, common.ErrCodeEndpointUnauthorized))
	})
}
