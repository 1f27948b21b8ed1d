package thirdparty

import (
	"testing"

	"github.com/erpc/conformance/common"
	"github.com/stretchr/testify/assert"
)

func TestVendorEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		vendor   Vendor
		network  string
		settings common.VendorSettings
		want     string
	}{
		{"AlchemyMainnet", CreateAlchemyVendor(), "homestead", common.VendorSettings{"apiKey": "k"}, "https://eth-mainnet.g.alchemy.com/v2/k"},
		{"AlchemyWithoutKey", CreateAlchemyVendor(), "homestead", nil, ""},
		{"AlchemyUnknownNetwork", CreateAlchemyVendor(), "fantom", common.VendorSettings{"apiKey": "k"}, ""},
		{"InfuraProjectId", CreateInfuraVendor(), "goerli", common.VendorSettings{"projectId": "p"}, "https://goerli.infura.io/v3/p"},
		{"AnkrPublic", CreateAnkrVendor(), "matic", nil, "https://rpc.ankr.com/polygon"},
		{"AnkrWithKey", CreateAnkrVendor(), "homestead", common.VendorSettings{"apiKey": "k"}, "https://rpc.ankr.com/eth/k"},
		{"QuicknodeMainnet", CreateQuicknodeVendor(), "homestead", common.VendorSettings{"endpointName": "n", "token": "t"}, "https://n.quiknode.pro/t/"},
		{"QuicknodeSepolia", CreateQuicknodeVendor(), "sepolia", common.VendorSettings{"endpointName": "n", "token": "t"}, "https://n.ethereum-sepolia.quiknode.pro/t/"},
		{"QuicknodeWithoutToken", CreateQuicknodeVendor(), "homestead", common.VendorSettings{"endpointName": "n"}, ""},
		{"CloudflareMainnetOnly", CreateCloudflareVendor(), "goerli", nil, ""},
		{"EtherscanOptimism", CreateEtherscanVendor(), "optimism", common.VendorSettings{"apiKey": "k"}, "https://api-optimistic.etherscan.io/api"},
		{"EtherscanWithoutKey", CreateEtherscanVendor(), "homestead", nil, ""},
		{"JsonRpcNeedsExplicitEndpoints", CreateJsonRpcVendor(), "homestead", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.vendor.Endpoint(tt.network, tt.settings))
		})
	}
}

func TestVendorsRegistry(t *testing.T) {
	reg := NewVendorsRegistry()
	assert.Equal(t, []string{"jsonrpc", "alchemy", "infura", "ankr", "quicknode", "cloudflare", "etherscan"}, reg.SupportedVendors())
	assert.NotNil(t, reg.LookupByName("etherscan"))
	assert.Nil(t, reg.LookupByName("pokt"))
}
