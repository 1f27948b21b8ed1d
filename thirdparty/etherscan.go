package thirdparty

import (
	"context"
	"fmt"
	"net/url"

	"github.com/erpc/conformance/clients"
	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/upstream"
	"github.com/rs/zerolog"
)

var etherscanApiHosts = map[int64]string{
	1:        "api.etherscan.io",
	5:        "api-goerli.etherscan.io",
	11155111: "api-sepolia.etherscan.io",
	137:      "api.polygonscan.com",
	42161:    "api.arbiscan.io",
	10:       "api-optimistic.etherscan.io",
}

type EtherscanVendor struct{}

var _ ProviderBuilder = (*EtherscanVendor)(nil)

func CreateEtherscanVendor() Vendor {
	return &EtherscanVendor{}
}

func (v *EtherscanVendor) Name() string {
	return "etherscan"
}

func (v *EtherscanVendor) Endpoint(network string, settings common.VendorSettings) string {
	host, ok := lookupByNetwork(etherscanApiHosts, network)
	if !ok || settings.String("apiKey") == "" {
		return ""
	}
	return fmt.Sprintf("https://%s/api", host)
}

func (v *EtherscanVendor) BuildProvider(appCtx context.Context, logger *zerolog.Logger, cfg *common.ProviderConfig, network, endpoint string) (common.Provider, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, common.NewErrInvalidConfig(fmt.Sprintf("provider %s: invalid endpoint: %v", cfg.Id, err))
	}
	client := clients.NewEtherscanClient(logger, parsed, cfg.Settings.String("apiKey"), cfg.JsonRpc)
	return upstream.NewEtherscanProvider(logger, cfg.Id, network, client), nil
}
