package thirdparty

import (
	"fmt"

	"github.com/erpc/conformance/common"
)

var alchemyNetworkSubdomains = map[int64]string{
	1:        "eth-mainnet",
	5:        "eth-goerli",
	11155111: "eth-sepolia",
	137:      "polygon-mainnet",
	42161:    "arb-mainnet",
	10:       "opt-mainnet",
}

type AlchemyVendor struct{}

func CreateAlchemyVendor() Vendor {
	return &AlchemyVendor{}
}

func (v *AlchemyVendor) Name() string {
	return "alchemy"
}

func (v *AlchemyVendor) Endpoint(network string, settings common.VendorSettings) string {
	apiKey := settings.String("apiKey")
	subdomain, ok := lookupByNetwork(alchemyNetworkSubdomains, network)
	if !ok || apiKey == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.g.alchemy.com/v2/%s", subdomain, apiKey)
}
