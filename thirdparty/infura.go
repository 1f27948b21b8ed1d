package thirdparty

import (
	"fmt"

	"github.com/erpc/conformance/common"
)

var infuraNetworkNames = map[int64]string{
	1:        "mainnet",
	5:        "goerli",
	11155111: "sepolia",
	137:      "polygon-mainnet",
	42161:    "arbitrum-mainnet",
	10:       "optimism-mainnet",
}

type InfuraVendor struct{}

func CreateInfuraVendor() Vendor {
	return &InfuraVendor{}
}

func (v *InfuraVendor) Name() string {
	return "infura"
}

// Endpoint accepts the key as apiKey or, as older configs name it, projectId.
func (v *InfuraVendor) Endpoint(network string, settings common.VendorSettings) string {
	apiKey := settings.String("apiKey")
	if apiKey == "" {
		apiKey = settings.String("projectId")
	}
	name, ok := lookupByNetwork(infuraNetworkNames, network)
	if !ok || apiKey == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.infura.io/v3/%s", name, apiKey)
}
