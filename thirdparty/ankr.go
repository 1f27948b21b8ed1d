package thirdparty

import (
	"fmt"

	"github.com/erpc/conformance/common"
)

var ankrNetworkPaths = map[int64]string{
	1:        "eth",
	5:        "eth_goerli",
	11155111: "eth_sepolia",
	137:      "polygon",
	42161:    "arbitrum",
	10:       "optimism",
}

type AnkrVendor struct{}

func CreateAnkrVendor() Vendor {
	return &AnkrVendor{}
}

func (v *AnkrVendor) Name() string {
	return "ankr"
}

// Endpoint falls back to the public, keyless endpoint.
func (v *AnkrVendor) Endpoint(network string, settings common.VendorSettings) string {
	path, ok := lookupByNetwork(ankrNetworkPaths, network)
	if !ok {
		return ""
	}
	if apiKey := settings.String("apiKey"); apiKey != "" {
		return fmt.Sprintf("https://rpc.ankr.com/%s/%s", path, apiKey)
	}
	return fmt.Sprintf("https://rpc.ankr.com/%s", path)
}
