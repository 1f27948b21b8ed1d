package thirdparty

import (
	"fmt"

	"github.com/erpc/conformance/common"
)

// Mainnet endpoints carry no network label.
var quicknodeNetworkLabels = map[int64]string{
	1:        "",
	5:        "ethereum-goerli",
	11155111: "ethereum-sepolia",
	137:      "matic",
	42161:    "arbitrum-mainnet",
	10:       "optimism",
}

type QuicknodeVendor struct{}

func CreateQuicknodeVendor() Vendor {
	return &QuicknodeVendor{}
}

func (v *QuicknodeVendor) Name() string {
	return "quicknode"
}

func (v *QuicknodeVendor) Endpoint(network string, settings common.VendorSettings) string {
	name := settings.String("endpointName")
	token := settings.String("token")
	label, ok := lookupByNetwork(quicknodeNetworkLabels, network)
	if !ok || name == "" || token == "" {
		return ""
	}
	if label == "" {
		return fmt.Sprintf("https://%s.quiknode.pro/%s/", name, token)
	}
	return fmt.Sprintf("https://%s.%s.quiknode.pro/%s/", name, label, token)
}
