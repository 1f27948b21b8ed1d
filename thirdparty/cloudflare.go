package thirdparty

import "github.com/erpc/conformance/common"

type CloudflareVendor struct{}

func CreateCloudflareVendor() Vendor {
	return &CloudflareVendor{}
}

func (v *CloudflareVendor) Name() string {
	return "cloudflare"
}

func (v *CloudflareVendor) Endpoint(network string, settings common.VendorSettings) string {
	if network != "homestead" {
		return ""
	}
	return "https://cloudflare-eth.com/"
}
