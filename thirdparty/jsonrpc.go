package thirdparty

import "github.com/erpc/conformance/common"

// JsonRpcVendor serves only the endpoints listed explicitly in the provider
// config.
type JsonRpcVendor struct{}

func CreateJsonRpcVendor() Vendor {
	return &JsonRpcVendor{}
}

func (v *JsonRpcVendor) Name() string {
	return "jsonrpc"
}

func (v *JsonRpcVendor) Endpoint(network string, settings common.VendorSettings) string {
	return ""
}
