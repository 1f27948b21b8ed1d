package thirdparty

import (
	"context"

	"github.com/erpc/conformance/common"
	"github.com/rs/zerolog"
)

// Vendor derives a provider's endpoint for a network from its settings.
type Vendor interface {
	Name() string
	// Endpoint returns "" when the vendor does not serve network or the
	// settings lack the credentials it needs.
	Endpoint(network string, settings common.VendorSettings) string
}

// ProviderBuilder is implemented by vendors whose endpoints do not speak
// JSON-RPC.
type ProviderBuilder interface {
	BuildProvider(appCtx context.Context, logger *zerolog.Logger, cfg *common.ProviderConfig, network, endpoint string) (common.Provider, error)
}

type VendorsRegistry struct {
	vendors []Vendor
}

func NewVendorsRegistry() *VendorsRegistry {
	r := &VendorsRegistry{}
	r.Register(CreateJsonRpcVendor())
	r.Register(CreateAlchemyVendor())
	r.Register(CreateInfuraVendor())
	r.Register(CreateAnkrVendor())
	r.Register(CreateQuicknodeVendor())
	r.Register(CreateCloudflareVendor())
	r.Register(CreateEtherscanVendor())
	return r
}

func (r *VendorsRegistry) Register(vendor Vendor) {
	r.vendors = append(r.vendors, vendor)
}

func (r *VendorsRegistry) SupportedVendors() []string {
	names := make([]string, 0, len(r.vendors))
	for _, v := range r.vendors {
		names = append(names, v.Name())
	}
	return names
}

func (r *VendorsRegistry) LookupByName(name string) Vendor {
	for _, v := range r.vendors {
		if v.Name() == name {
			return v
		}
	}
	return nil
}
