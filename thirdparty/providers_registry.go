package thirdparty

import (
	"context"
	"io"
	"sync"

	"github.com/erpc/conformance/clients"
	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/upstream"
	"github.com/erpc/conformance/util"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ProvidersRegistry maps (provider id, network) to a live provider, building
// each one on first use. A nil provider means the pair is not configured.
type ProvidersRegistry struct {
	appCtx  context.Context
	logger  *zerolog.Logger
	configs []*common.ProviderConfig
	vendors map[string]Vendor

	sf       singleflight.Group
	mu       sync.RWMutex
	resolved map[string]common.Provider
}

func NewProvidersRegistry(
	appCtx context.Context,
	logger *zerolog.Logger,
	vendorReg *VendorsRegistry,
	providerCfgs []*common.ProviderConfig,
) (*ProvidersRegistry, error) {
	lg := logger.With().Str("component", "providersRegistry").Logger()
	r := &ProvidersRegistry{
		appCtx:   appCtx,
		logger:   &lg,
		configs:  providerCfgs,
		vendors:  make(map[string]Vendor, len(providerCfgs)),
		resolved: make(map[string]common.Provider),
	}
	for _, cfg := range providerCfgs {
		vnd := vendorReg.LookupByName(cfg.Vendor)
		if vnd == nil {
			return nil, common.NewErrVendorNotFound(cfg.Vendor, cfg.Id, vendorReg.SupportedVendors())
		}
		r.vendors[cfg.Id] = vnd
	}
	return r, nil
}

// ProviderIds lists the configured providers in config order.
func (r *ProvidersRegistry) ProviderIds() []string {
	ids := make([]string, 0, len(r.configs))
	for _, cfg := range r.configs {
		ids = append(ids, cfg.Id)
	}
	return ids
}

// ProviderVendor returns the configured vendor name of providerId, or "" when
// the id is unknown.
func (r *ProvidersRegistry) ProviderVendor(providerId string) string {
	if cfg := r.config(providerId); cfg != nil {
		return cfg.Vendor
	}
	return ""
}

func (r *ProvidersRegistry) config(providerId string) *common.ProviderConfig {
	for _, cfg := range r.configs {
		if cfg.Id == providerId {
			return cfg
		}
	}
	return nil
}

// GetProvider returns nil without error when providerId is unknown, when its
// onlyNetworks excludes network, or when its vendor cannot serve network with
// the configured settings.
func (r *ProvidersRegistry) GetProvider(providerId, network string) (common.Provider, error) {
	key := providerId + "/" + network

	r.mu.RLock()
	p, ok := r.resolved[key]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	v, err, _ := r.sf.Do(key, func() (interface{}, error) {
		r.mu.RLock()
		p, ok := r.resolved[key]
		r.mu.RUnlock()
		if ok {
			return p, nil
		}
		p, err := r.build(providerId, network)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.resolved[key] = p
		r.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(common.Provider), nil
}

func (r *ProvidersRegistry) build(providerId, network string) (common.Provider, error) {
	cfg := r.config(providerId)
	if cfg == nil {
		return nil, nil
	}
	lg := r.logger.With().Str("provider", providerId).Str("network", network).Logger()

	if len(cfg.OnlyNetworks) > 0 {
		allowed := false
		for _, pattern := range cfg.OnlyNetworks {
			match, err := common.WildcardMatch(pattern, network)
			if err != nil {
				return nil, common.NewErrInvalidConfig(err.Error())
			}
			if match {
				allowed = true
				break
			}
		}
		if !allowed {
			lg.Debug().Strs("onlyNetworks", cfg.OnlyNetworks).Msg("network not enabled for provider")
			return nil, nil
		}
	}

	vnd := r.vendors[providerId]
	endpoint := cfg.Endpoints[network]
	if endpoint == "" {
		endpoint = vnd.Endpoint(network, cfg.Settings)
	}
	if endpoint == "" {
		lg.Debug().Str("vendor", vnd.Name()).Msg("no endpoint available for network")
		return nil, nil
	}

	if builder, ok := vnd.(ProviderBuilder); ok {
		p, err := builder.BuildProvider(r.appCtx, &lg, cfg, network, endpoint)
		if err != nil {
			return nil, err
		}
		lg.Info().Str("endpoint", util.RedactEndpoint(endpoint)).Msg("prepared provider")
		return p, nil
	}

	client, err := clients.NewJsonRpcClient(r.appCtx, &lg, endpoint, cfg.JsonRpc)
	if err != nil {
		return nil, err
	}
	lg.Info().Str("endpoint", util.RedactEndpoint(endpoint)).Msg("prepared provider")
	return upstream.NewJsonRpcProvider(&lg, cfg.Id, network, client), nil
}

// Close releases the connections of every provider built so far.
func (r *ProvidersRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.resolved {
		if c, ok := p.(io.Closer); ok && c != nil {
			if err := c.Close(); err != nil {
				r.logger.Warn().Err(err).Str("provider", key).Msg("failed to close provider")
			}
		}
	}
}
