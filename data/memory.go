package data

import (
	"context"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/erpc/conformance/common"
	"github.com/rs/zerolog"
)

type MemoryConnector struct {
	logger *zerolog.Logger
	cache  *ristretto.Cache[string, string]
}

var _ Connector = (*MemoryConnector)(nil)

func NewMemoryConnector(
	ctx context.Context,
	logger *zerolog.Logger,
	cfg *common.MemoryConnectorConfig,
) (*MemoryConnector, error) {
	lg := logger.With().Str("connector", "memory").Logger()
	lg.Debug().Interface("config", cfg).Msg("creating memory connector")

	maxItems := common.DefaultMemoryMaxItems
	if cfg != nil && cfg.MaxItems > 0 {
		maxItems = cfg.MaxItems
	}

	// Each verdict costs 1, so MaxCost is an item count.
	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters:        int64(maxItems) * 10,
		MaxCost:            int64(maxItems),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}

	return &MemoryConnector{
		logger: &lg,
		cache:  cache,
	}, nil
}

func (m *MemoryConnector) Id() string {
	return string(common.DriverMemory)
}

func (m *MemoryConnector) Get(ctx context.Context, key string) (string, error) {
	value, found := m.cache.Get(key)
	if !found {
		return "", common.NewErrRecordNotFound(key, m.Id())
	}
	return value, nil
}

func (m *MemoryConnector) Set(ctx context.Context, key, value string) error {
	m.logger.Trace().Str("key", key).Msg("writing to memory")
	m.cache.Set(key, value, 1)
	// Make the write visible to the next Get.
	m.cache.Wait()
	return nil
}

func (m *MemoryConnector) Close() error {
	m.cache.Close()
	return nil
}
