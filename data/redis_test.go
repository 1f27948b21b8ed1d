package data

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/erpc/conformance/common"
	"github.com/erpc/conformance/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisConfig(addr string) *common.RedisConnectorConfig {
	cfg := &common.ConnectorConfig{
		Driver: common.DriverRedis,
		Redis: &common.RedisConnectorConfig{
			Addr:        addr,
			InitTimeout: common.Duration(500 * time.Millisecond),
		},
	}
	cfg.SetDefaults()
	return cfg.Redis
}

func TestRedisConnector(t *testing.T) {
	ctx := context.Background()
	logger := util.TestLogger(t.Name())

	t.Run("SetThenGetUsesKeyPrefix", func(t *testing.T) {
		m, err := miniredis.Run()
		require.NoError(t, err)
		defer m.Close()

		connector, err := NewRedisConnector(ctx, logger, redisConfig(m.Addr()))
		require.NoError(t, err)
		defer connector.Close()

		require.NoError(t, connector.Set(ctx, "alchemy:homestead:getCode", "hello"))

		value, err := connector.Get(ctx, "alchemy:homestead:getCode")
		require.NoError(t, err)
		assert.Equal(t, "hello", value)

		raw, err := m.Get("conformance:alchemy:homestead:getCode")
		require.NoError(t, err)
		assert.Equal(t, "hello", raw)
	})

	t.Run("MissingKeyIsRecordNotFound", func(t *testing.T) {
		m, err := miniredis.Run()
		require.NoError(t, err)
		defer m.Close()

		connector, err := NewRedisConnector(ctx, logger, redisConfig(m.Addr()))
		require.NoError(t, err)
		defer connector.Close()

		_, err = connector.Get(ctx, "missing")
		require.Error(t, err)
		assert.True(t, common.HasErrorCode(err, common.ErrCodeRecordNotFound))
	})

	t.Run("FailsWhenServerIsUnreachable", func(t *testing.T) {
		m, err := miniredis.Run()
		require.NoError(t, err)
		addr := m.Addr()
		m.Close()

		_, err = NewRedisConnector(ctx, logger, redisConfig(addr))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to redis")
	})
}
