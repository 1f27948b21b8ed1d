package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/erpc/conformance/common"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RedisConnector struct {
	logger    *zerolog.Logger
	client    *redis.Client
	cfg       *common.RedisConnectorConfig
	keyPrefix string
}

var _ Connector = (*RedisConnector)(nil)

func NewRedisConnector(
	ctx context.Context,
	logger *zerolog.Logger,
	cfg *common.RedisConnectorConfig,
) (*RedisConnector, error) {
	lg := logger.With().Str("connector", "redis").Logger()
	lg.Debug().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("creating redis connector")

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.InitTimeout.Duration(),
		ReadTimeout:  cfg.GetTimeout.Duration(),
		WriteTimeout: cfg.SetTimeout.Duration(),
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.InitTimeout.Duration())
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	lg.Info().Str("addr", cfg.Addr).Msg("connected to redis")

	return &RedisConnector{
		logger:    &lg,
		client:    client,
		cfg:       cfg,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (r *RedisConnector) Id() string {
	return string(common.DriverRedis)
}

func (r *RedisConnector) key(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", r.keyPrefix, key)
}

func (r *RedisConnector) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.GetTimeout.Duration())
	defer cancel()

	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", common.NewErrRecordNotFound(r.key(key), r.Id())
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *RedisConnector) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.SetTimeout.Duration())
	defer cancel()

	r.logger.Trace().Str("key", r.key(key)).Msg("writing to redis")
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *RedisConnector) Close() error {
	return r.client.Close()
}
