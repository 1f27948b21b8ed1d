package data

import (
	"context"

	"github.com/erpc/conformance/common"
	"github.com/rs/zerolog"
)

// Connector is a flat key/value store. Get returns ErrRecordNotFound for
// keys that were never written.
type Connector interface {
	Id() string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

func NewConnector(
	ctx context.Context,
	logger *zerolog.Logger,
	cfg *common.ConnectorConfig,
) (Connector, error) {
	switch cfg.Driver {
	case common.DriverMemory:
		return NewMemoryConnector(ctx, logger, cfg.Memory)
	case common.DriverRedis:
		return NewRedisConnector(ctx, logger, cfg.Redis)
	case common.DriverPostgreSQL:
		return NewPostgreSQLConnector(ctx, logger, cfg.PostgreSQL)
	case common.DriverDynamoDB:
		return NewDynamoDBConnector(ctx, logger, cfg.DynamoDB)
	}

	return nil, common.NewErrInvalidConnectorDriver(string(cfg.Driver))
}
