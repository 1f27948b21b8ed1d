package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/erpc/conformance/common"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

type PostgreSQLConnector struct {
	logger *zerolog.Logger
	conn   *pgxpool.Pool
	cfg    *common.PostgreSQLConnectorConfig
	table  string
}

var _ Connector = (*PostgreSQLConnector)(nil)

func NewPostgreSQLConnector(
	ctx context.Context,
	logger *zerolog.Logger,
	cfg *common.PostgreSQLConnectorConfig,
) (*PostgreSQLConnector, error) {
	lg := logger.With().Str("connector", "postgresql").Logger()
	lg.Debug().Str("table", cfg.Table).Msg("creating postgresql connector")

	config, err := pgxpool.ParseConfig(cfg.ConnectionUri)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	config.MinConns = cfg.MinConns
	config.MaxConns = cfg.MaxConns

	initCtx, cancel := context.WithTimeout(ctx, cfg.InitTimeout.Duration())
	defer cancel()

	conn, err := pgxpool.ConnectConfig(initCtx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgresql: %w", err)
	}

	_, err = conn.Exec(initCtx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			case_name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, cfg.Table))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", cfg.Table, err)
	}
	lg.Info().Str("table", cfg.Table).Msg("connected to postgresql")

	return &PostgreSQLConnector{
		logger: &lg,
		conn:   conn,
		cfg:    cfg,
		table:  cfg.Table,
	}, nil
}

func (p *PostgreSQLConnector) Id() string {
	return string(common.DriverPostgreSQL)
}

func (p *PostgreSQLConnector) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.GetTimeout.Duration())
	defer cancel()

	var value string
	err := p.conn.QueryRow(ctx, fmt.Sprintf(
		"SELECT value FROM %s WHERE case_name = $1", p.table,
	), key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", common.NewErrRecordNotFound(key, p.Id())
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (p *PostgreSQLConnector) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.SetTimeout.Duration())
	defer cancel()

	p.logger.Trace().Str("key", key).Msg("writing to postgresql")
	_, err := p.conn.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (case_name, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (case_name) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, p.table), key, value)
	return err
}

func (p *PostgreSQLConnector) Close() error {
	p.conn.Close()
	return nil
}
