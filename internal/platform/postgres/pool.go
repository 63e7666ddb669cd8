// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres opens the pgx pool behind the comic document store.
package postgres

import (
	stdctx "context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxConnLifetime   = time.Hour
	maxConnIdleTime   = 10 * time.Minute
	healthCheckPeriod = time.Minute
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

// PoolOptions sizes the pool. The API server and comicctl pass different values.
type PoolOptions struct {
	MaxConns int32
	MinConns int32

	// StatementTimeout is applied to every new connection. Zero leaves the
	// server default in place.
	StatementTimeout time.Duration

	// ApplicationName shows up in pg_stat_activity.
	ApplicationName string
}

/*
ParseConfig builds the pgxpool configuration for dsn.

Returns:
  - *pgxpool.Config: Ready for [pgxpool.NewWithConfig]
  - error: Invalid DSN or pool bounds
*/
func ParseConfig(dsn string, options PoolOptions) (*pgxpool.Config, error) {
	if options.MaxConns < 1 || options.MinConns < 0 || options.MinConns > options.MaxConns {
		return nil, errors.New("postgres: pool needs 0 <= MinConns <= MaxConns and MaxConns >= 1")
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	poolConfig.MaxConns = options.MaxConns
	poolConfig.MinConns = options.MinConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	if options.ApplicationName != "" {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = options.ApplicationName
	}

	// Runtime params travel in the startup packet, so no round trip per connection.
	if options.StatementTimeout > 0 {
		poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(options.StatementTimeout.Milliseconds())
	}

	// Document rows are read and written whole; a cached plan per statement is enough.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	return poolConfig, nil
}

// NewPool connects and pings before returning, so a bad DATABASE_URL fails at startup.
func NewPool(context stdctx.Context, dsn string, options PoolOptions, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := ParseConfig(dsn, options)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := stdctx.WithTimeout(context, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := Ping(context, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres pool connected",
		slog.String("host", poolConfig.ConnConfig.Host),
		slog.String("database", poolConfig.ConnConfig.Database),
		slog.Int("max_conns", int(options.MaxConns)),
	)

	return pool, nil
}

// Ping verifies that the pool can reach the server.
func Ping(context stdctx.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}
	return nil
}
