// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package bootstrap builds the infrastructure shared by cmd/api and cmd/comicctl
from a loaded [config.Config].

Both binaries publish into the same document store and asset provider, so the
selection rules (postgres or sqlite, cloudinary or oss) live in one place.
*/
package bootstrap

import (
	stdctx "context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/assetstore"
	"github.com/taibuivan/yomira-publish/internal/platform/config"
	"github.com/taibuivan/yomira-publish/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-publish/internal/platform/postgres"
	"github.com/taibuivan/yomira-publish/internal/platform/sqlite"
)

// Store is an opened document store with its health check and release hook.
type Store struct {
	comic.DocumentStore

	// Driver is config.StoreDriverPostgres or config.StoreDriverSQLite.
	Driver string

	// Ping checks the underlying database.
	Ping func(context stdctx.Context) error

	// Close releases the connection pool.
	Close func()
}

/*
OpenStore connects to the configured document store.

Description: For postgres, pending migrations are applied first when migrate
is true. The sqlite store creates its own table.

Parameters:
  - context: context.Context (startup deadline)
  - cfg: *config.Config
  - migrate: bool
  - logger: *slog.Logger

Returns:
  - *Store: The ready store
  - error: Connection or migration failures
*/
func OpenStore(context stdctx.Context, cfg *config.Config, migrate bool, logger *slog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if migrate {
			if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
				return nil, err
			}
		}

		pool, err := pgstore.NewPool(context, cfg.DatabaseURL, pgstore.PoolOptions{
			MaxConns:         cfg.DBMaxConns,
			MinConns:         cfg.DBMinConns,
			StatementTimeout: cfg.DBStatementTimeout,
			ApplicationName:  cfg.DBApplicationName,
		}, logger)
		if err != nil {
			return nil, err
		}

		return &Store{
			DocumentStore: comic.NewPostgresStore(pool),
			Driver:        cfg.StoreDriver,
			Ping: func(context stdctx.Context) error {
				return pgstore.Ping(context, pool)
			},
			Close: pool.Close,
		}, nil

	case config.StoreDriverSQLite:
		db, err := sqlite.Open(context, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}

		store, err := comic.NewSQLiteStore(context, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}

		return &Store{
			DocumentStore: store,
			Driver:        cfg.StoreDriver,
			Ping: func(context stdctx.Context) error {
				return sqlite.Ping(context, db)
			},
			Close: func() {
				if err := db.Close(); err != nil {
					logger.Error("sqlite_close_failed", slog.Any("error", err))
				}
			},
		}, nil
	}

	return nil, fmt.Errorf("bootstrap: unknown store driver %q", cfg.StoreDriver)
}

// NewProvider returns the configured vendor media provider.
func NewProvider(cfg *config.Config) (assetstore.Provider, error) {
	switch cfg.AssetProvider {
	case config.AssetProviderCloudinary:
		return assetstore.NewCloudinaryProvider(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	case config.AssetProviderOSS:
		return assetstore.NewOSSProvider(assetstore.OSSConfig{
			Endpoint:        cfg.OSSEndpoint,
			AccessKeyID:     cfg.OSSAccessKeyID,
			AccessKeySecret: cfg.OSSAccessKeySecret,
			Bucket:          cfg.OSSBucket,
			PublicBaseURL:   cfg.OSSPublicBaseURL,
		})
	}
	return nil, fmt.Errorf("bootstrap: unknown asset provider %q", cfg.AssetProvider)
}

// NewAssetClient wraps the configured provider with the batching and retry policy.
func NewAssetClient(cfg *config.Config, logger *slog.Logger) (*assetstore.Client, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	client := assetstore.NewClient(provider, assetstore.Options{
		RootFolder:   cfg.AssetRootFolder,
		BatchSize:    cfg.DeleteBatchSize,
		MaxAttempts:  cfg.DeleteMaxAttempts,
		RetryBackoff: cfg.DeleteRetryBackoff,
	}, logger)

	logger.Info("asset_store_ready",
		slog.String("provider", client.ProviderName()),
		slog.String("root_folder", cfg.AssetRootFolder),
	)
	return client, nil
}
