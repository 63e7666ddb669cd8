// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct. A '.env' file in the working directory is loaded first when present,
so local runs of both the API server and comicctl share one source of settings.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

The API server additionally calls [Config.ValidateServer]; the CLI does not need
Redis or JWT keys and skips it.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Asset providers.
const (
	AssetProviderCloudinary = "cloudinary"
	AssetProviderOSS        = "oss"
)

// # Configuration Schema

// Config holds all runtime configuration for the API server and comicctl.
type Config struct {

	// Server settings
	ServerPort     string   `env:"SERVER_PORT"     envDefault:"8080"`
	Environment    string   `env:"ENVIRONMENT"     envDefault:"development"`
	Debug          bool     `env:"DEBUG"           envDefault:"false"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"150"`

	// Document store
	StoreDriver   string `env:"STORE_DRIVER"   envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	SQLitePath    string `env:"SQLITE_PATH"    envDefault:"./data/comics.db"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Postgres pool sizing. comicctl overrides MaxConns for one-shot commands.
	DBMaxConns         int32         `env:"DB_MAX_CONNS"         envDefault:"20"`
	DBMinConns         int32         `env:"DB_MIN_CONNS"         envDefault:"2"`
	DBStatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"30s"`
	DBApplicationName  string        `env:"DB_APPLICATION_NAME"  envDefault:"yomira-publish"`

	// Key-Value Cache (Redis)
	RedisURL      string        `env:"REDIS_URL"`
	ComicCacheTTL time.Duration `env:"COMIC_CACHE_TTL" envDefault:"5m"`
	ProgressTTL   time.Duration `env:"PROGRESS_TTL"    envDefault:"1h"`

	// RS256 keys. The server only needs the public key.
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH"`

	// Asset provider
	AssetProvider   string `env:"ASSET_PROVIDER"    envDefault:"cloudinary"`
	AssetRootFolder string `env:"ASSET_ROOT_FOLDER" envDefault:"comics"`

	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	OSSEndpoint        string `env:"OSS_ENDPOINT"`
	OSSAccessKeyID     string `env:"OSS_ACCESS_KEY_ID"`
	OSSAccessKeySecret string `env:"OSS_ACCESS_KEY_SECRET"`
	OSSBucket          string `env:"OSS_BUCKET"`
	OSSPublicBaseURL   string `env:"OSS_PUBLIC_BASE_URL"`

	// Chapter pipeline tuning
	UploadConcurrency  int           `env:"UPLOAD_CONCURRENCY"   envDefault:"6"`
	UploadMaxFiles     int           `env:"UPLOAD_MAX_FILES"     envDefault:"300"`
	UploadMaxBytes     int64         `env:"UPLOAD_MAX_BYTES"     envDefault:"524288000"`
	DeleteBatchSize    int           `env:"DELETE_BATCH_SIZE"    envDefault:"100"`
	DeleteMaxAttempts  int           `env:"DELETE_MAX_ATTEMPTS"  envDefault:"3"`
	DeleteRetryBackoff time.Duration `env:"DELETE_RETRY_BACKOFF" envDefault:"1s"`
}

// # Configuration Loading

// Load reads an optional .env file, then parses environment variables into a [Config].
func Load() (*Config, error) {

	// Variables already present in the environment win over the file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks settings that every entry point depends on.
func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres store")
		}
	case StoreDriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("config: SQLITE_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AssetProvider {
	case AssetProviderCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return errors.New("config: CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
		}
	case AssetProviderOSS:
		if c.OSSEndpoint == "" || c.OSSBucket == "" || c.OSSPublicBaseURL == "" {
			return errors.New("config: OSS_ENDPOINT, OSS_BUCKET and OSS_PUBLIC_BASE_URL are required")
		}
	default:
		return fmt.Errorf("config: unknown ASSET_PROVIDER %q", c.AssetProvider)
	}

	if c.UploadConcurrency < 1 {
		return errors.New("config: UPLOAD_CONCURRENCY must be at least 1")
	}

	if c.DBMinConns < 0 || c.DBMaxConns < 1 || c.DBMinConns > c.DBMaxConns {
		return errors.New("config: DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
	}

	if c.ComicCacheTTL < time.Millisecond || c.ProgressTTL < time.Millisecond {
		return errors.New("config: COMIC_CACHE_TTL and PROGRESS_TTL must be at least 1ms")
	}

	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	var missing []string
	if c.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if c.JWTPubKeyPath == "" {
		missing = append(missing, "JWT_PUBLIC_KEY_PATH")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required server settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsOriginAllowed reports whether a browser origin may call the API.
func (c *Config) IsOriginAllowed(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return false
}
