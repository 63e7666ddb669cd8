// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/platform/config"
)

func setCloudinary(t *testing.T) {
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")
}

/*
TestLoad_Defaults verifies the pipeline defaults applied when only the
mandatory settings are present.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	setCloudinary(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "comics", cfg.AssetRootFolder)
	assert.Equal(t, 100, cfg.DeleteBatchSize)
	assert.Equal(t, 3, cfg.DeleteMaxAttempts)
	assert.Equal(t, time.Second, cfg.DeleteRetryBackoff)
	assert.Equal(t, int32(20), cfg.DBMaxConns)
	assert.Equal(t, 30*time.Second, cfg.DBStatementTimeout)
	assert.InDelta(t, 100.0, cfg.RateLimitRPS, 0)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_Rejects covers store and provider settings that must fail fast.
*/
func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres_without_dsn", map[string]string{"STORE_DRIVER": "postgres", "DATABASE_URL": ""}},
		{"unknown_driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"unknown_provider", map[string]string{"STORE_DRIVER": "sqlite", "ASSET_PROVIDER": "s3"}},
		{"oss_without_bucket", map[string]string{"STORE_DRIVER": "sqlite", "ASSET_PROVIDER": "oss", "OSS_ENDPOINT": "oss-cn-hangzhou.aliyuncs.com"}},
		{"zero_concurrency", map[string]string{"STORE_DRIVER": "sqlite", "UPLOAD_CONCURRENCY": "0"}},
		{"zero_cache_ttl", map[string]string{"STORE_DRIVER": "sqlite", "COMIC_CACHE_TTL": "0s"}},
		{"min_conns_above_max", map[string]string{"STORE_DRIVER": "sqlite", "DB_MAX_CONNS": "2", "DB_MIN_CONNS": "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setCloudinary(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

/*
TestValidateServer ensures the server-only settings are reported together.
*/
func TestValidateServer(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.ValidateServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
	assert.Contains(t, err.Error(), "JWT_PUBLIC_KEY_PATH")

	cfg.RedisURL = "redis://localhost:6379/0"
	cfg.JWTPubKeyPath = "/keys/public.pem"
	assert.NoError(t, cfg.ValidateServer())
}

func TestIsOriginAllowed(t *testing.T) {
	cfg := &config.Config{AllowedOrigins: []string{"https://read.yomira.app", " https://studio.yomira.app"}}

	assert.True(t, cfg.IsOriginAllowed("https://studio.yomira.app"))
	assert.False(t, cfg.IsOriginAllowed("https://evil.example"))
}
