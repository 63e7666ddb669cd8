// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/taibuivan/yomira-publish/internal/bootstrap"
	"github.com/taibuivan/yomira-publish/internal/core/chapter"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/config"
)

// cliMaxConns caps the postgres pool for one-shot commands.
const cliMaxConns = 4

// commandContext lazily builds what a command needs, so that commands which
// never touch the asset provider do not require it to be reachable.
type commandContext struct {
	verbose *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	store *bootstrap.Store
}

func newCommandContext(verbose *bool) *commandContext {
	return &commandContext{verbose: verbose}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load()
		if c.configErr == nil {
			c.config.DBMaxConns = min(c.config.DBMaxConns, cliMaxConns)
			c.config.DBMinConns = 0
			c.config.DBApplicationName = "comicctl"
		}
	})
	return c.config, c.configErr
}

// log writes text records to stderr so that stdout stays clean for tables.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		level := slog.LevelWarn
		if c.verbose != nil && *c.verbose {
			level = slog.LevelDebug
		}
		c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	})
	return c.logger
}

func (c *commandContext) documents(ctx context.Context) (comic.DocumentStore, error) {
	if c.store != nil {
		return c.store, nil
	}

	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	store, err := bootstrap.OpenStore(ctx, cfg, false, c.log())
	if err != nil {
		return nil, err
	}
	c.store = store
	return store, nil
}

func (c *commandContext) chapterService(ctx context.Context) (*chapter.Service, error) {
	store, err := c.documents(ctx)
	if err != nil {
		return nil, err
	}

	assets, err := bootstrap.NewAssetClient(c.config, c.log())
	if err != nil {
		return nil, err
	}

	return chapter.NewService(store, assets, c.config.UploadConcurrency, c.log()), nil
}

func (c *commandContext) comicService(ctx context.Context) (*comic.Service, error) {
	store, err := c.documents(ctx)
	if err != nil {
		return nil, err
	}
	return comic.NewService(store, nil, c.log()), nil
}

func (c *commandContext) close() {
	if c.store != nil {
		c.store.Close()
		c.store = nil
	}
}
