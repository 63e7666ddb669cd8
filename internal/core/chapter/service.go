// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter runs the chapter upload and delete pipelines.

A chapter lives in two places: its page images on the external asset host,
and its ordered page URLs under chapters.Chapter<N> in the comic document.
The pipelines keep the two consistent under partial failure:

  - Upload transfers pages concurrently, drops the ones that fail, and commits
    the survivors with one atomic field set.
  - Delete purges assets in retried batches, sweeps the chapter folder when the
    purge was incomplete, and then removes the chapter with one atomic unset.

Both mutations are compare-and-swap on the comic version read at the start of
the run. When another writer got in first, the comic is reloaded and the write
is retried at the new version as long as the target chapter itself is as the
run found it. Only a concurrent change to the same chapter surfaces as CONFLICT.
*/
package chapter

import (
	"context"
	"log/slog"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/assetstore"
	"github.com/taibuivan/yomira-publish/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-publish/internal/platform/progress"
)

// Pipeline stages and their share of the 0–100 range.
var (
	StageLookup   = progress.Stage{Name: "lookup", From: 0, To: 10}
	StageTransfer = progress.Stage{Name: "transfer", From: 10, To: 95}
	StageCommit   = progress.Stage{Name: "commit", From: 95, To: progress.Complete}

	StagePurge        = progress.Stage{Name: "purge", From: 10, To: 90}
	StageDeleteCommit = progress.Stage{Name: "commit", From: 90, To: progress.Complete}
)

// DefaultConcurrency is the number of parallel page transfers when none is configured.
const DefaultConcurrency = 6

// AssetStore is the part of [assetstore.Client] the pipelines use.
type AssetStore interface {
	UploadAsset(ctx context.Context, upload assetstore.Upload) (string, error)
	DeleteAssetsByIDs(ctx context.Context, ids []string, onBatch assetstore.BatchFunc) (assetstore.DeleteReport, error)
	DeleteAssetsByPrefix(ctx context.Context, prefix string) (assetstore.PrefixReport, error)
	PublicID(url string) (string, bool)
}

// # Service Layer

// Service orchestrates chapter uploads and deletions.
type Service struct {
	store       comic.DocumentStore
	assets      AssetStore
	concurrency int
	logger      *slog.Logger
}

// NewService constructs a new [Service].
//
// concurrency bounds parallel page transfers; values below 1 use [DefaultConcurrency].
func NewService(store comic.DocumentStore, assets AssetStore, concurrency int, logger *slog.Logger) *Service {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		store:       store,
		assets:      assets,
		concurrency: concurrency,
		logger:      logger,
	}
}

// log tags records with the operation id carried by context, if any.
func (service *Service) log(context context.Context) *slog.Logger {
	if operationID := ctxutil.GetOperationID(context); operationID != "" {
		return service.logger.With(slog.String("operation_id", operationID))
	}
	return service.logger
}
