// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assetstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
)

// Deletion defaults.
const (
	DefaultBatchSize    = 100
	DefaultMaxAttempts  = 3
	DefaultRetryBackoff = time.Second
)

// Options tunes a [Client]. Zero fields take the defaults above.
type Options struct {
	// RootFolder is prepended to every folder and prefix (e.g. "comics").
	RootFolder   string
	BatchSize    int
	MaxAttempts  int
	RetryBackoff time.Duration
}

// BatchFunc observes deletion progress: done batches out of total.
type BatchFunc func(done, total int)

// DeleteReport summarises a batched deletion.
type DeleteReport struct {
	Requested int
	Deleted   int
	Batches   int
	FailedIDs []string
}

// Complete reports whether every requested id was deleted.
func (r DeleteReport) Complete() bool {
	return r.Deleted >= r.Requested
}

// PrefixReport summarises a prefix sweep.
type PrefixReport struct {
	Prefix  string
	Deleted int
}

// # Client

// Client is the pipeline-facing asset store.
type Client struct {
	provider Provider
	options  Options
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewClient wraps provider with batching, retries and validation.
func NewClient(provider Provider, options Options, logger *slog.Logger) *Client {
	if options.BatchSize <= 0 {
		options.BatchSize = DefaultBatchSize
	}
	if options.MaxAttempts <= 0 {
		options.MaxAttempts = DefaultMaxAttempts
	}
	if options.RetryBackoff <= 0 {
		options.RetryBackoff = DefaultRetryBackoff
	}

	return &Client{
		provider: provider,
		options:  options,
		logger:   logger.With(slog.String("provider", provider.Name())),
		sleep:    sleepContext,
	}
}

// ProviderName returns the wrapped provider's name.
func (client *Client) ProviderName() string {
	return client.provider.Name()
}

/*
UploadAsset stores one page under {root}/{folder}/{publicID}.

Returns:
  - string: The https delivery URL
  - error: *UploadError if the provider failed or returned no usable URL
*/
func (client *Client) UploadAsset(ctx context.Context, upload Upload) (string, error) {
	upload.Folder = joinRoot(client.options.RootFolder, upload.Folder)

	result, err := client.provider.Upload(ctx, upload)
	if err != nil {
		return "", &UploadError{FileName: upload.FileName, Reason: "provider rejected the file", Cause: err}
	}

	switch {
	case result.SecureURL == "":
		return "", &UploadError{FileName: upload.FileName, Reason: "provider returned no secure URL"}
	case !strings.HasPrefix(result.SecureURL, "https://"):
		return "", &UploadError{FileName: upload.FileName, Reason: "provider returned a non-https URL " + result.SecureURL}
	}

	client.logger.Debug("asset_uploaded",
		slog.String("folder", upload.Folder),
		slog.String("public_id", upload.PublicID),
		slog.String("url", result.SecureURL),
	)
	return result.SecureURL, nil
}

// PublicID resolves a delivery URL back to the provider's public id.
func (client *Client) PublicID(url string) (string, bool) {
	return client.provider.PublicID(url)
}

/*
DeleteAssetsByIDs deletes ids in batches of at most BatchSize.

Description: Each batch is attempted up to MaxAttempts times with RetryBackoff
between attempts. A batch that keeps failing is recorded in FailedIDs and the
next batch proceeds. onBatch, if set, is called after every batch.

Returns:
  - DeleteReport: Counts and the ids that were not confirmed deleted
  - error: BACKEND_UNAVAILABLE only if every batch failed every attempt
*/
func (client *Client) DeleteAssetsByIDs(ctx context.Context, ids []string, onBatch BatchFunc) (DeleteReport, error) {
	report := DeleteReport{Requested: len(ids)}
	if len(ids) == 0 {
		return report, nil
	}

	batches := chunk(ids, client.options.BatchSize)
	report.Batches = len(batches)

	var lastErr error
	failedBatches := 0

	for index, batch := range batches {
		statuses, err := client.deleteBatch(ctx, index, batch)
		if err != nil {
			lastErr = err
			failedBatches++
			report.FailedIDs = append(report.FailedIDs, batch...)
		} else {
			for _, id := range batch {
				if statuses[id] == StatusDeleted {
					report.Deleted++
				} else {
					report.FailedIDs = append(report.FailedIDs, id)
				}
			}
		}

		if onBatch != nil {
			onBatch(index+1, len(batches))
		}
	}

	client.logger.Info("assets_deleted",
		slog.Int("requested", report.Requested),
		slog.Int("deleted", report.Deleted),
		slog.Int("batches", report.Batches),
		slog.Int("failed_batches", failedBatches),
	)

	if failedBatches == len(batches) {
		return report, apperr.BackendUnavailable("Asset store", lastErr)
	}
	return report, nil
}

// deleteBatch runs one batch with retries.
func (client *Client) deleteBatch(ctx context.Context, index int, batch []string) (map[string]string, error) {
	var lastErr error

	for attempt := 1; attempt <= client.options.MaxAttempts; attempt++ {
		statuses, err := client.provider.DeleteResources(ctx, batch)
		if err == nil {
			return statuses, nil
		}
		lastErr = err

		client.logger.Warn("asset_batch_delete_failed",
			slog.Int("batch", index+1),
			slog.Int("attempt", attempt),
			slog.Int("size", len(batch)),
			slog.Any("error", err),
		)

		if attempt < client.options.MaxAttempts {
			if sleepErr := client.sleep(ctx, client.options.RetryBackoff); sleepErr != nil {
				return nil, errors.Join(lastErr, sleepErr)
			}
		}
	}

	return nil, fmt.Errorf("assetstore: batch %d failed after %d attempts: %w", index+1, client.options.MaxAttempts, lastErr)
}

/*
DeleteAssetsByPrefix removes everything under the folder {root}/{prefix}/.

Description: Best effort. Not retried; the outcome is logged and returned.
The prefix always ends in "/" so that sweeping Chapter1 leaves Chapter10 alone.
*/
func (client *Client) DeleteAssetsByPrefix(ctx context.Context, prefix string) (PrefixReport, error) {
	fullPrefix := folderPrefix(joinRoot(client.options.RootFolder, prefix))
	report := PrefixReport{Prefix: fullPrefix}

	deleted, err := client.provider.DeleteResourcesByPrefix(ctx, fullPrefix)
	if err != nil {
		client.logger.Warn("asset_prefix_delete_failed", slog.String("prefix", fullPrefix), slog.Any("error", err))
		return report, fmt.Errorf("assetstore: prefix delete %q: %w", fullPrefix, err)
	}

	report.Deleted = deleted
	client.logger.Info("asset_prefix_deleted", slog.String("prefix", fullPrefix), slog.Int("deleted", deleted))
	return report, nil
}

// Ping checks the provider.
func (client *Client) Ping(ctx context.Context) error {
	return client.provider.Ping(ctx)
}

// # Helpers

func chunk(ids []string, size int) [][]string {
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
