// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	stdctx "context"
	"log/slog"
	"strings"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/assetstore"
	"github.com/taibuivan/yomira-publish/internal/platform/progress"
	"github.com/taibuivan/yomira-publish/internal/platform/validate"
)

// Cleanup describes what happened to a chapter's assets during deletion.
type Cleanup struct {
	Pages      int `json:"pages"`
	Resolved   int `json:"resolved"`
	Deleted    int `json:"deleted"`
	Unresolved int `json:"unresolved"`
	// PrefixSwept is set when the chapter folder was swept after an incomplete purge.
	PrefixSwept   bool `json:"prefixSwept"`
	PrefixDeleted int  `json:"prefixDeleted"`
	// Complete is false when some assets may have been left on the host.
	Complete bool `json:"complete"`
}

// DeleteResult reports a committed deletion.
type DeleteResult struct {
	Comic      *comic.Comic `json:"comic"`
	ChapterKey string       `json:"chapterKey"`
	Cleanup    Cleanup      `json:"cleanup"`
}

/*
DeleteChapter removes a chapter's assets and then the chapter itself.

Description: Page URLs are resolved to public ids and deleted in retried
batches. If fewer assets were deleted than there are pages, the chapter
folder {title}/{chapterKey} is swept by prefix. The chapter key is unset
afterwards whatever the cleanup outcome; leftover assets are reported in
[Cleanup] and logged. Writes to other chapters during the purge do not stop
the removal.

Cancellation is honoured until the purge starts. From then on the run
completes so that metadata and assets do not diverge.

Parameters:
  - context: context.Context
  - title: string
  - chapterKey: string ("Chapter12", or "12")
  - report: progress.Func (may be nil)

Returns:
  - *DeleteResult: The updated comic and the cleanup summary
  - error: NOT_FOUND (nothing deleted), CONFLICT (chapter re-uploaded during
    the purge), COMMIT_FAILED_AFTER_DELETE, CANCELED
*/
func (service *Service) DeleteChapter(context stdctx.Context, title, chapterKey string, report progress.Func) (*DeleteResult, error) {
	title = strings.TrimSpace(title)

	validator := &validate.Validator{}
	validator.Required(FieldComicTitle, title)
	validator.Required(FieldChapterKey, chapterKey)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	report = progress.Monotonic(report)
	report.Report(StageLookup.Begin())

	// 1. Fetch the comic and the chapter
	if err := context.Err(); err != nil {
		return nil, apperr.Canceled(err)
	}

	existing, err := service.store.FindByTitle(context, title)
	if err != nil {
		return nil, err
	}

	key, ok := resolveChapterKey(existing, chapterKey)
	if !ok {
		return nil, apperr.NotFound("Chapter")
	}
	pages := existing.Chapters[key].Pages

	if err := context.Err(); err != nil {
		return nil, apperr.Canceled(err)
	}
	report.Report(StageLookup.End())

	// 2. Purge assets; the run is no longer cancellable
	detached := stdctx.WithoutCancel(context)
	cleanup := service.purge(detached, title, key, pages, report)
	report.Report(StagePurge.End())

	if !cleanup.Complete {
		service.log(context).Warn("chapter_cleanup_partial",
			slog.String("title", title),
			slog.String("chapter", key),
			slog.Int("pages", cleanup.Pages),
			slog.Int("deleted", cleanup.Deleted),
			slog.Int("unresolved", cleanup.Unresolved),
			slog.Bool("prefix_swept", cleanup.PrefixSwept),
		)
	}

	// 3. Remove the chapter. The assets are gone, so a newer version is only a
	// reason to stop if the chapter was re-uploaded meanwhile.
	purged := stateOf(existing, key)
	updated, err := service.rebase(detached, title, existing.Version,
		func(current *comic.Comic) bool {
			return !current.HasChapter(key) || purged.unchangedIn(current)
		},
		func(version int64) (*comic.Comic, error) {
			return service.store.UnsetField(detached, title, comic.ChapterPath(key), version)
		},
	)
	switch {
	case apperr.HasCode(err, apperr.CodeNotFound):
		service.log(context).Error("chapter_commit_failed_after_delete", slog.String("title", title), slog.String("chapter", key))
		return nil, apperr.CommitFailedAfterDelete()
	case err != nil:
		return nil, err
	case updated == nil:
		return nil, apperr.CommitFailedAfterDelete()
	}

	report.Report(StageDeleteCommit.End())

	service.log(context).Info("chapter_deleted",
		slog.String("title", title),
		slog.String("chapter", key),
		slog.Int("assets_deleted", cleanup.Deleted),
		slog.Bool("cleanup_complete", cleanup.Complete),
		slog.Int64("version", updated.Version),
	)

	return &DeleteResult{Comic: updated, ChapterKey: key, Cleanup: cleanup}, nil
}

// purge deletes the chapter's assets by id, then sweeps the folder if needed.
func (service *Service) purge(context stdctx.Context, title, key string, pages []string, report progress.Func) Cleanup {
	cleanup := Cleanup{Pages: len(pages)}

	ids := make([]string, 0, len(pages))
	for _, url := range pages {
		if id, ok := service.assets.PublicID(url); ok {
			ids = append(ids, id)
			continue
		}
		cleanup.Unresolved++
	}
	cleanup.Resolved = len(ids)

	deleteReport, err := service.assets.DeleteAssetsByIDs(context, ids, func(done, total int) {
		report.Report(StagePurge.Snapshot(done, total))
	})
	if err != nil {
		service.log(context).Warn("chapter_asset_delete_failed",
			slog.String("title", title),
			slog.String("chapter", key),
			slog.Any("error", err),
		)
	}
	cleanup.Deleted = deleteReport.Deleted

	idsComplete := len(ids) > 0 && cleanup.Deleted >= len(ids) && cleanup.Unresolved == 0
	if idsComplete {
		cleanup.Complete = true
		return cleanup
	}

	swept, err := service.assets.DeleteAssetsByPrefix(context, assetstore.FolderPath(title, key))
	cleanup.PrefixSwept = err == nil
	cleanup.PrefixDeleted = swept.Deleted
	cleanup.Complete = err == nil
	return cleanup
}

// resolveChapterKey finds the stored key for input, accepting a bare number.
func resolveChapterKey(document *comic.Comic, input string) (string, bool) {
	if document.HasChapter(input) {
		return input, true
	}

	normalized, err := comic.NormalizeChapterKey(input)
	if err != nil || !document.HasChapter(normalized) {
		return "", false
	}
	return normalized, true
}
