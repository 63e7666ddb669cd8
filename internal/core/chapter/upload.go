// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	stdctx "context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/gammazero/workerpool"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/assetstore"
	"github.com/taibuivan/yomira-publish/internal/platform/progress"
	"github.com/taibuivan/yomira-publish/internal/platform/validate"
)

// Input field names used in validation errors.
const (
	FieldComicTitle    = "comicTitle"
	FieldChapterNumber = "chapterNumber"
	FieldChapterKey    = "chapterKey"
	FieldFiles         = "files"
	FieldPages         = "pages"
)

// UploadRequest is one chapter upload.
type UploadRequest struct {
	ComicTitle    string
	ChapterNumber int
	Files         []PageFile
	// Genres seed a comic created by this upload. Ignored for existing comics.
	Genres []string
}

// UploadResult reports a committed upload.
type UploadResult struct {
	Comic      *comic.Comic `json:"comic"`
	ChapterKey string       `json:"chapterKey"`
	Pages      int          `json:"pages"`
	// Skipped lists the files that failed to transfer and were left out.
	Skipped []string `json:"skipped"`
}

/*
UploadChapter transfers the pages of one chapter and commits them.

Description: The comic is created with placeholder metadata if it does not
exist yet. Pages are ordered by [OrderPages] and transferred concurrently; a
page that fails is skipped. The chapter is then set in one atomic update that
replaces any previous version of it, comments included.

Cancelling the context stops pages that have not started yet; transfers
already in flight complete, and nothing is committed.

Parameters:
  - context: context.Context
  - input: UploadRequest
  - report: progress.Func (may be nil)

Returns:
  - *UploadResult: The committed document and skipped files
  - error: VALIDATION_ERROR, NO_VALID_ASSETS, CONFLICT, CANCELED or BACKEND_UNAVAILABLE
*/
func (service *Service) UploadChapter(context stdctx.Context, input UploadRequest, report progress.Func) (*UploadResult, error) {
	input.ComicTitle = strings.TrimSpace(input.ComicTitle)

	validator := &validate.Validator{}
	validator.Required(FieldComicTitle, input.ComicTitle)
	validator.MaxLen(FieldComicTitle, input.ComicTitle, comic.MaxTitleLength)
	validator.Custom(FieldChapterNumber, input.ChapterNumber < 1, "Must be a positive integer")
	validator.Custom(FieldFiles, len(input.Files) == 0, "At least one page is required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	report = progress.Monotonic(report)
	report.Report(StageLookup.Begin())

	// 1. Find or create the comic
	if err := context.Err(); err != nil {
		return nil, apperr.Canceled(err)
	}

	existing, err := service.ensureComic(context, input.ComicTitle, input.Genres)
	if err != nil {
		return nil, err
	}
	report.Report(StageLookup.End())

	// 2. Order and transfer pages
	chapterKey := comic.ChapterKey(input.ChapterNumber)
	folder := assetstore.FolderPath(input.ComicTitle, chapterKey)
	ordered := OrderPages(input.Files)

	urls, skipped := service.transfer(context, folder, ordered, report)

	if err := context.Err(); err != nil {
		service.log(context).Warn("chapter_upload_canceled",
			slog.String("title", input.ComicTitle),
			slog.String("chapter", chapterKey),
			slog.Int("orphaned", len(urls)),
		)
		return nil, apperr.Canceled(err)
	}

	if len(urls) == 0 {
		return nil, apperr.NoValidAssets(fmt.Errorf("all %d pages failed to upload", len(ordered)))
	}

	// 3. Commit the chapter
	report.Report(StageCommit.Begin())

	detached := stdctx.WithoutCancel(context)
	before := stateOf(existing, chapterKey)

	updated, err := service.rebase(detached, input.ComicTitle, existing.Version, before.unchangedIn,
		func(version int64) (*comic.Comic, error) {
			return service.store.UpdateField(detached, input.ComicTitle, comic.ChapterPath(chapterKey), comic.NewChapter(urls), version)
		},
	)
	if err != nil {
		service.log(context).Error("chapter_commit_failed",
			slog.String("title", input.ComicTitle),
			slog.String("chapter", chapterKey),
			slog.Int("orphaned", len(urls)),
			slog.Any("error", err),
		)
		return nil, err
	}

	report.Report(StageCommit.End())

	service.log(context).Info("chapter_uploaded",
		slog.String("title", input.ComicTitle),
		slog.String("chapter", chapterKey),
		slog.Int("pages", len(urls)),
		slog.Int("skipped", len(skipped)),
		slog.Int64("version", updated.Version),
	)

	return &UploadResult{
		Comic:      updated,
		ChapterKey: chapterKey,
		Pages:      len(urls),
		Skipped:    skipped,
	}, nil
}

// ensureComic returns the stored comic, creating a placeholder if it is absent.
func (service *Service) ensureComic(context stdctx.Context, title string, genres []string) (*comic.Comic, error) {
	existing, err := service.store.FindByTitle(context, title)
	if err == nil {
		return existing, nil
	}
	if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	created, err := service.store.EnsureByTitle(context, comic.NewPlaceholder(title, genres))
	if err != nil {
		return nil, err
	}

	service.log(context).Info("comic_created_for_upload", slog.String("title", title))
	return created, nil
}

/*
transfer uploads files concurrently, bounded by the service concurrency.

Returns:
  - []string: URLs of the pages that succeeded, in the order of files
  - []string: Names of the files that failed
*/
func (service *Service) transfer(context stdctx.Context, folder string, files []PageFile, report progress.Func) ([]string, []string) {
	var (
		slots     = make([]string, len(files))
		failedAt  = make([]bool, len(files))
		completed atomic.Int64
	)

	// In-flight transfers are not aborted by cancellation.
	detached := stdctx.WithoutCancel(context)
	pool := workerpool.New(service.concurrency)

	for index, file := range files {
		pool.Submit(func() {
			defer func() {
				done := int(completed.Add(1))
				report.Report(StageTransfer.Snapshot(done, len(files)))
			}()

			if context.Err() != nil {
				return
			}

			url, err := service.uploadPage(detached, folder, index, file)
			if err != nil {
				service.log(context).Warn("page_upload_failed",
					slog.String("folder", folder),
					slog.Int("index", index),
					slog.String("file", file.Name),
					slog.Any("error", err),
				)
				failedAt[index] = true
				return
			}
			slots[index] = url
		})
	}
	pool.StopWait()

	urls := make([]string, 0, len(slots))
	failed := []string{}
	for index, url := range slots {
		switch {
		case url != "":
			urls = append(urls, url)
		case failedAt[index]:
			failed = append(failed, files[index].Name)
		}
	}
	return urls, failed
}

func (service *Service) uploadPage(context stdctx.Context, folder string, index int, file PageFile) (string, error) {
	if file.Open == nil {
		return "", &assetstore.UploadError{FileName: file.Name, Reason: "no content"}
	}

	body, err := file.Open()
	if err != nil {
		return "", &assetstore.UploadError{FileName: file.Name, Reason: "cannot open file", Cause: err}
	}
	defer body.Close()

	url, err := service.assets.UploadAsset(context, assetstore.Upload{
		Body:        body,
		FileName:    file.Name,
		ContentType: file.ContentType,
		Folder:      folder,
		PublicID:    assetstore.ContentID(index, file.Name),
	})
	if err != nil {
		var uploadErr *assetstore.UploadError
		if errors.As(err, &uploadErr) {
			return "", err
		}
		return "", &assetstore.UploadError{FileName: file.Name, Reason: "transfer failed", Cause: err}
	}
	return url, nil
}
