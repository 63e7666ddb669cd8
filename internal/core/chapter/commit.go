// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/validate"
)

// MaxPages bounds the page list of a chapter committed from URLs.
const MaxPages = 1000

// maxRebaseAttempts bounds how often a pipeline write is retried on a newer version.
const maxRebaseAttempts = 5

/*
CommitChapter sets a chapter from page URLs that are already hosted.

Description: Used to reorder pages or to import a chapter uploaded out of
band. The comic must exist. Like an upload, the chapter is replaced whole and
its comments are discarded.

Parameters:
  - context: context.Context
  - title: string
  - chapterNumber: int
  - pages: []string (https URLs in reading order)
  - expectedVersion: int64 (comic.AnyVersion to skip the check)

Returns:
  - *comic.Comic: The updated document
  - error: VALIDATION_ERROR, NOT_FOUND, CONFLICT
*/
func (service *Service) CommitChapter(context context.Context, title string, chapterNumber int, pages []string, expectedVersion int64) (*comic.Comic, error) {
	title = strings.TrimSpace(title)

	validator := &validate.Validator{}
	validator.Required(FieldComicTitle, title)
	validator.Custom(FieldChapterNumber, chapterNumber < 1, "Must be a positive integer")
	validator.Custom(FieldPages, len(pages) == 0, "At least one page is required")
	validator.Custom(FieldPages, len(pages) > MaxPages, fmt.Sprintf("At most %d pages are allowed", MaxPages))
	for index, page := range pages {
		validator.HTTPSURL(fmt.Sprintf("%s[%d]", FieldPages, index), page)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	chapterKey := comic.ChapterKey(chapterNumber)

	updated, err := service.store.UpdateField(context, title, comic.ChapterPath(chapterKey), comic.NewChapter(pages), expectedVersion)
	if err != nil {
		return nil, err
	}

	service.log(context).Info("chapter_committed",
		slog.String("title", title),
		slog.String("chapter", chapterKey),
		slog.Int("pages", len(pages)),
		slog.Int64("version", updated.Version),
	)
	return updated, nil
}

// # Rebase

// chapterState is what a pipeline saw of its target chapter when the run started.
type chapterState struct {
	key     string
	present bool
	pages   []string
}

func stateOf(document *comic.Comic, key string) chapterState {
	chapter, ok := document.Chapters[key]
	return chapterState{key: key, present: ok, pages: chapter.Pages}
}

// unchangedIn reports whether the chapter still has the state captured at the start.
func (state chapterState) unchangedIn(document *comic.Comic) bool {
	chapter, ok := document.Chapters[state.key]
	if ok != state.present {
		return false
	}
	return !ok || slices.Equal(chapter.Pages, state.pages)
}

/*
rebase runs write at version and, on CONFLICT, retries it at the current
version as long as the target chapter itself was not touched.

Description: The comic version is bumped by any chapter mutation. A pipeline
only cares about its own chapter, so a sibling chapter committed while pages
were transferring or purging must not fail the run. The write is given up
with CONFLICT once accept rejects the reloaded document.

Parameters:
  - context: context.Context
  - title: string
  - version: int64 (read at the start of the run)
  - accept: func(*comic.Comic) bool (false when the target chapter changed)
  - write: func(int64) (*comic.Comic, error)

Returns:
  - *comic.Comic: The updated document
  - error: CONFLICT, NOT_FOUND or the store error
*/
func (service *Service) rebase(context context.Context, title string, version int64, accept func(*comic.Comic) bool, write func(int64) (*comic.Comic, error)) (*comic.Comic, error) {
	var err error

	for attempt := 1; attempt <= maxRebaseAttempts; attempt++ {
		var updated *comic.Comic
		updated, err = write(version)
		if !apperr.HasCode(err, apperr.CodeConflict) {
			return updated, err
		}

		current, findErr := service.store.FindByTitle(context, title)
		if findErr != nil {
			return nil, findErr
		}
		if !accept(current) {
			return nil, err
		}

		service.log(context).Info("chapter_write_rebased",
			slog.String("title", title),
			slog.Int64("from_version", version),
			slog.Int64("to_version", current.Version),
			slog.Int("attempt", attempt),
		)
		version = current.Version
	}

	return nil, err
}
