// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter_test

import (
	"context"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/core/chapter"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/assetstore"
	"github.com/taibuivan/yomira-publish/internal/platform/progress"
)

/*
TestUploadChapter_SkipsFailedPage uploads three pages of which one is rejected:
the chapter is committed with the two survivors in reading order.
*/
func TestUploadChapter_SkipsFailedPage(t *testing.T) {
	f := newFixture(t)
	f.acceptUploads()

	var rec recorder
	result, err := f.service.UploadChapter(context.Background(), chapter.UploadRequest{
		ComicTitle:    "Solo Leveling",
		ChapterNumber: 1,
		Files:         pages("p3.png", "bad2.png", "p1.png"),
		Genres:        []string{"Action"},
	}, rec.sink())
	require.NoError(t, err)

	assert.Equal(t, "Chapter1", result.ChapterKey)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, []string{"bad2.png"}, result.Skipped)

	stored, err := f.store.FindByTitle(context.Background(), "Solo Leveling")
	require.NoError(t, err)
	assert.Equal(t, []string{
		cdnBase + "comics/Solo Leveling/Chapter1/0-p1.png",
		cdnBase + "comics/Solo Leveling/Chapter1/2-p3.png",
	}, stored.Chapters["Chapter1"].Pages)
	assert.Empty(t, stored.Chapters["Chapter1"].Comments)

	// Created on the fly with placeholders
	assert.Equal(t, comic.PlaceholderInfo, stored.Info)
	assert.Equal(t, comic.PlaceholderImg, stored.Img)
	assert.Equal(t, []string{"Action"}, stored.Genres)

	percents := rec.percents()
	require.NotEmpty(t, percents)
	assert.IsNonDecreasing(t, percents)
	assert.Contains(t, percents, 10)
	assert.Equal(t, progress.Complete, percents[len(percents)-1])
	for _, percent := range percents[:len(percents)-1] {
		assert.Less(t, percent, progress.Complete)
	}
}

/*
TestUploadChapter_AllPagesFail ensures nothing is committed and an existing
chapter keeps its pages.
*/
func TestUploadChapter_AllPagesFail(t *testing.T) {
	f := newFixture(t)
	f.acceptUploads()
	before := f.seedChapter(t, "A", "Chapter1", 3)

	_, err := f.service.UploadChapter(context.Background(), chapter.UploadRequest{
		ComicTitle:    "A",
		ChapterNumber: 1,
		Files:         pages("bad1.png", "bad2.png"),
	}, nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeNoValidAssets))

	after, err := f.store.FindByTitle(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, before.Chapters["Chapter1"].Pages, after.Chapters["Chapter1"].Pages)
	assert.Equal(t, before.Version, after.Version)
}

/*
TestUploadChapter_ReuploadReplaces verifies that a second upload replaces the
pages and drops chapter comments instead of appending.
*/
func TestUploadChapter_ReuploadReplaces(t *testing.T) {
	f := newFixture(t)
	f.acceptUploads()
	ctx := context.Background()

	request := chapter.UploadRequest{ComicTitle: "A", ChapterNumber: 2, Files: pages("1.png", "2.png")}

	_, err := f.service.UploadChapter(ctx, request, nil)
	require.NoError(t, err)

	_, err = f.store.PushField(ctx, "A", comic.ChapterCommentsPath("Chapter2"), comic.Comment{ID: "c1", Text: "nice", UserID: "u1"})
	require.NoError(t, err)

	second, err := f.service.UploadChapter(ctx, request, nil)
	require.NoError(t, err)

	assert.Len(t, second.Comic.Chapters["Chapter2"].Pages, 2)
	assert.Empty(t, second.Comic.Chapters["Chapter2"].Comments)
}

/*
TestUploadChapter_KeepsSiblingChapters ensures a chapter set does not touch
the other chapters of the comic.
*/
func TestUploadChapter_KeepsSiblingChapters(t *testing.T) {
	f := newFixture(t)
	f.acceptUploads()
	f.seedChapter(t, "A", "Chapter1", 2)

	result, err := f.service.UploadChapter(context.Background(), chapter.UploadRequest{
		ComicTitle: "A", ChapterNumber: 2, Files: pages("1.png"),
	}, nil)
	require.NoError(t, err)

	assert.Len(t, result.Comic.Chapters["Chapter1"].Pages, 2)
	assert.Len(t, result.Comic.Chapters["Chapter2"].Pages, 1)
}

/*
TestUploadChapter_SiblingWriteRebases removes another chapter of the same comic
while pages are in flight: the upload still commits on the newer version.
*/
func TestUploadChapter_SiblingWriteRebases(t *testing.T) {
	f := newFixture(t)
	f.seedChapter(t, "A", "Chapter1", 1)

	var once sync.Once
	f.provider.EXPECT().Upload(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(ctx context.Context, upload assetstore.Upload) (assetstore.UploadResult, error) {
			once.Do(func() {
				_, err := f.store.UnsetField(ctx, "A", comic.ChapterPath("Chapter1"), comic.AnyVersion)
				assert.NoError(t, err)
			})
			return assetstore.UploadResult{SecureURL: cdnBase + upload.Folder + "/" + upload.PublicID + ".png"}, nil
		})

	result, err := f.service.UploadChapter(context.Background(), chapter.UploadRequest{
		ComicTitle: "A", ChapterNumber: 3, Files: pages("1.png", "2.png"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pages)

	stored, err := f.store.FindByTitle(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, stored.HasChapter("Chapter3"))
	assert.False(t, stored.HasChapter("Chapter1"))
}

/*
TestUploadChapter_ConflictingWrite simulates another publisher committing the
same chapter while pages are in flight: the upload gives up with CONFLICT and
the other publisher's pages stay.
*/
func TestUploadChapter_ConflictingWrite(t *testing.T) {
	f := newFixture(t)
	f.seedChapter(t, "A", "Chapter1", 1)

	theirs := []string{"https://cdn.test/theirs.png"}

	var once sync.Once
	f.provider.EXPECT().Upload(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(ctx context.Context, upload assetstore.Upload) (assetstore.UploadResult, error) {
			once.Do(func() {
				_, err := f.store.UpdateField(ctx, "A", comic.ChapterPath("Chapter3"), comic.NewChapter(theirs), comic.AnyVersion)
				assert.NoError(t, err)
			})
			return assetstore.UploadResult{SecureURL: cdnBase + upload.Folder + "/" + upload.PublicID + ".png"}, nil
		})

	_, err := f.service.UploadChapter(context.Background(), chapter.UploadRequest{
		ComicTitle: "A", ChapterNumber: 3, Files: pages("1.png", "2.png"),
	}, nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	stored, err := f.store.FindByTitle(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, theirs, stored.Chapters["Chapter3"].Pages)
}

func TestUploadChapter_CanceledBeforeStart(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.UploadChapter(ctx, chapter.UploadRequest{
		ComicTitle: "A", ChapterNumber: 1, Files: pages("1.png"),
	}, nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeCanceled))

	_, err = f.store.FindByTitle(context.Background(), "A")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestUploadChapter_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		request chapter.UploadRequest
	}{
		{"empty_title", chapter.UploadRequest{ComicTitle: "  ", ChapterNumber: 1, Files: pages("1.png")}},
		{"zero_chapter", chapter.UploadRequest{ComicTitle: "A", ChapterNumber: 0, Files: pages("1.png")}},
		{"no_files", chapter.UploadRequest{ComicTitle: "A", ChapterNumber: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.UploadChapter(context.Background(), tt.request, nil)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}
}

func TestCommitChapter(t *testing.T) {
	f := newFixture(t)
	seeded := f.seedChapter(t, "A", "Chapter1", 1)
	ctx := context.Background()

	urls := []string{"https://cdn.test/a.png", "https://cdn.test/b.png"}

	updated, err := f.service.CommitChapter(ctx, "A", 1, urls, seeded.Version)
	require.NoError(t, err)
	assert.Equal(t, urls, updated.Chapters["Chapter1"].Pages)

	_, err = f.service.CommitChapter(ctx, "A", 1, urls, seeded.Version)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	_, err = f.service.CommitChapter(ctx, "A", 1, []string{"http://cdn.test/a.png"}, comic.AnyVersion)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = f.service.CommitChapter(ctx, "Missing", 1, urls, comic.AnyVersion)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
