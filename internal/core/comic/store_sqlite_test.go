// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/sqlite"
)

func newSQLiteStore(t *testing.T) comic.DocumentStore {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "comics.db"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := comic.NewSQLiteStore(ctx, db)
	require.NoError(t, err)
	return store
}

func TestSQLiteStore_EnsureByTitleIsIdempotent(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	first, err := store.EnsureByTitle(ctx, comic.NewPlaceholder("A", []string{"Action"}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)

	second, err := store.EnsureByTitle(ctx, comic.NewPlaceholder("A", []string{"Drama"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Action"}, second.Genres)
	assert.Equal(t, first.Version, second.Version)
}

func TestSQLiteStore_FindByTitleMissing(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.FindByTitle(context.Background(), "Nope")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestSQLiteStore_UpdateFieldCompareAndSwap(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	seeded, err := store.EnsureByTitle(ctx, comic.NewPlaceholder("A", nil))
	require.NoError(t, err)

	updated, err := store.UpdateField(ctx, "A", comic.ChapterPath("Chapter1"), comic.NewChapter([]string{"https://cdn.test/1.png"}), seeded.Version)
	require.NoError(t, err)
	assert.Equal(t, seeded.Version+1, updated.Version)
	assert.Equal(t, []string{"https://cdn.test/1.png"}, updated.Chapters["Chapter1"].Pages)
	assert.Empty(t, updated.Chapters["Chapter1"].Comments)

	// Stale version
	_, err = store.UpdateField(ctx, "A", comic.ChapterPath("Chapter2"), comic.NewChapter(nil), seeded.Version)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	// Missing document with a version check
	_, err = store.UpdateField(ctx, "B", comic.ChapterPath("Chapter1"), comic.NewChapter(nil), 3)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	// AnyVersion skips the check
	_, err = store.UpdateField(ctx, "A", comic.ChapterPath("Chapter2"), comic.NewChapter(nil), comic.AnyVersion)
	require.NoError(t, err)
}

func TestSQLiteStore_UnsetFieldKeepsSiblings(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	_, err := store.EnsureByTitle(ctx, comic.NewPlaceholder("A", nil))
	require.NoError(t, err)
	for _, key := range []string{"Chapter1", "Chapter2"} {
		_, err = store.UpdateField(ctx, "A", comic.ChapterPath(key), comic.NewChapter([]string{"https://cdn.test/" + key}), comic.AnyVersion)
		require.NoError(t, err)
	}

	updated, err := store.UnsetField(ctx, "A", comic.ChapterPath("Chapter1"), comic.AnyVersion)
	require.NoError(t, err)
	assert.False(t, updated.HasChapter("Chapter1"))
	assert.True(t, updated.HasChapter("Chapter2"))

	// Removing an absent path succeeds
	_, err = store.UnsetField(ctx, "A", comic.ChapterPath("Chapter1"), comic.AnyVersion)
	assert.NoError(t, err)

	_, err = store.UnsetField(ctx, "A", comic.ChapterPath("Chapter2"), 1)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

func TestSQLiteStore_PushAndPull(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	seeded, err := store.EnsureByTitle(ctx, comic.NewPlaceholder("A", nil))
	require.NoError(t, err)

	_, err = store.PushField(ctx, "A", comic.FieldPath{comic.FieldRatings}, 4)
	require.NoError(t, err)

	comments := comic.FieldPath{comic.FieldComments}
	_, err = store.PushField(ctx, "A", comments, comic.Comment{ID: "c1", Text: "hi", UserID: "u1"})
	require.NoError(t, err)
	_, err = store.PushField(ctx, "A", comments, comic.Comment{ID: "c2", Text: "hi", UserID: "u2"})
	require.NoError(t, err)
	pushed, err := store.PushField(ctx, "A", comments, comic.Comment{Text: "legacy", UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, []int{4}, pushed.Ratings)
	assert.Len(t, pushed.Comments, 3)
	assert.Equal(t, seeded.Version, pushed.Version)

	pulled, err := store.PullMatching(ctx, "A", comments, map[string]string{comic.FieldText: "hi", comic.FieldUserID: "u1"})
	require.NoError(t, err)
	require.Len(t, pulled.Comments, 2)
	assert.Equal(t, "c2", pulled.Comments[0].ID)

	pulled, err = store.PullMatching(ctx, "A", comments, map[string]string{comic.FieldCommentID: "c2"})
	require.NoError(t, err)
	require.Len(t, pulled.Comments, 1)
	assert.Equal(t, "legacy", pulled.Comments[0].Text)

	// Nothing matches
	pulled, err = store.PullMatching(ctx, "A", comments, map[string]string{comic.FieldCommentID: "zzz"})
	require.NoError(t, err)
	assert.Len(t, pulled.Comments, 1)

	_, err = store.PushField(ctx, "B", comments, comic.Comment{Text: "x"})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestSQLiteStore_UpsertPreservesReaderData(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	_, err := store.EnsureByTitle(ctx, comic.NewPlaceholder("A", []string{"Action"}))
	require.NoError(t, err)
	_, err = store.UpdateField(ctx, "A", comic.ChapterPath("Chapter1"), comic.NewChapter([]string{"https://cdn.test/1"}), comic.AnyVersion)
	require.NoError(t, err)
	_, err = store.PushField(ctx, "A", comic.FieldPath{comic.FieldRatings}, 5)
	require.NoError(t, err)

	updated, err := store.UpsertByTitle(ctx, &comic.Comic{
		Title:       "A",
		Info:        "Real info",
		Description: "Real description",
		Img:         "https://cdn.test/cover.png",
		Genres:      []string{"Drama", "Romance"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Real info", updated.Info)
	assert.Equal(t, []string{"Drama", "Romance"}, updated.Genres)
	assert.True(t, updated.HasChapter("Chapter1"))
	assert.Equal(t, []int{5}, updated.Ratings)

	created, err := store.UpsertByTitle(ctx, &comic.Comic{Title: "New"})
	require.NoError(t, err)
	assert.NotNil(t, created.Chapters)
	assert.Equal(t, int64(1), created.Version)
}

func TestSQLiteStore_List(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	for _, seed := range []struct {
		title  string
		genres []string
	}{
		{"Solo Leveling", []string{"Action"}},
		{"Omniscient Reader", []string{"Action", "Fantasy"}},
		{"Lore Olympus", []string{"Romance"}},
	} {
		_, err := store.EnsureByTitle(ctx, comic.NewPlaceholder(seed.title, seed.genres))
		require.NoError(t, err)
	}

	all, total, err := store.List(ctx, comic.Filter{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 2)
	assert.Equal(t, "Lore Olympus", all[0].Title)

	action, total, err := store.List(ctx, comic.Filter{Genre: "Action"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, action, 2)

	found, total, err := store.List(ctx, comic.Filter{Query: "LEVEL"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Solo Leveling", found[0].Title)
}

func TestSQLiteStore_RejectsBadPaths(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	_, err := store.EnsureByTitle(ctx, comic.NewPlaceholder("A", nil))
	require.NoError(t, err)

	for _, path := range []comic.FieldPath{nil, {comic.FieldTitle}, {comic.FieldChapters, ""}, {comic.FieldChapters, `Chapter"1`}} {
		_, err := store.UpdateField(ctx, "A", path, "x", comic.AnyVersion)
		assert.Error(t, err, path.String())
	}
}

// TestSQLiteStore_ConcurrentChapterWrites exercises the per-chapter atomicity:
// concurrent uploads of different chapters must all survive.
func TestSQLiteStore_ConcurrentChapterWrites(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	_, err := store.EnsureByTitle(ctx, comic.NewPlaceholder("A", nil))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for number := 1; number <= 8; number++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.UpdateField(ctx, "A", comic.ChapterPath(comic.ChapterKey(number)), comic.NewChapter([]string{"https://cdn.test/p"}), comic.AnyVersion)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := store.FindByTitle(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, stored.Chapters, 8)
	assert.Equal(t, int64(9), stored.Version)
}
