// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/mocks"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/assetstore"
	"github.com/taibuivan/yomira-publish/internal/platform/sec"
)

var (
	reader    = comic.Author{UserID: "u1", UserName: "mika", Role: sec.RoleMember}
	stranger  = comic.Author{UserID: "u2", UserName: "ren", Role: sec.RoleMember}
	moderator = comic.Author{UserID: "m1", UserName: "mod", Role: sec.RoleModerator}
)

func newService(t *testing.T) (*comic.Service, comic.DocumentStore) {
	t.Helper()
	store := newSQLiteStore(t)
	return comic.NewService(store, nil, slog.New(slog.DiscardHandler)), store
}

func seedWithChapter(t *testing.T, store comic.DocumentStore) {
	t.Helper()
	ctx := context.Background()
	_, err := store.EnsureByTitle(ctx, comic.NewPlaceholder("A", nil))
	require.NoError(t, err)
	_, err = store.UpdateField(ctx, "A", comic.ChapterPath("Chapter1"), comic.NewChapter([]string{"https://cdn.test/1"}), comic.AnyVersion)
	require.NoError(t, err)
}

// # Comments

func TestService_ChapterCommentLifecycle(t *testing.T) {
	service, store := newService(t)
	seedWithChapter(t, store)
	ctx := context.Background()

	comment, err := service.AddComment(ctx, "A", "Chapter1", reader, "  great chapter ")
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, "great chapter", comment.Text)
	assert.Equal(t, "mika", comment.UserName)
	assert.False(t, comment.Timestamp.IsZero())

	_, err = service.RemoveComment(ctx, "A", "Chapter1", comment.ID, stranger)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	updated, err := service.RemoveComment(ctx, "A", "Chapter1", comment.ID, reader)
	require.NoError(t, err)
	assert.Empty(t, updated.Chapters["Chapter1"].Comments)

	_, err = service.RemoveComment(ctx, "A", "Chapter1", comment.ID, reader)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestService_ModeratorRemovesAnyComment(t *testing.T) {
	service, store := newService(t)
	seedWithChapter(t, store)
	ctx := context.Background()

	comment, err := service.AddComment(ctx, "A", "", reader, "hello")
	require.NoError(t, err)

	updated, err := service.RemoveComment(ctx, "A", "", comment.ID, moderator)
	require.NoError(t, err)
	assert.Empty(t, updated.Comments)
}

func TestService_AddCommentToMissingChapter(t *testing.T) {
	service, store := newService(t)
	seedWithChapter(t, store)

	_, err := service.AddComment(context.Background(), "A", "Chapter9", reader, "hello")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestService_AddCommentValidation(t *testing.T) {
	service, store := newService(t)
	seedWithChapter(t, store)
	ctx := context.Background()

	_, err := service.AddComment(ctx, "A", "", reader, "   ")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.AddComment(ctx, "A", "", reader, strings.Repeat("x", comic.MaxCommentLength+1))
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.AddComment(ctx, "A", "", comic.Author{}, "hello")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestService_RemoveCommentByContent covers comments stored without an id: only
the caller's comments with the exact text are removed.
*/
func TestService_RemoveCommentByContent(t *testing.T) {
	service, store := newService(t)
	seedWithChapter(t, store)
	ctx := context.Background()

	path := comic.ChapterCommentsPath("Chapter1")
	for _, legacy := range []comic.Comment{
		{Text: "old", UserID: "u1"},
		{Text: "old", UserID: "u2"},
		{Text: "other", UserID: "u1"},
	} {
		_, err := store.PushField(ctx, "A", path, legacy)
		require.NoError(t, err)
	}

	updated, err := service.RemoveCommentByContent(ctx, "A", "Chapter1", "old", reader)
	require.NoError(t, err)

	remaining := updated.Chapters["Chapter1"].Comments
	require.Len(t, remaining, 2)
	assert.Equal(t, "u2", remaining[0].UserID)
	assert.Equal(t, "other", remaining[1].Text)
}

// # Ratings & Catalogue

func TestService_AddRating(t *testing.T) {
	service, store := newService(t)
	seedWithChapter(t, store)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := service.AddRating(ctx, "A", rating)
		assert.True(t, apperr.HasCode(err, apperr.CodeValidation), rating)
	}

	updated, err := service.AddRating(ctx, "A", 5)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, updated.Ratings)

	_, err = service.AddRating(ctx, "Missing", 3)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestService_SaveComicKeepsChapters(t *testing.T) {
	service, store := newService(t)
	seedWithChapter(t, store)

	saved, err := service.SaveComic(context.Background(), &comic.Comic{
		Title:    " A ",
		Info:     "Updated",
		Chapters: map[string]comic.Chapter{"Chapter99": comic.NewChapter(nil)},
	})
	require.NoError(t, err)

	assert.Equal(t, "Updated", saved.Info)
	assert.True(t, saved.HasChapter("Chapter1"))
	assert.False(t, saved.HasChapter("Chapter99"))
}

func TestService_SaveComicValidation(t *testing.T) {
	service, _ := newService(t)

	tests := []struct {
		name  string
		input comic.Comic
	}{
		{"empty_title", comic.Comic{Title: " "}},
		{"long_title", comic.Comic{Title: strings.Repeat("t", comic.MaxTitleLength+1)}},
		{"plain_http_img", comic.Comic{Title: "A", Img: "http://cdn.test/a.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := service.SaveComic(context.Background(), &input)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}
}

func TestService_ListChaptersReportsInvalidKeys(t *testing.T) {
	service, store := newService(t)
	seedWithChapter(t, store)
	ctx := context.Background()

	_, err := store.UpdateField(ctx, "A", comic.ChapterPath("Extra"), comic.NewChapter(nil), comic.AnyVersion)
	require.NoError(t, err)
	_, err = store.UpdateField(ctx, "A", comic.ChapterPath("Chapter10"), comic.NewChapter(nil), comic.AnyVersion)
	require.NoError(t, err)

	listing, err := service.ListChapters(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"Chapter1", "Chapter10"}, listing.Keys)
	assert.Equal(t, []string{"Extra"}, listing.Invalid)
}

// # Covers

func TestService_SetCover(t *testing.T) {
	store := newSQLiteStore(t)
	seedWithChapter(t, store)

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().Name().Return("mock").AnyTimes()
	provider.EXPECT().Upload(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, upload assetstore.Upload) (assetstore.UploadResult, error) {
			assert.Equal(t, "comics/A", upload.Folder)
			assert.Equal(t, comic.CoverPublicID, upload.PublicID)
			return assetstore.UploadResult{SecureURL: "https://cdn.test/v1/comics/A/cover.png"}, nil
		})

	logger := slog.New(slog.DiscardHandler)
	client := assetstore.NewClient(provider, assetstore.Options{RootFolder: "comics"}, logger)
	service := comic.NewService(store, client, logger)

	updated, err := service.SetCover(context.Background(), "A", comic.CoverFile{
		Name:        "cover.png",
		ContentType: "image/png",
		Body:        strings.NewReader("png"),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.test/v1/comics/A/cover.png", updated.Img)
	assert.Equal(t, comic.PlaceholderInfo, updated.Info)
	assert.True(t, updated.HasChapter("Chapter1"))
}

func TestService_SetCoverWithoutAssetStore(t *testing.T) {
	service, store := newService(t)
	seedWithChapter(t, store)

	_, err := service.SetCover(context.Background(), "A", comic.CoverFile{Name: "c.png", Body: strings.NewReader("x")})
	assert.True(t, apperr.HasCode(err, apperr.CodeBackendUnavailable))
}

// # Store failures

func TestService_PropagatesStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDocumentStore(ctrl)
	service := comic.NewService(store, nil, slog.New(slog.DiscardHandler))

	unavailable := apperr.BackendUnavailable("Document store", errors.New("connection refused"))
	store.EXPECT().FindByTitle(gomock.Any(), "A").Return(nil, unavailable).Times(2)

	_, err := service.GetComic(context.Background(), "A")
	assert.True(t, apperr.HasCode(err, apperr.CodeBackendUnavailable))

	_, err = service.AddComment(context.Background(), "A", "Chapter1", reader, "hi")
	assert.True(t, apperr.HasCode(err, apperr.CodeBackendUnavailable))
}
