// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/core/chapter"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/mocks"
	"github.com/taibuivan/yomira-publish/internal/platform/assetstore"
	"github.com/taibuivan/yomira-publish/internal/platform/progress"
	"github.com/taibuivan/yomira-publish/internal/platform/sqlite"
)

const cdnBase = "https://res.cloudinary.com/demo/image/upload/v1700000000/"

// fixture wires the real pipeline on a temporary SQLite store and a mocked provider.
type fixture struct {
	store    comic.DocumentStore
	provider *mocks.MockProvider
	service  *chapter.Service

	// logs holds the service's JSON records.
	logs *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "comics.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := comic.NewSQLiteStore(ctx, db)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().Name().Return("mock").AnyTimes()

	client := assetstore.NewClient(provider, assetstore.Options{
		RootFolder:   "comics",
		RetryBackoff: time.Millisecond,
	}, logger)

	logs := &bytes.Buffer{}
	serviceLogger := slog.New(slog.NewJSONHandler(logs, nil))

	return &fixture{
		store:    store,
		provider: provider,
		service:  chapter.NewService(store, client, 4, serviceLogger),
		logs:     logs,
	}
}

// acceptUploads makes the provider fail every file whose name contains "bad".
func (f *fixture) acceptUploads() {
	f.provider.EXPECT().Upload(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(_ context.Context, upload assetstore.Upload) (assetstore.UploadResult, error) {
			if strings.Contains(upload.FileName, "bad") {
				return assetstore.UploadResult{}, errors.New("rejected by provider")
			}
			publicID := upload.Folder + "/" + upload.PublicID
			return assetstore.UploadResult{SecureURL: cdnBase + publicID + ".png", PublicID: publicID}, nil
		})
}

func (f *fixture) parseURLs() {
	f.provider.EXPECT().PublicID(gomock.Any()).AnyTimes().DoAndReturn(assetstore.ParseVersionedPublicID)
}

// seedChapter stores a comic with one chapter of n pages.
func (f *fixture) seedChapter(t *testing.T, title, key string, n int) *comic.Comic {
	t.Helper()
	ctx := context.Background()

	_, err := f.store.EnsureByTitle(ctx, comic.NewPlaceholder(title, nil))
	require.NoError(t, err)

	pages := make([]string, n)
	for i := range pages {
		pages[i] = fmt.Sprintf("%scomics/%s/%s/%d-p.png", cdnBase, title, key, i)
	}

	stored, err := f.store.UpdateField(ctx, title, comic.ChapterPath(key), comic.NewChapter(pages), comic.AnyVersion)
	require.NoError(t, err)
	return stored
}

func pages(names ...string) []chapter.PageFile {
	out := make([]chapter.PageFile, len(names))
	for i, name := range names {
		out[i] = chapter.PageFile{
			Name:        name,
			ContentType: "image/png",
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(name)), nil
			},
		}
	}
	return out
}

// recorder collects snapshots from concurrent reporters.
type recorder struct {
	mu        sync.Mutex
	snapshots []progress.Snapshot
}

func (r *recorder) sink() progress.Func {
	return func(snapshot progress.Snapshot) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.snapshots = append(r.snapshots, snapshot)
	}
}

func (r *recorder) percents() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int, len(r.snapshots))
	for i, snapshot := range r.snapshots {
		out[i] = snapshot.Percent
	}
	return out
}
