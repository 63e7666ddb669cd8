// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assetstore_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/mocks"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/assetstore"
)

func newClient(t *testing.T) (*assetstore.Client, *mocks.MockProvider) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().Name().Return("mock").AnyTimes()

	client := assetstore.NewClient(provider, assetstore.Options{
		RootFolder:   "comics",
		RetryBackoff: time.Millisecond,
	}, slog.New(slog.DiscardHandler))
	return client, provider
}

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("comics/A/Chapter1/%d-p", i)
	}
	return out
}

func allDeleted(_ context.Context, batch []string) (map[string]string, error) {
	statuses := make(map[string]string, len(batch))
	for _, id := range batch {
		statuses[id] = assetstore.StatusDeleted
	}
	return statuses, nil
}

// # Upload

func TestUploadAsset_JoinsRootFolder(t *testing.T) {
	client, provider := newClient(t)

	provider.EXPECT().Upload(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, upload assetstore.Upload) (assetstore.UploadResult, error) {
			assert.Equal(t, "comics/A/Chapter1", upload.Folder)
			assert.Equal(t, "0-p", upload.PublicID)
			return assetstore.UploadResult{SecureURL: "https://cdn.test/v1/comics/A/Chapter1/0-p.png"}, nil
		})

	url, err := client.UploadAsset(context.Background(), assetstore.Upload{
		Body:     strings.NewReader("png"),
		FileName: "p.png",
		Folder:   "A/Chapter1",
		PublicID: "0-p",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/v1/comics/A/Chapter1/0-p.png", url)
}

func TestUploadAsset_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		result assetstore.UploadResult
		err    error
	}{
		{"provider_error", assetstore.UploadResult{}, errors.New("quota exceeded")},
		{"empty_url", assetstore.UploadResult{}, nil},
		{"plain_http", assetstore.UploadResult{SecureURL: "http://cdn.test/x.png"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, provider := newClient(t)
			provider.EXPECT().Upload(gomock.Any(), gomock.Any()).Return(tt.result, tt.err)

			url, err := client.UploadAsset(context.Background(), assetstore.Upload{FileName: "p.png", Folder: "A/Chapter1"})
			assert.Empty(t, url)

			var uploadErr *assetstore.UploadError
			require.ErrorAs(t, err, &uploadErr)
			assert.Equal(t, "p.png", uploadErr.FileName)
		})
	}
}

// # Batched deletion

func TestDeleteAssetsByIDs_SplitsIntoBatches(t *testing.T) {
	client, provider := newClient(t)

	var sizes []int
	provider.EXPECT().DeleteResources(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
		func(ctx context.Context, batch []string) (map[string]string, error) {
			sizes = append(sizes, len(batch))
			return allDeleted(ctx, batch)
		})

	var seen [][2]int
	report, err := client.DeleteAssetsByIDs(context.Background(), ids(150), func(done, total int) {
		seen = append(seen, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, []int{100, 50}, sizes)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, seen)
	assert.Equal(t, 150, report.Deleted)
	assert.True(t, report.Complete())
	assert.Empty(t, report.FailedIDs)
}

func TestDeleteAssetsByIDs_RetriesThenSucceeds(t *testing.T) {
	client, provider := newClient(t)

	gomock.InOrder(
		provider.EXPECT().DeleteResources(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout")),
		provider.EXPECT().DeleteResources(gomock.Any(), gomock.Any()).DoAndReturn(allDeleted),
	)

	report, err := client.DeleteAssetsByIDs(context.Background(), ids(3), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Deleted)
}

func TestDeleteAssetsByIDs_ExhaustedBatchIsPartial(t *testing.T) {
	client, provider := newClient(t)

	calls := 0
	provider.EXPECT().DeleteResources(gomock.Any(), gomock.Any()).Times(4).DoAndReturn(
		func(ctx context.Context, batch []string) (map[string]string, error) {
			calls++
			if calls == 1 {
				return allDeleted(ctx, batch)
			}
			return nil, errors.New("rate limited")
		})

	report, err := client.DeleteAssetsByIDs(context.Background(), ids(150), nil)
	require.NoError(t, err)

	assert.Equal(t, 100, report.Deleted)
	assert.Len(t, report.FailedIDs, 50)
	assert.False(t, report.Complete())
}

func TestDeleteAssetsByIDs_AllBatchesFailed(t *testing.T) {
	client, provider := newClient(t)
	provider.EXPECT().DeleteResources(gomock.Any(), gomock.Any()).Times(3).Return(nil, errors.New("down"))

	report, err := client.DeleteAssetsByIDs(context.Background(), ids(10), nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeBackendUnavailable))
	assert.Zero(t, report.Deleted)
	assert.Len(t, report.FailedIDs, 10)
}

func TestDeleteAssetsByIDs_NotFoundIsNotDeleted(t *testing.T) {
	client, provider := newClient(t)
	provider.EXPECT().DeleteResources(gomock.Any(), gomock.Any()).Return(map[string]string{
		"a": assetstore.StatusDeleted,
		"b": assetstore.StatusNotFound,
	}, nil)

	report, err := client.DeleteAssetsByIDs(context.Background(), []string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, []string{"b"}, report.FailedIDs)
}

func TestDeleteAssetsByIDs_Empty(t *testing.T) {
	client, _ := newClient(t)

	report, err := client.DeleteAssetsByIDs(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, report.Batches)
}

// # Prefix sweep

func TestDeleteAssetsByPrefix(t *testing.T) {
	client, provider := newClient(t)
	provider.EXPECT().DeleteResourcesByPrefix(gomock.Any(), "comics/A/Chapter1/").Return(7, nil)

	report, err := client.DeleteAssetsByPrefix(context.Background(), assetstore.FolderPath("A", "Chapter1"))
	require.NoError(t, err)
	assert.Equal(t, 7, report.Deleted)
	assert.Equal(t, "comics/A/Chapter1/", report.Prefix)
}

/*
TestDeleteAssetsByPrefix_StaysInsideFolder checks that the swept prefix is a
folder, so Chapter1 never matches the pages of Chapter10 or Chapter100.
*/
func TestDeleteAssetsByPrefix_StaysInsideFolder(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"chapter", assetstore.FolderPath("A", "Chapter1"), "comics/A/Chapter1/"},
		{"trailing_slash", "A/Chapter1/", "comics/A/Chapter1/"},
		{"double_slash", "A/Chapter1//", "comics/A/Chapter1/"},
	}

	siblings := []string{"comics/A/Chapter10/0-p", "comics/A/Chapter100/3-p", "comics/A/Chapter1-extra/0-p"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, provider := newClient(t)

			var sent string
			provider.EXPECT().DeleteResourcesByPrefix(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, prefix string) (int, error) {
					sent = prefix
					return 1, nil
				})

			_, err := client.DeleteAssetsByPrefix(context.Background(), tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sent)

			assert.True(t, strings.HasPrefix("comics/A/Chapter1/0-p", sent))
			for _, sibling := range siblings {
				assert.False(t, strings.HasPrefix(sibling, sent), sibling)
			}
		})
	}
}

func TestDeleteAssetsByPrefix_Error(t *testing.T) {
	client, provider := newClient(t)
	provider.EXPECT().DeleteResourcesByPrefix(gomock.Any(), gomock.Any()).Return(0, errors.New("denied"))

	_, err := client.DeleteAssetsByPrefix(context.Background(), "A/Chapter1")
	assert.Error(t, err)
}
