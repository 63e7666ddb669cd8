// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
)

func TestParseChapterKey(t *testing.T) {
	tests := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{key: "Chapter1", want: 1},
		{key: "Chapter07", want: 7},
		{key: "Chapter120", want: 120},
		{key: "Chapter", wantErr: true},
		{key: "Chapter0", wantErr: true},
		{key: "Chapter-1", wantErr: true},
		{key: "Chapter+2", wantErr: true},
		{key: "Chapter1a", wantErr: true},
		{key: "chapter1", wantErr: true},
		{key: "Extra", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := comic.ParseChapterKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeChapterKey(t *testing.T) {
	key, err := comic.NormalizeChapterKey(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, "Chapter12", key)

	key, err = comic.NormalizeChapterKey("Chapter007")
	require.NoError(t, err)
	assert.Equal(t, "Chapter7", key)

	_, err = comic.NormalizeChapterKey("0")
	assert.Error(t, err)

	_, err = comic.NormalizeChapterKey("Prologue")
	assert.Error(t, err)
}

func TestSortChapterKeys(t *testing.T) {
	listing := comic.SortChapterKeys([]string{"Chapter10", "Chapter2", "Prologue", "Chapter1", "Chapter007", "Chapter7", "ChapterX"})

	assert.Equal(t, []string{"Chapter1", "Chapter2", "Chapter007", "Chapter7", "Chapter10"}, listing.Keys)
	assert.Equal(t, []string{"ChapterX", "Prologue"}, listing.Invalid)
}

func TestSortChapterKeys_Empty(t *testing.T) {
	listing := comic.SortChapterKeys(nil)
	assert.NotNil(t, listing.Keys)
	assert.NotNil(t, listing.Invalid)
	assert.Empty(t, listing.Keys)
}

func TestComic_ListChapters(t *testing.T) {
	document := &comic.Comic{Chapters: map[string]comic.Chapter{
		"Chapter3": comic.NewChapter(nil),
		"Chapter1": comic.NewChapter(nil),
		"Bonus":    comic.NewChapter(nil),
	}}

	listing := document.ListChapters()
	assert.Equal(t, []string{"Chapter1", "Chapter3"}, listing.Keys)
	assert.Equal(t, []string{"Bonus"}, listing.Invalid)
}

func TestComic_AverageRating(t *testing.T) {
	assert.Zero(t, (&comic.Comic{}).AverageRating())
	assert.InDelta(t, 3.5, (&comic.Comic{Ratings: []int{2, 5, 3, 4}}).AverageRating(), 0.0001)
}

func TestNewPlaceholder(t *testing.T) {
	genres := []string{"Action"}
	document := comic.NewPlaceholder("A", genres)
	genres[0] = "Changed"

	assert.Equal(t, comic.PlaceholderInfo, document.Info)
	assert.Equal(t, comic.PlaceholderImg, document.Img)
	assert.Equal(t, comic.PlaceholderDescription, document.Description)
	assert.Equal(t, []string{"Action"}, document.Genres)
	assert.NotNil(t, document.Chapters)
	assert.NotNil(t, document.Ratings)
	assert.NotNil(t, document.Comments)
}
