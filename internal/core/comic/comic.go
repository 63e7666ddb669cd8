// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic defines the comic document and its persistence.

A comic is stored as one JSON document keyed by its unique title. Chapters live
in a map under "chapters" keyed by "Chapter<N>", so a single chapter can be set
or removed with one atomic field operation without touching its siblings.

Core Responsibility:

  - Catalogue: title, descriptive metadata and genres.
  - Chapters: ordered page URLs plus nested reader comments.
  - Reader feedback: append-only ratings and comic-level comments.
*/
package comic

import (
	"slices"
	"time"

	"github.com/taibuivan/yomira-publish/pkg/slice"
)

// # Field Names

// Document field names, shared by the stores and the service.
const (
	FieldTitle       = "title"
	FieldInfo        = "info"
	FieldDescription = "description"
	FieldImg         = "img"
	FieldGenres      = "genres"
	FieldRatings     = "ratings"
	FieldComments    = "comments"
	FieldChapters    = "chapters"
	FieldPages       = "pages"
	FieldCommentID   = "id"
	FieldText        = "text"
	FieldUserID      = "userId"
)

// Placeholder metadata for comics created implicitly by a first chapter upload.
const (
	PlaceholderInfo        = "Info not available"
	PlaceholderImg         = "https://via.placeholder.com/150"
	PlaceholderDescription = "Description not available"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// # Domain Entities

// Comment is a reader comment on a comic or on one of its chapters.
//
// ID is empty only for comments migrated from documents written before
// comment ids existed.
type Comment struct {
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Timestamp time.Time `json:"timestamp"`
}

// Chapter is an ordered sequence of hosted page images.
type Chapter struct {
	Pages    []string  `json:"pages"`
	Comments []Comment `json:"comments"`
}

// Comic is the persisted document for one title.
//
// Version counts chapter mutations and is the compare-and-swap token for
// [DocumentStore.UpdateField] and [DocumentStore.UnsetField]. It is kept out of
// the JSON body by the stores.
type Comic struct {
	Title       string             `json:"title"`
	Info        string             `json:"info"`
	Description string             `json:"description"`
	Img         string             `json:"img"`
	Genres      []string           `json:"genres"`
	Ratings     []int              `json:"ratings"`
	Comments    []Comment          `json:"comments"`
	Chapters    map[string]Chapter `json:"chapters"`
	Version     int64              `json:"version,omitempty"`
}

// NewPlaceholder builds the document created when a chapter is uploaded for
// a title that does not exist yet.
func NewPlaceholder(title string, genres []string) *Comic {
	comic := &Comic{
		Title:       title,
		Info:        PlaceholderInfo,
		Img:         PlaceholderImg,
		Description: PlaceholderDescription,
		Genres:      slices.Clone(genres),
	}
	comic.Normalize()
	return comic
}

// Normalize replaces nil collections with empty ones so the persisted JSON
// always has arrays and objects where the store appends or sets into them.
func (c *Comic) Normalize() {
	if c.Genres == nil {
		c.Genres = []string{}
	}
	if c.Ratings == nil {
		c.Ratings = []int{}
	}
	if c.Comments == nil {
		c.Comments = []Comment{}
	}
	if c.Chapters == nil {
		c.Chapters = map[string]Chapter{}
	}
	for key, chapter := range c.Chapters {
		c.Chapters[key] = chapter.normalized()
	}
}

// HasChapter reports whether key is present in the chapter map.
func (c *Comic) HasChapter(key string) bool {
	_, ok := c.Chapters[key]
	return ok
}

// AverageRating returns the mean of all ratings, or 0 without ratings.
func (c *Comic) AverageRating() float64 {
	if len(c.Ratings) == 0 {
		return 0
	}
	sum := slice.Reduce(c.Ratings, 0, func(total, rating int) int { return total + rating })
	return float64(sum) / float64(len(c.Ratings))
}

// NewChapter returns a freshly committed chapter: the given pages and no comments.
func NewChapter(pages []string) Chapter {
	return Chapter{Pages: slices.Clone(pages), Comments: []Comment{}}
}

func (c Chapter) normalized() Chapter {
	if c.Pages == nil {
		c.Pages = []string{}
	}
	if c.Comments == nil {
		c.Comments = []Comment{}
	}
	return c
}
