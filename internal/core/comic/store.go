// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// AnyVersion disables the compare-and-swap check on a chapter mutation.
const AnyVersion int64 = 0

// # Field Addressing

// FieldPath addresses a value inside a comic document, outermost key first.
type FieldPath []string

// ChapterPath addresses chapters.<key>.
func ChapterPath(key string) FieldPath {
	return FieldPath{FieldChapters, key}
}

// ChapterCommentsPath addresses chapters.<key>.comments.
func ChapterCommentsPath(key string) FieldPath {
	return FieldPath{FieldChapters, key, FieldComments}
}

// String renders the path in dotted notation for logs.
func (p FieldPath) String() string {
	return strings.Join(p, ".")
}

// Validate rejects empty paths and paths that would replace the whole document
// or its title.
func (p FieldPath) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("comic: empty field path")
	}
	if p[0] == FieldTitle {
		return fmt.Errorf("comic: field path %q targets the document key", p)
	}
	for _, segment := range p {
		if segment == "" {
			return fmt.Errorf("comic: field path %q has an empty segment", p)
		}
	}
	return nil
}

// Filter narrows [DocumentStore.List].
type Filter struct {
	// Genre keeps comics tagged with this exact genre.
	Genre string
	// Query is a case-insensitive substring of the title.
	Query string
}

// # Document Store

// DocumentStore is the keyed comic document store.
//
// Missing comics are reported as apperr NOT_FOUND, lost compare-and-swap races
// as apperr CONFLICT and infrastructure failures as apperr BACKEND_UNAVAILABLE.
type DocumentStore interface {

	/*
		FindByTitle returns the comic stored under title.

		Returns:
		  - *Comic: The full document including chapters
		  - error: NOT_FOUND if no such title
	*/
	FindByTitle(context context.Context, title string) (*Comic, error)

	/*
		List returns a page of comics ordered by title, and the total match count.
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Comic, int, error)

	/*
		EnsureByTitle inserts comic if its title is absent and returns the stored
		document either way. Repeating it is a no-op.
	*/
	EnsureByTitle(context context.Context, comic *Comic) (*Comic, error)

	/*
		UpsertByTitle creates the comic, or merges its descriptive metadata
		(info, description, img, genres) into the existing document. Chapters,
		ratings and comments of an existing document are left untouched.
	*/
	UpsertByTitle(context context.Context, comic *Comic) (*Comic, error)

	/*
		UpdateField atomically sets the value at path, replacing the whole
		subtree, and increments the version.

		Parameters:
		  - path: FieldPath (e.g. chapters.Chapter3)
		  - value: any JSON-encodable value
		  - expectedVersion: int64 (AnyVersion skips the check)

		Returns:
		  - *Comic: The document after the update
		  - error: NOT_FOUND, CONFLICT on version mismatch
	*/
	UpdateField(context context.Context, title string, path FieldPath, value any, expectedVersion int64) (*Comic, error)

	/*
		UnsetField atomically removes the value at path and increments the version.
		Removing an absent path still succeeds.
	*/
	UnsetField(context context.Context, title string, path FieldPath, expectedVersion int64) (*Comic, error)

	/*
		PushField appends value to the array at path. The version is not changed.
	*/
	PushField(context context.Context, title string, path FieldPath, value any) (*Comic, error)

	/*
		PullMatching removes every element of the array at path whose fields equal
		all entries of match. The version is not changed.
	*/
	PullMatching(context context.Context, title string, path FieldPath, match map[string]string) (*Comic, error)
}

// # Document Encoding

// encodeDocument renders the JSON body persisted for comic. Version is stored
// in its own column and omitted here.
func encodeDocument(comic *Comic) ([]byte, error) {
	document := *comic
	document.Version = 0
	document.Normalize()

	payload, err := json.Marshal(&document)
	if err != nil {
		return nil, fmt.Errorf("comic: failed to encode document %q: %w", comic.Title, err)
	}
	return payload, nil
}

// decodeDocument is the inverse of [encodeDocument].
func decodeDocument(payload []byte, version int64) (*Comic, error) {
	var comic Comic
	if err := json.Unmarshal(payload, &comic); err != nil {
		return nil, fmt.Errorf("comic: failed to decode document: %w", err)
	}
	comic.Normalize()
	comic.Version = version
	return &comic, nil
}

// encodeValue renders a field value for a set or push operation.
func encodeValue(value any) (string, error) {
	if chapter, ok := value.(Chapter); ok {
		value = chapter.normalized()
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("comic: failed to encode field value: %w", err)
	}
	return string(payload), nil
}

// sortedMatch returns match as a containment object and its keys in a stable order.
func sortedMatch(match map[string]string) (string, []string, error) {
	if len(match) == 0 {
		return "", nil, fmt.Errorf("comic: pull requires at least one match field")
	}

	keys := make([]string, 0, len(match))
	for key := range match {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	payload, err := json.Marshal(match)
	if err != nil {
		return "", nil, fmt.Errorf("comic: failed to encode match: %w", err)
	}
	return string(payload), keys, nil
}
