// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ChapterKeyPrefix is the literal prefix of every chapter key.
const ChapterKeyPrefix = "Chapter"

// ChapterKey builds the map key for chapter number n.
func ChapterKey(number int) string {
	return ChapterKeyPrefix + strconv.Itoa(number)
}

// ParseChapterKey returns the chapter number encoded in key.
//
// The suffix must be a plain decimal positive integer ("Chapter07" is accepted
// as 7; "Chapter", "Chapter-1", "Chapter+2", "Chapter1a" are not).
func ParseChapterKey(key string) (int, error) {
	suffix, ok := strings.CutPrefix(key, ChapterKeyPrefix)
	if !ok || suffix == "" {
		return 0, fmt.Errorf("chapter key %q: missing %q prefix or number", key, ChapterKeyPrefix)
	}

	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("chapter key %q: suffix is not a decimal number", key)
		}
	}

	number, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("chapter key %q: %w", key, err)
	}
	if number < 1 {
		return 0, fmt.Errorf("chapter key %q: chapter numbers start at 1", key)
	}

	return number, nil
}

// NormalizeChapterKey accepts either a bare number ("12") or a full key
// ("Chapter12") and returns the canonical key.
func NormalizeChapterKey(input string) (string, error) {
	input = strings.TrimSpace(input)
	if number, err := strconv.Atoi(input); err == nil {
		if number < 1 {
			return "", fmt.Errorf("chapter number %d: chapter numbers start at 1", number)
		}
		return ChapterKey(number), nil
	}

	number, err := ParseChapterKey(input)
	if err != nil {
		return "", err
	}
	return ChapterKey(number), nil
}

// ChapterListing is the ordered view of a comic's chapter keys.
type ChapterListing struct {
	// Keys holds well-formed keys in ascending chapter number.
	Keys []string `json:"keys"`
	// Invalid holds keys that could not be parsed, in lexical order.
	Invalid []string `json:"invalid"`
}

// SortChapterKeys orders keys by their numeric suffix.
//
// Keys that fail [ParseChapterKey] are excluded from Keys and reported in
// Invalid. Keys with equal numbers ("Chapter7" and "Chapter007") keep a
// deterministic lexical order.
func SortChapterKeys(keys []string) ChapterListing {
	type parsed struct {
		key    string
		number int
	}

	valid := make([]parsed, 0, len(keys))
	listing := ChapterListing{Keys: []string{}, Invalid: []string{}}

	for _, key := range keys {
		number, err := ParseChapterKey(key)
		if err != nil {
			listing.Invalid = append(listing.Invalid, key)
			continue
		}
		valid = append(valid, parsed{key: key, number: number})
	}

	sort.Slice(valid, func(i, j int) bool {
		if valid[i].number != valid[j].number {
			return valid[i].number < valid[j].number
		}
		return valid[i].key < valid[j].key
	})
	sort.Strings(listing.Invalid)

	for _, entry := range valid {
		listing.Keys = append(listing.Keys, entry.key)
	}

	return listing
}

// ListChapters returns the comic's chapter keys through [SortChapterKeys].
func (c *Comic) ListChapters() ChapterListing {
	keys := make([]string, 0, len(c.Chapters))
	for key := range c.Chapters {
		keys = append(keys, key)
	}
	return SortChapterKeys(keys)
}
