// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"io"
	"sort"
	"strings"
)

// PageFile is one uploaded page image before it is transferred.
type PageFile struct {
	// Name is the client-side file name. Its first digit run sets the page order.
	Name        string
	ContentType string
	Size        int64
	// Open returns a fresh reader over the file content.
	Open func() (io.ReadCloser, error)
}

// OrderPages returns files sorted by the first run of decimal digits in each
// name, ascending. A name without digits sorts as 0. Ties keep input order.
//
// ["img10.png", "img2.jpg", "cover.png"] becomes ["cover.png", "img2.jpg", "img10.png"].
func OrderPages(files []PageFile) []PageFile {
	type keyed struct {
		number string
		file   PageFile
	}

	entries := make([]keyed, len(files))
	for index, file := range files {
		entries[index] = keyed{number: pageNumber(file.Name), file: file}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return compareDigits(entries[i].number, entries[j].number) < 0
	})

	ordered := make([]PageFile, len(entries))
	for index, entry := range entries {
		ordered[index] = entry.file
	}
	return ordered
}

// pageNumber returns the first digit run of name without leading zeros, or "0".
func pageNumber(name string) string {
	start := strings.IndexFunc(name, isDigit)
	if start < 0 {
		return "0"
	}

	end := start
	for end < len(name) && isDigit(rune(name[end])) {
		end++
	}

	digits := strings.TrimLeft(name[start:end], "0")
	if digits == "" {
		return "0"
	}
	return digits
}

// compareDigits orders two canonical digit strings numerically. Arbitrarily
// long runs compare correctly because no integer conversion takes place.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
