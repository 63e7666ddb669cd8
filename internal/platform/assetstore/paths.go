// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assetstore

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/taibuivan/yomira-publish/pkg/slug"
)

// fallbackContentName is used when a file name has no sluggable characters.
const fallbackContentName = "page"

// versionedPublicID captures the public id in a versioned delivery URL:
// .../v<digits>/<publicId>.<ext>
var versionedPublicID = regexp.MustCompile(`/v\d+/(.+?)(?:\.\w+)+$`)

// FolderPath returns the folder that holds one chapter's pages: {title}/{chapterKey}.
//
// It is the single source of the namespacing rule: uploads store under it and
// the delete fallback sweeps it.
func FolderPath(comicTitle, chapterKey string) string {
	return comicTitle + "/" + chapterKey
}

// ContentID returns the public id of a page: {index}-{sanitized name without extension}.
//
// The index is the position in the resolved reading order, so two files whose
// names sanitize to the same slug still get distinct ids.
func ContentID(index int, fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	name := slug.From(base)
	if name == "" {
		name = fallbackContentName
	}
	return strconv.Itoa(index) + "-" + name
}

// ParseVersionedPublicID extracts the public id from a Cloudinary-style URL.
//
// "https://res.cloudinary.com/demo/image/upload/v1700000000/comics/A/Chapter1/0-p.png"
// yields "comics/A/Chapter1/0-p". Escaped segments are decoded, so
// ".../One%20Piece/..." yields "One Piece". URLs without a /v<digits>/ segment
// and a file extension do not match.
func ParseVersionedPublicID(deliveryURL string) (string, bool) {
	match := versionedPublicID.FindStringSubmatch(deliveryURL)
	if match == nil {
		return "", false
	}

	publicID, err := url.PathUnescape(match[1])
	if err != nil {
		return "", false
	}
	return publicID, true
}

// folderPrefix terminates folder with exactly one "/".
func folderPrefix(folder string) string {
	return strings.TrimRight(folder, "/") + "/"
}

// joinRoot prefixes a folder with the configured root folder.
func joinRoot(root, folder string) string {
	if root == "" {
		return folder
	}
	return path.Join(root, folder)
}
