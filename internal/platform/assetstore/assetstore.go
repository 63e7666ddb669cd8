// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package assetstore is the client for the external media host that serves
chapter page images.

A [Provider] wraps one vendor API (Cloudinary, Alibaba Cloud OSS). The [Client]
adds what the chapter pipeline needs on top of it:

  - Upload validation: a page URL is only accepted if it is https.
  - Batched deletion: at most BatchSize ids per call, each batch retried with a
    fixed backoff, partial failure reported instead of raised.
  - Prefix sweep: best-effort removal of everything under a chapter folder.

Folder and public-id derivation ([FolderPath], [ContentID]) are pure functions
shared by upload and delete so both sides agree on where a chapter lives.
*/
package assetstore

import (
	"context"
	"fmt"
	"io"
)

// Deletion statuses reported by providers for each requested id.
const (
	StatusDeleted  = "deleted"
	StatusNotFound = "not_found"
)

// Upload is one file to store.
type Upload struct {
	// Body streams the file content.
	Body io.Reader
	// FileName is the original client-side name; used for the extension and logs.
	FileName string
	// ContentType is the MIME type, if known.
	ContentType string
	// Folder is the full folder, including the configured root.
	Folder string
	// PublicID is the name inside Folder, without extension.
	PublicID string
}

// UploadResult is what a provider reports for a stored file.
type UploadResult struct {
	SecureURL string
	PublicID  string
}

// Provider is a vendor media-hosting API.
type Provider interface {

	// Name identifies the provider in logs and health checks.
	Name() string

	// Upload stores one image and returns its delivery URL.
	Upload(ctx context.Context, upload Upload) (UploadResult, error)

	// DeleteResources removes the given public ids and reports a status per id.
	DeleteResources(ctx context.Context, publicIDs []string) (map[string]string, error)

	// DeleteResourcesByPrefix removes every resource whose id starts with prefix.
	// It returns the number of resources removed when the vendor reports it.
	DeleteResourcesByPrefix(ctx context.Context, prefix string) (int, error)

	// PublicID recovers the public id from a delivery URL issued by Upload.
	PublicID(url string) (string, bool)

	// Ping checks credentials and reachability.
	Ping(ctx context.Context) error
}

// # Errors

// UploadError reports a single file the provider did not accept.
//
// It is non-terminal for a chapter upload: the page is dropped and the rest
// of the chapter proceeds.
type UploadError struct {
	FileName string
	Reason   string
	Cause    error
}

func (e *UploadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("assetstore: upload %q failed: %s: %v", e.FileName, e.Reason, e.Cause)
	}
	return fmt.Sprintf("assetstore: upload %q failed: %s", e.FileName, e.Reason)
}

func (e *UploadError) Unwrap() error { return e.Cause }
