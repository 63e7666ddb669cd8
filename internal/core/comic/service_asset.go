// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/assetstore"
	"github.com/taibuivan/yomira-publish/internal/platform/validate"
)

// CoverPublicID is the public id of a comic's cover inside its title folder.
const CoverPublicID = "cover"

// CoverUploader hosts cover images. It is satisfied by [assetstore.Client].
type CoverUploader interface {
	UploadAsset(ctx context.Context, upload assetstore.Upload) (string, error)
}

// CoverFile is one cover image received from a publisher.
type CoverFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// # Assets & Media

/*
SetCover uploads a cover image and points the comic's img at it.

Description: The image is stored as {title}/cover, outside every chapter
folder, so chapter cleanup never touches it. Re-uploading overwrites the
previous cover.

Parameters:
  - context: context.Context
  - title: string
  - file: CoverFile

Returns:
  - *Comic: The document with the new img
  - error: NOT_FOUND for an unknown comic, BACKEND_UNAVAILABLE if the asset store rejects the file
*/
func (service *Service) SetCover(context context.Context, title string, file CoverFile) (*Comic, error) {
	if service.covers == nil {
		return nil, apperr.BackendUnavailable("Asset store", nil)
	}

	title = strings.TrimSpace(title)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, title)
	validator.Custom(FieldImg, file.Body == nil, "A cover image is required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	existing, err := service.store.FindByTitle(context, title)
	if err != nil {
		return nil, err
	}

	url, err := service.covers.UploadAsset(context, assetstore.Upload{
		Body:        file.Body,
		FileName:    file.Name,
		ContentType: file.ContentType,
		Folder:      title,
		PublicID:    CoverPublicID,
	})
	if err != nil {
		return nil, apperr.BackendUnavailable("Asset store", err)
	}

	updated, err := service.store.UpsertByTitle(context, &Comic{
		Title:       existing.Title,
		Info:        existing.Info,
		Description: existing.Description,
		Img:         url,
		Genres:      existing.Genres,
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("cover_updated",
		slog.String("title", title),
		slog.String("url", url),
	)
	return updated, nil
}
