// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"net/http"
	"path/filepath"
	"strings"

	requestutil "github.com/taibuivan/yomira-publish/internal/platform/request"
	"github.com/taibuivan/yomira-publish/internal/platform/respond"
	"github.com/taibuivan/yomira-publish/internal/platform/validate"
)

// FormCover is the multipart field carrying the cover image.
const FormCover = "cover"

// MaxCoverBytes bounds the cover upload body.
const MaxCoverBytes = 10 << 20

var coverTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// # Assets (Covers)

/*
PUT /api/v1/comics/{title}/cover.

Description: Replaces the comic's cover image with an uploaded file.

Request:
  - title: string
  - cover: file (jpg, jpeg, png or webp)

Response:
  - 200: Comic: The document with the new img
  - 400: Validation error
  - 403: Insufficient permissions
  - 404: Comic not found
  - 503: Asset store unavailable
*/
func (handler *Handler) SetCover(writer http.ResponseWriter, request *http.Request) {
	title, err := requestutil.PathParam(request, ParamTitle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	form, err := requestutil.ParseMultipart(writer, request, MaxCoverBytes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer form.RemoveAll()

	headers := form.File[FormCover]
	if len(headers) != 1 {
		respond.Error(writer, request, validate.RequiredError(FormCover, "Exactly one cover image is required"))
		return
	}

	header := headers[0]
	contentType, ok := coverTypes[strings.ToLower(filepath.Ext(header.Filename))]
	if !ok {
		respond.Error(writer, request, validate.RequiredError(FormCover, "Must be a jpg, jpeg, png or webp file"))
		return
	}

	file, err := header.Open()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer file.Close()

	comic, err := handler.service.SetCover(request.Context(), title, CoverFile{
		Name:        header.Filename,
		ContentType: contentType,
		Body:        file,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}
