// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/constants"
	"github.com/taibuivan/yomira-publish/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-publish/internal/platform/middleware"
	"github.com/taibuivan/yomira-publish/internal/platform/progress"
	requestutil "github.com/taibuivan/yomira-publish/internal/platform/request"
	"github.com/taibuivan/yomira-publish/internal/platform/respond"
	"github.com/taibuivan/yomira-publish/internal/platform/sec"
	"github.com/taibuivan/yomira-publish/internal/platform/validate"
	"github.com/taibuivan/yomira-publish/pkg/query"
	"github.com/taibuivan/yomira-publish/pkg/uuid"
)

// URL parameters and multipart field names.
const (
	ParamTitle       = "title"
	ParamChapterKey  = "chapterKey"
	ParamOperationID = "operationID"

	FormChapterNumber = "chapterNumber"
	FormGenres        = "genres"
	FormFiles         = "files"
)

// allowedExtensions are the page formats accepted by the upload endpoint.
var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

var operationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Tracker records pipeline progress so that it can be polled by operation id.
type Tracker interface {
	Func(ctx context.Context, operationID string) progress.Func
	Finish(ctx context.Context, operationID string, err error)
	Get(ctx context.Context, operationID string) (*progress.Operation, error)
}

// HandlerOptions bounds the upload endpoint.
type HandlerOptions struct {
	MaxFiles int
	MaxBytes int64
}

// # Handler Implementation

// Handler implements the HTTP layer for the chapter pipelines.
type Handler struct {
	service *Service
	tracker Tracker
	options HandlerOptions
}

// NewHandler constructs a new chapter [Handler]. tracker may be nil.
func NewHandler(service *Service, tracker Tracker, options HandlerOptions) *Handler {
	return &Handler{service: service, tracker: tracker, options: options}
}

// RegisterRoutes attaches the chapter mutation endpoints to the /comics router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(publisher chi.Router) {
		publisher.Use(chimw.Timeout(constants.ChapterTransferTimeout))
		publisher.Use(middleware.RequireRole(sec.RoleAuthor))

		publisher.Post("/{title}/chapters", handler.UploadChapter)
		publisher.Put("/{title}/chapters/{chapterKey}", handler.CommitChapter)
		publisher.Delete("/{title}/chapters/{chapterKey}", handler.DeleteChapter)
	})
}

// RegisterOperationRoutes attaches the progress polling endpoint to the API root.
func (handler *Handler) RegisterOperationRoutes(api chi.Router) {
	api.Group(func(publisher chi.Router) {
		publisher.Use(chimw.Timeout(constants.GlobalRequestTimeout))
		publisher.Use(middleware.RequireRole(sec.RoleAuthor))
		publisher.Get("/operations/{operationID}", handler.GetOperation)
	})
}

// # Upload

/*
POST /api/v1/comics/{title}/chapters.

Description: Uploads a chapter as multipart/form-data and commits it. The
response carries X-Operation-ID; progress can be polled under that id while
the request runs.

Request:
  - chapterNumber: int (form field)
  - genres: string (form field, comma separated; seeds a new comic)
  - files: file[] (jpg, jpeg or png)

Response:
  - 201: UploadResult
  - 400: Validation error
  - 409: The comic changed while uploading
  - 422: NO_VALID_ASSETS: every page failed
*/
func (handler *Handler) UploadChapter(writer http.ResponseWriter, request *http.Request) {
	title, err := requestutil.PathParam(request, ParamTitle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	form, err := requestutil.ParseMultipart(writer, request, handler.options.MaxBytes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer form.RemoveAll()

	input, err := handler.uploadRequest(title, form)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request, operationID, report := handler.begin(writer, request)

	result, err := handler.service.UploadChapter(request.Context(), input, report)
	handler.finish(request, operationID, err)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

func (handler *Handler) uploadRequest(title string, form *multipart.Form) (UploadRequest, error) {
	validator := &validate.Validator{}

	number, err := strconv.Atoi(strings.TrimSpace(first(form.Value[FormChapterNumber])))
	validator.Custom(FormChapterNumber, err != nil || number < 1, "Must be a positive integer")

	headers := form.File[FormFiles]
	validator.Custom(FormFiles, len(headers) == 0, "At least one page is required")
	validator.Custom(FormFiles, handler.options.MaxFiles > 0 && len(headers) > handler.options.MaxFiles,
		fmt.Sprintf("At most %d pages are allowed", handler.options.MaxFiles))

	files := make([]PageFile, 0, len(headers))
	for _, header := range headers {
		contentType, ok := allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))]
		if !ok {
			validator.Custom(FormFiles, true, fmt.Sprintf("%q is not a jpg, jpeg or png file", header.Filename))
			continue
		}
		files = append(files, PageFile{
			Name:        header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Open: func() (io.ReadCloser, error) {
				return header.Open()
			},
		})
	}

	if err := validator.Err(); err != nil {
		return UploadRequest{}, err
	}

	return UploadRequest{
		ComicTitle:    title,
		ChapterNumber: number,
		Files:         files,
		Genres:        splitGenres(form.Value[FormGenres]),
	}, nil
}

// # Commit

type commitChapterRequest struct {
	Pages   []string `json:"pages"`
	Version int64    `json:"version"`
}

/*
PUT /api/v1/comics/{title}/chapters/{chapterKey}.

Description: Sets the chapter to already hosted page URLs.

Request:
  - body: {pages: []string, version?: int (0 skips the version check)}

Response:
  - 200: Comic
  - 404: Comic not found
  - 409: Version mismatch
*/
func (handler *Handler) CommitChapter(writer http.ResponseWriter, request *http.Request) {
	title, err := requestutil.PathParam(request, ParamTitle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	number, err := chapterNumberParam(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input commitChapterRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.CommitChapter(request.Context(), title, number, input.Pages, input.Version)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

// # Delete

/*
DELETE /api/v1/comics/{title}/chapters/{chapterKey}.

Response:
  - 200: DeleteResult
  - 404: Comic or chapter not found; nothing was deleted
  - 409: The comic changed while deleting
*/
func (handler *Handler) DeleteChapter(writer http.ResponseWriter, request *http.Request) {
	title, err := requestutil.PathParam(request, ParamTitle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapterKey, err := requestutil.PathParam(request, ParamChapterKey)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request, operationID, report := handler.begin(writer, request)

	result, err := handler.service.DeleteChapter(request.Context(), title, chapterKey, report)
	handler.finish(request, operationID, err)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// # Operations

/*
GET /api/v1/operations/{operationID}.

Response:
  - 200: Operation: latest progress snapshot
  - 404: Unknown or expired operation
*/
func (handler *Handler) GetOperation(writer http.ResponseWriter, request *http.Request) {
	if handler.tracker == nil {
		respond.Error(writer, request, apperr.NotFound("Operation"))
		return
	}

	operationID := requestutil.Param(request, ParamOperationID)
	if !operationIDPattern.MatchString(operationID) {
		respond.Error(writer, request, validate.RequiredError(ParamOperationID, "Must be 1-64 letters, digits, '-' or '_'"))
		return
	}

	operation, err := handler.tracker.Get(request.Context(), operationID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, operation)
}

// # Internal Helpers

// begin assigns the operation id and returns the progress sink for it.
func (handler *Handler) begin(writer http.ResponseWriter, request *http.Request) (*http.Request, string, progress.Func) {
	operationID := request.Header.Get(constants.HeaderXOperationID)
	if !operationIDPattern.MatchString(operationID) {
		operationID = uuid.New()
	}
	writer.Header().Set(constants.HeaderXOperationID, operationID)
	request = request.WithContext(ctxutil.WithOperationID(request.Context(), operationID))

	if handler.tracker == nil {
		return request, operationID, nil
	}
	return request, operationID, handler.tracker.Func(request.Context(), operationID)
}

func (handler *Handler) finish(request *http.Request, operationID string, err error) {
	if handler.tracker != nil {
		handler.tracker.Finish(request.Context(), operationID, err)
	}
}

// chapterNumberParam reads {chapterKey} as "Chapter12" or "12".
func chapterNumberParam(request *http.Request) (int, error) {
	raw, err := requestutil.PathParam(request, ParamChapterKey)
	if err != nil {
		return 0, err
	}

	key, err := comic.NormalizeChapterKey(raw)
	if err != nil {
		return 0, validate.RequiredError(ParamChapterKey, "Must be Chapter<N> or a positive integer")
	}

	number, _ := comic.ParseChapterKey(key)
	return number, nil
}

func splitGenres(values []string) []string {
	genres := []string{}
	for _, value := range values {
		genres = append(genres, query.StringSlice(value)...)
	}
	return genres
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
