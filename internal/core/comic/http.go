// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic provides the HTTP interface for browsing comics and for reader feedback.

# Routing Strategy

  - Public (v1): Discovery endpoints accessible to all visitors (GET /comics).
  - Members (v1): Ratings and comments require an authenticated reader.
  - Publishers (v1): Metadata upsert requires the author role or above.

Chapter upload and deletion are registered by the chapter package on the same router.
*/
package comic

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/yomira-publish/internal/platform/constants"
	"github.com/taibuivan/yomira-publish/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-publish/internal/platform/request"
	"github.com/taibuivan/yomira-publish/internal/platform/respond"
	"github.com/taibuivan/yomira-publish/internal/platform/sec"
	"github.com/taibuivan/yomira-publish/pkg/pagination"
)

// URL parameter names.
const (
	ParamTitle     = "title"
	ParamCommentID = "commentID"
	QueryChapter   = "chapter"
)

// # Handler Implementation

// Handler implements the HTTP layer for the comic catalogue.
type Handler struct {
	service *Service
}

// NewHandler constructs a new comic [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches catalogue and feedback endpoints to the /comics router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(catalogue chi.Router) {
		catalogue.Use(chimw.Timeout(constants.GlobalRequestTimeout))

		// Discovery endpoints
		catalogue.Get("/", handler.ListComics)
		catalogue.Get("/{title}", handler.GetComic)
		catalogue.Get("/{title}/chapters", handler.ListChapters)

		// Reader feedback
		catalogue.Group(func(member chi.Router) {
			member.Use(middleware.RequireAuth)
			member.Post("/{title}/ratings", handler.AddRating)
			member.Post("/{title}/comments", handler.AddComment)
			member.Delete("/{title}/comments", handler.RemoveCommentByContent)
			member.Delete("/{title}/comments/{commentID}", handler.RemoveComment)
		})

		// Publisher endpoints
		catalogue.Group(func(publisher chi.Router) {
			publisher.Use(middleware.RequireRole(sec.RoleAuthor))
			publisher.Put("/{title}", handler.SaveComic)
			publisher.Put("/{title}/cover", handler.SetCover)
		})
	})
}

// # Catalogue

/*
GET /api/v1/comics.

Request:
  - genre: string (exact genre filter)
  - q: string (title substring)
  - page, limit: int

Response:
  - 200: []Comic: Paginated list
*/
func (handler *Handler) ListComics(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Genre: request.URL.Query().Get("genre"),
		Query: request.URL.Query().Get("q"),
	}

	comics, total, err := handler.service.ListComics(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comics, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/comics/{title}.

Response:
  - 200: Comic
  - 404: ErrNotFound: Comic not found
*/
func (handler *Handler) GetComic(writer http.ResponseWriter, request *http.Request) {
	title, err := requestutil.PathParam(request, ParamTitle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.service.GetComic(request.Context(), title)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

// saveComicRequest defines the inbound JSON schema for metadata upserts.
type saveComicRequest struct {
	Info        string   `json:"info"`
	Description string   `json:"description"`
	Img         string   `json:"img"`
	Genres      []string `json:"genres"`
}

/*
PUT /api/v1/comics/{title}.

Description: Creates the comic or replaces its descriptive metadata.

Response:
  - 200: Comic
  - 400: Validation error
  - 403: Insufficient permissions
*/
func (handler *Handler) SaveComic(writer http.ResponseWriter, request *http.Request) {
	title, err := requestutil.PathParam(request, ParamTitle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input saveComicRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.service.SaveComic(request.Context(), &Comic{
		Title:       title,
		Info:        input.Info,
		Description: input.Description,
		Img:         input.Img,
		Genres:      input.Genres,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

/*
GET /api/v1/comics/{title}/chapters.

Response:
  - 200: ChapterListing: keys in reading order plus unparsable keys
*/
func (handler *Handler) ListChapters(writer http.ResponseWriter, request *http.Request) {
	title, err := requestutil.PathParam(request, ParamTitle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	listing, err := handler.service.ListChapters(request.Context(), title)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, listing)
}

// # Ratings

type addRatingRequest struct {
	Rating int `json:"rating"`
}

/*
POST /api/v1/comics/{title}/ratings.

Response:
  - 201: Comic
  - 400: Rating outside 1..5
*/
func (handler *Handler) AddRating(writer http.ResponseWriter, request *http.Request) {
	title, err := requestutil.PathParam(request, ParamTitle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addRatingRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.service.AddRating(request.Context(), title, input.Rating)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comic)
}

// # Comments

type addCommentRequest struct {
	Text    string `json:"text"`
	Chapter string `json:"chapter"`
}

/*
POST /api/v1/comics/{title}/comments.

Request:
  - body: {text, chapter?}

Response:
  - 201: Comment
  - 404: Comic or chapter not found
*/
func (handler *Handler) AddComment(writer http.ResponseWriter, request *http.Request) {
	title, err := requestutil.PathParam(request, ParamTitle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addCommentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := authorOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.AddComment(request.Context(), title, input.Chapter, author, input.Text)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comment)
}

/*
DELETE /api/v1/comics/{title}/comments/{commentID}?chapter=ChapterN.

Response:
  - 200: Comic
  - 403: Not the author and not a moderator
  - 404: Comic, chapter or comment not found
*/
func (handler *Handler) RemoveComment(writer http.ResponseWriter, request *http.Request) {
	title, err := requestutil.PathParam(request, ParamTitle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := authorOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	commentID := requestutil.Param(request, ParamCommentID)
	chapterKey := request.URL.Query().Get(QueryChapter)

	comic, err := handler.service.RemoveComment(request.Context(), title, chapterKey, commentID, author)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

type removeCommentByContentRequest struct {
	Text    string `json:"text"`
	Chapter string `json:"chapter"`
}

/*
DELETE /api/v1/comics/{title}/comments.

Description: Removes the caller's comments with exactly this text. Used for
comments created before comment IDs existed.
*/
func (handler *Handler) RemoveCommentByContent(writer http.ResponseWriter, request *http.Request) {
	title, err := requestutil.PathParam(request, ParamTitle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input removeCommentByContentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := authorOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.service.RemoveCommentByContent(request.Context(), title, input.Chapter, input.Text, author)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comic)
}

// authorOf maps the verified token claims onto an [Author].
func authorOf(request *http.Request) (Author, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return Author{}, err
	}
	return Author{UserID: claims.UserID, UserName: claims.Username, Role: sec.UserRole(claims.Role)}, nil
}
