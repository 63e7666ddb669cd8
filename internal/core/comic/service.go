// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/sec"
	"github.com/taibuivan/yomira-publish/internal/platform/validate"
	"github.com/taibuivan/yomira-publish/pkg/uuid"
)

// Text limits for reader input.
const (
	MaxTitleLength   = 200
	MaxCommentLength = 2000
)

// # Service Layer

// Service orchestrates the catalogue and reader-feedback operations.
type Service struct {
	store  DocumentStore
	covers CoverUploader
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a new [Service] on top of a document store. covers may
// be nil, in which case cover uploads report the asset store as unavailable.
func NewService(store DocumentStore, covers CoverUploader, logger *slog.Logger) *Service {
	return &Service{store: store, covers: covers, logger: logger, now: time.Now}
}

// Author identifies the reader performing a feedback operation.
type Author struct {
	UserID   string
	UserName string
	Role     sec.UserRole
}

// # Catalogue

/*
GetComic retrieves one comic document.

Parameters:
  - context: context.Context
  - title: string

Returns:
  - *Comic: The full document
  - error: NOT_FOUND if missing
*/
func (service *Service) GetComic(context context.Context, title string) (*Comic, error) {
	return service.store.FindByTitle(context, title)
}

/*
ListComics returns a page of comics and the total count for the filter.
*/
func (service *Service) ListComics(context context.Context, filter Filter, limit, offset int) ([]*Comic, int, error) {
	return service.store.List(context, filter, limit, offset)
}

/*
SaveComic creates a comic or updates its descriptive metadata.

Description: Chapters, ratings and comments are never replaced through this
path; chapters change only through the chapter pipeline.

Returns:
  - *Comic: The stored document
  - error: VALIDATION_ERROR on bad input
*/
func (service *Service) SaveComic(context context.Context, comic *Comic) (*Comic, error) {
	comic.Title = strings.TrimSpace(comic.Title)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, comic.Title)
	validator.MaxLen(FieldTitle, comic.Title, MaxTitleLength)
	validator.Custom(FieldImg, comic.Img != "" && !strings.HasPrefix(comic.Img, "https://"), "Must be an https:// URL")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	comic.Chapters = nil
	comic.Ratings = nil
	comic.Comments = nil

	saved, err := service.store.UpsertByTitle(context, comic)
	if err != nil {
		return nil, err
	}

	service.logger.Info("comic_saved", slog.String("title", saved.Title))
	return saved, nil
}

/*
ListChapters returns the comic's chapter keys in reading order plus any keys
that could not be parsed.
*/
func (service *Service) ListChapters(context context.Context, title string) (ChapterListing, error) {
	comic, err := service.store.FindByTitle(context, title)
	if err != nil {
		return ChapterListing{}, err
	}

	listing := comic.ListChapters()
	if len(listing.Invalid) > 0 {
		service.logger.Warn("chapter_keys_invalid",
			slog.String("title", title),
			slog.Any("keys", listing.Invalid),
		)
	}
	return listing, nil
}

// # Ratings

/*
AddRating appends a 1–5 rating to the comic.
*/
func (service *Service) AddRating(context context.Context, title string, rating int) (*Comic, error) {
	validator := &validate.Validator{}
	validator.Range(FieldRatings, rating, MinRating, MaxRating)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.store.PushField(context, title, FieldPath{FieldRatings}, rating)
}

// # Comments

/*
AddComment appends a comment to the comic, or to one chapter when chapterKey is set.

Parameters:
  - title: string
  - chapterKey: string (empty for a comic-level comment)
  - author: Author
  - text: string

Returns:
  - *Comment: The stored comment with its generated ID
  - error: NOT_FOUND for an unknown comic or chapter
*/
func (service *Service) AddComment(context context.Context, title, chapterKey string, author Author, text string) (*Comment, error) {
	text = strings.TrimSpace(text)

	validator := &validate.Validator{}
	validator.Required(FieldText, text)
	validator.MaxLen(FieldText, text, MaxCommentLength)
	validator.Required(FieldUserID, author.UserID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	path, err := service.commentsPath(context, title, chapterKey)
	if err != nil {
		return nil, err
	}

	comment := Comment{
		ID:        uuid.New(),
		Text:      text,
		UserID:    author.UserID,
		UserName:  author.UserName,
		Timestamp: service.now().UTC(),
	}

	if _, err := service.store.PushField(context, title, path, comment); err != nil {
		return nil, err
	}

	service.logger.Info("comment_added",
		slog.String("title", title),
		slog.String("chapter", chapterKey),
		slog.String("comment_id", comment.ID),
		slog.String("user_id", author.UserID),
	)
	return &comment, nil
}

/*
RemoveComment deletes a comment by ID.

Description: Authors may remove their own comments; moderators and admins may
remove any comment.
*/
func (service *Service) RemoveComment(context context.Context, title, chapterKey, commentID string, author Author) (*Comic, error) {
	comic, err := service.store.FindByTitle(context, title)
	if err != nil {
		return nil, err
	}

	comments, path, err := commentsOf(comic, chapterKey)
	if err != nil {
		return nil, err
	}

	var target *Comment
	for index := range comments {
		if comments[index].ID == commentID {
			target = &comments[index]
			break
		}
	}
	if target == nil {
		return nil, apperr.NotFound("Comment")
	}

	if target.UserID != author.UserID && !author.Role.AtLeast(sec.RoleModerator) {
		return nil, apperr.Forbidden("Only the author or a moderator can remove this comment")
	}

	updated, err := service.store.PullMatching(context, title, path, map[string]string{FieldCommentID: commentID})
	if err != nil {
		return nil, err
	}

	service.logger.Info("comment_removed",
		slog.String("title", title),
		slog.String("chapter", chapterKey),
		slog.String("comment_id", commentID),
		slog.String("user_id", author.UserID),
	)
	return updated, nil
}

/*
RemoveCommentByContent deletes the caller's comments whose text matches exactly.

Description: Fallback for comments stored before comment IDs existed. It only
ever matches comments owned by the caller.
*/
func (service *Service) RemoveCommentByContent(context context.Context, title, chapterKey, text string, author Author) (*Comic, error) {
	validator := &validate.Validator{}
	validator.Required(FieldText, text)
	validator.Required(FieldUserID, author.UserID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	path, err := service.commentsPath(context, title, chapterKey)
	if err != nil {
		return nil, err
	}

	return service.store.PullMatching(context, title, path, map[string]string{
		FieldText:   text,
		FieldUserID: author.UserID,
	})
}

// # Internal Helpers

// commentsPath resolves where a comment lives and checks that the chapter exists.
func (service *Service) commentsPath(context context.Context, title, chapterKey string) (FieldPath, error) {
	if chapterKey == "" {
		return FieldPath{FieldComments}, nil
	}

	comic, err := service.store.FindByTitle(context, title)
	if err != nil {
		return nil, err
	}

	_, path, err := commentsOf(comic, chapterKey)
	return path, err
}

func commentsOf(comic *Comic, chapterKey string) ([]Comment, FieldPath, error) {
	if chapterKey == "" {
		return comic.Comments, FieldPath{FieldComments}, nil
	}

	chapter, ok := comic.Chapters[chapterKey]
	if !ok {
		return nil, nil, apperr.NotFound("Chapter")
	}
	return chapter.Comments, ChapterCommentsPath(chapterKey), nil
}
