// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/dberr"
)

// # SQLite Repository

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS comic_document (
    title      TEXT    PRIMARY KEY,
    doc        TEXT    NOT NULL CHECK (json_valid(doc)),
    version    INTEGER NOT NULL DEFAULT 1,
    created_at TEXT    NOT NULL,
    updated_at TEXT    NOT NULL
)`

// sqliteStore implements [DocumentStore] on the SQLite JSON1 functions
// (json_set, json_remove, json_insert, json_each).
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the document table if needed and returns the store.
func NewSQLiteStore(context context.Context, db *sql.DB) (DocumentStore, error) {
	if _, err := db.ExecContext(context, sqliteSchema); err != nil {
		return nil, fmt.Errorf("sqlite: create comic_document: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (repository *sqliteStore) FindByTitle(context context.Context, title string) (*Comic, error) {
	row := repository.db.QueryRowContext(context, `SELECT doc, version FROM comic_document WHERE title = ?`, title)
	return repository.scanOne(row, "find comic")
}

func (repository *sqliteStore) List(context context.Context, filter Filter, limit, offset int) ([]*Comic, int, error) {
	rows, err := repository.db.QueryContext(context, `
		SELECT doc, version, COUNT(*) OVER() AS total_count
		FROM comic_document
		WHERE (? = '' OR EXISTS (SELECT 1 FROM json_each(comic_document.doc, '$.genres') WHERE value = ?))
		  AND (? = '' OR instr(lower(title), lower(?)) > 0)
		ORDER BY title ASC
		LIMIT ? OFFSET ?`,
		filter.Genre, filter.Genre, filter.Query, filter.Query, limit, offset,
	)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Comic", "sqlite: list comics")
	}
	defer rows.Close()

	comics := []*Comic{}
	total := 0

	for rows.Next() {
		var payload string
		var version int64
		if err := rows.Scan(&payload, &version, &total); err != nil {
			return nil, 0, dberr.Wrap(err, "Comic", "sqlite: scan comic")
		}

		comic, err := decodeDocument([]byte(payload), version)
		if err != nil {
			return nil, 0, err
		}
		comics = append(comics, comic)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Comic", "sqlite: iterate comics")
	}

	return comics, total, nil
}

func (repository *sqliteStore) EnsureByTitle(context context.Context, comic *Comic) (*Comic, error) {
	payload, err := encodeDocument(comic)
	if err != nil {
		return nil, err
	}

	now := timestamp()
	_, err = repository.db.ExecContext(context, `
		INSERT INTO comic_document (title, doc, version, created_at, updated_at)
		VALUES (?, json(?), 1, ?, ?)
		ON CONFLICT (title) DO NOTHING`,
		comic.Title, string(payload), now, now,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Comic", "sqlite: ensure comic")
	}

	return repository.FindByTitle(context, comic.Title)
}

// UpsertByTitle merges the incoming metadata with json_patch; the reader data
// keys are stripped from the patch first so they survive.
func (repository *sqliteStore) UpsertByTitle(context context.Context, comic *Comic) (*Comic, error) {
	payload, err := encodeDocument(comic)
	if err != nil {
		return nil, err
	}

	now := timestamp()
	row := repository.db.QueryRowContext(context, `
		INSERT INTO comic_document (title, doc, version, created_at, updated_at)
		VALUES (?, json(?), 1, ?, ?)
		ON CONFLICT (title) DO UPDATE
		SET doc = json_patch(comic_document.doc, json_remove(excluded.doc, '$.chapters', '$.ratings', '$.comments')),
		    updated_at = excluded.updated_at
		RETURNING doc, version`,
		comic.Title, string(payload), now, now,
	)

	return repository.scanOne(row, "upsert comic")
}

func (repository *sqliteStore) UpdateField(context context.Context, title string, path FieldPath, value any, expectedVersion int64) (*Comic, error) {
	jsonPath, err := sqlitePath(path)
	if err != nil {
		return nil, err
	}

	encoded, err := encodeValue(value)
	if err != nil {
		return nil, err
	}

	row := repository.db.QueryRowContext(context, `
		UPDATE comic_document
		SET doc = json_set(doc, ?, json(?)),
		    version = version + 1,
		    updated_at = ?
		WHERE title = ? AND (? = 0 OR version = ?)
		RETURNING doc, version`,
		jsonPath, encoded, timestamp(), title, expectedVersion, expectedVersion,
	)

	return repository.scanMutation(context, row, title, expectedVersion, "update "+path.String())
}

func (repository *sqliteStore) UnsetField(context context.Context, title string, path FieldPath, expectedVersion int64) (*Comic, error) {
	jsonPath, err := sqlitePath(path)
	if err != nil {
		return nil, err
	}

	row := repository.db.QueryRowContext(context, `
		UPDATE comic_document
		SET doc = json_remove(doc, ?),
		    version = version + 1,
		    updated_at = ?
		WHERE title = ? AND (? = 0 OR version = ?)
		RETURNING doc, version`,
		jsonPath, timestamp(), title, expectedVersion, expectedVersion,
	)

	return repository.scanMutation(context, row, title, expectedVersion, "unset "+path.String())
}

func (repository *sqliteStore) PushField(context context.Context, title string, path FieldPath, value any) (*Comic, error) {
	jsonPath, err := sqlitePath(path)
	if err != nil {
		return nil, err
	}

	encoded, err := encodeValue(value)
	if err != nil {
		return nil, err
	}

	row := repository.db.QueryRowContext(context, `
		UPDATE comic_document
		SET doc = json_set(doc, ?, json_insert(COALESCE(json_extract(doc, ?), json('[]')), '$[#]', json(?))),
		    updated_at = ?
		WHERE title = ?
		RETURNING doc, version`,
		jsonPath, jsonPath, encoded, timestamp(), title,
	)

	return repository.scanMutation(context, row, title, AnyVersion, "push "+path.String())
}

// PullMatching rebuilds the array at path from the elements that do not match.
// The aggregate is wrapped in json() because subquery results lose their JSON subtype.
func (repository *sqliteStore) PullMatching(context context.Context, title string, path FieldPath, match map[string]string) (*Comic, error) {
	jsonPath, err := sqlitePath(path)
	if err != nil {
		return nil, err
	}

	_, keys, err := sortedMatch(match)
	if err != nil {
		return nil, err
	}

	conditions := make([]string, 0, len(keys))
	matchArgs := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		keyPath, err := sqlitePath(FieldPath{key})
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, "json_extract(items.value, ?) IS ?")
		matchArgs = append(matchArgs, keyPath, match[key])
	}

	query := fmt.Sprintf(`
		UPDATE comic_document
		SET doc = json_set(doc, ?, json((
		        SELECT json_group_array(json(items.value))
		        FROM json_each(comic_document.doc, ?) AS items
		        WHERE NOT (%s)
		    ))),
		    updated_at = ?
		WHERE title = ? AND json_type(doc, ?) = 'array'
		RETURNING doc, version`, strings.Join(conditions, " AND "))

	args := []any{jsonPath, jsonPath}
	args = append(args, matchArgs...)
	args = append(args, timestamp(), title, jsonPath)

	comic, err := repository.scanMutation(context, repository.db.QueryRowContext(context, query, args...), title, AnyVersion, "pull "+path.String())
	if apperr.HasCode(err, apperr.CodeNotFound) {
		if existing, findErr := repository.FindByTitle(context, title); findErr == nil {
			return existing, nil
		}
	}
	return comic, err
}

// # Scanning Helpers

func (repository *sqliteStore) scanOne(row *sql.Row, action string) (*Comic, error) {
	var payload string
	var version int64
	if err := row.Scan(&payload, &version); err != nil {
		return nil, dberr.Wrap(err, "Comic", "sqlite: "+action)
	}
	return decodeDocument([]byte(payload), version)
}

func (repository *sqliteStore) scanMutation(context context.Context, row *sql.Row, title string, expectedVersion int64, action string) (*Comic, error) {
	comic, err := repository.scanOne(row, action)
	if err == nil || !apperr.HasCode(err, apperr.CodeNotFound) || expectedVersion == AnyVersion {
		return comic, err
	}

	var current int64
	scanErr := repository.db.QueryRowContext(context, `SELECT version FROM comic_document WHERE title = ?`, title).Scan(&current)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, apperr.NotFound("Comic")
		}
		return nil, dberr.Wrap(scanErr, "Comic", "sqlite: read version")
	}

	return nil, versionConflict(title, expectedVersion, current)
}

// sqlitePath renders a FieldPath as a JSON1 path with every label quoted,
// e.g. $."chapters"."Chapter3".
func sqlitePath(path FieldPath) (string, error) {
	if err := path.Validate(); err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("$")
	for _, segment := range path {
		if strings.ContainsAny(segment, `"\`) {
			return "", fmt.Errorf("comic: field path segment %q contains a quote or backslash", segment)
		}
		builder.WriteString(`."`)
		builder.WriteString(segment)
		builder.WriteString(`"`)
	}
	return builder.String(), nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
