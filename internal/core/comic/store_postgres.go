// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic provides the PostgreSQL implementation of the comic document store.

Documents live in a JSONB column so that single-field mutations map onto
Postgres JSON operators and execute as one atomic statement:
  - Set: 'jsonb_set' with create_missing, replacing the whole subtree.
  - Unset: the '#-' path-delete operator.
  - Push: array concatenation with '||'.
  - Pull: 'jsonb_array_elements' filtered by containment ('@>').

Chapter mutations bump the version column and, when an expected version is
given, only apply if it still matches.
*/
package comic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/database/schema"
	"github.com/taibuivan/yomira-publish/internal/platform/dberr"
)

// # PostgreSQL Repository

// postgresStore implements [DocumentStore] using pgx.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL backed comic document store.
func NewPostgresStore(pool *pgxpool.Pool) DocumentStore {
	return &postgresStore{pool: pool}
}

var table = schema.CoreComicDocument

/*
FindByTitle returns the document stored under title.

Parameters:
  - context: context.Context
  - title: string (Primary key)

Returns:
  - *Comic: The decoded document with its version
  - error: NOT_FOUND when absent
*/
func (repository *postgresStore) FindByTitle(context context.Context, title string) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`,
		table.Document, table.Version, table.Table, table.Title)

	return repository.scanOne(repository.pool.QueryRow(context, query, title), "find comic")
}

/*
List retrieves a page of comics ordered by title.

Description: The total is computed with a window function so that one
round-trip yields both the page and the count.
*/
func (repository *postgresStore) List(context context.Context, filter Filter, limit, offset int) ([]*Comic, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE ($1 = '' OR %s -> 'genres' ? $1)
		  AND ($2 = '' OR %s ILIKE '%%' || $2 || '%%')
		ORDER BY %s ASC
		LIMIT $3 OFFSET $4
	`,
		table.Document, table.Version,
		table.Table,
		table.Document,
		table.Title,
		table.Title,
	)

	rows, err := repository.pool.Query(context, query, filter.Genre, filter.Query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Comic", "postgres: list comics")
	}
	defer rows.Close()

	comics := []*Comic{}
	total := 0

	for rows.Next() {
		var payload []byte
		var version int64
		if err := rows.Scan(&payload, &version, &total); err != nil {
			return nil, 0, dberr.Wrap(err, "Comic", "postgres: scan comic")
		}

		comic, err := decodeDocument(payload, version)
		if err != nil {
			return nil, 0, err
		}
		comics = append(comics, comic)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Comic", "postgres: iterate comics")
	}

	return comics, total, nil
}

/*
EnsureByTitle inserts the document unless the title already exists.

Returns:
  - *Comic: Whatever is stored for the title after the statement
*/
func (repository *postgresStore) EnsureByTitle(context context.Context, comic *Comic) (*Comic, error) {
	payload, err := encodeDocument(comic)
	if err != nil {
		return nil, err
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2::jsonb, 1, now(), now())
		ON CONFLICT (%s) DO NOTHING
	`,
		table.Table, strings.Join(table.Columns(), ", "),
		table.Title,
	)

	if _, err := repository.pool.Exec(context, insert, comic.Title, string(payload)); err != nil {
		return nil, dberr.Wrap(err, "Comic", "postgres: ensure comic")
	}

	return repository.FindByTitle(context, comic.Title)
}

/*
UpsertByTitle creates the document or merges descriptive metadata into it.

Description: On conflict the incoming document minus chapters, ratings and
comments is concatenated onto the stored one, so top-level metadata keys are
overwritten and reader data survives.
*/
func (repository *postgresStore) UpsertByTitle(context context.Context, comic *Comic) (*Comic, error) {
	payload, err := encodeDocument(comic)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS c (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s)
		VALUES ($1, $2::jsonb, 1, now(), now())
		ON CONFLICT (%[2]s) DO UPDATE
		SET %[3]s = c.%[3]s || (EXCLUDED.%[3]s - '%[7]s' - '%[8]s' - '%[9]s'),
		    %[6]s = now()
		RETURNING c.%[3]s, c.%[4]s
	`,
		table.Table, table.Title, table.Document, table.Version, table.CreatedAt, table.UpdatedAt,
		FieldChapters, FieldRatings, FieldComments,
	)

	return repository.scanOne(repository.pool.QueryRow(context, query, comic.Title, string(payload)), "upsert comic")
}

/*
UpdateField sets path to value as a single statement.

Parameters:
  - context: context.Context
  - title: string
  - path: FieldPath
  - value: any (JSON encoded)
  - expectedVersion: int64 (AnyVersion to skip the check)

Returns:
  - *Comic: The updated document
  - error: NOT_FOUND or CONFLICT
*/
func (repository *postgresStore) UpdateField(context context.Context, title string, path FieldPath, value any, expectedVersion int64) (*Comic, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	encoded, err := encodeValue(value)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = jsonb_set(%[2]s, $2::text[], $3::jsonb, true),
		    %[3]s = %[3]s + 1,
		    %[4]s = now()
		WHERE %[5]s = $1 AND ($4::bigint = 0 OR %[3]s = $4::bigint)
		RETURNING %[2]s, %[3]s
	`, table.Table, table.Document, table.Version, table.UpdatedAt, table.Title)

	row := repository.pool.QueryRow(context, query, title, []string(path), encoded, expectedVersion)
	return repository.scanMutation(context, row, title, expectedVersion, "update "+path.String())
}

/*
UnsetField removes path from the document as a single statement.
*/
func (repository *postgresStore) UnsetField(context context.Context, title string, path FieldPath, expectedVersion int64) (*Comic, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = %[2]s #- $2::text[],
		    %[3]s = %[3]s + 1,
		    %[4]s = now()
		WHERE %[5]s = $1 AND ($3::bigint = 0 OR %[3]s = $3::bigint)
		RETURNING %[2]s, %[3]s
	`, table.Table, table.Document, table.Version, table.UpdatedAt, table.Title)

	row := repository.pool.QueryRow(context, query, title, []string(path), expectedVersion)
	return repository.scanMutation(context, row, title, expectedVersion, "unset "+path.String())
}

/*
PushField appends value to the array at path, creating the array if missing.
*/
func (repository *postgresStore) PushField(context context.Context, title string, path FieldPath, value any) (*Comic, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	encoded, err := encodeValue(value)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = jsonb_set(%[2]s, $2::text[], COALESCE(%[2]s #> $2::text[], '[]'::jsonb) || jsonb_build_array($3::jsonb), true),
		    %[3]s = now()
		WHERE %[4]s = $1
		RETURNING %[2]s, %[5]s
	`, table.Table, table.Document, table.UpdatedAt, table.Title, table.Version)

	row := repository.pool.QueryRow(context, query, title, []string(path), encoded)
	return repository.scanMutation(context, row, title, AnyVersion, "push "+path.String())
}

/*
PullMatching removes array elements at path that contain every key/value of match.
*/
func (repository *postgresStore) PullMatching(context context.Context, title string, path FieldPath, match map[string]string) (*Comic, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	containment, _, err := sortedMatch(match)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = jsonb_set(%[2]s, $2::text[], COALESCE((
		        SELECT jsonb_agg(element ORDER BY position)
		        FROM jsonb_array_elements(%[2]s #> $2::text[]) WITH ORDINALITY AS items(element, position)
		        WHERE NOT (element @> $3::jsonb)
		    ), '[]'::jsonb), true),
		    %[3]s = now()
		WHERE %[4]s = $1 AND jsonb_typeof(%[2]s #> $2::text[]) = 'array'
		RETURNING %[2]s, %[5]s
	`, table.Table, table.Document, table.UpdatedAt, table.Title, table.Version)

	row := repository.pool.QueryRow(context, query, title, []string(path), containment)
	comic, err := repository.scanMutation(context, row, title, AnyVersion, "pull "+path.String())
	if apperr.HasCode(err, apperr.CodeNotFound) {
		// The title exists but has no array at path; nothing to pull.
		if existing, findErr := repository.FindByTitle(context, title); findErr == nil {
			return existing, nil
		}
	}
	return comic, err
}

// # Scanning Helpers

func (repository *postgresStore) scanOne(row pgx.Row, action string) (*Comic, error) {
	var payload []byte
	var version int64
	if err := row.Scan(&payload, &version); err != nil {
		return nil, dberr.Wrap(err, "Comic", "postgres: "+action)
	}
	return decodeDocument(payload, version)
}

// scanMutation scans the RETURNING row of a guarded UPDATE. When no row came
// back it tells a missing title apart from a stale version.
func (repository *postgresStore) scanMutation(context context.Context, row pgx.Row, title string, expectedVersion int64, action string) (*Comic, error) {
	comic, err := repository.scanOne(row, action)
	if err == nil || !apperr.HasCode(err, apperr.CodeNotFound) || expectedVersion == AnyVersion {
		return comic, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, table.Version, table.Table, table.Title)

	var current int64
	if scanErr := repository.pool.QueryRow(context, query, title).Scan(&current); scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Comic")
		}
		return nil, dberr.Wrap(scanErr, "Comic", "postgres: read version")
	}

	return nil, versionConflict(title, expectedVersion, current)
}

// versionConflict builds the CONFLICT error for a stale chapter mutation.
func versionConflict(title string, expected, current int64) error {
	conflict := apperr.Conflict(fmt.Sprintf("Comic %q was modified concurrently; reload and retry", title))
	conflict.Cause = fmt.Errorf("expected version %d, found %d", expected, current)
	return conflict
}
