// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/constants"
)

// # Redis Cache

// CachedStore decorates a [DocumentStore] with a Redis document cache.
//
// Next to each cached document, comic:ver:{title} records the highest version
// written through. Both the fill and the write go through [storeScript]:
//
//   - Reads fill the cache only when it is empty and the document is not older
//     than the recorded version.
//   - Successful mutations write a newer version through, skip an older one
//     that arrives late, and evict on an equal version (ratings, comments and
//     metadata do not bump it, so the cached body may differ).
//   - A CONFLICT evicts the entry, so the caller's retry reloads from the store.
//
// Redis failures are logged and otherwise ignored; the wrapped store stays the
// source of truth.
type CachedStore struct {
	DocumentStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedStore wraps inner with a Redis cache whose entries expire after ttl.
func NewCachedStore(inner DocumentStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{DocumentStore: inner, client: client, ttl: ttl, logger: logger}
}

// Cache write modes understood by storeScript.
const (
	modeFill  = "fill"
	modeWrite = "write"
)

// storeScript applies one cache write against the version watermark.
//
// KEYS: document, watermark. ARGV: payload, version, ttl in ms, mode.
// Returns 1 when the document was stored.
var storeScript = redis.NewScript(`
local incoming = tonumber(ARGV[2])
local mark = tonumber(redis.call('GET', KEYS[2]) or '-1')
if incoming < mark then
  return 0
end
if ARGV[4] == 'fill' then
  if redis.call('EXISTS', KEYS[1]) == 1 then
    return 0
  end
elseif incoming == mark then
  redis.call('DEL', KEYS[1])
  return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

func cacheKey(title string) string {
	return constants.RedisPrefixComic + title
}

func versionKey(title string) string {
	return constants.RedisPrefixComicVersion + title
}

// put runs storeScript for the document of title in the given mode.
func (store *CachedStore) put(context context.Context, title string, comic *Comic, mode string) error {
	payload, err := json.Marshal(comic)
	if err != nil {
		return err
	}

	return storeScript.Run(context, store.client,
		[]string{cacheKey(title), versionKey(title)},
		payload, comic.Version, store.ttl.Milliseconds(), mode,
	).Err()
}

func (store *CachedStore) FindByTitle(context context.Context, title string) (*Comic, error) {
	payload, err := store.client.Get(context, cacheKey(title)).Bytes()
	switch {
	case err == nil:
		var comic Comic
		if decodeErr := json.Unmarshal(payload, &comic); decodeErr == nil {
			comic.Normalize()
			return &comic, nil
		}
		store.evict(context, title)
	case !errors.Is(err, redis.Nil):
		store.logger.Warn("comic_cache_read_failed", slog.String("title", title), slog.Any("error", err))
	}

	comic, err := store.DocumentStore.FindByTitle(context, title)
	if err != nil {
		return nil, err
	}

	if fillErr := store.put(context, title, comic, modeFill); fillErr != nil {
		store.logger.Warn("comic_cache_fill_failed", slog.String("title", title), slog.Any("error", fillErr))
	}

	return comic, nil
}

func (store *CachedStore) EnsureByTitle(context context.Context, comic *Comic) (*Comic, error) {
	return store.writeThrough(context, comic.Title)(store.DocumentStore.EnsureByTitle(context, comic))
}

func (store *CachedStore) UpsertByTitle(context context.Context, comic *Comic) (*Comic, error) {
	return store.writeThrough(context, comic.Title)(store.DocumentStore.UpsertByTitle(context, comic))
}

func (store *CachedStore) UpdateField(context context.Context, title string, path FieldPath, value any, expectedVersion int64) (*Comic, error) {
	return store.writeThrough(context, title)(store.DocumentStore.UpdateField(context, title, path, value, expectedVersion))
}

func (store *CachedStore) UnsetField(context context.Context, title string, path FieldPath, expectedVersion int64) (*Comic, error) {
	return store.writeThrough(context, title)(store.DocumentStore.UnsetField(context, title, path, expectedVersion))
}

func (store *CachedStore) PushField(context context.Context, title string, path FieldPath, value any) (*Comic, error) {
	return store.writeThrough(context, title)(store.DocumentStore.PushField(context, title, path, value))
}

func (store *CachedStore) PullMatching(context context.Context, title string, path FieldPath, match map[string]string) (*Comic, error) {
	return store.writeThrough(context, title)(store.DocumentStore.PullMatching(context, title, path, match))
}

// writeThrough returns a function that records the outcome of a mutation in the
// cache and passes it on unchanged.
func (store *CachedStore) writeThrough(context context.Context, title string) func(*Comic, error) (*Comic, error) {
	return func(comic *Comic, err error) (*Comic, error) {
		if err != nil {
			if apperr.HasCode(err, apperr.CodeConflict) || apperr.HasCode(err, apperr.CodeNotFound) {
				store.evict(context, title)
			}
			return nil, err
		}

		if writeErr := store.put(context, title, comic, modeWrite); writeErr != nil {
			store.logger.Warn("comic_cache_write_failed", slog.String("title", title), slog.Any("error", writeErr))
			store.evict(context, title)
		}
		return comic, nil
	}
}

func (store *CachedStore) evict(context context.Context, title string) {
	if err := store.client.Del(context, cacheKey(title)).Err(); err != nil {
		store.logger.Warn("comic_cache_evict_failed", slog.String("title", title), slog.Any("error", err))
	}
}
