// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	stdctx "context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-publish/internal/platform/apperr"
	"github.com/taibuivan/yomira-publish/internal/platform/constants"
	"github.com/taibuivan/yomira-publish/pkg/convert"
)

// Operation states stored next to the snapshot.
const (
	StateRunning   = "running"
	StateSucceeded = "succeeded"
	StateFailed    = "failed"
)

const writeTimeout = 2 * time.Second

// Hash fields of an operation record.
const (
	fieldStage     = "stage"
	fieldPercent   = "percent"
	fieldDone      = "done"
	fieldTotal     = "total"
	fieldState     = "state"
	fieldError     = "error"
	fieldUpdatedAt = "updated_at"
)

// Operation is the polled view of a tracked pipeline run.
type Operation struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
	Snapshot
}

// RedisTracker stores the latest snapshot of each operation in a Redis hash
// keyed progress:op:{id}. Records expire after ttl.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewRedisTracker constructs a [RedisTracker].
func NewRedisTracker(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisTracker {
	return &RedisTracker{client: client, ttl: ttl, logger: logger, now: time.Now}
}

func key(operationID string) string {
	return constants.RedisPrefixProgress + operationID
}

/*
Func returns a sink that records every snapshot for operationID.

Description: Writes are detached from the request context so that a client
disconnect does not freeze the record. Failures are logged and dropped.
*/
func (tracker *RedisTracker) Func(context stdctx.Context, operationID string) Func {
	base := stdctx.WithoutCancel(context)

	return func(snapshot Snapshot) {
		tracker.write(base, operationID, map[string]any{
			fieldStage:   snapshot.Stage,
			fieldPercent: snapshot.Percent,
			fieldDone:    snapshot.Done,
			fieldTotal:   snapshot.Total,
			fieldState:   StateRunning,
		})
	}
}

// Finish marks the operation succeeded, or failed with err's message.
func (tracker *RedisTracker) Finish(context stdctx.Context, operationID string, err error) {
	values := map[string]any{fieldState: StateSucceeded, fieldError: ""}
	if err != nil {
		values[fieldState] = StateFailed
		values[fieldError] = err.Error()
	}
	tracker.write(stdctx.WithoutCancel(context), operationID, values)
}

func (tracker *RedisTracker) write(context stdctx.Context, operationID string, values map[string]any) {
	writeCtx, cancel := stdctx.WithTimeout(context, writeTimeout)
	defer cancel()

	values[fieldUpdatedAt] = tracker.now().UTC().Format(time.RFC3339Nano)
	recordKey := key(operationID)

	_, err := tracker.client.TxPipelined(writeCtx, func(pipe redis.Pipeliner) error {
		pipe.HSet(writeCtx, recordKey, values)
		pipe.Expire(writeCtx, recordKey, tracker.ttl)
		return nil
	})
	if err != nil {
		tracker.logger.Warn("progress_write_failed",
			slog.String("operation_id", operationID),
			slog.Any("error", err),
		)
	}
}

/*
Get reads the latest record of an operation.

Returns:
  - *Operation: The stored state
  - error: NOT_FOUND if unknown or expired, BACKEND_UNAVAILABLE on Redis errors
*/
func (tracker *RedisTracker) Get(context stdctx.Context, operationID string) (*Operation, error) {
	values, err := tracker.client.HGetAll(context, key(operationID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, apperr.BackendUnavailable("Progress tracker", err)
	}
	if len(values) == 0 {
		return nil, apperr.NotFound("Operation")
	}

	operation := &Operation{
		ID:    operationID,
		State: values[fieldState],
		Error: values[fieldError],
		Snapshot: Snapshot{
			Stage:   values[fieldStage],
			Percent: convert.ToIntD(values[fieldPercent], 0),
			Done:    convert.ToIntD(values[fieldDone], 0),
			Total:   convert.ToIntD(values[fieldTotal], 0),
		},
	}
	if updatedAt, parseErr := time.Parse(time.RFC3339Nano, values[fieldUpdatedAt]); parseErr == nil {
		operation.UpdatedAt = updatedAt
	}
	return operation, nil
}
