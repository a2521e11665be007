package jobcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyRunID     KeyContext = "run_id"
	keySermonID  KeyContext = "sermon_id"
	keyStage     KeyContext = "stage"
	keyStartTime KeyContext = "run_start_time"
)

// RunBegin initializes a pipeline run context with metadata and a timeout
// so a stuck vendor call can never hang the run forever.
func RunBegin(parentCtx context.Context, sermonID string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyRunID, uuid.New())
	ctx = context.WithValue(ctx, keySermonID, sermonID)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())

	return ctx, cancel
}

// WithStage tags the context with the current pipeline stage
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, keyStage, stage)
}

// GetRunID extracts the run ID from context
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// GetStage extracts the current stage from context
func GetStage(ctx context.Context) string {
	stage, ok := ctx.Value(keyStage).(string)
	if !ok {
		return "unknown"
	}
	return stage
}

// Elapsed returns how long the run has been going. Returns zero if the
// context was not created by RunBegin.
func Elapsed(ctx context.Context) time.Duration {
	startTime, ok := ctx.Value(keyStartTime).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(startTime)
}
