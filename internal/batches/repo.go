package batches

import (
	"context"
	"time"
)

// Completion carries the fields written when a batch succeeds.
type Completion struct {
	ArchiveKey     string
	ArchiveName    string
	ArchiveSize    int64
	RenderFailures int
	Entries        []StoredEntry
	CompletedAt    time.Time
}

// Repo defines persistence operations for batches.
type Repo interface {
	Create(ctx context.Context, batch Batch) error
	// Get returns the batch with its entries. ErrForbidden when userID does
	// not own it; an empty userID skips the ownership check.
	Get(ctx context.Context, userID, batchID string) (Batch, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Batch, error)
	MarkRunning(ctx context.Context, batchID string, startedAt time.Time) error
	Complete(ctx context.Context, batchID string, c Completion) error
	Fail(ctx context.Context, batchID, message string, at time.Time) error
	GetEntry(ctx context.Context, userID, batchID, entryID string) (StoredEntry, error)
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// normalizeLimit applies the shared page size rules of ListByUser.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
