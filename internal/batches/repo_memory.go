package batches

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores batches in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Batch
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Batch)}
}

// Create stores the batch.
func (r *MemoryRepo) Create(ctx context.Context, batch Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[batch.ID] = cloneBatch(batch)
	return nil
}

// Get returns a batch by ID for a user.
func (r *MemoryRepo) Get(ctx context.Context, userID, batchID string) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byID[batchID]
	if !ok {
		return Batch{}, ErrNotFound
	}
	if userID != "" && b.UserID != userID {
		return Batch{}, ErrForbidden
	}
	return cloneBatch(b), nil
}

// ListByUser returns a user's batches, newest first, without entries.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	var out []Batch
	for _, b := range r.byID {
		if b.UserID == userID {
			b.Entries = nil
			out = append(out, b)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []Batch{}, nil
	}
	end := len(out)
	if offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// MarkRunning moves a batch to running.
func (r *MemoryRepo) MarkRunning(ctx context.Context, batchID string, startedAt time.Time) error {
	return r.update(ctx, batchID, func(b *Batch) {
		b.Status = StatusRunning
		b.StartedAt = &startedAt
		b.ErrorMessage = ""
	})
}

// Complete stores the archive reference and entries.
func (r *MemoryRepo) Complete(ctx context.Context, batchID string, c Completion) error {
	return r.update(ctx, batchID, func(b *Batch) {
		b.Status = StatusCompleted
		b.ArchiveKey = c.ArchiveKey
		b.ArchiveName = c.ArchiveName
		b.ArchiveSize = c.ArchiveSize
		b.RenderFailures = c.RenderFailures
		b.Entries = append([]StoredEntry(nil), c.Entries...)
		at := c.CompletedAt
		b.CompletedAt = &at
	})
}

// Fail records a failure message.
func (r *MemoryRepo) Fail(ctx context.Context, batchID, message string, at time.Time) error {
	return r.update(ctx, batchID, func(b *Batch) {
		b.Status = StatusFailed
		b.ErrorMessage = message
		b.CompletedAt = &at
	})
}

// GetEntry returns one entry of a user's batch.
func (r *MemoryRepo) GetEntry(ctx context.Context, userID, batchID, entryID string) (StoredEntry, error) {
	b, err := r.Get(ctx, userID, batchID)
	if err != nil {
		return StoredEntry{}, err
	}
	for _, e := range b.Entries {
		if e.ID == entryID {
			return e, nil
		}
	}
	return StoredEntry{}, ErrNotFound
}

func (r *MemoryRepo) update(ctx context.Context, batchID string, fn func(*Batch)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[batchID]
	if !ok {
		return ErrNotFound
	}
	fn(&b)
	r.byID[batchID] = b
	return nil
}

func cloneBatch(b Batch) Batch {
	b.Entries = append([]StoredEntry(nil), b.Entries...)
	return b
}

var _ Repo = (*MemoryRepo)(nil)
