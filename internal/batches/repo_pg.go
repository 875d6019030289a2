package batches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const batchColumns = `id, user_id, status, job_description, requested_count, education_level, country,
    archive_key, archive_name, archive_size, render_failures, error_message, created_at, started_at, completed_at`

// Create inserts a batch.
func (r *PGRepo) Create(ctx context.Context, b Batch) error {
	const query = `
INSERT INTO batches (
    id, user_id, status, job_description, requested_count, education_level, country, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		b.ID,
		b.UserID,
		string(b.Status),
		b.JobDescription,
		b.Count,
		b.EducationLevel,
		b.Country,
		b.CreatedAt,
	)
	return err
}

// Get returns a batch and its entries.
func (r *PGRepo) Get(ctx context.Context, userID, batchID string) (Batch, error) {
	if !validID(batchID) {
		return Batch{}, ErrNotFound
	}
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1 LIMIT 1`
	b, err := scanBatch(r.DB.QueryRowContext(ctx, query, batchID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Batch{}, ErrNotFound
		}
		return Batch{}, err
	}
	if userID != "" && b.UserID != userID {
		return Batch{}, ErrForbidden
	}
	entries, err := r.entries(ctx, batchID)
	if err != nil {
		return Batch{}, err
	}
	b.Entries = entries
	return b, nil
}

// ListByUser lists batches newest-first without entries.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Batch, error) {
	limit = normalizeLimit(limit)
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + batchColumns + `
FROM batches
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Batch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// MarkRunning moves a batch to running.
func (r *PGRepo) MarkRunning(ctx context.Context, batchID string, startedAt time.Time) error {
	const query = `UPDATE batches SET status = $2, started_at = $3, error_message = '' WHERE id = $1`
	return r.execOne(ctx, query, batchID, string(StatusRunning), startedAt)
}

// Complete stores the archive reference and entries in one transaction.
func (r *PGRepo) Complete(ctx context.Context, batchID string, c Completion) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const update = `
UPDATE batches
SET status = $2, archive_key = $3, archive_name = $4, archive_size = $5, render_failures = $6, completed_at = $7
WHERE id = $1`
	res, err := tx.ExecContext(ctx, update, batchID, string(StatusCompleted),
		c.ArchiveKey, c.ArchiveName, c.ArchiveSize, c.RenderFailures, c.CompletedAt)
	if err != nil {
		return err
	}
	if err := expectOne(res); err != nil {
		return err
	}

	const insert = `
INSERT INTO batch_entries (
    id, batch_id, position, candidate, resume, cover_letter, theme, plan, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, e := range c.Entries {
		candidate, resume, theme, plan, err := marshalEntry(e)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insert,
			e.ID, batchID, e.Position, candidate, resume, e.CoverLetter, theme, plan, e.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// Fail records a failure message.
func (r *PGRepo) Fail(ctx context.Context, batchID, message string, at time.Time) error {
	const query = `UPDATE batches SET status = $2, error_message = $3, completed_at = $4 WHERE id = $1`
	return r.execOne(ctx, query, batchID, string(StatusFailed), message, at)
}

// GetEntry returns one entry after checking batch ownership.
func (r *PGRepo) GetEntry(ctx context.Context, userID, batchID, entryID string) (StoredEntry, error) {
	if !validID(batchID) || !validID(entryID) {
		return StoredEntry{}, ErrNotFound
	}
	const owner = `SELECT user_id FROM batches WHERE id = $1`
	var ownerID string
	if err := r.DB.QueryRowContext(ctx, owner, batchID).Scan(&ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StoredEntry{}, ErrNotFound
		}
		return StoredEntry{}, err
	}
	if userID != "" && ownerID != userID {
		return StoredEntry{}, ErrForbidden
	}

	const query = `
SELECT id, batch_id, position, candidate, resume, cover_letter, theme, plan, created_at
FROM batch_entries
WHERE batch_id = $1 AND id = $2`
	e, err := scanEntry(r.DB.QueryRowContext(ctx, query, batchID, entryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StoredEntry{}, ErrNotFound
		}
		return StoredEntry{}, err
	}
	return e, nil
}

func (r *PGRepo) entries(ctx context.Context, batchID string) ([]StoredEntry, error) {
	const query = `
SELECT id, batch_id, position, candidate, resume, cover_letter, theme, plan, created_at
FROM batch_entries
WHERE batch_id = $1
ORDER BY position`
	rows, err := r.DB.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// validID reports whether id can be compared against a UUID column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *PGRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (Batch, error) {
	var (
		b         Batch
		status    string
		started   sql.NullTime
		completed sql.NullTime
	)
	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&status,
		&b.JobDescription,
		&b.Count,
		&b.EducationLevel,
		&b.Country,
		&b.ArchiveKey,
		&b.ArchiveName,
		&b.ArchiveSize,
		&b.RenderFailures,
		&b.ErrorMessage,
		&b.CreatedAt,
		&started,
		&completed,
	); err != nil {
		return Batch{}, err
	}
	b.Status = Status(status)
	if started.Valid {
		t := started.Time
		b.StartedAt = &t
	}
	if completed.Valid {
		t := completed.Time
		b.CompletedAt = &t
	}
	return b, nil
}

func scanEntry(row rowScanner) (StoredEntry, error) {
	var (
		e                              StoredEntry
		candidate, resume, theme, plan []byte
	)
	if err := row.Scan(
		&e.ID,
		&e.BatchID,
		&e.Position,
		&candidate,
		&resume,
		&e.CoverLetter,
		&theme,
		&plan,
		&e.CreatedAt,
	); err != nil {
		return StoredEntry{}, err
	}
	for _, f := range []struct {
		raw []byte
		dst any
	}{
		{candidate, &e.Candidate},
		{resume, &e.Resume},
		{theme, &e.Theme},
		{plan, &e.Plan},
	} {
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return StoredEntry{}, fmt.Errorf("decode entry %s: %w", e.ID, err)
		}
	}
	return e, nil
}

func marshalEntry(e StoredEntry) (candidate, resume, theme, plan []byte, err error) {
	if candidate, err = json.Marshal(e.Candidate); err != nil {
		return
	}
	if resume, err = json.Marshal(e.Resume); err != nil {
		return
	}
	if theme, err = json.Marshal(e.Theme); err != nil {
		return
	}
	plan, err = json.Marshal(e.Plan)
	return
}

var _ Repo = (*PGRepo)(nil)
