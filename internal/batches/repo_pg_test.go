package batches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"applygen-backend/internal/generation"
	"applygen-backend/resume/model"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

const (
	testBatchID    = "7f8d2c1e-4b5a-4c3d-9e8f-1a2b3c4d5e6f"
	testEntryID    = "0b1c2d3e-4f50-4617-8293-a4b5c6d7e8f9"
	missingBatchID = "00000000-0000-4000-8000-000000000000"
)

var batchCols = []string{
	"id", "user_id", "status", "job_description", "requested_count", "education_level", "country",
	"archive_key", "archive_name", "archive_size", "render_failures", "error_message", "created_at", "started_at", "completed_at",
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	b := Batch{
		ID:             "b-1",
		UserID:         "user-1",
		Status:         StatusQueued,
		JobDescription: "jd",
		Count:          6,
		EducationLevel: "Bachelor of Science in Computer Science",
		Country:        "Germany",
		CreatedAt:      time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO batches").
		WithArgs(b.ID, b.UserID, "queued", b.JobDescription, b.Count, b.EducationLevel, b.Country, b.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), b); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetWithEntries(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM batches WHERE id").
		WithArgs(testBatchID).
		WillReturnRows(sqlmock.NewRows(batchCols).AddRow(
			testBatchID, "user-1", "completed", "jd", 6, "Bachelor of Science in Computer Science", "Germany",
			"batches/b-1/a.zip", "a.zip", int64(42), 1, "", created, created, created,
		))

	candidate, _ := json.Marshal(model.Candidate{ID: "c01", Name: "Anna Schmidt"})
	resume, _ := json.Marshal(model.ResumeDocument{Summary: "Engineer"})
	theme, _ := json.Marshal(model.DefaultTheme())
	plan, _ := json.Marshal(generation.Plan{RequiredYears: 5})
	mock.ExpectQuery("FROM batch_entries").
		WithArgs(testBatchID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "batch_id", "position", "candidate", "resume", "cover_letter", "theme", "plan", "created_at"}).
			AddRow(testEntryID, testBatchID, 0, candidate, resume, "Dear team", theme, plan, created))

	b, err := repo.Get(context.Background(), "user-1", testBatchID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.Status != StatusCompleted || b.ArchiveSize != 42 || b.RenderFailures != 1 {
		t.Fatalf("unexpected batch %+v", b)
	}
	if b.CompletedAt == nil || !b.CompletedAt.Equal(created) {
		t.Fatalf("expected completed_at to be set")
	}
	if len(b.Entries) != 1 || b.Entries[0].Candidate.Name != "Anna Schmidt" || b.Entries[0].Plan.RequiredYears != 5 {
		t.Fatalf("unexpected entries %+v", b.Entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetOwnership(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM batches WHERE id").
		WithArgs(testBatchID).
		WillReturnRows(sqlmock.NewRows(batchCols).AddRow(
			testBatchID, "owner", "queued", "jd", 6, "lvl", "Germany", "", "", int64(0), 0, "", created, nil, nil,
		))
	if _, err := repo.Get(context.Background(), "intruder", testBatchID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	mock.ExpectQuery("SELECT (.+) FROM batches WHERE id").
		WithArgs(missingBatchID).
		WillReturnError(sql.ErrNoRows)
	if _, err := repo.Get(context.Background(), "owner", missingBatchID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoCompleteInsertsEntriesInTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	c := Completion{
		ArchiveKey:  "batches/b-1/a.zip",
		ArchiveName: "a.zip",
		ArchiveSize: 100,
		CompletedAt: now,
		Entries: []StoredEntry{
			{ID: "e-1", Position: 0, Candidate: model.Candidate{Name: "A"}, CoverLetter: "x", CreatedAt: now},
			{ID: "e-2", Position: 1, Candidate: model.Candidate{Name: "B"}, CoverLetter: "y", CreatedAt: now},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE batches").
		WithArgs("b-1", "completed", c.ArchiveKey, c.ArchiveName, c.ArchiveSize, 0, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for _, e := range c.Entries {
		mock.ExpectExec("INSERT INTO batch_entries").
			WithArgs(e.ID, "b-1", e.Position, sqlmock.AnyArg(), sqlmock.AnyArg(), e.CoverLetter, sqlmock.AnyArg(), sqlmock.AnyArg(), now).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	if err := repo.Complete(context.Background(), "b-1", c); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoFailUnknownBatch(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE batches SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Fail(context.Background(), "missing", "boom", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoRejectsMalformedIDs(t *testing.T) {
	repo, mock := newMockRepo(t)

	if _, err := repo.Get(context.Background(), "user-1", "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetEntry(context.Background(), "user-1", "not-a-uuid", testEntryID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetEntry batch: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetEntry(context.Background(), "user-1", testBatchID, "entry; drop"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetEntry entry: expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestPGRepoGetEntry(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT user_id FROM batches").
		WithArgs(testBatchID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-1"))

	candidate, _ := json.Marshal(model.Candidate{ID: "c02", Name: "Luca Rossi"})
	resume, _ := json.Marshal(model.ResumeDocument{Summary: "Engineer"})
	theme, _ := json.Marshal(model.DefaultTheme())
	plan, _ := json.Marshal(generation.Plan{RequiredYears: 2})
	mock.ExpectQuery("FROM batch_entries").
		WithArgs(testBatchID, testEntryID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "batch_id", "position", "candidate", "resume", "cover_letter", "theme", "plan", "created_at"}).
			AddRow(testEntryID, testBatchID, 1, candidate, resume, "Dear team", theme, plan, created))

	e, err := repo.GetEntry(context.Background(), "user-1", testBatchID, testEntryID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if e.Candidate.Name != "Luca Rossi" || e.Position != 1 {
		t.Fatalf("unexpected entry %+v", e)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUserDefaultLimit(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM batches").
		WithArgs("user-1", defaultListLimit, 0).
		WillReturnRows(sqlmock.NewRows(batchCols))

	got, err := repo.ListByUser(context.Background(), "user-1", 0, -4)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %d", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
