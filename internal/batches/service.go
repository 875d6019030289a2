package batches

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"applygen-backend/internal/archive"
	"applygen-backend/internal/catalog"
	"applygen-backend/internal/shared/metrics"
	"applygen-backend/internal/shared/storage/object"
	"applygen-backend/internal/shared/telemetry"
	"applygen-backend/resume/model"
)

const archiveContentType = "application/zip"

// Enqueuer hands a batch to the background worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, batchID string) error
}

// Packager renders entries and builds the archive.
type Packager interface {
	Package(ctx context.Context, country string, docs []archive.Document) (archive.Archive, error)
}

// Responder answers screening questions as a generated candidate.
type Responder interface {
	Answer(ctx context.Context, c model.Candidate, resume model.ResumeDocument, jd, question string) string
}

// Service coordinates batch creation, processing and retrieval.
type Service struct {
	Repo         Repo
	Store        object.ObjectStore
	Catalog      *catalog.Catalog
	Orchestrator *Orchestrator
	Packager     Packager
	Responder    Responder
	// Queue is optional; without it batches are processed inline.
	Queue Enqueuer
	// Unavailable, when set, rejects new batches before anything is stored.
	Unavailable error
	Now         func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create validates and persists a batch, then either enqueues it or
// processes it before returning. The bool reports whether it was queued.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (Batch, bool, error) {
	if s.Unavailable != nil {
		return Batch{}, false, s.Unavailable
	}
	if strings.TrimSpace(userID) == "" {
		return Batch{}, false, ErrInvalidInput
	}
	if strings.TrimSpace(req.JobDescription) == "" || req.Count <= 0 {
		return Batch{}, false, ErrEmptyInput
	}
	if err := validate.Struct(req); err != nil {
		return Batch{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if bounds := s.Catalog.CountBounds(); req.Count > bounds.Max {
		return Batch{}, false, fmt.Errorf("%w: count must be at most %d", ErrInvalidInput, bounds.Max)
	}
	country, err := s.Orchestrator.Validate(Request{
		JobDescription: req.JobDescription,
		Count:          req.Count,
		EducationLevel: req.EducationLevel,
		Country:        req.Country,
	})
	if err != nil {
		return Batch{}, false, err
	}

	b := Batch{
		ID:             uuid.NewString(),
		UserID:         userID,
		Status:         StatusQueued,
		JobDescription: strings.TrimSpace(req.JobDescription),
		Count:          req.Count,
		EducationLevel: req.EducationLevel,
		Country:        country.Name,
		CreatedAt:      s.now(),
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return Batch{}, false, err
	}
	telemetry.Info("batch.created", map[string]any{
		"batch_id": b.ID,
		"user_id":  userID,
		"count":    b.Count,
		"country":  b.Country,
		"queued":   s.Queue != nil,
	})

	if s.Queue != nil {
		if err := s.Queue.Enqueue(ctx, b.ID); err != nil {
			_ = s.Repo.Fail(ctx, b.ID, "enqueue failed", s.now())
			return Batch{}, false, fmt.Errorf("enqueue batch %s: %w", b.ID, err)
		}
		return b, true, nil
	}

	done, err := s.Process(ctx, b.ID)
	return done, false, err
}

// Process runs a queued batch end to end: generation, packaging, upload and
// persistence. Completed batches are returned unchanged so redelivered
// queue messages are harmless.
func (s *Service) Process(ctx context.Context, batchID string) (Batch, error) {
	b, err := s.Repo.Get(ctx, "", batchID)
	if err != nil {
		return Batch{}, err
	}
	if b.Status == StatusCompleted {
		return b, nil
	}

	started := s.now()
	if err := s.Repo.MarkRunning(ctx, b.ID, started); err != nil {
		return Batch{}, err
	}
	metrics.IncBatchStarted()

	result, err := s.Orchestrator.RunBatch(ctx, b.Request())
	if err != nil {
		return s.fail(ctx, b, err)
	}

	entries := result.Entries()
	docs := make([]archive.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, archive.Document{
			Candidate:   e.Candidate,
			Resume:      e.Resume,
			CoverLetter: e.CoverLetter,
			Theme:       e.Theme,
		})
	}
	arc, err := s.Packager.Package(ctx, result.Country.Name, docs)
	if err != nil {
		if errors.Is(err, archive.ErrEmptyArchive) {
			err = fmt.Errorf("%w: %w", ErrBatchFailed, err)
		}
		return s.fail(ctx, b, err)
	}

	key := object.ArchiveKey(b.ID, arc.Filename)
	size, err := s.Store.Put(ctx, key, archiveContentType, bytes.NewReader(arc.Bytes))
	if err != nil {
		return s.fail(ctx, b, fmt.Errorf("store archive: %w", err))
	}

	completedAt := s.now()
	stored := make([]StoredEntry, 0, len(entries))
	for i, e := range entries {
		stored = append(stored, StoredEntry{
			ID:          uuid.NewString(),
			BatchID:     b.ID,
			Position:    i,
			Candidate:   e.Candidate,
			Resume:      e.Resume,
			CoverLetter: e.CoverLetter,
			Theme:       e.Theme,
			Plan:        e.Plan,
			CreatedAt:   completedAt,
		})
	}
	if err := s.Repo.Complete(ctx, b.ID, Completion{
		ArchiveKey:     key,
		ArchiveName:    arc.Filename,
		ArchiveSize:    size,
		RenderFailures: arc.Failures,
		Entries:        stored,
		CompletedAt:    completedAt,
	}); err != nil {
		return Batch{}, err
	}

	metrics.IncBatchCompleted()
	metrics.ObserveBatchDurationMs(float64(completedAt.Sub(started).Milliseconds()))
	telemetry.Info("batch.completed", map[string]any{
		"batch_id":        b.ID,
		"entries":         len(stored),
		"dropped":         result.Failures(),
		"render_failures": arc.Failures,
		"archive":         arc.Filename,
	})
	return s.Repo.Get(ctx, "", b.ID)
}

func (s *Service) fail(ctx context.Context, b Batch, cause error) (Batch, error) {
	metrics.IncBatchFailed()
	telemetry.Error("batch.failed", map[string]any{
		"batch_id": b.ID,
		"err":      cause,
	})
	if err := s.Repo.Fail(ctx, b.ID, cause.Error(), s.now()); err != nil {
		return Batch{}, errors.Join(cause, err)
	}
	return Batch{}, cause
}

// Get returns a user's batch with its entries.
func (s *Service) Get(ctx context.Context, userID, batchID string) (Batch, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(batchID) == "" {
		return Batch{}, ErrInvalidInput
	}
	return s.Repo.Get(ctx, userID, batchID)
}

// List returns a user's batches, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Batch, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// OpenArchive opens the zip of a completed batch.
func (s *Service) OpenArchive(ctx context.Context, userID, batchID string) (io.ReadCloser, Batch, error) {
	b, err := s.Get(ctx, userID, batchID)
	if err != nil {
		return nil, Batch{}, err
	}
	if b.Status != StatusCompleted || b.ArchiveKey == "" {
		return nil, Batch{}, ErrNotReady
	}
	rc, err := s.Store.Open(ctx, b.ArchiveKey)
	if err != nil {
		return nil, Batch{}, fmt.Errorf("open archive %s: %w", b.ArchiveKey, err)
	}
	return rc, b, nil
}

// Answer responds to a screening question as the candidate of one entry.
func (s *Service) Answer(ctx context.Context, userID, batchID, entryID, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyInput
	}
	if err := validate.Struct(AnswerRequest{Question: question}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	b, err := s.Get(ctx, userID, batchID)
	if err != nil {
		return "", err
	}
	entry, err := s.Repo.GetEntry(ctx, userID, batchID, entryID)
	if err != nil {
		return "", err
	}
	return s.Responder.Answer(ctx, entry.Candidate, entry.Resume, b.JobDescription, question), nil
}
