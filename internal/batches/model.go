package batches

import (
	"time"

	"applygen-backend/internal/generation"
	"applygen-backend/resume/model"
)

// Status of a batch.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Batch is one persisted generation request and its result.
type Batch struct {
	ID             string
	UserID         string
	Status         Status
	JobDescription string
	Count          int
	EducationLevel string
	Country        string
	ArchiveKey     string
	ArchiveName    string
	ArchiveSize    int64
	RenderFailures int
	ErrorMessage   string
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	Entries        []StoredEntry
}

// Request returns the orchestrator request the batch was created with.
func (b Batch) Request() Request {
	return Request{
		JobDescription: b.JobDescription,
		Count:          b.Count,
		EducationLevel: b.EducationLevel,
		Country:        b.Country,
	}
}

// StoredEntry is one candidate's persisted application.
type StoredEntry struct {
	ID          string
	BatchID     string
	Position    int
	Candidate   model.Candidate
	Resume      model.ResumeDocument
	CoverLetter string
	Theme       model.Theme
	Plan        generation.Plan
	CreatedAt   time.Time
}
