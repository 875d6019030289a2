package batches

import (
	"time"

	"github.com/go-playground/validator/v10"

	"applygen-backend/internal/generation"
	"applygen-backend/resume/model"
)

var validate = validator.New()

// CreateRequest is the body of POST /batches.
type CreateRequest struct {
	JobDescription string `json:"jobDescription" validate:"max=20000"`
	Count          int    `json:"count" validate:"gte=0"`
	EducationLevel string `json:"educationLevel" validate:"required,max=200"`
	Country        string `json:"country" validate:"required,max=100"`
}

// AnswerRequest is the body of POST /batches/:id/entries/:entryId/answers.
type AnswerRequest struct {
	Question string `json:"question" validate:"max=2000"`
}

// BatchResponse is the outward-facing representation of a batch.
type BatchResponse struct {
	BatchID        string          `json:"batchId"`
	Status         Status          `json:"status"`
	Country        string          `json:"country"`
	EducationLevel string          `json:"educationLevel"`
	Requested      int             `json:"requested"`
	Generated      int             `json:"generated"`
	RenderFailures int             `json:"renderFailures"`
	ArchiveName    string          `json:"archiveName,omitempty"`
	ArchiveSize    int64           `json:"archiveSize,omitempty"`
	Error          string          `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
	Entries        []EntryResponse `json:"entries,omitempty"`
}

// EntryResponse summarizes one generated application.
type EntryResponse struct {
	EntryID     string               `json:"entryId"`
	Candidate   model.Candidate      `json:"candidate"`
	Resume      model.ResumeDocument `json:"resume"`
	CoverLetter string               `json:"coverLetter"`
	Theme       model.Theme          `json:"theme"`
	Plan        generation.Plan      `json:"plan"`
}

// AnswerResponse carries a screening answer.
type AnswerResponse struct {
	Answer string `json:"answer"`
}

func toBatchResponse(b Batch) BatchResponse {
	resp := BatchResponse{
		BatchID:        b.ID,
		Status:         b.Status,
		Country:        b.Country,
		EducationLevel: b.EducationLevel,
		Requested:      b.Count,
		Generated:      len(b.Entries),
		RenderFailures: b.RenderFailures,
		ArchiveName:    b.ArchiveName,
		ArchiveSize:    b.ArchiveSize,
		Error:          b.ErrorMessage,
		CreatedAt:      b.CreatedAt,
		CompletedAt:    b.CompletedAt,
	}
	for _, e := range b.Entries {
		resp.Entries = append(resp.Entries, EntryResponse{
			EntryID:     e.ID,
			Candidate:   e.Candidate,
			Resume:      e.Resume,
			CoverLetter: e.CoverLetter,
			Theme:       e.Theme,
			Plan:        e.Plan,
		})
	}
	return resp
}
