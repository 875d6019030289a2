package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Report is the body of GET /health.
type Report struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	LLM      string `json:"llm"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB Pinger
	// LLMUnavailable is the reason generation is disabled, if any.
	LLMUnavailable error
}

// NewService constructs a new health service. db may be nil when running on
// in-memory repositories.
func NewService(db Pinger, llmUnavailable error) *Service {
	return &Service{DB: db, LLMUnavailable: llmUnavailable}
}

// Status reports dependency state. OK is false only when a configured
// database cannot be reached; a missing LLM key degrades but does not fail.
func (s *Service) Status(ctx context.Context) Report {
	r := Report{OK: true, Database: "memory", LLM: "ready"}
	if s == nil {
		return r
	}
	if s.DB != nil {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.DB.PingContext(ctx); err != nil {
			r.OK = false
			r.Database = "unreachable"
		} else {
			r.Database = "ok"
		}
	}
	if s.LLMUnavailable != nil {
		r.LLM = "not_configured"
	}
	return r
}
