// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"applygen-backend/internal/llm"
)

// Fake answers requests with a responder function and records every call.
type Fake struct {
	mu      sync.Mutex
	calls   []llm.Request
	Respond func(req llm.Request) (string, error)
}

// NewFake returns a Fake that serves valid resume JSON, a short cover
// letter and a short screening answer.
func NewFake() *Fake {
	return &Fake{Respond: DefaultResponse}
}

// Complete records the request and delegates to Respond.
func (f *Fake) Complete(ctx context.Context, req llm.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.calls = append(f.calls, req)
	respond := f.Respond
	f.mu.Unlock()
	if respond == nil {
		respond = DefaultResponse
	}
	return respond(req)
}

// Calls returns a copy of the recorded requests.
func (f *Fake) Calls() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.Request(nil), f.calls...)
}

// CallsFor returns the recorded requests for one purpose.
func (f *Fake) CallsFor(purpose string) []llm.Request {
	var out []llm.Request
	for _, c := range f.Calls() {
		if c.Purpose == purpose {
			out = append(out, c)
		}
	}
	return out
}

// DefaultResponse serves canned output per purpose.
func DefaultResponse(req llm.Request) (string, error) {
	switch req.Purpose {
	case llm.PurposeResume:
		return ResumeJSON([]string{"English (C1)"}), nil
	case llm.PurposeCoverLetter:
		return CoverLetter, nil
	case llm.PurposeScreeningAnswer:
		return "I have built containerised services with Docker and I am keen to deepen my orchestration skills.", nil
	default:
		return "", fmt.Errorf("unexpected purpose %q", req.Purpose)
	}
}

// CoverLetter is the canned cover letter text.
const CoverLetter = "Dear Hiring Manager,\n\nI am writing to apply for the **Backend Engineer** role.\n\nAt SAP I built payment services.\n\nKind regards"

// ResumeJSON returns a schema-valid resume object with the given languages.
func ResumeJSON(languages []string) string {
	doc := map[string]any{
		"contact": map[string]string{"email": "model@example.com", "phone": "000"},
		"summary": "Backend engineer with a focus on **distributed systems**.",
		"education": []map[string]string{
			{"degree": "Bachelor of Science in Computer Science", "university": "RWTH Aachen University", "year": "2019", "details": "Distributed systems"},
		},
		"skills":       []string{"Go", "PostgreSQL", "Docker"},
		"certificates": []string{"AWS Certified Developer"},
		"languages":    languages,
	}
	companies := []string{"SAP", "Siemens", "Zalando", "Bosch"}
	var exp []map[string]any
	for i, c := range companies {
		exp = append(exp, map[string]any{
			"company":     c,
			"role":        fmt.Sprintf("Engineer %d", i+1),
			"duration":    "June 2020 - August 2021",
			"description": []string{"Built _services_", "Cut latency by 30%"},
		})
	}
	doc["experience"] = exp
	var projects []map[string]any
	for i := 1; i <= 4; i++ {
		projects = append(projects, map[string]any{
			"title":       fmt.Sprintf("Project %d", i),
			"description": []string{"Designed an event pipeline", "Used *Kafka* and Go"},
		})
	}
	doc["projects"] = projects
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(raw)
}

// PromptMentions reports whether the request prompt contains s.
func PromptMentions(req llm.Request, s string) bool {
	return strings.Contains(req.Prompt, s)
}
