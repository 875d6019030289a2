package generation

import (
	"context"
	"encoding/json"
	"strings"

	"applygen-backend/internal/llm"
	"applygen-backend/internal/shared/metrics"
	"applygen-backend/internal/shared/telemetry"
	"applygen-backend/resume/model"
)

// AnswerFallback is returned when no answer could be generated.
const AnswerFallback = "Sorry, I could not generate an answer at this time."

// Responder answers screening questions in the voice of a generated candidate.
type Responder struct {
	client llm.Client
}

// NewResponder constructs a Responder.
func NewResponder(client llm.Client) *Responder {
	return &Responder{client: client}
}

// Answer returns a short first-person answer grounded in the resume. It
// never returns an error; failures yield AnswerFallback.
func (r *Responder) Answer(ctx context.Context, c model.Candidate, resume model.ResumeDocument, jd, question string) string {
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		resumeJSON = []byte("{}")
	}
	tmpl, _ := llm.PromptTemplate(llm.PurposeScreeningAnswer)
	prompt := strings.NewReplacer(
		"{{NAME}}", c.Name,
		"{{JOB_DESCRIPTION}}", jd,
		"{{RESUME_JSON}}", string(resumeJSON),
		"{{QUESTION}}", strings.TrimSpace(question),
	).Replace(tmpl)

	out, err := r.client.Complete(ctx, llm.Request{
		Purpose: llm.PurposeScreeningAnswer,
		System:  llm.ScreeningAnswerPersona,
		Prompt:  prompt,
	})
	if err != nil {
		metrics.IncLLMRequest(llm.PurposeScreeningAnswer, metrics.OutcomeFailure)
		telemetry.Error("generation.answer_failed", map[string]any{
			"candidate": c.Name,
			"err":       err.Error(),
		})
		return AnswerFallback
	}
	metrics.IncLLMRequest(llm.PurposeScreeningAnswer, metrics.OutcomeSuccess)
	out = strings.TrimSpace(out)
	if out == "" {
		return AnswerFallback
	}
	return out
}
