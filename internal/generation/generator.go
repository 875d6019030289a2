package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"applygen-backend/internal/candidates"
	"applygen-backend/internal/catalog"
	"applygen-backend/internal/llm"
	"applygen-backend/internal/shared/metrics"
	"applygen-backend/internal/shared/telemetry"
	"applygen-backend/resume/model"
)

// CoverLetterPlaceholder is returned when cover letter generation fails.
const CoverLetterPlaceholder = "Error generating cover letter."

const (
	bachelorDegree = "Bachelor of Science in Computer Science"
	masterDegree   = "Master of Science in Computer Science"
)

// Input identifies one candidate's generation context.
type Input struct {
	Candidate      model.Candidate
	JobDescription string
	EducationLevel string
	Country        catalog.Country
}

// Generator issues resume and cover letter requests for one candidate at a time.
// It holds no per-call state and is safe for concurrent use.
type Generator struct {
	client          llm.Client
	globalCompanies []string
	src             candidates.Source
	now             func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithClock overrides the clock used for the current year.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator constructs a Generator.
func NewGenerator(client llm.Client, globalCompanies []string, src candidates.Source, opts ...Option) *Generator {
	g := &Generator{
		client:          client,
		globalCompanies: append([]string(nil), globalCompanies...),
		src:             src,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Plan derives the generation constraints for one candidate.
func (g *Generator) Plan(in Input) Plan {
	return NewPlan(in.JobDescription, in.EducationLevel, in.Country, g.globalCompanies, g.now(), g.src)
}

// GenerateResume requests structured resume content. Any service error or
// malformed output returns a *GenerationError; no retry is attempted.
// Contact fields are always taken from the candidate record.
func (g *Generator) GenerateResume(ctx context.Context, in Input, plan Plan) (model.ResumeDocument, error) {
	name := in.Candidate.Name
	raw, err := g.complete(ctx, llm.Request{
		Purpose: llm.PurposeResume,
		System:  llm.ResumePersona,
		Prompt:  g.resumePrompt(in, plan),
		JSON:    true,
	})
	if err != nil {
		return model.ResumeDocument{}, &GenerationError{Candidate: name, Stage: StageRequest, Err: err}
	}
	obj, ok := extractJSONObject(raw)
	if !ok {
		return model.ResumeDocument{}, &GenerationError{Candidate: name, Stage: StageParse, Err: errors.New("no JSON object in response")}
	}
	if err := validateResumeJSON([]byte(obj)); err != nil {
		return model.ResumeDocument{}, &GenerationError{Candidate: name, Stage: StageSchema, Err: err}
	}
	var doc model.ResumeDocument
	if err := json.Unmarshal([]byte(obj), &doc); err != nil {
		return model.ResumeDocument{}, &GenerationError{Candidate: name, Stage: StageParse, Err: err}
	}
	if err := doc.Validate(); err != nil {
		return model.ResumeDocument{}, &GenerationError{Candidate: name, Stage: StageValidate, Err: err}
	}

	doc.Contact.Email = in.Candidate.Email
	doc.Contact.Phone = in.Candidate.Phone
	doc.Languages = plan.EnforceLanguages(doc.Languages)
	return doc, nil
}

// GenerateCoverLetter requests free-text cover letter prose. On failure it
// returns CoverLetterPlaceholder instead of an error.
func (g *Generator) GenerateCoverLetter(ctx context.Context, in Input, resume model.ResumeDocument) string {
	text, err := g.complete(ctx, llm.Request{
		Purpose: llm.PurposeCoverLetter,
		System:  llm.CoverLetterPersona,
		Prompt:  g.coverLetterPrompt(in, resume),
	})
	if err != nil {
		telemetry.Error("generation.cover_letter_failed", map[string]any{
			"candidate": in.Candidate.Name,
			"err":       err.Error(),
		})
		return CoverLetterPlaceholder
	}
	return strings.TrimSpace(text)
}

func (g *Generator) complete(ctx context.Context, req llm.Request) (string, error) {
	out, err := g.client.Complete(ctx, req)
	if err != nil {
		metrics.IncLLMRequest(req.Purpose, metrics.OutcomeFailure)
		return "", err
	}
	metrics.IncLLMRequest(req.Purpose, metrics.OutcomeSuccess)
	return out, nil
}

func (g *Generator) resumePrompt(in Input, plan Plan) string {
	tmpl, _ := llm.PromptTemplate(llm.PurposeResume)
	r := strings.NewReplacer(
		"{{NAME}}", in.Candidate.Name,
		"{{LOCATION}}", locationOf(in),
		"{{ORIGIN}}", fallback(in.Candidate.Origin, "General"),
		"{{CURRENT_YEAR}}", strconv.Itoa(plan.CurrentYear),
		"{{EDUCATION_LEVEL}}", in.EducationLevel,
		"{{EDUCATION_RULES}}", educationRules(in.Candidate, plan),
		"{{REQUIRED_YEARS}}", strconv.Itoa(plan.RequiredYears),
		"{{GRADUATION_YEAR}}", strconv.Itoa(plan.GraduationYear),
		"{{EXPERIENCE_SPLIT}}", plan.SplitDescription(),
		"{{SUGGESTED_COMPANIES}}", strings.Join(plan.SuggestedCompanies, ", "),
		"{{LANGUAGE_RULE}}", plan.LanguageInstruction(),
		"{{JOB_DESCRIPTION}}", in.JobDescription,
	)
	return r.Replace(tmpl)
}

func (g *Generator) coverLetterPrompt(in Input, resume model.ResumeDocument) string {
	tmpl, _ := llm.PromptTemplate(llm.PurposeCoverLetter)
	r := strings.NewReplacer(
		"{{NAME}}", in.Candidate.Name,
		"{{LOCATION}}", locationOf(in),
		"{{CURRENT_YEAR}}", strconv.Itoa(g.now().Year()),
		"{{EDUCATION_SENTENCE}}", educationSentence(in.Candidate, in.EducationLevel),
		"{{RECENT_EMPLOYER}}", fallback(resume.MostRecentEmployer(), "their most recent employer"),
		"{{RESUME_SUMMARY}}", fallback(resume.Summary, "n/a"),
		"{{COUNTRY}}", in.Country.Name,
		"{{JOB_DESCRIPTION}}", in.JobDescription,
	)
	return r.Replace(tmpl)
}

func educationRules(c model.Candidate, plan Plan) string {
	if plan.Graduate {
		return fmt.Sprintf(
			"- Exactly two entries, newest first.\n"+
				"- 1. %s, %s, graduated %d.\n"+
				"- 2. %s, %s, graduated %d.",
			masterDegree, fallback(c.MastersUniversity, "a university"), plan.GraduationYear,
			bachelorDegree, fallback(c.BachelorsUniversity, "a university"), plan.GraduationYear-2,
		)
	}
	return fmt.Sprintf(
		"- Exactly one entry: %s, %s, graduated %d.\n- Do not add a master's degree.",
		bachelorDegree, fallback(c.BachelorsUniversity, "a university"), plan.GraduationYear,
	)
}

func educationSentence(c model.Candidate, level string) string {
	if catalog.IsGraduateLevel(level) {
		return fmt.Sprintf("%s from %s, preceded by a %s from %s. Mention both degrees.",
			masterDegree, fallback(c.MastersUniversity, "a top university"),
			bachelorDegree, fallback(c.BachelorsUniversity, "a university"))
	}
	return fmt.Sprintf("%s from %s.", bachelorDegree, fallback(c.BachelorsUniversity, "a university"))
}

func locationOf(in Input) string {
	if in.Candidate.Location != "" {
		return in.Candidate.Location
	}
	return in.Country.Name
}

func fallback(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
