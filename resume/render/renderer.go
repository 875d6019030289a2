// Package render turns generated resumes and cover letters into PDF documents.
//
// Rendering is two-staged: content is arranged into an engine-independent
// Layout, then an Engine draws it. The default engine is pure Go (fpdf); a
// headless Chrome engine prints an HTML rendering of the same layout.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"applygen-backend/resume/model"
)

// Engine names.
const (
	EnginePDF    = "pdf"
	EngineChrome = "chrome"
)

// ErrRender marks every document rendering failure.
var ErrRender = errors.New("render failed")

// Document kinds.
const (
	DocResume      = "resume"
	DocCoverLetter = "cover_letter"
)

// Error attributes a rendering failure to one document.
type Error struct {
	Document  string
	Candidate string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render %s for %s: %v", e.Document, e.Candidate, e.Err)
}

// Unwrap exposes both ErrRender and the cause.
func (e *Error) Unwrap() []error {
	return []error{ErrRender, e.Err}
}

// Engine draws a layout into PDF bytes.
type Engine interface {
	Name() string
	Render(ctx context.Context, l Layout) ([]byte, error)
}

// NewEngine selects an engine by name.
func NewEngine(name, chromePath string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EnginePDF:
		return NewPDFEngine(), nil
	case EngineChrome:
		return NewChromeEngine(chromePath), nil
	default:
		return nil, fmt.Errorf("unknown render engine %q", name)
	}
}

// Renderer builds layouts and hands them to an engine. Layouts carry the
// renderer clock as creation time, so equal inputs render equally.
type Renderer struct {
	engine Engine
	now    func() time.Time
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithClock overrides the clock used for dates and document metadata.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRenderer constructs a Renderer. A nil engine selects the PDF engine.
func NewRenderer(engine Engine, opts ...Option) *Renderer {
	if engine == nil {
		engine = NewPDFEngine()
	}
	r := &Renderer{engine: engine, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EngineName reports the configured engine.
func (r *Renderer) EngineName() string {
	return r.engine.Name()
}

// RenderResume renders a resume PDF.
func (r *Renderer) RenderResume(ctx context.Context, c model.Candidate, doc model.ResumeDocument, theme model.Theme) ([]byte, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, &Error{Document: DocResume, Err: errors.New("full name is required")}
	}
	l := ResumeLayout(c, doc, theme)
	return r.render(ctx, DocResume, c.Name, l)
}

// RenderCoverLetter renders a cover letter PDF.
func (r *Renderer) RenderCoverLetter(ctx context.Context, c model.Candidate, text string, theme model.Theme) ([]byte, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, &Error{Document: DocCoverLetter, Err: errors.New("full name is required")}
	}
	l := CoverLetterLayout(c, text, theme, r.now())
	return r.render(ctx, DocCoverLetter, c.Name, l)
}

func (r *Renderer) render(ctx context.Context, doc, name string, l Layout) ([]byte, error) {
	l.Created = r.now()
	out, err := r.engine.Render(ctx, l)
	if err != nil {
		return nil, &Error{Document: doc, Candidate: name, Err: err}
	}
	return out, nil
}
