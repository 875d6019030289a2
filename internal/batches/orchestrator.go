package batches

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"applygen-backend/internal/candidates"
	"applygen-backend/internal/catalog"
	"applygen-backend/internal/generation"
	"applygen-backend/internal/shared/metrics"
	"applygen-backend/internal/shared/telemetry"
	"applygen-backend/resume/model"
)

// DefaultWorkers bounds concurrent candidate tasks.
const DefaultWorkers = 5

const minCount = 2

// Request describes one batch.
type Request struct {
	JobDescription string
	Count          int
	EducationLevel string
	Country        string
}

// Entry is one candidate's generated application.
type Entry struct {
	Candidate   model.Candidate
	Resume      model.ResumeDocument
	CoverLetter string
	Theme       model.Theme
	Plan        generation.Plan
}

// Outcome is the result of one candidate task: Entry on success, Err otherwise.
type Outcome struct {
	Candidate model.Candidate
	Entry     Entry
	Err       error
}

// Result is the fan-in of every candidate task, in submission order.
type Result struct {
	Country  catalog.Country
	Outcomes []Outcome
}

// Entries returns the successful entries in submission order.
func (r Result) Entries() []Entry {
	out := make([]Entry, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Err == nil {
			out = append(out, o.Entry)
		}
	}
	return out
}

// Failures returns the number of dropped candidates.
func (r Result) Failures() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Generator produces the documents for one candidate.
type Generator interface {
	Plan(in generation.Input) generation.Plan
	GenerateResume(ctx context.Context, in generation.Input, plan generation.Plan) (model.ResumeDocument, error)
	GenerateCoverLetter(ctx context.Context, in generation.Input, resume model.ResumeDocument) string
}

// Orchestrator selects candidates and generates their applications on a
// bounded worker pool.
type Orchestrator struct {
	catalog    *catalog.Catalog
	generator  Generator
	selector   *candidates.Selector
	randomizer *candidates.Randomizer
	workers    int
}

// OrchestratorOption customizes an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithWorkers sets the pool size.
func WithWorkers(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// NewOrchestrator constructs an Orchestrator over the catalog's candidate pool.
func NewOrchestrator(cat *catalog.Catalog, gen Generator, src candidates.Source, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		catalog:    cat,
		generator:  gen,
		selector:   candidates.NewCatalogSelector(cat, src),
		randomizer: candidates.NewRandomizer(src, cat.Universities()),
		workers:    DefaultWorkers,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks a request against the catalog without generating anything.
func (o *Orchestrator) Validate(req Request) (catalog.Country, error) {
	if strings.TrimSpace(req.JobDescription) == "" || req.Count <= 0 {
		return catalog.Country{}, ErrEmptyInput
	}
	country, ok := o.catalog.Country(req.Country)
	if !ok {
		return catalog.Country{}, fmt.Errorf("%w: unknown country %q", ErrInvalidInput, req.Country)
	}
	if !o.catalog.ValidEducationLevel(req.EducationLevel) {
		return catalog.Country{}, fmt.Errorf("%w: unknown education level %q", ErrInvalidInput, req.EducationLevel)
	}
	return country, nil
}

type task struct {
	input generation.Input
	theme model.Theme
	plan  generation.Plan
}

// RunBatch generates one application per selected candidate. Candidate
// failures are logged and reported in their Outcome; siblings continue.
// It fails only on invalid input, selection failure or when no candidate
// succeeded.
func (o *Orchestrator) RunBatch(ctx context.Context, req Request) (Result, error) {
	country, err := o.Validate(req)
	if err != nil {
		return Result{}, err
	}
	n := req.Count
	if n < minCount {
		n = minCount
	}

	sel, err := o.selector.Select(n)
	if err != nil {
		return Result{}, fmt.Errorf("%w: select candidates: %v", ErrBatchFailed, err)
	}
	picked := sel.Candidates()

	// Assignment and planning draw from the shared source before fan-out so
	// a seeded run is reproducible regardless of scheduling.
	tasks := make([]task, len(picked))
	for i, c := range picked {
		in := generation.Input{
			Candidate:      o.randomizer.Assign(c, country, req.EducationLevel),
			JobDescription: req.JobDescription,
			EducationLevel: req.EducationLevel,
			Country:        country,
		}
		tasks[i] = task{input: in, theme: o.randomizer.Theme(), plan: o.generator.Plan(in)}
	}

	started := time.Now()
	telemetry.Info("batch.started", map[string]any{
		"country":   country.Name,
		"requested": req.Count,
		"selected":  len(tasks),
		"workers":   o.workers,
	})

	outcomes := make([]Outcome, len(tasks))
	var g errgroup.Group
	g.SetLimit(o.workers)
	for i := range tasks {
		i := i
		g.Go(func() error {
			outcomes[i] = o.runTask(ctx, tasks[i])
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Country: country, Outcomes: outcomes}
	succeeded := len(tasks) - res.Failures()
	telemetry.Info("batch.generated", map[string]any{
		"country":     country.Name,
		"succeeded":   succeeded,
		"failed":      res.Failures(),
		"duration_ms": time.Since(started).Milliseconds(),
	})
	if succeeded == 0 {
		return res, fmt.Errorf("%w: no candidate succeeded", ErrBatchFailed)
	}
	return res, nil
}

func (o *Orchestrator) runTask(ctx context.Context, t task) (out Outcome) {
	out.Candidate = t.input.Candidate
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("%w: candidate %s panicked: %v", generation.ErrGeneration, t.input.Candidate.Name, r)
		}
		if out.Err != nil {
			metrics.IncCandidate(metrics.OutcomeFailure)
			telemetry.Error("batch.candidate_failed", map[string]any{
				"candidate": t.input.Candidate.Name,
				"err":       out.Err,
			})
			return
		}
		metrics.IncCandidate(metrics.OutcomeSuccess)
	}()

	resume, err := o.generator.GenerateResume(ctx, t.input, t.plan)
	if err != nil {
		out.Err = err
		return out
	}
	letter := o.generator.GenerateCoverLetter(ctx, t.input, resume)
	out.Entry = Entry{
		Candidate:   t.input.Candidate,
		Resume:      resume,
		CoverLetter: letter,
		Theme:       t.theme,
		Plan:        t.plan,
	}
	return out
}
