// Package archive renders finished applications and bundles them into a zip.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"applygen-backend/internal/shared/metrics"
	"applygen-backend/internal/shared/telemetry"
	"applygen-backend/internal/shared/util"
	"applygen-backend/resume/model"
	"applygen-backend/resume/render"
)

// ErrEmptyArchive is returned when no document could be rendered.
var ErrEmptyArchive = errors.New("no documents rendered")

const (
	resumeDir      = "Resumes"
	coverLetterDir = "Cover_Letters"
	defaultWorkers = 4
	fallbackName   = "Candidate"
)

// Document is one candidate's finished application.
type Document struct {
	Candidate   model.Candidate
	Resume      model.ResumeDocument
	CoverLetter string
	Theme       model.Theme
}

// Archive is a packaged zip.
type Archive struct {
	Bytes    []byte
	Filename string
	Entries  []string
	Failures int
}

// Renderer produces the two PDFs per candidate.
type Renderer interface {
	RenderResume(ctx context.Context, c model.Candidate, doc model.ResumeDocument, theme model.Theme) ([]byte, error)
	RenderCoverLetter(ctx context.Context, c model.Candidate, text string, theme model.Theme) ([]byte, error)
}

// Packager renders documents and writes the zip.
type Packager struct {
	renderer Renderer
	workers  int
	now      func() time.Time
}

// Option customizes a Packager.
type Option func(*Packager)

// WithClock overrides the clock used for the archive filename and entry times.
func WithClock(now func() time.Time) Option {
	return func(p *Packager) {
		if now != nil {
			p.now = now
		}
	}
}

// WithWorkers bounds concurrent renders.
func WithWorkers(n int) Option {
	return func(p *Packager) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewPackager constructs a Packager.
func NewPackager(renderer Renderer, opts ...Option) *Packager {
	p := &Packager{renderer: renderer, workers: defaultWorkers, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type rendered struct {
	resume, letter []byte
}

// Package renders every document and writes Resumes/ and Cover_Letters/
// entries. A failed document is logged and skipped; its sibling and the
// other candidates are still packaged.
func (p *Packager) Package(ctx context.Context, country string, docs []Document) (Archive, error) {
	now := p.now()
	out := make([]rendered, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range docs {
		i := i
		g.Go(func() error {
			d := docs[i]
			out[i].resume = p.renderOne(gctx, render.DocResume, d, func(ctx context.Context) ([]byte, error) {
				return p.renderer.RenderResume(ctx, d.Candidate, d.Resume, d.Theme)
			})
			out[i].letter = p.renderOne(gctx, render.DocCoverLetter, d, func(ctx context.Context) ([]byte, error) {
				return p.renderer.RenderCoverLetter(ctx, d.Candidate, d.CoverLetter, d.Theme)
			})
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Archive{}, err
	}

	var (
		buf  bytes.Buffer
		arc  = Archive{Filename: Filename(country, now)}
		used = map[string]int{}
	)
	zw := zip.NewWriter(&buf)
	for i, d := range docs {
		base := uniqueBase(used, d.Candidate.Name)
		files := []struct {
			name string
			data []byte
		}{
			{resumeDir + "/" + base + "_Resume.pdf", out[i].resume},
			{coverLetterDir + "/" + base + "_CoverLetter.pdf", out[i].letter},
		}
		for _, f := range files {
			if f.data == nil {
				arc.Failures++
				continue
			}
			if err := writeEntry(zw, f.name, f.data, now); err != nil {
				return Archive{}, fmt.Errorf("write %s: %w", f.name, err)
			}
			arc.Entries = append(arc.Entries, f.name)
		}
	}
	if err := zw.Close(); err != nil {
		return Archive{}, fmt.Errorf("close archive: %w", err)
	}
	if len(arc.Entries) == 0 {
		return Archive{}, ErrEmptyArchive
	}
	arc.Bytes = buf.Bytes()
	telemetry.Info("archive.packaged", map[string]any{
		"filename": arc.Filename,
		"entries":  len(arc.Entries),
		"failures": arc.Failures,
		"bytes":    len(arc.Bytes),
	})
	return arc, nil
}

func (p *Packager) renderOne(ctx context.Context, kind string, d Document, fn func(context.Context) ([]byte, error)) []byte {
	data, err := fn(ctx)
	if err != nil {
		metrics.IncRenderFailed(kind)
		telemetry.Error("archive.render_failed", map[string]any{
			"candidate": d.Candidate.Name,
			"document":  kind,
			"err":       err,
		})
		return nil
	}
	return data
}

func writeEntry(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Filename names an archive for a country at time t.
func Filename(country string, t time.Time) string {
	slug := util.Slug(country)
	if slug == "" {
		return "applications_" + t.Format("0102_150405") + ".zip"
	}
	return "applications_" + slug + "_" + t.Format("0102_150405") + ".zip"
}

// BaseName is the filename stem used for a candidate's documents.
func BaseName(name string) string {
	if base := util.SafeName(name); base != "" {
		return base
	}
	return fallbackName
}

func uniqueBase(used map[string]int, name string) string {
	base := BaseName(name)
	used[base]++
	if n := used[base]; n > 1 {
		return base + "_" + strconv.Itoa(n)
	}
	return base
}
