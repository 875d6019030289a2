package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"applygen-backend/internal/candidates"
	"applygen-backend/internal/extract"
	"applygen-backend/resume/model"
	"applygen-backend/resume/render"
)

func main() {
	outDir := flag.String("out", "./out", "output directory")
	engineName := flag.String("engine", render.EnginePDF, "render engine (pdf or chrome)")
	chromePath := flag.String("chrome", "", "path to a Chrome binary for the chrome engine")
	seed := flag.Int64("seed", 0, "seed for a randomized theme; 0 uses the default theme")
	flag.Parse()

	engine, err := render.NewEngine(*engineName, *chromePath)
	if err != nil {
		exitErr(err)
	}
	renderer := render.NewRenderer(engine)

	candidate := sampleCandidate()
	doc := sampleResume()
	theme := model.DefaultTheme()
	if *seed != 0 {
		theme = candidates.NewRandomizer(candidates.NewSource(*seed), nil).Theme()
	}

	ctx := context.Background()
	resumePDF, err := renderer.RenderResume(ctx, candidate, doc, theme)
	if err != nil {
		exitErr(fmt.Errorf("render resume: %w", err))
	}
	letterPDF, err := renderer.RenderCoverLetter(ctx, candidate, sampleLetter, theme)
	if err != nil {
		exitErr(fmt.Errorf("render cover letter: %w", err))
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		exitErr(err)
	}
	outputs := map[string][]byte{
		"sample_resume.pdf":       resumePDF,
		"sample_cover_letter.pdf": letterPDF,
		"sample_resume.html":      []byte(render.HTML(render.ResumeLayout(candidate, doc, theme))),
	}
	payload, err := json.MarshalIndent(struct {
		Candidate model.Candidate      `json:"candidate"`
		Resume    model.ResumeDocument `json:"resume"`
		Theme     model.Theme          `json:"theme"`
	}{candidate, doc, theme}, "", "  ")
	if err != nil {
		exitErr(err)
	}
	outputs["sample_resume_model.json"] = payload

	for name, data := range outputs {
		if err := os.WriteFile(filepath.Join(*outDir, name), data, 0o644); err != nil {
			exitErr(err)
		}
	}

	if err := validateRendered(ctx, resumePDF, candidate.Name); err != nil {
		exitErr(fmt.Errorf("render validation failed: %w", err))
	}

	fmt.Printf("OK: wrote %d files to %s using %s\n", len(outputs), *outDir, renderer.EngineName())
}

// validateRendered checks that the PDF text layer carries the candidate
// name and no leftover markup.
func validateRendered(ctx context.Context, pdf []byte, name string) error {
	text, err := extract.ExtractTextFromBytes(ctx, pdf, "application/pdf", "sample_resume.pdf")
	if err != nil {
		return err
	}
	if !strings.Contains(strings.Join(strings.Fields(text), " "), name) {
		return fmt.Errorf("candidate name %q not found in rendered text", name)
	}
	for _, marker := range []string{"**", "<b>", "</i>"} {
		if strings.Contains(text, marker) {
			return fmt.Errorf("unrendered markup %q in output", marker)
		}
	}
	return nil
}

func sampleCandidate() model.Candidate {
	return model.Candidate{
		ID:                  "demo-1",
		Name:                "Jordan Lee",
		Gender:              model.GenderMale,
		Origin:              "American",
		Email:               "jordan.lee@example.com",
		Phone:               "+49 151 2345 6789",
		Location:            "Berlin, Germany",
		BachelorsUniversity: "Technical University of Munich",
	}
}

func sampleResume() model.ResumeDocument {
	return model.ResumeDocument{
		Contact: model.Contact{Email: "jordan.lee@example.com", Phone: "+49 151 2345 6789"},
		Summary: "Backend engineer with **5 years** of experience building resilient APIs and data services.",
		Education: model.EducationList{
			{Degree: "Bachelor of Science in Computer Science", University: "Technical University of Munich", Year: "2019"},
		},
		Experience: []model.Experience{
			{Company: "Zalando", Role: "Backend Engineer", Duration: "2022 - Present", Description: model.Lines{
				"Designed a routing service that reduced checkout latency by 18%.",
				"Introduced *distributed tracing* across twelve services.",
			}},
			{Company: "N26", Role: "Software Engineer", Duration: "2020 - 2022", Description: model.Lines{
				"Built event-driven ingestion pipelines for compliance data feeds.",
			}},
			{Company: "Delivery Hero", Role: "Junior Engineer", Duration: "2019 - 2020", Description: model.Lines{
				"Maintained order tracking APIs in Go.",
			}},
			{Company: "SAP", Role: "Software Engineering Intern", Duration: "2018 - 2019", Description: model.Lines{
				"Automated integration tests for internal tooling.",
			}},
		},
		Projects: []model.Project{
			{Title: "Rate limiter", Description: model.Lines{"Token bucket library used by three teams."}},
			{Title: "Schema registry", Description: model.Lines{"Versioned event schemas with compatibility checks."}},
			{Title: "Load test harness", Description: model.Lines{"Replayed production traffic against staging."}},
			{Title: "Incident bot", Description: model.Lines{"Chat bot that opened incidents from alerts."}},
		},
		Skills:       []string{"Go", "PostgreSQL", "Kubernetes", "AWS"},
		Certificates: []string{"AWS Certified Developer"},
		Languages:    []string{"English (Native)", "German (B2)"},
	}
}

const sampleLetter = `Dear Hiring Manager,

I am excited to apply for the Backend Engineer role. Over the last five years I have built **reliable services** at Zalando and N26.

Kind regards,
Jordan Lee`

func exitErr(err error) {
	_, _ = fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
