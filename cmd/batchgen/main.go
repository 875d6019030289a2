package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"applygen-backend/internal/batches"
	"applygen-backend/internal/bootstrap"
	"applygen-backend/internal/catalog"
	"applygen-backend/internal/extract"
	"applygen-backend/internal/shared/config"
)

const cliUser = "cli:local"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, config.ErrConfiguration) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "batchgen",
		Short:         "Generate synthetic application batches from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newCatalogCmd())
	return root
}

type runOptions struct {
	jdPath    string
	count     int
	education string
	country   string
	outDir    string
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate one batch and write its archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.jdPath, "jd", "", "job description file (txt, md, pdf or docx)")
	f.IntVar(&opts.count, "count", 5, "number of applications")
	f.StringVar(&opts.education, "education", "", "education level")
	f.StringVar(&opts.country, "country", "", "target country")
	f.StringVar(&opts.outDir, "out", ".", "directory for the zip archive")
	_ = cmd.MarkFlagRequired("jd")
	_ = cmd.MarkFlagRequired("education")
	_ = cmd.MarkFlagRequired("country")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List supported countries and education levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(config.Load())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			bounds := cat.CountBounds()
			fmt.Fprintf(out, "count: %d-%d\n", bounds.Min, bounds.Max)
			fmt.Fprintln(out, "education levels:")
			for _, level := range cat.EducationLevels() {
				fmt.Fprintf(out, "  %s\n", level)
			}
			fmt.Fprintln(out, "countries:")
			for _, name := range cat.CountryNames() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if strings.TrimSpace(cfg.CatalogPath) == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.CatalogPath)
}

func runBatch(ctx context.Context, out io.Writer, opts runOptions) error {
	jd, err := readJobDescription(ctx, opts.jdPath)
	if err != nil {
		return err
	}

	cfg := config.Load()
	cfg.QueueURL = ""
	app, err := bootstrap.Build(cfg)
	if err != nil {
		return err
	}

	b, _, err := app.BatchService.Create(ctx, cliUser, batches.CreateRequest{
		JobDescription: jd,
		Count:          opts.count,
		EducationLevel: opts.education,
		Country:        opts.country,
	})
	if err != nil {
		return err
	}

	rc, b, err := app.BatchService.OpenArchive(ctx, cliUser, b.ID)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(opts.outDir, b.ArchiveName)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %s: %d of %d applications", path, len(b.Entries), b.Count)
	if b.RenderFailures > 0 {
		fmt.Fprintf(out, ", %d render failures", b.RenderFailures)
	}
	fmt.Fprintln(out)
	return nil
}

func readJobDescription(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read job description: %w", err)
	}
	mimeType := http.DetectContentType(data)
	if strings.EqualFold(filepath.Ext(path), ".md") {
		mimeType = "text/markdown"
	}
	return extract.ExtractTextFromBytes(ctx, data, mimeType, filepath.Base(path))
}
