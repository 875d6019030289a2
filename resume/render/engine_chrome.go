package render

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const chromeTimeout = 60 * time.Second

// ChromeEngine prints the HTML rendering of a layout with headless Chrome.
type ChromeEngine struct {
	execPath string
	timeout  time.Duration
}

// NewChromeEngine constructs a Chrome engine. An empty execPath lets
// chromedp locate the browser.
func NewChromeEngine(execPath string) *ChromeEngine {
	return &ChromeEngine{execPath: execPath, timeout: chromeTimeout}
}

// Name implements Engine.
func (e *ChromeEngine) Name() string { return EngineChrome }

// Render implements Engine.
func (e *ChromeEngine) Render(ctx context.Context, l Layout) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if e.execPath != "" {
		opts = append(opts, chromedp.ExecPath(e.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, e.timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "applygen-render-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(HTML(l)), 0o600); err != nil {
		return nil, err
	}

	var pdfBuf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 8.27 x 11.69 inches
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}
