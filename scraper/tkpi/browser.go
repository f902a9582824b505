package tkpi

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"tkpi-etl/utils"
)

// Renderer loads a live TKPI page in headless Chrome and returns the HTML
// after client-side scripts have built the table.
type Renderer struct {
	chromeBin string
	timeout   time.Duration
	logger    *utils.Logger
}

// NewRenderer creates a Renderer. An empty chromeBin falls back to the
// first browser found on PATH.
func NewRenderer(chromeBin string, timeout time.Duration, logger *utils.Logger) *Renderer {
	return &Renderer{chromeBin: chromeBin, timeout: timeout, logger: logger}
}

// Render navigates to pageURL, waits for a table row and returns the page's
// outer HTML. There is a single attempt bounded by the renderer's timeout.
func (r *Renderer) Render(ctx context.Context, pageURL string) (string, error) {
	chromeBin := r.chromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	r.logger.Info("[tkpi] Rendering %s with browser %q", pageURL, chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	runCtx, cancelTimeout := context.WithTimeout(browserCtx, r.timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("table tr", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("tkpi: render %s: %w", pageURL, err)
	}
	return html, nil
}

// findChromeBinary returns the first Chrome/Chromium binary on PATH or at a
// well-known location, or "" to let chromedp decide.
func findChromeBinary() string {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	for _, path := range []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/usr/bin/google-chrome",
		"/snap/bin/chromium",
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// IsURL reports whether source should be rendered rather than read from disk.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
