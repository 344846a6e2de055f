package chart

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
)

// Artifact is what one render produced on disk.
type Artifact struct {
	ID       string
	HTMLPath string
	PNGPath  string // empty unless a screenshot was requested
}

// RenderHTML builds the page and serializes it as a self-contained
// HTML document.
func RenderHTML(in Input) ([]byte, error) {
	page, err := BuildPage(in)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save renders the chart into dir. The HTML artifact is always
// written; with png set the document is additionally screenshotted
// through headless Chrome.
func Save(ctx context.Context, in Input, dir string, png bool) (Artifact, error) {
	html, err := RenderHTML(in)
	if err != nil {
		return Artifact{}, err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifact{}, err
	}
	id := uuid.NewString()[:8]
	base := fmt.Sprintf("%s_%s_%s", sanitize(in.Symbol), in.Spec.String(), id)
	base = strings.ReplaceAll(base, ":", "-")

	art := Artifact{ID: id, HTMLPath: filepath.Join(dir, base+".html")}
	if err := os.WriteFile(art.HTMLPath, html, 0o644); err != nil {
		return Artifact{}, err
	}
	if png {
		shot, err := renderHTMLToPNG(ctx, html, in.width(), in.TotalHeight())
		if err != nil {
			// the HTML artifact is already written and stays usable
			return art, fmt.Errorf("png screenshot: %w", err)
		}
		art.PNGPath = filepath.Join(dir, base+".png")
		if err := os.WriteFile(art.PNGPath, shot, 0o644); err != nil {
			art.PNGPath = ""
			return art, err
		}
	}
	return art, nil
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable probes for a usable Chrome once per process.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		defer cancel()
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, err
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, 20*time.Second)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 0),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}

func sanitize(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
