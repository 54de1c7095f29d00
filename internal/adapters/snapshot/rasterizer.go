// Package snapshot renders an HTML document in headless chromium and captures
// one element of it as a PNG.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrNodeNotFound is returned when the capture root is not in the document.
var ErrNodeNotFound = errors.New("capture root not found in document")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("rasterizer closed")

// DefaultTimeout bounds a single capture when ctx carries no deadline.
const DefaultTimeout = 15 * time.Second

// Rasterizer captures the element with id rootID in html as a PNG, painted on
// background.
type Rasterizer interface {
	Rasterize(ctx context.Context, html []byte, rootID string, background string) ([]byte, error)
}

// Options configure the browser.
type Options struct {
	Headless bool
	// ViewportWidth must be at least the document width so nothing wraps.
	ViewportWidth int
	// DeviceScale > 1 yields a sharper image in the PDF.
	DeviceScale float64
}

// Browser is a Rasterizer backed by one lazily started chromium. Each call gets
// a fresh page, so captures never share DOM state.
type Browser struct {
	opts Options

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	closed  bool
}

var _ Rasterizer = (*Browser)(nil)

// NewBrowser returns a Browser that starts chromium on first use.
func NewBrowser(opts Options) *Browser {
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = 800
	}
	if opts.DeviceScale <= 0 {
		opts.DeviceScale = 2
	}
	return &Browser{opts: opts}
}

// start launches playwright and chromium once.
// PRE: b.mu held
func (b *Browser) start() error {
	if b.closed {
		return ErrClosed
	}
	if b.browser != nil && b.browser.IsConnected() {
		return nil
	}
	if b.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return fmt.Errorf("start playwright: %w", err)
		}
		b.pw = pw
	}
	browser, err := b.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.opts.Headless),
	})
	if err != nil {
		return fmt.Errorf("launch chromium: %w", err)
	}
	b.browser = browser
	slog.Info("rasterizer_event", "event", "browser_started", "headless", b.opts.Headless)
	return nil
}

func (b *Browser) newPage() (playwright.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.start(); err != nil {
		return nil, err
	}
	return b.browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport:          &playwright.Size{Width: b.opts.ViewportWidth, Height: 1000},
		DeviceScaleFactor: playwright.Float(b.opts.DeviceScale),
	})
}

// Rasterize loads html into a new page and screenshots #rootID.
// PRE: html is a complete document; rootID is a plain element id
// POST: Returns PNG bytes, ErrNodeNotFound if the element is absent
func (b *Browser) Rasterize(ctx context.Context, html []byte, rootID string, background string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := DefaultTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	ms := playwright.Float(float64(timeout.Milliseconds()))

	page, err := b.newPage()
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := page.SetContent(string(html), playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   ms,
	}); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	root := page.Locator("#" + rootID)
	n, err := root.Count()
	if err != nil {
		return nil, fmt.Errorf("locate #%s: %w", rootID, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("#%s: %w", rootID, ErrNodeNotFound)
	}
	if err := root.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms,
	}); err != nil {
		return nil, fmt.Errorf("wait for #%s: %w", rootID, err)
	}
	if background != "" {
		// Force the page colour too, so no transparent pixels reach the PNG.
		if _, err := page.AddStyleTag(playwright.PageAddStyleTagOptions{
			Content: playwright.String("html,body{background:" + background + " !important}"),
		}); err != nil {
			return nil, fmt.Errorf("set background: %w", err)
		}
	}

	png, err := root.Screenshot(playwright.LocatorScreenshotOptions{
		Type:           playwright.ScreenshotTypePng,
		OmitBackground: playwright.Bool(false),
		Animations:     playwright.ScreenshotAnimationsDisabled,
		Timeout:        ms,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot #%s: %w", rootID, err)
	}
	return png, nil
}

// Close shuts chromium and the playwright driver down. Later calls fail with ErrClosed.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	var errs []error
	if b.browser != nil {
		errs = append(errs, b.browser.Close())
		b.browser = nil
	}
	if b.pw != nil {
		errs = append(errs, b.pw.Stop())
		b.pw = nil
	}
	return errors.Join(errs...)
}
