// Package browser runs the page scripts inside a real Chromium page driven by
// playwright, the closest equivalent to injecting them into a browser tab.
package browser

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/termsense/internal/page"
)

// DefaultTimeout bounds navigation and script evaluation.
const DefaultTimeout = 30 * time.Second

// Options configures a browser session.
type Options struct {
	// Headless runs Chromium without a window. The agree action is more
	// useful with a visible window so the user can see what was clicked.
	Headless bool
	// Timeout for navigation and evaluation. Zero means DefaultTimeout.
	Timeout time.Duration
	// SkipInstall assumes the playwright driver and browsers are present.
	SkipInstall bool
}

// Session owns a playwright driver and one Chromium instance.
type Session struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	timeout time.Duration
}

// Launch installs (unless skipped) and starts playwright, then launches Chromium.
func Launch(opts Options) (*Session, error) {
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if !opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	bctx, err := b.NewContext()
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("create browser context: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Session{pw: pw, browser: b, context: bctx, timeout: timeout}, nil
}

// Open navigates a new page to rawURL and returns it as a Tab.
func (s *Session) Open(ctx context.Context, rawURL string) (*Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	ms := float64(s.timeout.Milliseconds())
	p.SetDefaultTimeout(ms)
	if _, err := p.Goto(rawURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(ms),
	}); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("navigate to %s: %w", rawURL, err)
	}
	log.Debug().Str("url", p.URL()).Msg("browser page opened")
	return &Tab{page: p, requested: rawURL}, nil
}

// Close shuts down the browser and the playwright driver.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.context != nil {
		_ = s.context.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			return fmt.Errorf("stop playwright: %w", err)
		}
	}
	return nil
}

// evaluator is the part of playwright.Page a Tab needs.
type evaluator interface {
	URL() string
	Evaluate(expression string, arg ...interface{}) (interface{}, error)
}

// Tab is a page.Tab backed by a live browser page.
type Tab struct {
	page      evaluator
	requested string
}

// URL reports the address the user asked for. Redirects are not followed
// into the cache key.
func (t *Tab) URL() string { return t.requested }

func (t *Tab) Evaluate(ctx context.Context, s page.Script, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !scriptable(t.page.URL()) {
		return nil, fmt.Errorf("%w: %s", page.ErrPermissionDenied, t.page.URL())
	}
	js, ok := scripts[s]
	if !ok {
		return nil, fmt.Errorf("unsupported script %s", s)
	}
	var (
		v   any
		err error
	)
	if arg != nil {
		v, err = t.page.Evaluate(js, arg)
	} else {
		v, err = t.page.Evaluate(js)
	}
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", s, err)
	}
	return v, nil
}

// Close closes the underlying page when it is a real playwright page.
func (t *Tab) Close() error {
	if p, ok := t.page.(playwright.Page); ok {
		return p.Close()
	}
	return nil
}

// scriptable mirrors the browser's refusal to inject into privileged pages.
func scriptable(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}
