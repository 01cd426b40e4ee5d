package scraper

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"time"

	"github.com/playwright-community/playwright-go"

	"leadgen/config"
	"leadgen/identity"
)

// SearchSession is what the orchestrator needs from a browser session.
// The playwright-backed Session implements it; tests use fakes.
type SearchSession interface {
	// Search loads local results for "<category> near <location>".
	Search(ctx context.Context, location, category string) (ResultPage, error)
	// Delay pauses for a uniform random interval between actions.
	Delay(ctx context.Context)
	// NoteExtraction counts one extraction; when the recycle threshold
	// is reached the browser process is replaced and true is returned.
	// A recycled session invalidates any live ResultPage: the caller
	// must re-issue the search.
	NoteExtraction(ctx context.Context) (bool, error)
	Close()
}

// Session owns one Chromium process and its page. Each launch picks a
// fresh identity; after RecycleThreshold extractions the process is
// closed and relaunched to bound memory growth on long runs.
type Session struct {
	cfg      config.ScraperConfig
	headless bool

	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	extractions int
	closed      bool
}

func NewSession(cfg config.ScraperConfig, headless bool) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	s := &Session{cfg: cfg, headless: headless, pw: pw}
	if err := s.launch(); err != nil {
		pw.Stop()
		return nil, err
	}
	return s, nil
}

// WithinSession opens a session, runs fn and guarantees teardown on
// every exit path.
func WithinSession(cfg config.ScraperConfig, headless bool, fn func(*Session) error) error {
	s, err := NewSession(cfg, headless)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func (s *Session) launch() error {
	ident := identity.Pick()
	log.Printf("Launching browser (headless=%v, ua=%.40s...)", s.headless, ident.UserAgent)

	browser, err := s.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.headless),
		Args:     identity.LaunchArgs,
	})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(ident.UserAgent),
		Viewport: &playwright.Size{
			Width:  ident.ViewportWidth,
			Height: ident.ViewportHeight,
		},
		Locale:     playwright.String(ident.Locale),
		TimezoneId: playwright.String(ident.TimezoneID),
	})
	if err != nil {
		browser.Close()
		return fmt.Errorf("create context: %w", err)
	}

	if err := context.AddInitScript(playwright.Script{
		Content: playwright.String(identity.StealthScript),
	}); err != nil {
		log.Printf("Warning: stealth init script failed: %v", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return fmt.Errorf("create page: %w", err)
	}

	s.browser = browser
	s.context = context
	s.page = page
	return nil
}

func (s *Session) Search(ctx context.Context, location, category string) (ResultPage, error) {
	query := fmt.Sprintf("%s near %s", category, location)
	searchURL := fmt.Sprintf("https://www.google.com/search?q=%s&tbm=lcl", url.QueryEscape(query))
	log.Printf("Searching: %s", query)

	_, err := s.page.Goto(searchURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(s.cfg.NavigationTimeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return nil, classifyNav(err)
	}

	return newResultPage(s.page, s.cfg.NavigationTimeout), nil
}

// Delay sleeps a uniform random interval in [DelayMin, DelayMax],
// returning early on cancellation.
func (s *Session) Delay(ctx context.Context) {
	sleepRandom(ctx, s.cfg.DelayMin, s.cfg.DelayMax)
}

func (s *Session) NoteExtraction(ctx context.Context) (bool, error) {
	s.extractions++
	if s.cfg.RecycleThreshold <= 0 || s.extractions < s.cfg.RecycleThreshold {
		return false, nil
	}

	log.Printf("Recycling browser after %d extractions", s.extractions)
	s.teardownBrowser()
	if err := s.launch(); err != nil {
		return true, err
	}
	s.extractions = 0
	return true, nil
}

func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.teardownBrowser()
	if s.pw != nil {
		s.pw.Stop()
	}
}

func (s *Session) teardownBrowser() {
	if s.page != nil {
		s.page.Close()
		s.page = nil
	}
	if s.context != nil {
		s.context.Close()
		s.context = nil
	}
	if s.browser != nil {
		s.browser.Close()
		s.browser = nil
	}
}

func sleepRandom(ctx context.Context, min, max time.Duration) {
	d := min
	if max > min {
		d = min + time.Duration(rand.Int63n(int64(max-min)))
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
