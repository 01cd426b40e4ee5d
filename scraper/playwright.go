package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Playwright-backed implementations of the page capability interfaces.
// All source-site selectors live here and in the extractor's selector
// table; nothing above this layer knows about markup.

const (
	resultItemSelector  = ".rllt__details"
	nextPageSelector    = "a#pnnext"
	detailReadyTimeout  = 5 * time.Second
	detailSettleDelayMs = 1000
)

var (
	itemNameSelectors    = []string{".OSrXXb", ".qBF1Pd"}
	detailPanelSelectors = []string{`[role="main"]`, ".xpdopen"}
)

type playwrightResultPage struct {
	page    playwright.Page
	timeout time.Duration
}

func newResultPage(page playwright.Page, timeout time.Duration) *playwrightResultPage {
	return &playwrightResultPage{page: page, timeout: timeout}
}

func (p *playwrightResultPage) WaitReady(ctx context.Context) error {
	err := p.page.Locator(resultItemSelector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(p.timeout.Milliseconds())),
	})
	if err != nil {
		return classifyNav(err)
	}
	return nil
}

func (p *playwrightResultPage) ItemCount(ctx context.Context) (int, error) {
	count, err := p.page.Locator(resultItemSelector).Count()
	if err != nil {
		return 0, classifyNav(err)
	}
	return count, nil
}

func (p *playwrightResultPage) Item(ctx context.Context, idx int) (ItemHandle, error) {
	return &playwrightItem{page: p.page, idx: idx, timeout: p.timeout}, nil
}

func (p *playwrightResultPage) NextPage(ctx context.Context) (bool, error) {
	next := p.page.Locator(nextPageSelector)
	count, err := next.Count()
	if err != nil {
		return false, classifyNav(err)
	}
	if count == 0 {
		return false, nil
	}

	if err := next.First().Click(); err != nil {
		return false, classifyNav(err)
	}
	if err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: playwright.Float(float64(p.timeout.Milliseconds())),
	}); err != nil {
		return false, classifyNav(err)
	}
	return true, nil
}

// playwrightItem re-resolves its locator on each use: index-addressed
// handles survive in-place DOM refreshes between items.
type playwrightItem struct {
	page    playwright.Page
	idx     int
	timeout time.Duration
}

func (i *playwrightItem) locator() playwright.Locator {
	return i.page.Locator(resultItemSelector).Nth(i.idx)
}

func (i *playwrightItem) Name(ctx context.Context) (string, error) {
	loc := i.locator()
	for _, sel := range itemNameSelectors {
		name := loc.Locator(sel).First()
		count, err := name.Count()
		if err != nil || count == 0 {
			continue
		}
		text, err := name.InnerText(playwright.LocatorInnerTextOptions{
			Timeout: playwright.Float(float64(i.timeout.Milliseconds())),
		})
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), nil
		}
	}
	return "", nil
}

func (i *playwrightItem) ListingURL(ctx context.Context) (string, error) {
	result, err := i.locator().Evaluate(
		`el => { const a = el.closest('a'); return a ? a.href : '' }`, nil)
	if err != nil {
		return "", classifyNav(err)
	}
	href, _ := result.(string)
	return href, nil
}

func (i *playwrightItem) OpenDetail(ctx context.Context) (DetailView, error) {
	loc := i.locator()

	// Prefer the enclosing anchor; the details block itself is not
	// always clickable.
	anchor := loc.Locator("xpath=ancestor::a[1]")
	count, _ := anchor.Count()
	var err error
	if count > 0 {
		err = anchor.First().Click()
	} else {
		err = loc.Click()
	}
	if err != nil {
		return nil, classifyNav(err)
	}

	var waitErr error
	for _, sel := range detailPanelSelectors {
		waitErr = i.page.Locator(sel).First().WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(float64(detailReadyTimeout.Milliseconds())),
		})
		if waitErr == nil {
			break
		}
	}
	if waitErr != nil {
		return nil, classifyNav(waitErr)
	}

	return &playwrightDetail{page: i.page, url: i.page.URL(), timeout: i.timeout}, nil
}

type playwrightDetail struct {
	page    playwright.Page
	url     string
	timeout time.Duration
}

func (d *playwrightDetail) CanonicalURL() string {
	return d.url
}

func (d *playwrightDetail) HTML(ctx context.Context) (string, error) {
	content, err := d.page.Content()
	if err != nil {
		return "", classifyNav(err)
	}
	return content, nil
}

func (d *playwrightDetail) Close(ctx context.Context) error {
	if _, err := d.page.GoBack(playwright.PageGoBackOptions{
		Timeout: playwright.Float(float64(d.timeout.Milliseconds())),
	}); err != nil {
		return classifyNav(err)
	}
	d.page.WaitForTimeout(detailSettleDelayMs)
	return nil
}

func classifyNav(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "timeout") {
		return ErrNavigationTimeout{Err: err}
	}
	return ErrNavigation{Err: err}
}
