package scraper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

type fakeDetail struct {
	url    string
	html   string
	closed bool
}

func (d *fakeDetail) CanonicalURL() string { return d.url }

func (d *fakeDetail) HTML(ctx context.Context) (string, error) { return d.html, nil }

func (d *fakeDetail) Close(ctx context.Context) error {
	d.closed = true
	return nil
}

type fakeItem struct {
	name       string
	listingURL string
	detail     *fakeDetail
	openErr    error

	urlReadBeforeOpen bool
	opened            bool
}

func (i *fakeItem) Name(ctx context.Context) (string, error) { return i.name, nil }

func (i *fakeItem) ListingURL(ctx context.Context) (string, error) {
	if !i.opened {
		i.urlReadBeforeOpen = true
	}
	return i.listingURL, nil
}

func (i *fakeItem) OpenDetail(ctx context.Context) (DetailView, error) {
	i.opened = true
	if i.openErr != nil {
		return nil, i.openErr
	}
	return i.detail, nil
}

// fakePage serves items from a fixed page layout.
type fakePage struct {
	pages   [][]ItemHandle
	cur     int
	waits   int
	nextErr error
}

func (p *fakePage) WaitReady(ctx context.Context) error {
	p.waits++
	return nil
}

func (p *fakePage) ItemCount(ctx context.Context) (int, error) {
	return len(p.pages[p.cur]), nil
}

func (p *fakePage) Item(ctx context.Context, idx int) (ItemHandle, error) {
	return p.pages[p.cur][idx], nil
}

func (p *fakePage) NextPage(ctx context.Context) (bool, error) {
	if p.nextErr != nil {
		return false, p.nextErr
	}
	if p.cur+1 >= len(p.pages) {
		return false, nil
	}
	p.cur++
	return true, nil
}

// fakeSession hands out pages built by pageFn and recycles after a
// fixed number of extractions when recycleEvery > 0.
type fakeSession struct {
	pageFn       func() ResultPage
	searchErr    error
	searches     int
	extractions  int
	recycleEvery int
	closed       bool
}

func (s *fakeSession) Search(ctx context.Context, location, category string) (ResultPage, error) {
	s.searches++
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.pageFn(), nil
}

func (s *fakeSession) Delay(ctx context.Context) {}

func (s *fakeSession) NoteExtraction(ctx context.Context) (bool, error) {
	s.extractions++
	if s.recycleEvery > 0 && s.extractions%s.recycleEvery == 0 {
		return true, nil
	}
	return false, nil
}

func (s *fakeSession) Close() { s.closed = true }

func detailHTML(name string) string {
	return `<div role="main"><h1>` + name + `</h1><span data-dtype="d3adr">100 Main St</span></div>`
}

// businessItem builds a plain item with a unique listing identity and
// no website affordance.
func businessItem(name, id string) *fakeItem {
	return &fakeItem{
		name:       name,
		listingURL: "https://www.google.com/maps/place/" + id,
		detail: &fakeDetail{
			url:  "https://www.google.com/maps/place/" + id,
			html: detailHTML(name),
		},
	}
}
