package scraper

import "context"

// The extractor and walker drive the browser through these narrow
// interfaces so the playwright backend stays an opaque collaborator and
// tests can substitute fakes.

// ResultPage is a loaded search results page. Advancing pages
// invalidates previously yielded item handles; a consumer that needs to
// re-walk must re-issue the search.
type ResultPage interface {
	// WaitReady blocks until result items are present or times out.
	WaitReady(ctx context.Context) error
	// ItemCount reports how many result items the current page shows.
	ItemCount(ctx context.Context) (int, error)
	// Item returns a handle for the i-th result on the current page.
	Item(ctx context.Context, idx int) (ItemHandle, error)
	// NextPage advances to the next results page. Returns false when no
	// next affordance exists.
	NextPage(ctx context.Context) (bool, error)
}

// ItemHandle addresses one result item. It stays valid until the next
// handle is requested or the page navigates.
type ItemHandle interface {
	// Name reads the business name from the list item.
	Name(ctx context.Context) (string, error)
	// ListingURL reads the item's canonical listing URL. Callers must
	// read it before OpenDetail, since navigation replaces the
	// handle's addressable state.
	ListingURL(ctx context.Context) (string, error)
	// OpenDetail clicks through to the item's detail view.
	OpenDetail(ctx context.Context) (DetailView, error)
}

// DetailView is an opened detail panel for one business.
type DetailView interface {
	// CanonicalURL is the detail view's address, captured at open time.
	CanonicalURL() string
	// HTML returns the rendered detail content.
	HTML(ctx context.Context) (string, error)
	// Close returns to the list state so the next item can be processed.
	Close(ctx context.Context) error
}
