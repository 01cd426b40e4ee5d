package scraper

import "context"

// Walker yields result items across pages lazily, advancing pages on
// demand. It is finite: bounded by maxPages and by natural exhaustion
// (no next affordance). Not restartable once the page has moved on.
type Walker struct {
	page         ResultPage
	maxPages     int
	itemsPerPage int

	pagesWalked int
	idx         int
	count       int
	primed      bool
	done        bool
}

func NewWalker(page ResultPage, maxPages, itemsPerPage int) *Walker {
	if maxPages < 1 {
		maxPages = 1
	}
	return &Walker{page: page, maxPages: maxPages, itemsPerPage: itemsPerPage}
}

// Next returns the next item handle, advancing to the next results page
// when the current one is consumed. Returns ErrExhausted at the end of
// the sequence. The returned handle is valid until Next is called again.
func (w *Walker) Next(ctx context.Context) (ItemHandle, error) {
	if w.done {
		return nil, ErrExhausted
	}

	if !w.primed {
		if err := w.prime(ctx); err != nil {
			return nil, err
		}
	}

	for w.idx >= w.count {
		if w.done || w.pagesWalked >= w.maxPages {
			w.done = true
			return nil, ErrExhausted
		}
		moved, err := w.page.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if !moved {
			w.done = true
			return nil, ErrExhausted
		}
		if err := w.prime(ctx); err != nil {
			return nil, err
		}
	}

	item, err := w.page.Item(ctx, w.idx)
	if err != nil {
		return nil, err
	}
	w.idx++
	return item, nil
}

// PagesWalked reports how many result pages have been loaded so far.
func (w *Walker) PagesWalked() int {
	return w.pagesWalked
}

func (w *Walker) prime(ctx context.Context) error {
	if err := w.page.WaitReady(ctx); err != nil {
		return err
	}
	count, err := w.page.ItemCount(ctx)
	if err != nil {
		return err
	}
	if w.itemsPerPage > 0 && count > w.itemsPerPage {
		count = w.itemsPerPage
	}
	w.count = count
	w.idx = 0
	w.pagesWalked++
	w.primed = true
	if count == 0 {
		w.done = true
	}
	return nil
}
