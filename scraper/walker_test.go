package scraper

import (
	"context"
	"errors"
	"testing"
)

func pageOf(counts ...int) *fakePage {
	pages := make([][]ItemHandle, len(counts))
	n := 0
	for i, c := range counts {
		items := make([]ItemHandle, c)
		for j := range items {
			n++
			items[j] = businessItem("Biz", "biz-"+string(rune('a'+i))+"-"+string(rune('0'+j)))
		}
		pages[i] = items
	}
	return &fakePage{pages: pages}
}

func drain(t *testing.T, w *Walker) int {
	t.Helper()
	count := 0
	for {
		_, err := w.Next(context.Background())
		if errors.Is(err, ErrExhausted) {
			return count
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
}

func TestWalkerStopsAtMaxPages(t *testing.T) {
	page := pageOf(10, 10, 10, 10)
	w := NewWalker(page, 2, 20)

	if got := drain(t, w); got != 20 {
		t.Errorf("expected 20 items across 2 pages, got %d", got)
	}
	if w.PagesWalked() != 2 {
		t.Errorf("expected 2 pages walked, got %d", w.PagesWalked())
	}
}

func TestWalkerStopsAtNaturalEnd(t *testing.T) {
	page := pageOf(10, 3)
	w := NewWalker(page, 5, 20)

	if got := drain(t, w); got != 13 {
		t.Errorf("expected 13 items, got %d", got)
	}
	if w.PagesWalked() != 2 {
		t.Errorf("expected 2 pages walked, got %d", w.PagesWalked())
	}
}

func TestWalkerEmptyFirstPage(t *testing.T) {
	page := pageOf(0)
	w := NewWalker(page, 5, 20)

	_, err := w.Next(context.Background())
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted on empty results, got %v", err)
	}
	// Stays exhausted on repeat calls.
	if _, err := w.Next(context.Background()); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted again, got %v", err)
	}
}

func TestWalkerCapsItemsPerPage(t *testing.T) {
	page := pageOf(25)
	w := NewWalker(page, 1, 20)

	if got := drain(t, w); got != 20 {
		t.Errorf("expected 20 items with per-page cap, got %d", got)
	}
}

func TestWalkerNextPageError(t *testing.T) {
	page := pageOf(2, 2)
	page.nextErr = errors.New("detached")
	w := NewWalker(page, 3, 20)

	for i := 0; i < 2; i++ {
		if _, err := w.Next(context.Background()); err != nil {
			t.Fatalf("Next failed on first page: %v", err)
		}
	}
	if _, err := w.Next(context.Background()); err == nil || errors.Is(err, ErrExhausted) {
		t.Fatalf("expected pagination error, got %v", err)
	}
}

func TestWalkerYieldsItemsInOrder(t *testing.T) {
	a := businessItem("A", "a")
	b := businessItem("B", "b")
	c := businessItem("C", "c")
	page := &fakePage{pages: [][]ItemHandle{{a, b}, {c}}}
	w := NewWalker(page, 2, 20)

	want := []ItemHandle{a, b, c}
	for i, expected := range want {
		got, err := w.Next(context.Background())
		if err != nil {
			t.Fatalf("Next %d failed: %v", i, err)
		}
		if got != expected {
			t.Errorf("item %d out of order", i)
		}
	}
}
