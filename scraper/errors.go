package scraper

import (
	"errors"
	"fmt"
)

// ErrExhausted is the walker's end-of-sequence sentinel: either no next
// page exists or the page cap was reached.
var ErrExhausted = errors.New("pagination exhausted")

// ErrMandatoryFieldMissing indicates the business name could not be
// read at all. The item is skipped and counted as an error; the run
// continues.
type ErrMandatoryFieldMissing struct {
	Field string
}

func (e ErrMandatoryFieldMissing) Error() string {
	return fmt.Sprintf("mandatory field missing: %s", e.Field)
}

// ErrNavigationTimeout indicates a page load or transition timed out.
// Recovered at the task level: the run is finalized as partial/failed.
type ErrNavigationTimeout struct {
	Err error
}

func (e ErrNavigationTimeout) Error() string {
	return fmt.Errorf("navigation timeout: %w", e.Err).Error()
}

func (e ErrNavigationTimeout) Unwrap() error {
	return e.Err
}

// ErrNavigation indicates a non-timeout navigation failure.
type ErrNavigation struct {
	Err error
}

func (e ErrNavigation) Error() string {
	return fmt.Errorf("navigation: %w", e.Err).Error()
}

func (e ErrNavigation) Unwrap() error {
	return e.Err
}

// ErrPersistence indicates the store rejected a write. The record is
// not retried; the run is interrupted so the operator sees it.
type ErrPersistence struct {
	Err error
}

func (e ErrPersistence) Error() string {
	return fmt.Errorf("persistence: %w", e.Err).Error()
}

func (e ErrPersistence) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var mandatory ErrMandatoryFieldMissing
	if errors.As(err, &mandatory) {
		return "mandatory_missing"
	}
	var timeout ErrNavigationTimeout
	if errors.As(err, &timeout) {
		return "navigation_timeout"
	}
	var nav ErrNavigation
	if errors.As(err, &nav) {
		return "navigation"
	}
	var persist ErrPersistence
	if errors.As(err, &persist) {
		return "persistence"
	}
	return "other"
}
