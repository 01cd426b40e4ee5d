package scraper

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyNav(t *testing.T) {
	if classifyNav(nil) != nil {
		t.Error("nil error should stay nil")
	}

	var timeout ErrNavigationTimeout
	err := classifyNav(errors.New("Timeout 30000ms exceeded"))
	if !errors.As(err, &timeout) {
		t.Errorf("timeout message not classified as timeout: %v", err)
	}

	var nav ErrNavigation
	err = classifyNav(errors.New("net::ERR_CONNECTION_RESET"))
	if !errors.As(err, &nav) {
		t.Errorf("connection error not classified as navigation: %v", err)
	}
	if errors.As(err, &timeout) {
		t.Error("connection error wrongly classified as timeout")
	}
}

func TestErrorTypeLabel(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrMandatoryFieldMissing{Field: "name"}, "mandatory_missing"},
		{ErrNavigationTimeout{Err: errors.New("timeout")}, "navigation_timeout"},
		{ErrNavigation{Err: errors.New("reset")}, "navigation"},
		{ErrPersistence{Err: errors.New("down")}, "persistence"},
		{fmt.Errorf("wrapped: %w", ErrPersistence{Err: errors.New("down")}), "persistence"},
		{errors.New("something else"), "other"},
		{nil, "unknown"},
	}
	for _, c := range cases {
		if got := errorTypeLabel(c.err); got != c.want {
			t.Errorf("errorTypeLabel(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestNavigationErrorsUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	if !errors.Is(ErrNavigationTimeout{Err: cause}, cause) {
		t.Error("ErrNavigationTimeout does not unwrap to its cause")
	}
	if !errors.Is(ErrNavigation{Err: cause}, cause) {
		t.Error("ErrNavigation does not unwrap to its cause")
	}
	if !errors.Is(ErrPersistence{Err: cause}, cause) {
		t.Error("ErrPersistence does not unwrap to its cause")
	}
}
