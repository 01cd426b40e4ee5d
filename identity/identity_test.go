package identity

import (
	"strings"
	"testing"
)

func TestPickReturnsPooledIdentity(t *testing.T) {
	if Pool() != len(userAgents) {
		t.Fatalf("pool size mismatch: %d vs %d", Pool(), len(userAgents))
	}

	for i := 0; i < 50; i++ {
		id := Pick()
		found := false
		for _, ua := range userAgents {
			if id.UserAgent == ua {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("picked user agent not in pool: %q", id.UserAgent)
		}
		if id.ViewportWidth <= 0 || id.ViewportHeight <= 0 {
			t.Fatalf("invalid viewport: %dx%d", id.ViewportWidth, id.ViewportHeight)
		}
		if id.Locale == "" || id.TimezoneID == "" {
			t.Fatal("identity missing locale or timezone")
		}
	}
}

func TestStealthScriptMasksWebdriver(t *testing.T) {
	if !strings.Contains(StealthScript, "webdriver") {
		t.Error("stealth script does not touch navigator.webdriver")
	}
	if !strings.Contains(StealthScript, "plugins") {
		t.Error("stealth script does not touch navigator.plugins")
	}
}
