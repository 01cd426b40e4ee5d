package identity

import "math/rand"

// Identity is the browser fingerprint a session presents: user agent,
// viewport and locale. A fresh one is picked per session and again each
// time the browser process is recycled.
type Identity struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Locale         string
	TimezoneID     string
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// StealthScript masks the most common automation tells before any page
// script runs.
const StealthScript = `
Object.defineProperty(navigator, 'webdriver', {
	get: () => undefined
});
Object.defineProperty(navigator, 'plugins', {
	get: () => [1, 2, 3, 4, 5]
});
`

// LaunchArgs are passed to the Chromium launch for every session.
var LaunchArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--disable-setuid-sandbox",
}

// Pick returns a random identity from the pool.
func Pick() Identity {
	return Identity{
		UserAgent:      userAgents[rand.Intn(len(userAgents))],
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		Locale:         "en-US",
		TimezoneID:     "America/Chicago",
	}
}

// Pool exposes the user agent pool size for tests and diagnostics.
func Pool() int {
	return len(userAgents)
}
