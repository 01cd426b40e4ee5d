package httputil

import (
	"net/http"
	"net/url"
	"time"
)

type Clients struct {
	// Website follows redirects so a checked URL resolves to its final
	// destination.
	Website *http.Client
}

func NewClients(proxyURL string) *Clients {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	}

	return &Clients{
		Website: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}
