package http

import (
	"context"
	"net/http"

	"github.com/nzmdn/trackship/internal/ports"
)

// Probe implements ports.Probe with a single bounded-timeout GET to a
// well-known endpoint. A true result means general internet egress
// works; it says nothing about the collector itself.
type Probe struct {
	url    string
	client ports.HTTPClient
}

// NewProbe creates a connectivity probe against the given URL. The
// client must carry its own timeout; the probe adds none of its own.
func NewProbe(url string, client ports.HTTPClient) *Probe {
	return &Probe{url: url, client: client}
}

// Reachable reports whether the probe endpoint answered with a success
// status. Every failure mode (timeout, DNS, non-2xx) collapses to false.
func (p *Probe) Reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode/100 == 2
}
