// Package feed reads positional fixes and device status from the local
// sensor daemon's HTTP endpoints. The daemon is an external
// collaborator; this adapter only consumes whatever it last produced.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nzmdn/trackship/internal/domain"
	"github.com/nzmdn/trackship/internal/ports"
)

// fixPayload mirrors the daemon's position response.
type fixPayload struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Altitude float64 `json:"altitude"`
	HAcc     float64 `json:"h_acc"`
	VelN     float64 `json:"vel_n"`
	VelE     float64 `json:"vel_e"`
	VelD     float64 `json:"vel_d"`
}

// FixSource implements ports.FixSource against the daemon's latest-fix
// endpoint.
type FixSource struct {
	url    string
	client ports.HTTPClient
}

// NewFixSource creates a fix source polling the given endpoint.
func NewFixSource(url string, client ports.HTTPClient) *FixSource {
	return &FixSource{url: url, client: client}
}

// Latest returns the most recent fix. A 204 or 404 response means the
// daemon has nothing yet and maps to domain.ErrNoFix, as does any
// transport or decode failure: the pipeline treats them all as "no data
// this cycle".
func (s *FixSource) Latest(ctx context.Context) (ports.Fix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return ports.Fix{}, fmt.Errorf("%w: %v", domain.ErrNoFix, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return ports.Fix{}, fmt.Errorf("%w: %v", domain.ErrNoFix, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound:
		return ports.Fix{}, domain.ErrNoFix
	case resp.StatusCode/100 != 2:
		return ports.Fix{}, fmt.Errorf("%w: daemon returned %d", domain.ErrNoFix, resp.StatusCode)
	}

	var p fixPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return ports.Fix{}, fmt.Errorf("%w: decode: %v", domain.ErrNoFix, err)
	}

	return ports.Fix{
		Lat:      p.Lat,
		Lon:      p.Lon,
		Altitude: p.Altitude,
		Accuracy: p.HAcc,
		VelN:     p.VelN,
		VelE:     p.VelE,
		VelD:     p.VelD,
	}, nil
}
