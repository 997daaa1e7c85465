package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nzmdn/trackship/internal/ports"
)

// statusPayload mirrors the daemon's device status response.
type statusPayload struct {
	BatteryPercent float64 `json:"battery_percent"`
}

// BatterySource implements ports.BatterySource against the daemon's
// device status endpoint. It is best-effort: the caller treats any
// error as "battery unknown".
type BatterySource struct {
	url    string
	client ports.HTTPClient
}

// NewBatterySource creates a battery source polling the given endpoint.
func NewBatterySource(url string, client ports.HTTPClient) *BatterySource {
	return &BatterySource{url: url, client: client}
}

// Level returns the current battery percentage.
func (s *BatterySource) Level(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return 0, fmt.Errorf("daemon returned %d", resp.StatusCode)
	}

	var p statusPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}
	return p.BatteryPercent, nil
}
