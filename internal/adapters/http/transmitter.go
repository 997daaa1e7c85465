// Package http contains the network-facing adapters: the batch
// transmitter that delivers readings to the remote collector and the
// advisory connectivity probe.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/nzmdn/trackship/internal/domain"
	"github.com/nzmdn/trackship/internal/ports"
)

// TransmitterConfig holds the collector endpoint settings.
type TransmitterConfig struct {
	// ServerURL is the collector base endpoint. Query parameters are
	// appended to it, one GET per reading.
	ServerURL string

	// DeviceID identifies this agent to the collector.
	DeviceID string
}

// Transmitter implements ports.Transmitter over HTTP. Each reading is
// delivered as one GET with query-style parameters; the collector
// acknowledges with any 2xx status.
//
// Calls go through a circuit breaker so a dead collector stops costing
// a full timeout per reading. An open breaker fails the reading without
// issuing the request, which feeds the same durable-fallback path as a
// transport error.
type Transmitter struct {
	config  TransmitterConfig
	client  ports.HTTPClient
	breaker *gobreaker.CircuitBreaker
	logger  ports.Logger
}

// NewTransmitter creates an HTTP transmitter.
func NewTransmitter(config TransmitterConfig, client ports.HTTPClient, logger ports.Logger) *Transmitter {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "collector",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Transmitter{
		config:  config,
		client:  client,
		breaker: breaker,
		logger:  logger,
	}
}

// SendBatch attempts every reading in order and returns nil only if all
// were acknowledged. Failures do not short-circuit the batch; the
// per-reading errors are joined, each wrapping domain.ErrTransport.
func (t *Transmitter) SendBatch(ctx context.Context, readings []domain.Reading) error {
	var errs []error
	for i, r := range readings {
		if err := t.send(ctx, r); err != nil {
			t.logger.Error("delivery failed",
				ports.Int("index", i),
				ports.String("timestamp", r.Timestamp),
				ports.Err(err),
			)
			errs = append(errs, fmt.Errorf("%w: reading %d: %v", domain.ErrTransport, i, err))
		}
	}
	return errors.Join(errs...)
}

func (t *Transmitter) send(ctx context.Context, r domain.Reading) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.config.ServerURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.URL.RawQuery = t.query(r).Encode()

	_, err = t.breaker.Execute(func() (interface{}, error) {
		resp, err := t.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("server returned %d", resp.StatusCode)
		}
		return nil, nil
	})
	return err
}

func (t *Transmitter) query(r domain.Reading) url.Values {
	q := url.Values{}
	q.Set("deviceid", t.config.DeviceID)
	q.Set("lat", formatFloat(r.Lat))
	q.Set("lon", formatFloat(r.Lon))
	q.Set("altitude", formatFloat(r.Altitude))
	q.Set("accuracy", formatFloat(r.Accuracy))
	q.Set("timestamp", r.Timestamp)
	q.Set("speed", formatFloat(r.Speed))
	q.Set("bearing", formatFloat(orZero(r.Bearing)))
	q.Set("batt", formatFloat(orZero(r.Battery)))
	return q
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// orZero defaults optional fields to 0 on the wire, matching what the
// collector expects for absent values.
func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
