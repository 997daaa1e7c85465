package ports

import "context"

// Fix is one raw positional sample from the sensor feed, before any
// derived metrics are computed.
type Fix struct {
	Lat      float64
	Lon      float64
	Altitude float64
	Accuracy float64

	// NED velocity components in m/s.
	VelN float64
	VelE float64
	VelD float64
}

// FixSource produces the sensor feed's latest fix on demand.
type FixSource interface {
	// Latest returns the most recent fix, or domain.ErrNoFix when no
	// reading is currently available. ErrNoFix means "no data this
	// cycle"; any other error fails the cycle and triggers the error
	// cooldown.
	Latest(ctx context.Context) (Fix, error)
}

// BatterySource is a best-effort enrichment read. Failures mean the
// battery field is simply absent from the reading.
type BatterySource interface {
	// Level returns the current battery percentage.
	Level(ctx context.Context) (float64, error)
}
