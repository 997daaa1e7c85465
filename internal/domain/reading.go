package domain

import "time"

// TimestampLayout is the wire and storage format for reading timestamps:
// UTC ISO-8601 with a trailing "Z".
const TimestampLayout = "2006-01-02T15:04:05.999999999Z"

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Reading is one timestamped positional/status observation.
// It is the atomic unit moved between the buffer, the durable store and
// the transmitter.
type Reading struct {
	// Lat and Lon are the position in decimal degrees.
	Lat float64
	Lon float64

	// Altitude is meters above the ellipsoid.
	Altitude float64

	// Accuracy is the horizontal accuracy estimate in meters.
	Accuracy float64

	// Timestamp is the observation time in TimestampLayout format.
	Timestamp string

	// Speed is derived from the NED velocity components and is always present.
	Speed float64

	// Bearing is the forward azimuth from the previous position in
	// degrees [0, 360). Nil for the first reading of a session, which
	// has no prior position to derive it from.
	Bearing *float64

	// Battery is the device battery percentage. Nil when the status
	// source was unavailable at collection time.
	Battery *float64
}

// FormatTimestamp renders t in the reading timestamp layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Coordinate returns the reading's position.
func (r Reading) Coordinate() Coordinate {
	return Coordinate{Lat: r.Lat, Lon: r.Lon}
}

// Session is the pipeline's mutable per-run state: the previous position
// used for bearing derivation and the in-memory buffer of readings
// awaiting a flush decision. It is owned exclusively by the pipeline;
// nothing else mutates it.
type Session struct {
	// Prev is the last polled position, nil before the first fix.
	Prev *Coordinate

	// Buffer holds readings collected since the last flush decision.
	// It is not durable: readings are lost on crash unless they were
	// moved to the store first.
	Buffer []Reading
}

// Push appends a reading and records its position as the new previous
// coordinate.
func (s *Session) Push(r Reading) {
	c := r.Coordinate()
	s.Prev = &c
	s.Buffer = append(s.Buffer, r)
}

// ClearBuffer empties the buffer. Every flush decision, successful or
// not, ends with this so the buffer never grows past the threshold.
func (s *Session) ClearBuffer() {
	s.Buffer = s.Buffer[:0]
}
