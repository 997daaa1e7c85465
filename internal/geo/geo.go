// Package geo computes the derived metrics attached to each reading:
// speed from NED velocity components and the great-circle forward
// azimuth between two positions.
package geo

import (
	"math"

	"github.com/nzmdn/trackship/internal/domain"
)

// Speed returns the magnitude of the NED velocity vector in m/s.
func Speed(velN, velE, velD float64) float64 {
	return math.Sqrt(velN*velN + velE*velE + velD*velD)
}

// Bearing returns the forward azimuth from one coordinate to another in
// degrees, normalized to [0, 360).
func Bearing(from, to domain.Coordinate) float64 {
	dLon := radians(to.Lon - from.Lon)
	lat1 := radians(from.Lat)
	lat2 := radians(to.Lat)

	x := math.Sin(dLon) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	bearing := degrees(math.Atan2(x, y))
	return math.Mod(bearing+360, 360)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
