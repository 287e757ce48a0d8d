package angle

import "math"

// Wrapping helpers for canard and attitude angles.
//
// The flight loop keeps every angle in [0, period). The negative-input
// correction adds half a period before taking the absolute value; this
// mirrors the flight-tested firmware exactly and is deliberately not the
// usual "add a full period" wrap. Callers that need a different mapping
// for negative angles should wrap before handing values to this package.

// NormalizeDegrees wraps d into [0, 360).
func NormalizeDegrees(d float64) float64 {
	if d < 0 {
		d += 180
	}
	return math.Mod(math.Abs(d), 360)
}

// NormalizeRadians wraps r into [0, 2π).
func NormalizeRadians(r float64) float64 {
	if r < 0 {
		r += math.Pi
	}
	return math.Mod(math.Abs(r), 2*math.Pi)
}
