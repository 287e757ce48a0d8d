package fc

import (
	"math"

	"canardfc/internal/angle"
)

// DefaultRateDegPerSec is the canard sweep rate used in flight testing.
const DefaultRateDegPerSec = 24.0

// Stabilizer advances all four canard rotations at a fixed angular rate.
//
// The sweep is open loop: it does not look at the sensed attitude or any
// target. Every fin ends each step inside [0, 2π).
type Stabilizer struct {
	// RateRadPerSec is the sweep rate in radians per second.
	RateRadPerSec float64
}

func NewStabilizer(rateDegPerSec float64) Stabilizer {
	if rateDegPerSec == 0 {
		rateDegPerSec = DefaultRateDegPerSec
	}
	return Stabilizer{RateRadPerSec: rateDegPerSec * math.Pi / 180.0}
}

// Advance rotates each canard by rate*dt and normalizes the result.
// dt is seconds since the previous step; 0 on the very first call.
func (st Stabilizer) Advance(s *State, dt float64) {
	for i := range s.Canards {
		s.Canards[i] = angle.NormalizeRadians(s.Canards[i] + st.RateRadPerSec*dt)
	}
}
