// Package synthetic generates plausible IMU samples for bring-up without
// hardware: a slow coning motion plus a rotating heading.
package synthetic

import (
	"math"
	"time"

	"canardfc/internal/fc"
)

// Earth-field magnitudes in uT, roughly mid-latitude.
const (
	fieldHorizontalUT = 30.0
	fieldVerticalUT   = -40.0
)

type Source struct {
	// TiltRad is the coning amplitude; pitch and roll oscillate within it.
	TiltRad float64
	// Period is the coning period.
	Period time.Duration
	// HeadingPeriod is the time for one full yaw rotation.
	HeadingPeriod time.Duration

	// now is injectable for deterministic tests.
	now   func() time.Time
	start time.Time
}

func New() *Source {
	return &Source{
		TiltRad:       0.2,
		Period:        10 * time.Second,
		HeadingPeriod: 60 * time.Second,
		now:           time.Now,
	}
}

func (s *Source) Init() error {
	s.start = s.now()
	return nil
}

// Ready always reports true; the synthetic device never drops a sample.
func (s *Source) Ready() bool { return true }

func (s *Source) Sample() (fc.Sample, error) {
	t := s.now().Sub(s.start).Seconds()

	w := 2 * math.Pi * t / s.Period.Seconds()
	pitch := s.TiltRad * math.Sin(w)
	roll := s.TiltRad * math.Cos(w)

	// Unit gravity expressed in the body frame for the chosen attitude;
	// the estimator's atan2 forms invert these exactly.
	ax := -math.Sin(pitch)
	ay := math.Cos(pitch) * math.Sin(roll)
	az := math.Cos(pitch) * math.Cos(roll)

	heading := 2 * math.Pi * t / s.HeadingPeriod.Seconds()

	return fc.Sample{
		Ax: ax, Ay: ay, Az: az,
		Mx: fieldHorizontalUT * math.Cos(heading),
		My: fieldHorizontalUT * math.Sin(heading),
		Mz: fieldVerticalUT,
	}, nil
}
