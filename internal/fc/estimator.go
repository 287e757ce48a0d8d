package fc

import (
	"math"

	"canardfc/internal/angle"
)

// Sample is one raw accelerometer + magnetometer reading in sensor units.
// The estimator only uses ratios between components, so the units cancel.
type Sample struct {
	Ax, Ay, Az float64
	Mx, My, Mz float64
}

// Source is the sensor boundary the loop reads from.
//
// Init is retried by the Driver until it succeeds. Ready reports whether a
// new sample can be fetched this iteration; when it returns false the
// orientation simply keeps its previous value.
type Source interface {
	Init() error
	Ready() bool
	Sample() (Sample, error)
}

// Estimate derives pitch, roll and yaw from a single sample.
//
// Roll and pitch come from the gravity vector, yaw from the horizontal
// magnetometer components. No filtering and no history: each call stands
// alone. Results are normalized into [0, 2π).
func Estimate(s Sample) (pitch, roll, yaw float64) {
	roll = math.Atan2(s.Ay, s.Az)
	pitch = math.Atan2(-s.Ax, math.Sqrt(s.Ay*s.Ay+s.Az*s.Az))
	yaw = math.Atan2(s.My, s.Mx)

	pitch = angle.NormalizeRadians(pitch)
	roll = angle.NormalizeRadians(roll)
	yaw = angle.NormalizeRadians(yaw)
	return pitch, roll, yaw
}
