package fc

// State is the rocket's current attitude plus the commanded canard fin
// rotations. All angles are radians in [0, 2π).
//
// A single State is owned by the Driver and handed to components explicitly;
// nothing in this package mutates shared globals.
type State struct {
	Pitch float64
	Roll  float64
	Yaw   float64

	// Canards holds the commanded rotation for each of the four fins,
	// indexed 0..3 front-left, front-right, rear-left, rear-right.
	Canards [4]float64
}
