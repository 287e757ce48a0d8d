package servo

import (
	"errors"
	"fmt"
	"math"

	"canardfc/internal/fc"
)

// Channel identifies one canard fin servo.
type Channel int

const (
	Canard1 Channel = iota
	Canard2
	Canard3
	Canard4
)

func (c Channel) String() string {
	switch c {
	case Canard1:
		return "canard1"
	case Canard2:
		return "canard2"
	case Canard3:
		return "canard3"
	case Canard4:
		return "canard4"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// pulseDriver is the minimal interface the actuator needs from a servo
// signal backend. Pulse width is in microseconds at a 50 Hz frame rate.
//
// Close should be best-effort and leave the line in a safe state.
type pulseDriver interface {
	SetPulseMicros(us int) error
	Close() error
}

var openDriverFn = openDriver

type Config struct {
	// Backend selects the signal source: "pwm" for a hardware PWM channel
	// under /sys/class/pwm, "gpio" for bit-banged pulses on a GPIO line.
	Backend string
	// Pins holds one identifier per canard: the PWM channel index for the
	// pwm backend, the BCM GPIO number for the gpio backend. All four must
	// be distinct; a shared pin would slave the fins together.
	Pins [4]int
	// Pulse range mapped onto 0..180 degrees of servo travel.
	MinPulseUs int
	MaxPulseUs int
}

// Actuator drives the four canard servos. It implements the loop's Sink:
// each Emit converts every fin rotation to degrees and refreshes the
// corresponding pulse width, fire-and-forget.
type Actuator struct {
	cfg  Config
	drvs [4]pulseDriver
}

func New(cfg Config) (*Actuator, error) {
	if cfg.MinPulseUs <= 0 {
		cfg.MinPulseUs = 1000
	}
	if cfg.MaxPulseUs <= cfg.MinPulseUs {
		cfg.MaxPulseUs = 2000
	}

	seen := map[int]Channel{}
	for i, pin := range cfg.Pins {
		if prev, dup := seen[pin]; dup {
			return nil, fmt.Errorf("servo: %v and %v share pin %d", prev, Channel(i), pin)
		}
		seen[pin] = Channel(i)
	}

	a := &Actuator{cfg: cfg}
	for i, pin := range cfg.Pins {
		drv, err := openDriverFn(cfg.Backend, pin)
		if err != nil {
			a.closeAll()
			return nil, fmt.Errorf("servo: open %v (pin %d): %w", Channel(i), pin, err)
		}
		a.drvs[i] = drv
	}
	return a, nil
}

func (a *Actuator) Emit(st fc.State) error {
	for i, rad := range st.Canards {
		a.Actuate(Channel(i), rad*180/math.Pi)
	}
	return nil
}

// Actuate points one servo at the given angle in degrees. Values outside
// the servo's 0..180 travel are clamped. Errors are swallowed: a glitched
// frame corrects itself on the next iteration.
func (a *Actuator) Actuate(ch Channel, degrees float64) {
	if a == nil || ch < Canard1 || ch > Canard4 || a.drvs[ch] == nil {
		return
	}
	if degrees < 0 {
		degrees = 0
	} else if degrees > 180 {
		degrees = 180
	}
	span := float64(a.cfg.MaxPulseUs - a.cfg.MinPulseUs)
	us := float64(a.cfg.MinPulseUs) + degrees/180.0*span
	_ = a.drvs[ch].SetPulseMicros(int(math.Round(us)))
}

func (a *Actuator) Close() error {
	if a == nil {
		return nil
	}
	return a.closeAll()
}

func (a *Actuator) closeAll() error {
	var errs []error
	for i, drv := range a.drvs {
		if drv == nil {
			continue
		}
		if err := drv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%v: %w", Channel(i), err))
		}
		a.drvs[i] = nil
	}
	return errors.Join(errs...)
}
