package telemetry

import (
	"fmt"

	"github.com/tarm/serial"
)

// DefaultBaud matches the simulator side of the link.
const DefaultBaud = 9600

// NewSerialSink opens the given serial device and returns a Sink writing
// state lines to it.
func NewSerialSink(device string, baud, width int, pol OverflowPolicy) (*Sink, error) {
	if device == "" {
		return nil, fmt.Errorf("telemetry: serial device is required")
	}
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", device, err)
	}
	return NewSink(p, width, pol), nil
}
