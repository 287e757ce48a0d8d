//go:build !linux

package servo

import "fmt"

// Stub for non-Linux hosts; the hardware output path needs the Linux PWM
// and GPIO character-device interfaces.
func openDriver(backend string, pin int) (pulseDriver, error) {
	return nil, fmt.Errorf("servo: backend %q unsupported on this platform", backend)
}
