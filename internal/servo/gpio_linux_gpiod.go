//go:build linux

package servo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// gpioServo bit-bangs the 50 Hz servo frame on a GPIO line through the
// Linux GPIO character device. Timing jitter from the scheduler shows up as
// a degree or two of servo wobble, which is acceptable for ground testing;
// flight builds use the hardware pwm backend.
type gpioServo struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	pulseUS atomic.Int64

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func openGPIOServo(pin int) (pulseDriver, error) {
	if pin <= 0 {
		return nil, fmt.Errorf("servo: invalid gpio pin %d", pin)
	}

	// On Pi, header GPIOs are named "GPIO<n>"; probe every chip for the line.
	lineName := fmt.Sprintf("GPIO%d", pin)
	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", e.Name()))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("canardfc-servo"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		g := &gpioServo{
			chip:   chip,
			line:   line,
			stopCh: make(chan struct{}),
			doneCh: make(chan struct{}),
		}
		go g.run()
		return g, nil
	}

	return nil, fmt.Errorf("servo: gpio line %q not found (or busy)", lineName)
}

func (g *gpioServo) run() {
	defer close(g.doneCh)
	const frame = 20 * time.Millisecond
	for {
		select {
		case <-g.stopCh:
			return
		default:
		}
		us := g.pulseUS.Load()
		if us <= 0 {
			// No command yet; hold the line low for a full frame.
			time.Sleep(frame)
			continue
		}
		high := time.Duration(us) * time.Microsecond
		if high > frame {
			high = frame
		}
		_ = g.line.SetValue(1)
		time.Sleep(high)
		_ = g.line.SetValue(0)
		time.Sleep(frame - high)
	}
}

func (g *gpioServo) SetPulseMicros(us int) error {
	if g == nil || g.line == nil {
		return fmt.Errorf("servo: gpio driver not initialized")
	}
	if us < 0 {
		us = 0
	}
	g.pulseUS.Store(int64(us))
	return nil
}

func (g *gpioServo) Close() error {
	if g == nil || g.line == nil {
		return nil
	}
	g.stopOnce.Do(func() { close(g.stopCh) })
	<-g.doneCh
	_ = g.line.SetValue(0)
	err := g.line.Close()
	g.line = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}
