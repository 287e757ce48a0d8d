//go:build linux

package servo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// sysfsServo drives a hardware PWM channel under /sys/class/pwm with the
// standard 50 Hz servo frame.
//
// The pin identifier from config is the channel index on the first usable
// pwmchip. On Raspberry Pi this requires the pwm overlay (for example
// `dtoverlay=pwm-2chan`); dedicated flight boards expose one channel per
// canard.

const servoPeriodNS = 20_000_000 // 50 Hz

var pwmSysfsBase = "/sys/class/pwm"

type sysfsServo struct {
	pwmPath string
	enabled bool
}

func openDriver(backend string, pin int) (pulseDriver, error) {
	switch backend {
	case "", "pwm":
		return openSysfsServo(pin)
	case "gpio":
		return openGPIOServo(pin)
	}
	return nil, fmt.Errorf("servo: unknown backend %q", backend)
}

func openSysfsServo(channel int) (pulseDriver, error) {
	if channel < 0 {
		return nil, fmt.Errorf("servo: invalid pwm channel %d", channel)
	}

	chipPath, err := findPWMChip(channel)
	if err != nil {
		return nil, err
	}

	d := &sysfsServo{pwmPath: filepath.Join(chipPath, fmt.Sprintf("pwm%d", channel))}
	if err := d.ensureExported(chipPath, channel); err != nil {
		return nil, err
	}

	_ = d.writeAttr("enable", "0")
	if err := d.writeAttr("period", strconv.Itoa(servoPeriodNS)); err != nil {
		return nil, fmt.Errorf("servo: set period: %w", err)
	}
	return d, nil
}

func findPWMChip(channel int) (string, error) {
	entries, err := os.ReadDir(pwmSysfsBase)
	if err != nil {
		return "", fmt.Errorf("servo: read %s: %w", pwmSysfsBase, err)
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "pwmchip") {
			continue
		}
		chip := filepath.Join(pwmSysfsBase, name)
		b, rerr := os.ReadFile(filepath.Join(chip, "npwm"))
		if rerr != nil {
			continue
		}
		n, rerr := strconv.Atoi(strings.TrimSpace(string(b)))
		if rerr != nil || n <= channel {
			continue
		}
		return chip, nil
	}
	return "", fmt.Errorf("servo: no pwmchip with channel %d (is the pwm overlay enabled?)", channel)
}

func (d *sysfsServo) ensureExported(chipPath string, channel int) error {
	if _, err := os.Stat(d.pwmPath); err == nil {
		return nil
	}
	if err := writeFileRetry(filepath.Join(chipPath, "export"), strconv.Itoa(channel)); err != nil {
		if _, statErr := os.Stat(d.pwmPath); statErr == nil {
			return nil // someone else exported it
		}
		return fmt.Errorf("servo: export pwm%d: %w", channel, err)
	}
	// udev may still be fixing permissions on the fresh node.
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(d.pwmPath); err == nil {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("servo: pwm%d not present after export", channel)
}

func (d *sysfsServo) SetPulseMicros(us int) error {
	if us < 0 {
		us = 0
	}
	duty := us * 1000
	if duty > servoPeriodNS {
		duty = servoPeriodNS
	}
	if err := d.writeAttr("duty_cycle", strconv.Itoa(duty)); err != nil {
		return err
	}
	if !d.enabled {
		if err := d.writeAttr("enable", "1"); err != nil {
			return err
		}
		d.enabled = true
	}
	return nil
}

func (d *sysfsServo) Close() error {
	// Leave the fin where it is; just stop the signal.
	err := d.writeAttr("enable", "0")
	d.enabled = false
	return err
}

func (d *sysfsServo) writeAttr(name, value string) error {
	return writeFileRetry(filepath.Join(d.pwmPath, name), value)
}

// writeFileRetry opens O_WRONLY without truncation flags (sysfs attributes
// can reject O_TRUNC) and retries briefly around the post-export window
// where udev has not yet settled permissions.
func writeFileRetry(path, value string) error {
	deadline := time.Now().Add(2 * time.Second)
	for {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err == nil {
			_, werr := f.WriteString(value)
			cerr := f.Close()
			if werr == nil && cerr == nil {
				return nil
			}
			if werr != nil {
				err = werr
			} else {
				err = cerr
			}
		}
		if time.Now().After(deadline) || !(os.IsPermission(err) || os.IsNotExist(err)) {
			return err
		}
		time.Sleep(25 * time.Millisecond)
	}
}
