package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Mode selects the output path: "sim" streams state lines to the
	// simulator, "hardware" drives the canard servos.
	Mode  string `yaml:"mode"`
	Debug bool   `yaml:"debug"`

	Loop      LoopConfig      `yaml:"loop"`
	IMU       IMUConfig       `yaml:"imu"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Servo     ServoConfig     `yaml:"servo"`
}

type LoopConfig struct {
	Interval      time.Duration `yaml:"interval"`
	RateDegPerSec float64       `yaml:"rate_deg_per_sec"`
}

type IMUConfig struct {
	// Driver is "icm20948" for the flight sensor or "synthetic" for
	// hardware-free bring-up.
	Driver     string `yaml:"driver"`
	I2CBus     int    `yaml:"i2c_bus"`
	Address    uint16 `yaml:"address"`
	MagAddress uint16 `yaml:"mag_address"`

	// InitMaxAttempts bounds sensor init retries; 0 retries forever.
	InitMaxAttempts int           `yaml:"init_max_attempts"`
	InitRetryDelay  time.Duration `yaml:"init_retry_delay"`
}

type TelemetryConfig struct {
	// Transport is "serial" or "udp".
	Transport string `yaml:"transport"`
	Device    string `yaml:"device"`
	Baud      int    `yaml:"baud"`
	Dest      string `yaml:"dest"`

	FloatWidth int `yaml:"float_width"`
	// OnOverflow is "drop" (silent, matches the firmware) or "fail".
	OnOverflow string `yaml:"on_overflow"`
}

type ServoConfig struct {
	// Backend is "pwm" (sysfs hardware PWM) or "gpio" (bit-banged pulses).
	Backend string `yaml:"backend"`
	// Pins holds one identifier per canard, front-left first.
	Pins       []int `yaml:"pins"`
	MinPulseUs int   `yaml:"min_pulse_us"`
	MaxPulseUs int   `yaml:"max_pulse_us"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Mode == "" {
		cfg.Mode = "sim"
	}
	if cfg.Mode != "sim" && cfg.Mode != "hardware" {
		return Config{}, fmt.Errorf("mode must be \"sim\" or \"hardware\", got %q", cfg.Mode)
	}

	if cfg.Loop.Interval <= 0 {
		cfg.Loop.Interval = 1 * time.Millisecond
	}
	if cfg.Loop.RateDegPerSec == 0 {
		cfg.Loop.RateDegPerSec = 24
	}

	if cfg.IMU.Driver == "" {
		cfg.IMU.Driver = "icm20948"
	}
	if cfg.IMU.Driver != "icm20948" && cfg.IMU.Driver != "synthetic" {
		return Config{}, fmt.Errorf("imu.driver must be \"icm20948\" or \"synthetic\", got %q", cfg.IMU.Driver)
	}
	if cfg.IMU.I2CBus == 0 {
		cfg.IMU.I2CBus = 1
	}
	if cfg.IMU.InitMaxAttempts < 0 {
		return Config{}, fmt.Errorf("imu.init_max_attempts must be >= 0")
	}
	if cfg.IMU.InitRetryDelay <= 0 {
		cfg.IMU.InitRetryDelay = 100 * time.Millisecond
	}

	if cfg.Mode == "sim" {
		if cfg.Telemetry.Transport == "" {
			cfg.Telemetry.Transport = "serial"
		}
		switch cfg.Telemetry.Transport {
		case "serial":
			if cfg.Telemetry.Device == "" {
				return Config{}, fmt.Errorf("telemetry.device is required for the serial transport")
			}
			if cfg.Telemetry.Baud <= 0 {
				cfg.Telemetry.Baud = 9600
			}
		case "udp":
			if cfg.Telemetry.Dest == "" {
				return Config{}, fmt.Errorf("telemetry.dest is required for the udp transport")
			}
		default:
			return Config{}, fmt.Errorf("telemetry.transport must be \"serial\" or \"udp\", got %q", cfg.Telemetry.Transport)
		}
		if cfg.Telemetry.FloatWidth <= 0 {
			cfg.Telemetry.FloatWidth = 8
		}
		if cfg.Telemetry.OnOverflow == "" {
			cfg.Telemetry.OnOverflow = "drop"
		}
		if cfg.Telemetry.OnOverflow != "drop" && cfg.Telemetry.OnOverflow != "fail" {
			return Config{}, fmt.Errorf("telemetry.on_overflow must be \"drop\" or \"fail\", got %q", cfg.Telemetry.OnOverflow)
		}
	}

	if cfg.Mode == "hardware" {
		if cfg.Servo.Backend == "" {
			cfg.Servo.Backend = "pwm"
		}
		if cfg.Servo.Backend != "pwm" && cfg.Servo.Backend != "gpio" {
			return Config{}, fmt.Errorf("servo.backend must be \"pwm\" or \"gpio\", got %q", cfg.Servo.Backend)
		}
		if len(cfg.Servo.Pins) != 4 {
			return Config{}, fmt.Errorf("servo.pins must list exactly 4 pins, got %d", len(cfg.Servo.Pins))
		}
		seen := map[int]bool{}
		for _, pin := range cfg.Servo.Pins {
			if seen[pin] {
				return Config{}, fmt.Errorf("servo.pins must be distinct (pin %d repeats)", pin)
			}
			seen[pin] = true
		}
		if cfg.Servo.MinPulseUs <= 0 {
			cfg.Servo.MinPulseUs = 1000
		}
		if cfg.Servo.MaxPulseUs <= cfg.Servo.MinPulseUs {
			cfg.Servo.MaxPulseUs = cfg.Servo.MinPulseUs + 1000
		}
	}

	return cfg, nil
}
