package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"canardfc/internal/config"
	"canardfc/internal/fc"
	"canardfc/internal/imu"
	"canardfc/internal/imu/synthetic"
	"canardfc/internal/servo"
	"canardfc/internal/telemetry"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./canardfc.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src := buildSource(cfg)
	sink, err := buildSink(cfg)
	if err != nil {
		log.Fatalf("output init failed: %v", err)
	}
	defer sink.Close()

	driver := fc.New(fc.Config{
		InitMaxAttempts: cfg.IMU.InitMaxAttempts,
		InitRetryDelay:  cfg.IMU.InitRetryDelay,
		LoopInterval:    cfg.Loop.Interval,
		RateDegPerSec:   cfg.Loop.RateDegPerSec,
		Debug:           cfg.Debug,
	}, src, sink)

	log.Printf("canardfc starting (mode=%s imu=%s)", cfg.Mode, cfg.IMU.Driver)
	if err := driver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("flight loop stopped: %v", err)
	}
	log.Printf("canardfc stopping")
}

func buildSource(cfg config.Config) fc.Source {
	if cfg.IMU.Driver == "synthetic" {
		return synthetic.New()
	}
	return imu.NewICM(imu.Config{
		I2CBus:  cfg.IMU.I2CBus,
		Addr:    cfg.IMU.Address,
		MagAddr: cfg.IMU.MagAddress,
	})
}

func buildSink(cfg config.Config) (fc.Sink, error) {
	if cfg.Mode == "hardware" {
		var pins [4]int
		copy(pins[:], cfg.Servo.Pins)
		return servo.New(servo.Config{
			Backend:    cfg.Servo.Backend,
			Pins:       pins,
			MinPulseUs: cfg.Servo.MinPulseUs,
			MaxPulseUs: cfg.Servo.MaxPulseUs,
		})
	}

	pol := telemetry.DropSilently
	if cfg.Telemetry.OnOverflow == "fail" {
		pol = telemetry.FailOnOverflow
	}
	if cfg.Telemetry.Transport == "udp" {
		return telemetry.NewUDPSink(cfg.Telemetry.Dest, cfg.Telemetry.FloatWidth, pol)
	}
	return telemetry.NewSerialSink(cfg.Telemetry.Device, cfg.Telemetry.Baud, cfg.Telemetry.FloatWidth, pol)
}
