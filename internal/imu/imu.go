// Package imu adapts sensor drivers to the flight loop's sensor boundary.
package imu

import (
	"fmt"

	"canardfc/internal/fc"
	"canardfc/internal/i2c"
	"canardfc/internal/imu/icm20948"
)

type Config struct {
	// I2CBus is the /dev/i2c-N bus number.
	I2CBus int
	// Addr is the IMU address; 0x69 when the AD0 strap is high.
	Addr uint16
	// MagAddr is the AK09916 address behind bypass.
	MagAddr uint16
}

// ICM is the flight sensor: an ICM-20948 read over I2C.
//
// Each Init attempt reopens the bus and re-probes the device from scratch,
// so the loop driver can retry a sensor that is slow to power up.
type ICM struct {
	cfg Config
	bus *i2c.Bus
	dev *icm20948.Device
}

func NewICM(cfg Config) *ICM {
	if cfg.I2CBus == 0 {
		cfg.I2CBus = 1
	}
	if cfg.Addr == 0 {
		cfg.Addr = icm20948.DefaultAddress()
	}
	if cfg.MagAddr == 0 {
		cfg.MagAddr = icm20948.MagAddress()
	}
	return &ICM{cfg: cfg}
}

func (s *ICM) Init() error {
	if s.bus != nil {
		_ = s.bus.Close()
		s.bus, s.dev = nil, nil
	}

	busPath := fmt.Sprintf("/dev/i2c-%d", s.cfg.I2CBus)
	bus, err := i2c.Open(busPath)
	if err != nil {
		return fmt.Errorf("imu: open %s: %w", busPath, err)
	}

	dev, err := icm20948.New(bus.Dev(s.cfg.Addr), bus.Dev(s.cfg.MagAddr))
	if err != nil {
		_ = bus.Close()
		return err
	}

	s.bus, s.dev = bus, dev
	return nil
}

// Ready reports whether a fresh sample has latched. A bus error reads as
// not-ready; the loop holds the last orientation and tries again next tick.
func (s *ICM) Ready() bool {
	if s.dev == nil {
		return false
	}
	ok, err := s.dev.DataReady()
	return err == nil && ok
}

func (s *ICM) Sample() (fc.Sample, error) {
	if s.dev == nil {
		return fc.Sample{}, fmt.Errorf("imu: not initialized")
	}
	raw, err := s.dev.Read()
	if err != nil {
		return fc.Sample{}, err
	}
	return fc.Sample{
		Ax: raw.Ax, Ay: raw.Ay, Az: raw.Az,
		Mx: raw.Mx, My: raw.My, Mz: raw.Mz,
	}, nil
}

func (s *ICM) Close() error {
	if s == nil || s.bus == nil {
		return nil
	}
	err := s.bus.Close()
	s.bus, s.dev = nil, nil
	return err
}
