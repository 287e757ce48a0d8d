package icm20948

import (
	"fmt"
	"time"

	"canardfc/internal/i2c"
)

var sleep = time.Sleep

// ICM-20948 driver for the canard flight loop.
//
// Covers exactly what the loop needs: probe, accelerometer reads, and the
// on-package AK09916 magnetometer reached through I2C bypass. WHO_AM_I at
// 0x00 must return 0xEA; the magnetometer's WIA2 must return 0x09.

const (
	addrDefault    = 0x68
	magAddrDefault = 0x0C

	regWhoAmI  = 0x00
	whoAmIVal  = 0xEA
	regBankSel = 0x7F

	// Bank 0.
	regPwrMgmt1   = 0x06
	bitReset      = 0x80
	regIntPinCfg  = 0x0F
	bitBypassEn   = 0x02
	regIntEnable1 = 0x11
	regIntStatus1 = 0x1A
	bitRawDataRdy = 0x01
	regAccelXoutH = 0x2D

	// Bank 2.
	bank2           = 2
	regAccelSmplrt2 = 0x11
	regAccelConfig  = 0x14
	fsAccel4g       = 0x02

	// AK09916 (behind bypass).
	magRegWia2  = 0x01
	magWia2Val  = 0x09
	magRegSt1   = 0x10
	magRegHxl   = 0x11
	magRegCntl2 = 0x31
	magRegCntl3 = 0x32
	magSoftRst  = 0x01
	magCont100  = 0x08 // continuous mode 4, 100 Hz
)

// Sample is one combined accelerometer + magnetometer reading.
type Sample struct {
	Time time.Time
	// Accel in G.
	Ax, Ay, Az float64
	// Mag in uT.
	Mx, My, Mz float64
}

type Device struct {
	imu regIO
	mag regIO

	curBank byte
	// scales based on configured full-scale.
	scaleAccel float64
	scaleMag   float64
}

type regIO interface {
	ReadRegU8(reg byte) (byte, error)
	ReadReg(reg byte, dst []byte) error
	WriteReg(reg, value byte) error
}

func DefaultAddress() uint16 { return addrDefault }

func MagAddress() uint16 { return magAddrDefault }

func New(imu, mag *i2c.Dev) (*Device, error) {
	if imu == nil || mag == nil {
		return nil, fmt.Errorf("icm20948: dev is nil")
	}
	return newWithIO(imu, mag)
}

func newWithIO(imu, mag regIO) (*Device, error) {
	if imu == nil || mag == nil {
		return nil, fmt.Errorf("icm20948: dev is nil")
	}
	d := &Device{imu: imu, mag: mag, curBank: 0xFF}

	who, err := d.imu.ReadRegU8(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("icm20948: whoami read failed: %w", err)
	}
	if who != whoAmIVal {
		return nil, fmt.Errorf("icm20948: whoami=0x%02X want 0x%02X", who, whoAmIVal)
	}

	if err := d.init(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Device) init() error {
	if err := d.setBank(0); err != nil {
		return err
	}

	// Reset, then wake with PLL clock (CLKSEL=1).
	if err := d.imu.WriteReg(regPwrMgmt1, bitReset); err != nil {
		return fmt.Errorf("icm20948: reset failed: %w", err)
	}
	sleep(100 * time.Millisecond)
	if err := d.imu.WriteReg(regPwrMgmt1, 0x01); err != nil {
		return fmt.Errorf("icm20948: wake failed: %w", err)
	}
	sleep(10 * time.Millisecond)

	// Raw-data-ready latches into INT_STATUS_1; the loop polls it instead of
	// wiring the interrupt pin.
	_ = d.imu.WriteReg(regIntEnable1, 0x01)

	// Bypass puts the AK09916 directly on the host bus.
	if err := d.imu.WriteReg(regIntPinCfg, bitBypassEn); err != nil {
		return fmt.Errorf("icm20948: bypass enable failed: %w", err)
	}

	// Accel full-scale 4g, ~50Hz sample rate (base 1125 Hz, rate=1125/(div+1)).
	if err := d.setBank(bank2); err != nil {
		return err
	}
	div := byte(1125/50 - 1)
	_ = d.imu.WriteReg(regAccelSmplrt2, div)
	if err := d.imu.WriteReg(regAccelConfig, fsAccel4g); err != nil {
		return fmt.Errorf("icm20948: accel config failed: %w", err)
	}
	if err := d.setBank(0); err != nil {
		return err
	}

	if err := d.initMag(); err != nil {
		return err
	}

	d.scaleAccel = 4.0 / 32768.0
	d.scaleMag = 0.15 // uT per LSB, fixed for the AK09916
	return nil
}

func (d *Device) initMag() error {
	wia, err := d.mag.ReadRegU8(magRegWia2)
	if err != nil {
		return fmt.Errorf("icm20948: mag whoami read failed: %w", err)
	}
	if wia != magWia2Val {
		return fmt.Errorf("icm20948: mag whoami=0x%02X want 0x%02X", wia, magWia2Val)
	}

	if err := d.mag.WriteReg(magRegCntl3, magSoftRst); err != nil {
		return fmt.Errorf("icm20948: mag reset failed: %w", err)
	}
	sleep(10 * time.Millisecond)

	if err := d.mag.WriteReg(magRegCntl2, magCont100); err != nil {
		return fmt.Errorf("icm20948: mag mode set failed: %w", err)
	}
	return nil
}

func (d *Device) setBank(bank byte) error {
	if d.curBank == bank {
		return nil
	}
	if err := d.imu.WriteReg(regBankSel, bank<<4); err != nil {
		return fmt.Errorf("icm20948: set bank %d failed: %w", bank, err)
	}
	d.curBank = bank
	return nil
}

// DataReady reports whether a new raw sample has latched since the last read.
func (d *Device) DataReady() (bool, error) {
	if d == nil {
		return false, fmt.Errorf("icm20948: device is nil")
	}
	if err := d.setBank(0); err != nil {
		return false, err
	}
	st, err := d.imu.ReadRegU8(regIntStatus1)
	if err != nil {
		return false, fmt.Errorf("icm20948: int status read failed: %w", err)
	}
	return st&bitRawDataRdy != 0, nil
}

func (d *Device) Read() (Sample, error) {
	if d == nil {
		return Sample{}, fmt.Errorf("icm20948: device is nil")
	}
	if err := d.setBank(0); err != nil {
		return Sample{}, err
	}

	buf := make([]byte, 6)
	if err := d.imu.ReadReg(regAccelXoutH, buf); err != nil {
		return Sample{}, fmt.Errorf("icm20948: read accel failed: %w", err)
	}
	// Accel registers are big-endian.
	ax := int16(buf[0])<<8 | int16(buf[1])
	ay := int16(buf[2])<<8 | int16(buf[3])
	az := int16(buf[4])<<8 | int16(buf[5])

	// HXL..HZH plus dummy and ST2; reading ST2 releases the mag data latch.
	mbuf := make([]byte, 8)
	if err := d.mag.ReadReg(magRegHxl, mbuf); err != nil {
		return Sample{}, fmt.Errorf("icm20948: read mag failed: %w", err)
	}
	// AK09916 registers are little-endian.
	mx := int16(mbuf[1])<<8 | int16(mbuf[0])
	my := int16(mbuf[3])<<8 | int16(mbuf[2])
	mz := int16(mbuf[5])<<8 | int16(mbuf[4])

	return Sample{
		Time: time.Now(),
		Ax:   float64(ax) * d.scaleAccel,
		Ay:   float64(ay) * d.scaleAccel,
		Az:   float64(az) * d.scaleAccel,
		Mx:   float64(mx) * d.scaleMag,
		My:   float64(my) * d.scaleMag,
		Mz:   float64(mz) * d.scaleMag,
	}, nil
}
