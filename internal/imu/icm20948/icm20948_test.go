package icm20948

import (
	"errors"
	"testing"
	"time"
)

type fakeI2C struct {
	regs   map[byte][]byte
	writes []writeOp

	readErrFor map[byte]error
}

type writeOp struct {
	reg byte
	val byte
}

func (f *fakeI2C) ReadRegU8(reg byte) (byte, error) {
	if err := f.readErrFor[reg]; err != nil {
		return 0, err
	}
	b := f.regs[reg]
	if len(b) < 1 {
		return 0, errors.New("no reg")
	}
	return b[0], nil
}

func (f *fakeI2C) ReadReg(reg byte, dst []byte) error {
	if err := f.readErrFor[reg]; err != nil {
		return err
	}
	b := f.regs[reg]
	if len(b) < len(dst) {
		return errors.New("short reg")
	}
	copy(dst, b[:len(dst)])
	return nil
}

func (f *fakeI2C) WriteReg(reg, value byte) error {
	f.writes = append(f.writes, writeOp{reg: reg, val: value})
	return nil
}

func (f *fakeI2C) wrote(reg, val byte) bool {
	for _, w := range f.writes {
		if w.reg == reg && w.val == val {
			return true
		}
	}
	return false
}

func quietSleep(t *testing.T) {
	t.Helper()
	oldSleep := sleep
	sleep = func(time.Duration) {}
	t.Cleanup(func() { sleep = oldSleep })
}

func healthyFakes() (imu, mag *fakeI2C) {
	imu = &fakeI2C{regs: map[byte][]byte{regWhoAmI: {whoAmIVal}}}
	mag = &fakeI2C{regs: map[byte][]byte{magRegWia2: {magWia2Val}}}
	return imu, mag
}

func TestNew_WhoAmIMismatch(t *testing.T) {
	quietSleep(t)
	imu, mag := healthyFakes()
	imu.regs[regWhoAmI] = []byte{0x00}
	if _, err := newWithIO(imu, mag); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNew_MagWhoAmIMismatch(t *testing.T) {
	quietSleep(t)
	imu, mag := healthyFakes()
	mag.regs[magRegWia2] = []byte{0x48}
	if _, err := newWithIO(imu, mag); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNew_InitSequence(t *testing.T) {
	quietSleep(t)
	imu, mag := healthyFakes()
	if _, err := newWithIO(imu, mag); err != nil {
		t.Fatalf("newWithIO: %v", err)
	}

	if !imu.wrote(regPwrMgmt1, bitReset) {
		t.Fatalf("expected reset write to PWR_MGMT_1")
	}
	if !imu.wrote(regPwrMgmt1, 0x01) {
		t.Fatalf("expected wake write to PWR_MGMT_1")
	}
	if !imu.wrote(regIntPinCfg, bitBypassEn) {
		t.Fatalf("expected bypass enable write")
	}
	if !imu.wrote(regBankSel, bank2<<4) {
		t.Fatalf("expected bank2 select write")
	}
	if !mag.wrote(magRegCntl2, magCont100) {
		t.Fatalf("expected mag continuous mode write")
	}
}

func TestDataReady(t *testing.T) {
	quietSleep(t)
	imu, mag := healthyFakes()
	d, err := newWithIO(imu, mag)
	if err != nil {
		t.Fatalf("newWithIO: %v", err)
	}

	imu.regs[regIntStatus1] = []byte{0x00}
	ready, err := d.DataReady()
	if err != nil {
		t.Fatalf("DataReady: %v", err)
	}
	if ready {
		t.Fatalf("ready=true want false")
	}

	imu.regs[regIntStatus1] = []byte{bitRawDataRdy}
	ready, err = d.DataReady()
	if err != nil {
		t.Fatalf("DataReady: %v", err)
	}
	if !ready {
		t.Fatalf("ready=false want true")
	}
}

func TestRead_ScalesAccelAndMag(t *testing.T) {
	quietSleep(t)
	imu, mag := healthyFakes()

	// ax=16384 -> 2g at 4g full scale (4/32768).
	imu.regs[regAccelXoutH] = []byte{
		0x40, 0x00, // ax
		0x00, 0x00, // ay
		0xC0, 0x00, // az = -16384 -> -2g
	}
	// mx=100 -> 15 uT at 0.15 uT/LSB; AK09916 is little-endian.
	mag.regs[magRegHxl] = []byte{
		0x64, 0x00, // mx = 100
		0x00, 0x00, // my
		0x9C, 0xFF, // mz = -100 -> -15 uT
		0x00,       // dummy
		0x00,       // ST2
	}

	d, err := newWithIO(imu, mag)
	if err != nil {
		t.Fatalf("newWithIO: %v", err)
	}

	s, err := d.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if s.Ax < 1.99 || s.Ax > 2.01 {
		t.Fatalf("Ax=%v want ~2.0", s.Ax)
	}
	if s.Az > -1.99 || s.Az < -2.01 {
		t.Fatalf("Az=%v want ~-2.0", s.Az)
	}
	if s.Mx < 14.9 || s.Mx > 15.1 {
		t.Fatalf("Mx=%v want ~15", s.Mx)
	}
	if s.Mz > -14.9 || s.Mz < -15.1 {
		t.Fatalf("Mz=%v want ~-15", s.Mz)
	}
}

func TestRead_MagBusError(t *testing.T) {
	quietSleep(t)
	imu, mag := healthyFakes()
	imu.regs[regAccelXoutH] = make([]byte, 6)
	mag.readErrFor = map[byte]error{magRegHxl: errors.New("nak")}

	d, err := newWithIO(imu, mag)
	if err != nil {
		t.Fatalf("newWithIO: %v", err)
	}
	if _, err := d.Read(); err == nil {
		t.Fatalf("expected error from mag read")
	}
}
