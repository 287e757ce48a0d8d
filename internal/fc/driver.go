package fc

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

var afterFn = time.After

// Sink receives the state once per loop iteration.
type Sink interface {
	Emit(st State) error
	Close() error
}

type Config struct {
	// InitMaxAttempts bounds sensor init retries. 0 retries forever, which
	// matches the flight firmware: a dead sensor holds the system at startup
	// rather than flying blind.
	InitMaxAttempts int
	// InitRetryDelay is the pause between init attempts.
	InitRetryDelay time.Duration
	// LoopInterval is the best-effort pause between loop iterations.
	LoopInterval time.Duration
	// RateDegPerSec is the canard sweep rate.
	RateDegPerSec float64
	// Debug enables diagnostics for init failures and sink errors.
	Debug bool
}

// Driver owns the flight state and sequences one iteration at a time:
// sensor read, orientation estimate, canard sweep, emit.
type Driver struct {
	cfg  Config
	src  Source
	sink Sink
	stab Stabilizer

	// nowMillis is a monotonic millisecond clock, injectable for tests.
	nowMillis func() int64

	mu    sync.RWMutex
	state State
}

func New(cfg Config, src Source, sink Sink) *Driver {
	if cfg.InitRetryDelay <= 0 {
		cfg.InitRetryDelay = 100 * time.Millisecond
	}
	if cfg.LoopInterval <= 0 {
		cfg.LoopInterval = 1 * time.Millisecond
	}

	start := time.Now()
	return &Driver{
		cfg:  cfg,
		src:  src,
		sink: sink,
		stab: NewStabilizer(cfg.RateDegPerSec),
		nowMillis: func() int64 {
			return time.Since(start).Milliseconds()
		},
	}
}

// Snapshot returns a copy of the current flight state.
func (d *Driver) Snapshot() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Init brings up the sensor, retrying with a fixed delay.
//
// With InitMaxAttempts == 0 this blocks until the sensor answers or ctx is
// canceled; the loop never starts against an uninitialized sensor.
func (d *Driver) Init(ctx context.Context) error {
	attempt := 0
	for {
		attempt++
		err := d.src.Init()
		if err == nil {
			return nil
		}
		if d.cfg.Debug {
			log.Printf("fc: sensor init failed (attempt %d): %v", attempt, err)
		}
		if d.cfg.InitMaxAttempts > 0 && attempt >= d.cfg.InitMaxAttempts {
			return fmt.Errorf("fc: sensor init failed after %d attempts: %w", attempt, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-afterFn(d.cfg.InitRetryDelay):
		}
	}
}

// Run initializes the sensor and then iterates until ctx is canceled.
// No iteration error stops the loop: a missing sample skips the orientation
// update and sink errors are logged at most.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Init(ctx); err != nil {
		return err
	}

	t := time.NewTicker(d.cfg.LoopInterval)
	defer t.Stop()

	last := d.nowMillis()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			now := d.nowMillis()
			dt := float64(now-last) / 1000.0
			last = now
			d.step(dt)
		}
	}
}

func (d *Driver) step(dt float64) {
	d.mu.Lock()
	if d.src.Ready() {
		if s, err := d.src.Sample(); err == nil {
			// Pitch/roll/yaw land as a group.
			d.state.Pitch, d.state.Roll, d.state.Yaw = Estimate(s)
		} else if d.cfg.Debug {
			log.Printf("fc: sample read failed: %v", err)
		}
	}
	d.stab.Advance(&d.state, dt)
	st := d.state
	d.mu.Unlock()

	if err := d.sink.Emit(st); err != nil && d.cfg.Debug {
		log.Printf("fc: emit failed: %v", err)
	}
}
