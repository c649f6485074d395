package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/crate/internal/capture"
	"github.com/ayusman/crate/internal/detector"
	"github.com/ayusman/crate/internal/gesture"
)

// FrameSource is the part of capture.Camera the driver polls.
type FrameSource interface {
	Ready() bool
	ReadFrame() (*gocv.Mat, error)
}

var _ FrameSource = capture.Camera(nil)

// DriverConfig wires a Driver to its collaborators.
type DriverConfig struct {
	Source   FrameSource
	Detector func() detector.Detector // nil result means "no detector yet"
	Enabled  func() bool              // nil means always enabled
	Arbiter  *gesture.Arbiter
	Emit     func(gesture.Decision)
	Interval time.Duration
	Clock    func() int64 // monotonic milliseconds; defaults to time since construction
}

// Driver runs the per-frame loop: read a frame, run the detector, arbitrate,
// emit. Frames are evaluated one at a time on a single goroutine.
type Driver struct {
	cfg    DriverConfig
	lastTs int64

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

// NewDriver creates a stopped Driver.
func NewDriver(cfg DriverConfig) *Driver {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second / time.Duration(capture.DefaultFPS)
	}
	if cfg.Clock == nil {
		start := time.Now()
		cfg.Clock = func() int64 { return time.Since(start).Milliseconds() }
	}
	if cfg.Emit == nil {
		cfg.Emit = func(gesture.Decision) {}
	}
	return &Driver{cfg: cfg, lastTs: -1}
}

// Start begins ticking on a new goroutine. Calling Start on a running
// driver does nothing.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopCh != nil {
		return
	}
	d.stopCh = make(chan struct{})
	d.done = make(chan struct{})
	go d.run(d.stopCh, d.done)
}

// Stop cancels the loop and waits for an in-flight tick to finish.
// No detector call starts after Stop returns.
func (d *Driver) Stop() {
	d.mu.Lock()
	stopCh, done := d.stopCh, d.done
	d.stopCh, d.done = nil, nil
	d.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done
}

// Running reports whether the loop is active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopCh != nil
}

func (d *Driver) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// A stop that raced with the tick wins.
			select {
			case <-stopCh:
				return
			default:
			}
			d.Tick()
		}
	}
}

// Tick evaluates one frame and returns the emitted decision, if any.
// It never panics; failures are logged and yield no decision.
func (d *Driver) Tick() (dec gesture.Decision, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int64("ts", d.lastTs).Msg("frame evaluation failed")
			dec, ok = gesture.Decision{}, false
		}
	}()

	if d.cfg.Enabled != nil && !d.cfg.Enabled() {
		return gesture.Decision{}, false
	}

	det := d.cfg.Detector()
	if det == nil {
		return gesture.Decision{}, false
	}

	if !d.cfg.Source.Ready() {
		return gesture.Decision{}, false
	}

	frame, err := d.cfg.Source.ReadFrame()
	if err != nil {
		log.Debug().Err(err).Msg("frame unavailable")
		return gesture.Decision{}, false
	}
	if frame == nil {
		return gesture.Decision{}, false
	}
	defer frame.Close()
	if frame.Empty() {
		return gesture.Decision{}, false
	}

	// The recognizer requires strictly increasing timestamps.
	ts := d.cfg.Clock()
	if ts <= d.lastTs {
		ts = d.lastTs + 1
	}
	d.lastTs = ts

	res, err := det.Detect(frame, ts)
	if err != nil {
		log.Debug().Err(err).Int64("ts", ts).Msg("detection failed")
		return gesture.Decision{}, false
	}

	dec, ok = d.cfg.Arbiter.Evaluate(ts, res)
	if ok {
		d.cfg.Emit(dec)
	}
	return dec, ok
}
