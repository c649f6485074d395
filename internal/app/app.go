// Package app wires the camera, recognizer and gesture arbiter into the
// running navigation controller.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"

	"github.com/ayusman/crate/internal/capture"
	"github.com/ayusman/crate/internal/detector"
	"github.com/ayusman/crate/internal/gesture"
)

// Config holds configuration options for the application.
type Config struct {
	// Camera overrides the device camera, mainly for tests.
	Camera capture.Camera
	// CameraOptions configures the device camera when Camera is nil.
	// FPS also sets the driver tick rate.
	CameraOptions capture.Options
	Cooldown      time.Duration
	// Sink receives every emitted navigation command.
	Sink gesture.Sink
	// DetectorRetries is how many extra attempts LoadDetector makes when
	// the recognizer fails to start. ErrUnavailable is never retried.
	DetectorRetries uint64
	// DetectorBackoff is the first retry delay; later ones grow exponentially.
	DetectorBackoff time.Duration
}

// DetectorFactory constructs a recognizer. It may block while the backend warms up.
type DetectorFactory func() (detector.Detector, error)

// MediaPipeFactory starts the MediaPipe recognizer subprocess.
func MediaPipeFactory() (detector.Detector, error) {
	mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := mp.Start(); err != nil {
		return nil, err
	}
	return mp, nil
}

// App is the navigation controller: it owns the camera, the recognizer and
// the frame driver.
type App struct {
	config    Config
	camera    capture.Camera
	detector  detector.Detector
	debounce  *gesture.Debounce
	arbiter   *gesture.Arbiter
	driver    *Driver
	enabled   bool
	listeners []func(gesture.Decision)
	mu        sync.RWMutex
}

// New creates a new App instance with the given configuration.
// Gesture navigation starts enabled; the recognizer is attached later by
// LoadDetector or SetDetector.
func New(config Config) *App {
	if config.CameraOptions.FPS <= 0 {
		config.CameraOptions.FPS = capture.DefaultFPS
	}
	if config.Cooldown <= 0 {
		config.Cooldown = gesture.DefaultCooldown
	}
	if config.DetectorBackoff <= 0 {
		config.DetectorBackoff = 500 * time.Millisecond
	}

	camera := config.Camera
	if camera == nil {
		camera = capture.NewCamera(config.CameraOptions)
	}

	a := &App{
		config:   config,
		camera:   camera,
		debounce: gesture.NewDebounce(config.Cooldown),
		enabled:  true,
	}
	a.arbiter = gesture.NewArbiter(a.debounce, gesture.NewGate())
	a.driver = NewDriver(DriverConfig{
		Source:   camera,
		Detector: a.Detector,
		Enabled:  a.IsEnabled,
		Arbiter:  a.arbiter,
		Emit:     a.emit,
		Interval: time.Second / time.Duration(config.CameraOptions.FPS),
	})

	return a
}

// LoadDetector constructs the recognizer in the background and installs it
// when ready. On failure gesture navigation stays inert for the session and
// the error is logged as a warning. The returned channel yields the
// construction error (nil on success) and is then closed.
func (a *App) LoadDetector(ctx context.Context, factory DetectorFactory) <-chan error {
	if factory == nil {
		factory = MediaPipeFactory
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)

		var d detector.Detector
		b := retry.WithMaxRetries(a.config.DetectorRetries, retry.NewExponential(a.config.DetectorBackoff))
		err := retry.Do(ctx, b, func(ctx context.Context) error {
			var err error
			d, err = factory()
			if err != nil && !errors.Is(err, detector.ErrUnavailable) {
				log.Debug().Err(err).Msg("recognizer failed to start, will retry")
				return retry.RetryableError(err)
			}
			return err
		})
		if err != nil {
			log.Warn().Err(err).Msg("gesture recognition unavailable, navigation by gesture disabled")
			errCh <- err
			return
		}

		if ctx.Err() != nil {
			d.Close()
			errCh <- ctx.Err()
			return
		}

		a.SetDetector(d)
		log.Info().Msg("gesture recognizer ready")
		errCh <- nil
	}()
	return errCh
}

// SetEnabled enables or disables gesture navigation.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture navigation is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the recognizer implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the recognizer, or nil if none is installed yet.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// OnCommand registers fn to be called after each emitted command.
func (a *App) OnCommand(fn func(gesture.Decision)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// emit delivers a decision to the sink and listeners. Runs on the driver goroutine.
func (a *App) emit(dec gesture.Decision) {
	log.Info().
		Str("command", string(dec.Command)).
		Str("source", string(dec.Source)).
		Str("label", dec.Label).
		Float64("dx", dec.DX).
		Msg("navigation command")

	if a.config.Sink != nil {
		a.config.Sink.Navigate(dec.Command)
	}

	a.mu.RLock()
	listeners := append([]func(gesture.Decision){}, a.listeners...)
	a.mu.RUnlock()

	for _, fn := range listeners {
		fn(dec)
	}
}

// Start opens the camera and begins the frame loop.
func (a *App) Start() error {
	if a.driver.Running() {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.CameraOptions.FPS)

	a.driver.Start()

	log.Info().Int("fps", a.config.CameraOptions.FPS).Dur("cooldown", a.config.Cooldown).Msg("gesture pipeline started")
	return nil
}

// Stop halts the frame loop, then releases the camera and recognizer.
func (a *App) Stop() {
	a.driver.Stop()

	if err := a.camera.Close(); err != nil {
		log.Error().Err(err).Msg("error closing camera")
	}

	a.mu.Lock()
	d := a.detector
	a.detector = nil
	a.mu.Unlock()

	if d != nil {
		if err := d.Close(); err != nil {
			log.Error().Err(err).Msg("error closing recognizer")
		}
	}

	log.Info().Msg("gesture pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Driver returns the frame driver.
func (a *App) Driver() *Driver {
	return a.driver
}
