// Package capture reads webcam frames for the gesture driver and the preview
// stream using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Default capture settings. 640x480 keeps recognizer latency low.
const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a closed camera.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoFrame is returned when the device produced no usable frame.
	ErrNoFrame = errors.New("no frame available")
)

// Camera is a frame source shared by the gesture driver and the preview stream.
type Camera interface {
	Open() error
	Close() error
	// Ready reports whether a frame can be read now. It has no side effects
	// and is safe to poll every tick.
	Ready() bool
	// ReadFrame returns the current frame. The caller must close it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Options selects the capture device and the format requested from it.
type Options struct {
	Device int
	Width  int
	Height int
	FPS    int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	return o
}

// webcam wraps a gocv.VideoCapture. Readers polling faster than the
// configured rate get a copy of the last grabbed frame, so the driver and
// the MJPEG stream can share one device without stealing frames from each
// other.
type webcam struct {
	opts Options
	now  func() time.Time

	mu      sync.Mutex
	dev     *gocv.VideoCapture
	last    gocv.Mat
	lastAt  time.Time
	hasLast bool
}

// NewCamera returns a closed camera for the given options.
func NewCamera(opts Options) Camera {
	return &webcam{
		opts: opts.withDefaults(),
		now:  time.Now,
	}
}

func (c *webcam) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dev != nil {
		return nil
	}

	dev, err := gocv.OpenVideoCapture(c.opts.Device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.opts.Device, err)
	}

	dev.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
	dev.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))
	dev.Set(gocv.VideoCaptureFPS, float64(c.opts.FPS))

	c.dev = dev
	return nil
}

func (c *webcam) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropLast()
	if c.dev == nil {
		return nil
	}

	err := c.dev.Close()
	c.dev = nil
	return err
}

func (c *webcam) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dev != nil && c.dev.IsOpened()
}

func (c *webcam) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dev == nil {
		return nil, ErrCameraNotOpen
	}

	now := c.now()
	if c.hasLast && now.Sub(c.lastAt) < c.frameInterval() {
		frame := c.last.Clone()
		return &frame, nil
	}

	mat := gocv.NewMat()
	if ok := c.dev.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("read from camera %d: %w", c.opts.Device, ErrNoFrame)
	}

	c.dropLast()
	c.last = mat.Clone()
	c.lastAt = now
	c.hasLast = true

	return &mat, nil
}

func (c *webcam) frameInterval() time.Duration {
	return time.Second / time.Duration(c.opts.FPS)
}

// dropLast must be called with mu held.
func (c *webcam) dropLast() {
	if c.hasLast {
		c.last.Close()
		c.hasLast = false
	}
}

// SetFPS changes the capture rate. Non-positive values are ignored.
func (c *webcam) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.opts.FPS = fps
	if c.dev != nil {
		c.dev.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *webcam) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.opts.FPS
}

func (c *webcam) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dev != nil
}

// Size returns the frame size requested from the device.
func (c *webcam) Size() (width, height int) {
	return c.opts.Width, c.opts.Height
}
