package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera replays a fixed set of frames. Tests use it in place of a webcam.
type MockCamera struct {
	mu     sync.Mutex
	frames []*gocv.Mat
	next   int
	loop   bool
	open   bool
	reads  int
	err    error
}

// NewMockCamera returns a closed camera over frames. With loop set, playback
// wraps around instead of running dry.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.next = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// Ready reports whether the next ReadFrame would return a frame.
func (c *MockCamera) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open && len(c.frames) > 0 && (c.loop || c.next < len(c.frames))
}

// ReadFrame returns a clone of the next frame.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !c.open:
		return nil, ErrCameraNotOpen
	case c.err != nil:
		return nil, c.err
	case len(c.frames) == 0:
		return nil, ErrNoFrame
	}

	if c.next >= len(c.frames) {
		if !c.loop {
			return nil, fmt.Errorf("playback finished: %w", ErrNoFrame)
		}
		c.next = 0
	}

	frame := c.frames[c.next].Clone()
	c.next++
	c.reads++
	return &frame, nil
}

// SetError makes every following ReadFrame fail with err until cleared with nil.
func (c *MockCamera) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Reads returns the number of frames handed out so far.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *MockCamera) SetFPS(int) {}
func (c *MockCamera) FPS() int   { return DefaultFPS }
