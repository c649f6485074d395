package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It plays back a scripted sequence of results, then keeps returning the
// fallback result set with SetResult.
type MockDetector struct {
	mu         sync.Mutex
	script     []*Result
	fallback   *Result
	err        error
	timestamps []int64
	closed     bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetResult sets the result returned once the script is exhausted.
func (m *MockDetector) SetResult(r *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = r
}

// Script queues results to be returned by successive Detect calls.
func (m *MockDetector) Script(results ...*Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, results...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next scripted result, the fallback, or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat, timestampMs int64) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.timestamps = append(m.timestamps, timestampMs)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		r := m.script[0]
		m.script = m.script[1:]
		return r, nil
	}
	if m.fallback != nil {
		return m.fallback, nil
	}
	return &Result{}, nil
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timestamps)
}

// Timestamps returns the timestamps passed to Detect, in call order.
func (m *MockDetector) Timestamps() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.timestamps))
	copy(out, m.timestamps)
	return out
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// filledWith returns a full landmark set with every point at p.
func filledWith(p Point) Landmarks {
	lm := make(Landmarks, NumLandmarks)
	for i := range lm {
		lm[i] = p
	}
	return lm
}

// PointingLandmarks returns a hand with the index finger extended
// horizontally from a wrist at (wristX, 0.5) to a tip at (tipX, 0.5).
// The other fingertips are curled close to the wrist so the index leads.
func PointingLandmarks(wristX, tipX float64) Landmarks {
	wrist := Point{X: wristX, Y: 0.5}
	lm := filledWith(wrist)

	dx := tipX - wristX
	sign := 1.0
	if dx < 0 {
		sign = -1.0
	}

	lm[ThumbTip] = Point{X: wristX + dx*0.2, Y: 0.46}
	lm[IndexMCP] = Point{X: wristX + dx*0.25, Y: 0.5}
	lm[IndexPIP] = Point{X: tipX - sign*0.1, Y: 0.5}
	lm[IndexDIP] = Point{X: tipX - sign*0.05, Y: 0.5}
	lm[IndexTip] = Point{X: tipX, Y: 0.5}

	// Curled fingers: tips fold back toward the palm.
	lm[MiddleTip] = Point{X: wristX + dx*0.3, Y: 0.51}
	lm[RingTip] = Point{X: wristX + dx*0.3, Y: 0.52}
	lm[PinkyTip] = Point{X: wristX + dx*0.3, Y: 0.53}

	return lm
}

// PointingUpLandmarks returns a hand pointing straight up: the index leads
// and is extended, but its horizontal offset from the wrist is too small to
// give a direction. Neither open-palm nor closed-fist heuristics fire.
func PointingUpLandmarks() Landmarks {
	wrist := Point{X: 0.5, Y: 0.8}
	lm := filledWith(wrist)

	lm[IndexMCP] = Point{X: 0.51, Y: 0.72}
	lm[IndexPIP] = Point{X: 0.515, Y: 0.65}
	lm[IndexDIP] = Point{X: 0.518, Y: 0.60}
	lm[IndexTip] = Point{X: 0.52, Y: 0.55}

	lm[MiddleTip] = Point{X: 0.49, Y: 0.74}
	lm[RingTip] = Point{X: 0.47, Y: 0.75}
	lm[PinkyTip] = Point{X: 0.45, Y: 0.76}

	return lm
}

// ClosedFistLandmarks returns a hand with every finger curled into the palm.
func ClosedFistLandmarks() Landmarks {
	wrist := Point{X: 0.5, Y: 0.8}
	lm := filledWith(wrist)

	lm[ThumbTip] = Point{X: 0.55, Y: 0.74}
	lm[IndexPIP] = Point{X: 0.53, Y: 0.70}
	lm[IndexTip] = Point{X: 0.52, Y: 0.74}
	lm[MiddleTip] = Point{X: 0.49, Y: 0.73}
	lm[RingTip] = Point{X: 0.46, Y: 0.74}
	lm[PinkyTip] = Point{X: 0.43, Y: 0.76}

	return lm
}

// OpenPalmLandmarks returns a hand representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() Landmarks {
	lm := make(Landmarks, NumLandmarks)

	// Wrist at base
	lm[Wrist] = Point{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	lm[ThumbCMC] = Point{X: 0.55, Y: 0.75, Z: 0.02}
	lm[ThumbMCP] = Point{X: 0.62, Y: 0.70, Z: 0.03}
	lm[ThumbIP] = Point{X: 0.68, Y: 0.65, Z: 0.03}
	lm[ThumbTip] = Point{X: 0.73, Y: 0.60, Z: 0.03}

	// Index finger extended upward
	lm[IndexMCP] = Point{X: 0.55, Y: 0.68, Z: 0.0}
	lm[IndexPIP] = Point{X: 0.57, Y: 0.55, Z: 0.0}
	lm[IndexDIP] = Point{X: 0.58, Y: 0.45, Z: 0.0}
	lm[IndexTip] = Point{X: 0.58, Y: 0.35, Z: 0.0}

	// Middle finger extended upward (slightly longer)
	lm[MiddleMCP] = Point{X: 0.50, Y: 0.66, Z: 0.0}
	lm[MiddlePIP] = Point{X: 0.50, Y: 0.52, Z: 0.0}
	lm[MiddleDIP] = Point{X: 0.50, Y: 0.40, Z: 0.0}
	lm[MiddleTip] = Point{X: 0.50, Y: 0.28, Z: 0.0}

	// Ring finger extended upward
	lm[RingMCP] = Point{X: 0.45, Y: 0.68, Z: 0.0}
	lm[RingPIP] = Point{X: 0.43, Y: 0.55, Z: 0.0}
	lm[RingDIP] = Point{X: 0.42, Y: 0.45, Z: 0.0}
	lm[RingTip] = Point{X: 0.42, Y: 0.35, Z: 0.0}

	// Pinky finger extended upward
	lm[PinkyMCP] = Point{X: 0.40, Y: 0.70, Z: 0.0}
	lm[PinkyPIP] = Point{X: 0.37, Y: 0.60, Z: 0.0}
	lm[PinkyDIP] = Point{X: 0.35, Y: 0.50, Z: 0.0}
	lm[PinkyTip] = Point{X: 0.34, Y: 0.42, Z: 0.0}

	return lm
}
