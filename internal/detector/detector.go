package detector

import (
	"errors"
	"time"

	"gocv.io/x/gocv"
)

// ErrUnavailable is returned when no recognizer backend can be constructed.
var ErrUnavailable = errors.New("gesture recognizer unavailable")

// Detector defines the interface for hand landmark and gesture recognizers.
type Detector interface {
	// Detect analyzes a video frame captured at timestampMs.
	// Timestamps must be monotonically increasing across calls.
	// Returns a Result with nil Landmarks and no Gestures if no hand is visible.
	Detect(frame *gocv.Mat, timestampMs int64) (*Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for the recognizer.
type Config struct {
	// MaxHands is the maximum number of hands to track. Navigation uses one.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Python and Script override interpreter and recognizer script discovery.
	Python string
	Script string

	// Model is the gesture_recognizer.task path handed to the service. When
	// empty the service uses its default and downloads the model if missing.
	Model string

	// StartTimeout bounds how long the service may take to load the model
	// and report ready.
	StartTimeout time.Duration

	// IdleTimeout stops the recognizer process after this long without a
	// frame. The next Detect restarts it.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
		StartTimeout:    time.Minute,
	}
}
