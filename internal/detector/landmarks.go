// Package detector provides hand detection interfaces and types for gesture navigation.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point is a normalized landmark position. X and Y are in image space
// (approximately [0,1]); Z is relative depth and is carried but unused
// by the navigation geometry.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmarks is the keypoint set of one tracked hand for one frame.
// A well-formed set has exactly NumLandmarks points. Shorter sets come from
// truncated detector output and are treated as "no pose" by every predicate.
type Landmarks []Point

// Complete reports whether all NumLandmarks points are present.
func (l Landmarks) Complete() bool {
	return len(l) >= NumLandmarks
}

// Has reports whether the point at index i is present.
func (l Landmarks) Has(i int) bool {
	return i >= 0 && i < len(l)
}

// Distance2D returns the planar Euclidean distance between two points.
func Distance2D(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Candidate is one entry of the classifier's ranked gesture list.
type Candidate struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Result is the detector output for a single frame.
// Landmarks is nil when no hand was tracked. Gestures holds one ranked
// candidate list per tracked hand, best candidate first.
type Result struct {
	Landmarks Landmarks     `json:"landmarks,omitempty"`
	Gestures  [][]Candidate `json:"gestures,omitempty"`
}

// TopGesture returns the best candidate of the first hand, if any.
func (r *Result) TopGesture() (Candidate, bool) {
	if r == nil || len(r.Gestures) == 0 || len(r.Gestures[0]) == 0 {
		return Candidate{}, false
	}
	return r.Gestures[0][0], true
}
