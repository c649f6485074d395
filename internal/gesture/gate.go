package gesture

import "github.com/ayusman/crate/internal/detector"

// Classifier labels accepted as navigation swipes.
const (
	LabelSwipeRight = "Swipe_Right"
	LabelSwipeLeft  = "Swipe_Left"
)

// Default confidence bounds. Both are enforced, so the stricter one wins.
const (
	DefaultMinGestureConfidence = 0.72
	DefaultMinSwipeConfidence   = 0.90
)

// Classifier decides whether a frame's classifier output is a usable swipe.
type Classifier interface {
	Accept(gestures [][]detector.Candidate, lm detector.Landmarks) (label string, ok bool)
}

// Gate filters the classifier's top prediction by label and confidence,
// and vetoes it when the hand geometry looks like an open palm or a fist.
type Gate struct {
	// MinGestureConfidence is the general recognition floor.
	MinGestureConfidence float64
	// MinSwipeConfidence is the swipe-specific floor.
	MinSwipeConfidence float64
}

// NewGate creates a Gate with the default confidence bounds.
func NewGate() *Gate {
	return &Gate{
		MinGestureConfidence: DefaultMinGestureConfidence,
		MinSwipeConfidence:   DefaultMinSwipeConfidence,
	}
}

// Accept returns the top candidate's label if it passes every check.
// Only the first hand's best candidate is considered. When lm is nil the
// geometric vetoes cannot fire.
func (g *Gate) Accept(gestures [][]detector.Candidate, lm detector.Landmarks) (string, bool) {
	if len(gestures) == 0 || len(gestures[0]) == 0 {
		return "", false
	}
	top := gestures[0][0]

	if top.Label != LabelSwipeRight && top.Label != LabelSwipeLeft {
		return "", false
	}

	// Both bounds are checked as written, so the stricter one decides.
	if top.Score < g.MinGestureConfidence || top.Score < g.MinSwipeConfidence {
		return "", false
	}

	if lm != nil && (IsLikelyOpenPalm(lm) || IsLikelyClosedFist(lm)) {
		return "", false
	}

	return top.Label, true
}
