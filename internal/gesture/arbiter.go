package gesture

import "github.com/ayusman/crate/internal/detector"

// Source identifies which signal produced a decision.
type Source string

const (
	// SourcePointing is the geometric index-pointing path.
	SourcePointing Source = "pointing"
	// SourceSwipe is the classifier swipe path.
	SourceSwipe Source = "swipe"
)

// Decision is a command chosen for one frame.
type Decision struct {
	Command Command
	Source  Source
	Label   string // classifier label for swipe decisions
	DX      float64
}

// Arbiter picks at most one command per frame. Pointing has strict priority
// over the classifier: once the pointing pose applies, the classifier is not
// consulted for that frame even if the cooldown blocks the pointing command.
type Arbiter struct {
	debounce   *Debounce
	classifier Classifier
}

// NewArbiter creates an Arbiter. The debounce state is owned by the caller
// and must not be shared with another arbiter.
func NewArbiter(debounce *Debounce, classifier Classifier) *Arbiter {
	if classifier == nil {
		classifier = NewGate()
	}
	return &Arbiter{
		debounce:   debounce,
		classifier: classifier,
	}
}

// Evaluate decides this frame's command. The debounce is recorded before
// Evaluate returns a decision.
func (a *Arbiter) Evaluate(nowMs int64, res *detector.Result) (Decision, bool) {
	if res == nil {
		return Decision{}, false
	}
	lm := res.Landmarks

	if IsSingleFingerPointing(lm) {
		if dx, ok := PointingDirectionX(lm); ok {
			if !a.debounce.Permit(nowMs) {
				return Decision{}, false
			}
			a.debounce.Record(nowMs)

			cmd := Advance
			if dx < 0 {
				cmd = Retreat
			}
			return Decision{Command: cmd, Source: SourcePointing, DX: dx}, true
		}
	}

	label, ok := a.classifier.Accept(res.Gestures, lm)
	if !ok || !a.debounce.Permit(nowMs) {
		return Decision{}, false
	}

	var cmd Command
	switch label {
	case LabelSwipeLeft:
		cmd = Advance
	case LabelSwipeRight:
		cmd = Retreat
	default:
		return Decision{}, false
	}

	a.debounce.Record(nowMs)
	return Decision{Command: cmd, Source: SourceSwipe, Label: label}, true
}
