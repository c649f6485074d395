package gesture

import (
	"testing"

	"github.com/ayusman/crate/internal/detector"
)

func swipe(label string, score float64) [][]detector.Candidate {
	return [][]detector.Candidate{{{Label: label, Score: score}}}
}

func TestGate_Accept(t *testing.T) {
	g := NewGate()

	tests := []struct {
		name      string
		gestures  [][]detector.Candidate
		lm        detector.Landmarks
		wantLabel string
		wantOK    bool
	}{
		{
			name:      "swipe right without landmarks",
			gestures:  swipe(LabelSwipeRight, 0.95),
			wantLabel: LabelSwipeRight,
			wantOK:    true,
		},
		{
			name:      "swipe left with neutral hand",
			gestures:  swipe(LabelSwipeLeft, 0.91),
			lm:        detector.PointingUpLandmarks(),
			wantLabel: LabelSwipeLeft,
			wantOK:    true,
		},
		{
			name:      "exactly at the swipe bound",
			gestures:  swipe(LabelSwipeLeft, 0.90),
			wantLabel: LabelSwipeLeft,
			wantOK:    true,
		},
		{
			name:     "above general bound but below swipe bound",
			gestures: swipe(LabelSwipeLeft, 0.80),
		},
		{
			name:     "below both bounds",
			gestures: swipe(LabelSwipeRight, 0.5),
		},
		{
			name:     "open palm veto",
			gestures: swipe(LabelSwipeRight, 0.95),
			lm:       detector.OpenPalmLandmarks(),
		},
		{
			name:     "closed fist veto",
			gestures: swipe(LabelSwipeLeft, 0.99),
			lm:       detector.ClosedFistLandmarks(),
		},
		{
			name:     "unrelated label",
			gestures: swipe("Thumb_Up", 0.99),
		},
		{
			name:     "label match is case sensitive",
			gestures: swipe("swipe_right", 0.99),
		},
		{
			name: "only the top candidate counts",
			gestures: [][]detector.Candidate{{
				{Label: "None", Score: 0.6},
				{Label: LabelSwipeRight, Score: 0.95},
			}},
		},
		{
			name:     "no hands",
			gestures: nil,
		},
		{
			name:     "empty candidate list",
			gestures: [][]detector.Candidate{{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, ok := g.Accept(tt.gestures, tt.lm)
			if ok != tt.wantOK {
				t.Fatalf("Accept() ok = %v, want %v", ok, tt.wantOK)
			}
			if label != tt.wantLabel {
				t.Errorf("Accept() label = %q, want %q", label, tt.wantLabel)
			}
		})
	}
}

func TestGate_TruncatedLandmarksCannotVeto(t *testing.T) {
	g := NewGate()
	lm := detector.OpenPalmLandmarks()[:10]

	if _, ok := g.Accept(swipe(LabelSwipeRight, 0.95), lm); !ok {
		t.Error("expected truncated landmarks to leave the swipe unvetoed")
	}
}

func TestGate_StricterBoundWins(t *testing.T) {
	g := &Gate{MinGestureConfidence: 0.95, MinSwipeConfidence: 0.6}

	if _, ok := g.Accept(swipe(LabelSwipeLeft, 0.9), nil); ok {
		t.Error("expected the general bound to reject when it is the stricter one")
	}
	if _, ok := g.Accept(swipe(LabelSwipeLeft, 0.96), nil); !ok {
		t.Error("expected acceptance above both bounds")
	}
}
