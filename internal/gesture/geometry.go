package gesture

import (
	"math"

	"github.com/ayusman/crate/internal/detector"
)

// Pose thresholds in normalized image units.
const (
	// IndexExtendedMin is the minimum index tip to PIP distance for an extended index finger.
	IndexExtendedMin = 0.079
	// DirectionMin is the dead zone for the horizontal index tip to wrist offset.
	DirectionMin = 0.079
	// FingerExtendedMin is the fingertip to wrist distance above which a finger counts as extended.
	FingerExtendedMin = 0.1
	// FistSpanMax is the largest fingertip to wrist distance still considered a closed fist.
	FistSpanMax = 0.2
)

// fingertips are the four non-thumb fingertips, index first.
var fingertips = [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

// tipDistances returns each non-thumb fingertip's distance from the wrist.
func tipDistances(lm detector.Landmarks) [4]float64 {
	var d [4]float64
	wrist := lm[detector.Wrist]
	for i, tip := range fingertips {
		d[i] = detector.Distance2D(lm[tip], wrist)
	}
	return d
}

// IsSingleFingerPointing reports whether the index finger is extended and
// reaches farther from the wrist than every other non-thumb fingertip.
func IsSingleFingerPointing(lm detector.Landmarks) bool {
	if !lm.Complete() {
		return false
	}

	extended := detector.Distance2D(lm[detector.IndexTip], lm[detector.IndexPIP]) >= IndexExtendedMin

	d := tipDistances(lm)
	leading := d[0] > d[1] && d[0] > d[2] && d[0] > d[3]

	return extended && leading
}

// PointingDirectionX returns the signed horizontal offset of the index tip
// from the wrist. ok is false when the offset is inside the dead zone or the
// points are missing.
func PointingDirectionX(lm detector.Landmarks) (dx float64, ok bool) {
	if !lm.Has(detector.IndexTip) {
		return 0, false
	}
	dx = lm[detector.IndexTip].X - lm[detector.Wrist].X
	if math.Abs(dx) < DirectionMin {
		return 0, false
	}
	return dx, true
}

// IsLikelyOpenPalm reports whether at least three non-thumb fingers are extended.
// It is a loose heuristic used only to veto classifier output.
func IsLikelyOpenPalm(lm detector.Landmarks) bool {
	if !lm.Complete() {
		return false
	}

	extended := 0
	for _, d := range tipDistances(lm) {
		if d > FingerExtendedMin {
			extended++
		}
	}
	return extended >= 3
}

// IsLikelyClosedFist reports whether every non-thumb fingertip is curled near the wrist.
func IsLikelyClosedFist(lm detector.Landmarks) bool {
	if !lm.Complete() {
		return false
	}

	d := tipDistances(lm)
	return max(d[0], d[1], d[2], d[3]) < FistSpanMax
}
