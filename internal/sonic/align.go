package sonic

import "math"

// MeanDirection returns the direction of the mean horizontal wind vector in
// radians: atan2 of the mean second component over the mean first component.
// A degenerate vector (both means missing or zero) yields an AlignmentError.
func MeanDirection(s *CleanedSeries, u, v string) (float64, error) {
	meanU := channelMean(s, u)
	meanV := channelMean(s, v)
	if math.IsNaN(meanU) || math.IsNaN(meanV) {
		return 0, &AlignmentError{Reason: "mean wind components are missing"}
	}
	if meanU == 0 && meanV == 0 {
		return 0, &AlignmentError{Reason: "zero mean wind vector"}
	}
	return math.Atan2(meanV, meanU), nil
}

// AlignToDirection returns a new series whose u and v channels are rotated
// so the first axis points along the given direction and the second is
// cross-wind. The input series is never mutated; the same angle can rotate
// a time-matched reference series into the same frame.
func AlignToDirection(s *CleanedSeries, angle float64, u, v string) *CleanedSeries {
	out := s.clone()
	us, okU := out.data[u]
	vs, okV := out.data[v]
	if !okU || !okV {
		return out
	}
	sin, cos := math.Sincos(angle)
	for i := range us {
		ui, vi := us[i], vs[i]
		us[i] = ui*cos + vi*sin
		vs[i] = -ui*sin + vi*cos
	}
	return out
}
