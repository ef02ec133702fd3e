package sonic

import (
	"math"
	"testing"
	"time"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// makeSeries builds a regularly spaced series from the given channels, all of
// equal length, sampled at dt.
func makeSeries(t *testing.T, dt time.Duration, channels map[string][]float64, order []string) *CleanedSeries {
	t.Helper()
	n := 0
	for _, xs := range channels {
		n = len(xs)
		break
	}
	times := make([]time.Time, n)
	for i := range times {
		times[i] = testStart.Add(time.Duration(i) * dt)
	}
	s, err := NewSeries(times, channels, order)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	s.dt = dt
	return s
}

func almostEqual(a, b, tol float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= tol
}
