package sonic

import (
	"math"

	"github.com/windfield-data/sonic.report/internal/units"
	"gonum.org/v1/gonum/stat"
)

// DefaultSubintervals is the number of chunks used by the instationarity
// and RMS-variation diagnostics (Foken & Wichura 1996).
const DefaultSubintervals = 6

// TestOutcome classifies a per-channel stationarity test result. A skipped
// test is leniency, not a pass: consumers can tell "verified good" from
// "unverified".
type TestOutcome int

const (
	TestPassed TestOutcome = iota
	TestFailed
	TestSkipped
)

func (o TestOutcome) String() string {
	switch o {
	case TestPassed:
		return "passed"
	case TestFailed:
		return "failed"
	case TestSkipped:
		return "skipped"
	}
	return "unknown"
}

// ChannelTest records one channel's unit-root test.
type ChannelTest struct {
	Channel   string
	Outcome   TestOutcome
	Statistic float64
	PValue    float64
	Critical  float64 // 5% critical value
	Err       error   // set when Outcome is TestSkipped
}

// QualityReport holds the window-level quality diagnostics.
type QualityReport struct {
	RMSVariation     float64
	Instationarity   float64
	ITCDeviation     float64
	CombinedFlag     int
	StationarityFlag int
	ChannelTests     []ChannelTest
}

// RunQualityControl executes every window-level diagnostic in one pass:
// RMS variation, u-w covariance instationarity, integral turbulence
// characteristic deviation, the combined 0/1/2 flag and the per-channel
// stationarity tests condensed into their own flag.
func RunQualityControl(s *CleanedSeries, winds [3]string, height, uStar, obukhovLength, latitudeDeg float64) QualityReport {
	q := QualityReport{
		RMSVariation:   RMSVariation(s, DefaultSubintervals, winds[:]),
		Instationarity: CovarianceInstationarity(s, DefaultSubintervals, winds[0], winds[2]),
		ITCDeviation:   ITCDeviation(s, height, uStar, obukhovLength, latitudeDeg, winds[0], winds[2]),
		ChannelTests:   StationarityTests(s, winds[:]),
	}
	q.CombinedFlag = CombinedFlag(q.Instationarity, q.ITCDeviation)
	q.StationarityFlag = StationarityFlag(q.ChannelTests)
	return q
}

// CovarianceInstationarity splits the window into contiguous near-equal
// subintervals, averages the u-w covariance across them, and returns the
// relative deviation from the full-window covariance. A full-window
// covariance of exactly zero makes the ratio undefined; the NaN sentinel is
// returned rather than dividing by zero.
func CovarianceInstationarity(s *CleanedSeries, subintervals int, c1, c2 string) float64 {
	full := Covariance(s, c1, c2)
	if full == 0 || math.IsNaN(full) {
		return math.NaN()
	}
	bounds := subintervalBounds(s.Len(), subintervals)
	covs := make([]float64, 0, len(bounds))
	for _, b := range bounds {
		covs = append(covs, Covariance(sliceSeries(s, b[0], b[1]), c1, c2))
	}
	return math.Abs((stat.Mean(covs, nil) - full) / full)
}

// ITCDeviation compares the measured normalized standard deviations of the
// streamwise and vertical wind against the empirical integral turbulence
// characteristic models of Mauder & Foken (2011, tables 6 and 7), selecting
// the near-neutral logarithmic fits for -0.2 < z/L < 0.4 and the power-law
// fits otherwise. The larger of the two per-axis relative deviations is
// returned.
func ITCDeviation(s *CleanedSeries, height, uStar, obukhovLength, latitudeDeg float64, uCol, wCol string) float64 {
	f := units.Coriolis(latitudeDeg)
	zOverL := height / obukhovLength

	var modelU, modelW float64
	if zOverL > -0.2 && zOverL < 0.4 {
		modelU = 0.44*math.Log(f/uStar) + 6.3
		modelW = 0.21*math.Log(f/uStar) + 3.1
	} else {
		modelU = 2.7 * math.Pow(math.Abs(zOverL), 1.0/8.0)
		modelW = 2.0 * math.Pow(math.Abs(zOverL), 1.0/8.0)
	}

	uVals, _ := s.Channel(uCol)
	wVals, _ := s.Channel(wCol)
	measuredU := popStdDev(finite(uVals)) / uStar
	measuredW := popStdDev(finite(wVals)) / uStar

	devU := math.Abs((modelU - measuredU) / modelU)
	devW := math.Abs((modelW - measuredW) / modelW)
	return math.Max(devU, devW)
}

// popStdDev is the population standard deviation.
func popStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	mean := stat.Mean(xs, nil)
	sum := 0.0
	for _, v := range xs {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// CombinedFlag thresholds the worse of the instationarity and ITC deviation
// into the 0/1/2 quality classes (Mauder & Foken 2011, table 16): 0 below
// 0.3, 1 below 1.0, 2 otherwise.
func CombinedFlag(instationarity, itcDeviation float64) int {
	key := math.Max(instationarity, itcDeviation)
	switch {
	case key < 0.3:
		return 0
	case key < 1.0:
		return 1
	default:
		return 2
	}
}

// RMSVariation computes the per-subinterval RMS of each channel and returns
// the largest relative spread (max-min)/min observed across channels.
func RMSVariation(s *CleanedSeries, subintervals int, channels []string) float64 {
	bounds := subintervalBounds(s.Len(), subintervals)
	worst := math.Inf(-1)
	for _, name := range channels {
		minRMS := math.Inf(1)
		maxRMS := math.Inf(-1)
		for _, b := range bounds {
			rms, _ := RMS(sliceSeries(s, b[0], b[1]), name)
			if math.IsNaN(rms) {
				continue
			}
			minRMS = math.Min(minRMS, rms)
			maxRMS = math.Max(maxRMS, rms)
		}
		if math.IsInf(minRMS, 1) {
			continue
		}
		variation := math.Abs((maxRMS - minRMS) / minRMS)
		worst = math.Max(worst, variation)
	}
	if math.IsInf(worst, -1) {
		return math.NaN()
	}
	return worst
}

// StationarityTests runs the augmented Dickey-Fuller unit-root test on each
// channel. A channel fails when the statistic exceeds the 5% critical value
// or the p-value exceeds 0.05. A test that cannot be executed becomes a
// TestSkipped outcome and never aborts the window.
func StationarityTests(s *CleanedSeries, channels []string) []ChannelTest {
	out := make([]ChannelTest, 0, len(channels))
	for _, name := range channels {
		ct := ChannelTest{Channel: name}
		xs, ok := s.Channel(name)
		if !ok {
			ct.Outcome = TestSkipped
			ct.Err = &StatTestError{Channel: name, Err: errUnknownChannel}
			out = append(out, ct)
			continue
		}
		res, err := ADFTest(finite(xs))
		if err != nil {
			ct.Outcome = TestSkipped
			ct.Err = &StatTestError{Channel: name, Err: err}
			out = append(out, ct)
			continue
		}
		ct.Statistic = res.Statistic
		ct.PValue = res.PValue
		ct.Critical = res.Critical5
		if res.Statistic > res.Critical5 || res.PValue > 0.05 {
			ct.Outcome = TestFailed
		} else {
			ct.Outcome = TestPassed
		}
		out = append(out, ct)
	}
	return out
}

// StationarityFlag condenses the per-channel outcomes: 0 when no channel
// failed, 2 when at least min(2, channelCount) failed, 1 otherwise.
// Skipped channels do not count as failures.
func StationarityFlag(tests []ChannelTest) int {
	criticalFails := 1
	if len(tests) > 1 {
		criticalFails = 2
	}
	fails := 0
	for _, ct := range tests {
		if ct.Outcome == TestFailed {
			fails++
		}
	}
	switch {
	case fails == 0:
		return 0
	case fails >= criticalFails:
		return 2
	default:
		return 1
	}
}
