package sonic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// AutocorrTable maps lag (in seconds, monotonically increasing from zero)
// to one autocorrelation value per channel. The lag column is derived from
// the timestamp deltas of the source series, not from a raw lag index.
type AutocorrTable struct {
	Lags     []float64
	Channels []string
	Values   map[string][]float64
}

// Len returns the number of lag rows.
func (t *AutocorrTable) Len() int { return len(t.Lags) }

// ComputeAutocorrs computes the lagged autocorrelation of each requested
// channel for every lag in [0, floor(n*maxLagFraction)). The lag-k value is
// the Pearson correlation between the overlapping prefix and suffix of the
// channel, with missing pairs excluded, so lag 0 is exactly 1 for any
// channel with nonzero variance.
func ComputeAutocorrs(s *CleanedSeries, channels []string, maxLagFraction float64) (*AutocorrTable, error) {
	if len(channels) == 0 {
		channels = s.Names()
	}
	n := s.Len()
	kept := int(float64(n) * maxLagFraction)
	if kept < 1 {
		return nil, fmt.Errorf("autocorrelation: window of %d samples keeps no lags at fraction %v", n, maxLagFraction)
	}

	start := s.times[0]
	lags := make([]float64, kept)
	for i := 0; i < kept; i++ {
		lags[i] = s.times[i].Sub(start).Seconds()
	}

	table := &AutocorrTable{
		Lags:     lags,
		Channels: append([]string(nil), channels...),
		Values:   make(map[string][]float64, len(channels)),
	}
	for _, name := range channels {
		xs, ok := s.Channel(name)
		if !ok {
			return nil, fmt.Errorf("autocorrelation: unknown channel %s", name)
		}
		vals := make([]float64, kept)
		for lag := 0; lag < kept; lag++ {
			vals[lag] = autocorrAt(xs, lag)
		}
		table.Values[name] = vals
	}
	return table, nil
}

// autocorrAt is the lag-k Pearson autocorrelation estimator.
func autocorrAt(xs []float64, lag int) float64 {
	n := len(xs)
	if lag >= n {
		return math.NaN()
	}
	a, b := finitePairs(xs[:n-lag], xs[lag:])
	if len(a) < 2 {
		return math.NaN()
	}
	if lag == 0 {
		if stat.Variance(a, nil) == 0 {
			return math.NaN()
		}
		return 1.0
	}
	return stat.Correlation(a, b, nil)
}

// IntegralScale holds the derived turbulence scales for one channel.
type IntegralScale struct {
	Channel string

	// TimeScale is the integral time scale in seconds. It may legitimately
	// come out negative; that raises the Negative advisory.
	TimeScale float64

	// LengthScale is |TimeScale * channel mean| in meters.
	LengthScale float64

	// Mean is the channel mean used for the length scale.
	Mean float64

	// NoCutoff reports that the autocorrelation never fell below the
	// threshold, so the scale integrates the whole table.
	NoCutoff bool

	// Negative reports a physically implausible negative time scale.
	Negative bool
}

// IntegralScales integrates each channel's autocorrelation from lag zero to
// the first lag below threshold. Without a cutoff the whole table is used
// and the NoCutoff warning is raised. The returned bool is true when any
// channel raised a warning.
func IntegralScales(s *CleanedSeries, table *AutocorrTable, channels []string, threshold float64) ([]IntegralScale, bool) {
	if len(channels) == 0 {
		channels = table.Channels
	}
	dt := s.Dt().Seconds()
	if table.Len() > 1 {
		dt = table.Lags[1] - table.Lags[0]
	}

	warned := false
	scales := make([]IntegralScale, 0, len(channels))
	for _, name := range channels {
		vals, ok := table.Values[name]
		if !ok || len(vals) == 0 {
			continue
		}
		cutoff := -1
		for i, v := range vals {
			if v < threshold {
				cutoff = i
				break
			}
		}
		sc := IntegralScale{Channel: name, Mean: channelMean(s, name)}
		if cutoff < 0 {
			cutoff = len(vals) - 1
			sc.NoCutoff = true
		}
		sum := 0.0
		for i := 0; i <= cutoff; i++ {
			if !math.IsNaN(vals[i]) {
				sum += vals[i]
			}
		}
		sc.TimeScale = sum * dt
		if sc.TimeScale < 0 {
			sc.Negative = true
		}
		sc.LengthScale = math.Abs(sc.TimeScale * sc.Mean)
		if sc.NoCutoff || sc.Negative {
			warned = true
		}
		scales = append(scales, sc)
	}
	return scales, warned
}
