package sonic

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// finite returns the non-NaN values of xs.
func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// finitePairs returns the elements of xs and ys where both are non-NaN.
func finitePairs(xs, ys []float64) ([]float64, []float64) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	a := make([]float64, 0, n)
	b := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		a = append(a, xs[i])
		b = append(b, ys[i])
	}
	return a, b
}

// nanMean is the mean of the non-missing values, NaN if none exist.
func nanMean(xs []float64) float64 {
	vs := finite(xs)
	if len(vs) == 0 {
		return math.NaN()
	}
	return stat.Mean(vs, nil)
}

// channelMean returns the mean of a named channel, NaN for unknown channels.
func channelMean(s *CleanedSeries, name string) float64 {
	xs, ok := s.Channel(name)
	if !ok {
		return math.NaN()
	}
	return nanMean(xs)
}

// RMS returns the root-mean-square of the fluctuating part of a channel
// together with the turbulence intensity (RMS over |mean|).
func RMS(s *CleanedSeries, channel string) (rms, ti float64) {
	xs, ok := s.Channel(channel)
	if !ok {
		return math.NaN(), math.NaN()
	}
	vs := finite(xs)
	if len(vs) == 0 {
		return math.NaN(), math.NaN()
	}
	mean := stat.Mean(vs, nil)
	sum := 0.0
	for _, v := range vs {
		d := v - mean
		sum += d * d
	}
	rms = math.Sqrt(sum / float64(len(vs)))
	return rms, rms / math.Abs(mean)
}

// TKE returns the turbulent kinetic energy of the wind components in
// m^2/s^2 (J/kg for winds in m/s).
func TKE(s *CleanedSeries, winds [3]string) float64 {
	total := 0.0
	for _, w := range winds {
		xs, ok := s.Channel(w)
		if !ok {
			return math.NaN()
		}
		vs := finite(xs)
		if len(vs) == 0 {
			return math.NaN()
		}
		mean := stat.Mean(vs, nil)
		sum := 0.0
		for _, v := range vs {
			d := v - mean
			sum += d * d
		}
		total += sum / float64(len(vs))
	}
	return total / 2
}

// covariancePair is the sample covariance of two slices over their jointly
// non-missing elements.
func covariancePair(xs, ys []float64) float64 {
	a, b := finitePairs(xs, ys)
	if len(a) < 2 {
		return math.NaN()
	}
	return stat.Covariance(a, b, nil)
}

// Covariance returns the sample covariance of two named channels.
func Covariance(s *CleanedSeries, c1, c2 string) float64 {
	xs, ok1 := s.Channel(c1)
	ys, ok2 := s.Channel(c2)
	if !ok1 || !ok2 {
		return math.NaN()
	}
	return covariancePair(xs, ys)
}

// subintervalBounds splits n samples into k contiguous near-equal chunks:
// the first n mod k chunks get one extra element. Returned as half-open
// [start, end) index pairs.
func subintervalBounds(n, k int) [][2]int {
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	bounds := make([][2]int, 0, k)
	base := n / k
	extra := n % k
	start := 0
	for i := 0; i < k; i++ {
		size := base
		if i < extra {
			size++
		}
		bounds = append(bounds, [2]int{start, start + size})
		start += size
	}
	return bounds
}

// sliceSeries returns a view-copy of the series restricted to [start, end).
func sliceSeries(s *CleanedSeries, start, end int) *CleanedSeries {
	sub := &CleanedSeries{
		times: s.times[start:end],
		names: s.names,
		data:  make(map[string][]float64, len(s.data)),
		dt:    s.dt,
	}
	for name, xs := range s.data {
		sub.data[name] = xs[start:end]
	}
	return sub
}
