package sonic

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/windfield-data/sonic.report/internal/units"
)

// Default channel roles for the sonic record layout.
var (
	// DefaultWindColumns are the three wind components, in order
	// (streamwise, crosswise, vertical before alignment).
	DefaultWindColumns = [3]string{"Ux", "Uy", "Uz"}

	// DefaultTempColumn is the sonic temperature used for heat fluxes.
	DefaultTempColumn = "Ts"

	// DefaultKelvinColumns are temperature channels recorded in Celsius.
	DefaultKelvinColumns = []string{"Ts", "amb_tmpr"}

	// DefaultIgnoreColumns are channels dropped at load.
	DefaultIgnoreColumns = []string{"H2O", "CO2", "amb_tmpr", "amb_press"}
)

// timeLayouts are the accepted timestamp formats, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
}

// CleanedSeries is an ordered-by-time multichannel series. Timestamps are
// strictly increasing and the sample spacing is uniform within the loader's
// tolerance. Missing values are NaN.
type CleanedSeries struct {
	times []time.Time
	names []string
	data  map[string][]float64
	dt    time.Duration
}

// Len returns the number of records.
func (s *CleanedSeries) Len() int { return len(s.times) }

// Names returns the channel names in column order.
func (s *CleanedSeries) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Times returns the timestamp index.
func (s *CleanedSeries) Times() []time.Time { return s.times }

// Channel returns the sample slice for a named channel. The slice is owned
// by the series; callers must not modify it.
func (s *CleanedSeries) Channel(name string) ([]float64, bool) {
	xs, ok := s.data[name]
	return xs, ok
}

// Start returns the first timestamp.
func (s *CleanedSeries) Start() time.Time { return s.times[0] }

// End returns the last timestamp.
func (s *CleanedSeries) End() time.Time { return s.times[len(s.times)-1] }

// Dt returns the uniform sample spacing.
func (s *CleanedSeries) Dt() time.Duration { return s.dt }

// clone returns a deep copy sharing nothing with the receiver.
func (s *CleanedSeries) clone() *CleanedSeries {
	c := &CleanedSeries{
		times: make([]time.Time, len(s.times)),
		names: make([]string, len(s.names)),
		data:  make(map[string][]float64, len(s.data)),
		dt:    s.dt,
	}
	copy(c.times, s.times)
	copy(c.names, s.names)
	for name, xs := range s.data {
		ys := make([]float64, len(xs))
		copy(ys, xs)
		c.data[name] = ys
	}
	return c
}

// NewSeries builds a CleanedSeries from parallel slices. Intended for the
// reference pipeline and tests; times must already be strictly increasing.
func NewSeries(times []time.Time, channels map[string][]float64, order []string) (*CleanedSeries, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("empty series")
	}
	for _, name := range order {
		xs, ok := channels[name]
		if !ok {
			return nil, fmt.Errorf("channel %s missing", name)
		}
		if len(xs) != len(times) {
			return nil, fmt.Errorf("channel %s has %d samples, index has %d", name, len(xs), len(times))
		}
	}
	dt := time.Duration(0)
	if len(times) > 1 {
		dt = times[1].Sub(times[0])
	}
	s := &CleanedSeries{times: times, names: append([]string(nil), order...), data: channels, dt: dt}
	return s, nil
}

// LoadOptions controls window-file cleaning.
type LoadOptions struct {
	// KelvinColumns lists channels whose Celsius values get +273.15 once.
	KelvinColumns []string

	// IgnoreColumns lists channels dropped entirely.
	IgnoreColumns []string

	// SpacingTolerance is the allowed relative deviation of any inter-sample
	// gap from the median gap. Zero means the default of 0.25.
	SpacingTolerance float64
}

// DefaultLoadOptions returns the standard sonic-record cleaning options.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		KelvinColumns:    DefaultKelvinColumns,
		IgnoreColumns:    DefaultIgnoreColumns,
		SpacingTolerance: 0.25,
	}
}

// LoadSeries parses a raw delimited record file into a CleanedSeries:
// timestamps parsed with mixed-format tolerance, duplicates dropped keeping
// the first, rows sorted by time, ignored channels removed, remaining
// channels coerced to numeric with unparsable cells mapped to NaN, and
// Celsius channels converted to Kelvin. Irregular sample spacing beyond the
// tolerance is rejected.
func LoadSeries(path string, opts LoadOptions) (*CleanedSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}

	timeIdx := -1
	for i, name := range header {
		if name == "TIMESTAMP" || name == "time" {
			timeIdx = i
			break
		}
	}
	if timeIdx < 0 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("no timestamp column in header")}
	}

	ignored := toSet(opts.IgnoreColumns)
	kelvin := toSet(opts.KelvinColumns)

	var names []string
	colIdx := make([]int, 0, len(header))
	for i, name := range header {
		if i == timeIdx || ignored[name] {
			continue
		}
		names = append(names, name)
		colIdx = append(colIdx, i)
	}

	type record struct {
		t    time.Time
		vals []float64
	}
	var records []record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("read row: %w", err)}
		}
		if timeIdx >= len(row) {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("row too short for timestamp column")}
		}
		ts, err := parseTimestamp(row[timeIdx])
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		vals := make([]float64, len(colIdx))
		for j, idx := range colIdx {
			if idx >= len(row) {
				vals[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(row[idx], 64)
			if err != nil {
				v = math.NaN()
			}
			if kelvin[names[j]] {
				v = units.CelsiusToKelvin(v)
			}
			vals[j] = v
		}
		records = append(records, record{t: ts, vals: vals})
	}

	// Duplicates resolved by keeping the first occurrence, then sort.
	seen := make(map[int64]bool, len(records))
	kept := records[:0]
	for _, rec := range records {
		key := rec.t.UnixNano()
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, rec)
	}
	sort.SliceStable(kept, func(a, b int) bool { return kept[a].t.Before(kept[b].t) })

	if len(kept) == 0 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("no rows after cleaning")}
	}

	times := make([]time.Time, len(kept))
	for i, rec := range kept {
		times[i] = rec.t
	}
	dt, err := uniformSpacing(times, opts.SpacingTolerance)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	s := &CleanedSeries{
		times: times,
		names: names,
		data:  make(map[string][]float64, len(names)),
		dt:    dt,
	}
	for _, name := range names {
		s.data[name] = make([]float64, len(kept))
	}
	for i, rec := range kept {
		for j, name := range names {
			s.data[name][i] = rec.vals[j]
		}
	}
	return s, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", raw)
}

// uniformSpacing checks the strictly-increasing index for regular sample
// spacing and returns the median gap. A single-record series gets zero
// spacing; downstream stages require more samples anyway.
func uniformSpacing(times []time.Time, tolerance float64) (time.Duration, error) {
	if len(times) < 2 {
		return 0, nil
	}
	if tolerance <= 0 {
		tolerance = 0.25
	}
	gaps := make([]time.Duration, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps[i-1] = times[i].Sub(times[i-1])
	}
	sorted := append([]time.Duration(nil), gaps...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })
	median := sorted[len(sorted)/2]
	if median <= 0 {
		return 0, fmt.Errorf("non-increasing timestamp index")
	}
	limit := time.Duration(float64(median) * tolerance)
	for i, gap := range gaps {
		if diff := gap - median; diff > limit || diff < -limit {
			return 0, fmt.Errorf("irregular sample spacing at record %d: gap %v, median %v", i+1, gap, median)
		}
	}
	return median, nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
