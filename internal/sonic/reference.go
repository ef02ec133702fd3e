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

	"github.com/montanaflynn/stats"
	"github.com/windfield-data/sonic.report/internal/units"
)

// Reference column names in the matched slow-cadence summary.
const (
	ColShearExponent = "alpha"
	ColBulkRi        = "ri"
	ColLapseRate     = "vpt_lapse_env"
)

// StabilityClass labels a bulk Richardson number by fixed thresholds.
func StabilityClass(ri float64) string {
	switch {
	case ri < -0.1:
		return "unstable"
	case ri < 0.1:
		return "neutral"
	case ri < 0.25:
		return "stable"
	default:
		return "strongly stable"
	}
}

// ReferenceData is a slow-cadence timestamped table: the pre-computed
// ten-minute summary (shear exponent, bulk Ri, lapse rate) or the raw slow
// wind observations.
type ReferenceData struct {
	times []time.Time
	cols  map[string][]float64
}

// Len returns the number of reference rows.
func (r *ReferenceData) Len() int { return len(r.times) }

// Times returns the timestamp index.
func (r *ReferenceData) Times() []time.Time { return r.times }

// Column returns the values of a named column.
func (r *ReferenceData) Column(name string) ([]float64, bool) {
	xs, ok := r.cols[name]
	return xs, ok
}

// LoadReference reads a slow-cadence CSV keeping only the named numeric
// columns. Rows with unparsable timestamps are dropped (the slow files are
// pre-processed summaries; a bad row there should not sink the batch).
func LoadReference(path string, columns []string) (*ReferenceData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read reference header: %w", err)
	}

	timeIdx := -1
	colIdx := make(map[string]int, len(columns))
	for i, name := range header {
		if name == "time" || name == "TIMESTAMP" {
			timeIdx = i
		}
		for _, want := range columns {
			if name == want {
				colIdx[name] = i
			}
		}
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("reference %s has no time column", path)
	}
	for _, want := range columns {
		if _, ok := colIdx[want]; !ok {
			return nil, fmt.Errorf("reference %s has no %q column", path, want)
		}
	}

	data := &ReferenceData{cols: make(map[string][]float64, len(columns))}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read reference row: %w", err)
		}
		if timeIdx >= len(row) {
			continue
		}
		ts, err := parseTimestamp(row[timeIdx])
		if err != nil {
			continue
		}
		data.times = append(data.times, ts)
		for _, name := range columns {
			idx := colIdx[name]
			v := math.NaN()
			if idx < len(row) {
				if parsed, err := strconv.ParseFloat(row[idx], 64); err == nil {
					v = parsed
				}
			}
			data.cols[name] = append(data.cols[name], v)
		}
	}
	if data.Len() == 0 {
		return nil, fmt.Errorf("reference %s has no usable rows", path)
	}
	sortReference(data)
	return data, nil
}

func sortReference(r *ReferenceData) {
	idx := make([]int, len(r.times))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return r.times[idx[a]].Before(r.times[idx[b]]) })
	times := make([]time.Time, len(idx))
	for i, j := range idx {
		times[i] = r.times[j]
	}
	r.times = times
	for name, xs := range r.cols {
		sorted := make([]float64, len(idx))
		for i, j := range idx {
			sorted[i] = xs[j]
		}
		r.cols[name] = sorted
	}
}

// SliceWindow restricts the table to rows with start <= t <= end.
func (r *ReferenceData) SliceWindow(start, end time.Time) *ReferenceData {
	out := &ReferenceData{cols: make(map[string][]float64, len(r.cols))}
	for i, t := range r.times {
		if t.Before(start) || t.After(end) {
			continue
		}
		out.times = append(out.times, t)
		for name, xs := range r.cols {
			out.cols[name] = append(out.cols[name], xs[i])
		}
	}
	return out
}

// MatchedStat holds the mean and median of one reference quantity within a
// window span.
type MatchedStat struct {
	Mean   float64
	Median float64
}

// MatchColumn computes mean and median of a reference column over the rows
// already sliced to the window.
func (r *ReferenceData) MatchColumn(name string) (MatchedStat, error) {
	xs, ok := r.cols[name]
	if !ok {
		return MatchedStat{}, fmt.Errorf("reference column %q: %w", name, errUnknownChannel)
	}
	vs := finite(xs)
	if len(vs) == 0 {
		return MatchedStat{Mean: math.NaN(), Median: math.NaN()}, nil
	}
	mean, err := stats.Mean(vs)
	if err != nil {
		return MatchedStat{}, fmt.Errorf("reference mean for %q: %w", name, err)
	}
	median, err := stats.Median(vs)
	if err != nil {
		return MatchedStat{}, fmt.Errorf("reference median for %q: %w", name, err)
	}
	return MatchedStat{Mean: mean, Median: median}, nil
}

// MatchStability classifies the mean- and median-based bulk Richardson
// numbers. Disagreeing classes are reported joined, not resolved.
func MatchStability(ri MatchedStat) string {
	meanClass := StabilityClass(ri.Mean)
	medianClass := StabilityClass(ri.Median)
	if meanClass == medianClass {
		return meanClass
	}
	return meanClass + "/" + medianClass
}

// SlowWindSeries converts sliced slow observations from speed/direction
// form into a component-form series that can be rotated into the aligned
// frame and compared against the fast channels.
func (r *ReferenceData) SlowWindSeries(speedCol, directionCol string) (*CleanedSeries, error) {
	ws, ok := r.cols[speedCol]
	if !ok {
		return nil, fmt.Errorf("slow column %q: %w", speedCol, errUnknownChannel)
	}
	wd, ok := r.cols[directionCol]
	if !ok {
		return nil, fmt.Errorf("slow column %q: %w", directionCol, errUnknownChannel)
	}
	if len(r.times) == 0 {
		return nil, fmt.Errorf("no slow rows in window span")
	}
	us := make([]float64, len(ws))
	vs := make([]float64, len(ws))
	for i := range ws {
		us[i], vs[i] = units.WindComponents(ws[i], wd[i])
	}
	return NewSeries(r.times, map[string][]float64{
		DefaultWindColumns[0]: us,
		DefaultWindColumns[1]: vs,
	}, []string{DefaultWindColumns[0], DefaultWindColumns[1]})
}
