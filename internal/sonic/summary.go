package sonic

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// summaryTimeLayout matches the timestamp format of the window files.
const summaryTimeLayout = "2006-01-02 15:04:05"

// SummaryRow is one window's row in the batch summary table. The shape is
// fixed: every derived field exists whether or not its stage ran, with the
// Has* markers recording which optional stages produced values. Rows are
// never mutated once written.
type SummaryRow struct {
	File  string
	Start time.Time
	End   time.Time

	// Pre-alignment channel means.
	MeanU, MeanV, MeanW float64

	// Matched slow wind (component means after conversion).
	SlowMeanU, SlowMeanV float64
	SlowRMS, SlowTI      float64

	// Matched reference statistics.
	AlphaMean, AlphaMedian float64
	RibMean, RibMedian     float64
	Stability              string
	LapseMean, LapseMedian float64

	// Window turbulence statistics.
	RMS, TI, TKE float64

	// Flux-derived parameters.
	FluxRi, WU, WV, WT           float64
	ObukhovL, Zeta, UStar, UGrad float64

	// Integral length scale of the streamwise wind.
	LengthScale float64

	// Fast/slow alignment-angle delta in degrees.
	DeltaDir float64

	// Quality control.
	RMSChange, Instationarity, ITCDeviation float64
	CombinedFlag, StationarityFlag          int

	HasSlow, HasMatch, HasFlux, HasScale, HasDirection, HasQC bool
}

// NewSummaryRow returns a row with every numeric field set to NaN so that
// skipped stages print as missing rather than as zeros.
func NewSummaryRow() SummaryRow {
	nan := math.NaN()
	return SummaryRow{
		MeanU: nan, MeanV: nan, MeanW: nan,
		SlowMeanU: nan, SlowMeanV: nan, SlowRMS: nan, SlowTI: nan,
		AlphaMean: nan, AlphaMedian: nan,
		RibMean: nan, RibMedian: nan,
		LapseMean: nan, LapseMedian: nan,
		RMS: nan, TI: nan, TKE: nan,
		FluxRi: nan, WU: nan, WV: nan, WT: nan,
		ObukhovL: nan, Zeta: nan, UStar: nan, UGrad: nan,
		LengthScale: nan, DeltaDir: nan,
		RMSChange: nan, Instationarity: nan, ITCDeviation: nan,
	}
}

// SummaryHeader returns the column names for the configuration. The set is
// fixed once at header-write time; every row must conform to it.
func SummaryHeader(cfg *Config) []string {
	cols := []string{"start", "end", "mean_u", "mean_v", "mean_w"}
	if cfg.SlowFile != "" {
		cols = append(cols, "slow_mean_u", "slow_mean_v")
	}
	if cfg.MatchFile != "" {
		cols = append(cols, "alpha_mean", "alpha_median",
			"Rib_mean", "Rib_median", "stability", "lapse_mean", "lapse_median")
	}
	if cfg.SlowFile != "" {
		cols = append(cols, "rms", "slow_rms", "ti", "slow_ti", "tke")
	} else {
		cols = append(cols, "rms", "ti", "tke")
	}
	if cfg.SaveFluxes {
		cols = append(cols, "Rif", "wu", "wv", "wt", "L", "zeta", "ustar", "ugrad")
	}
	if cfg.SaveScales {
		cols = append(cols, "length_scale")
	}
	if cfg.Direction {
		cols = append(cols, "delta_dir")
	}
	if cfg.QC {
		cols = append(cols, "rms_change", "ss_dev", "itc_dev", "sflag", "urflag")
	}
	return cols
}

// Record formats the row for the configuration's column set.
func (r *SummaryRow) Record(cfg *Config) []string {
	out := []string{
		r.Start.Format(summaryTimeLayout),
		r.End.Format(summaryTimeLayout),
		num(r.MeanU), num(r.MeanV), num(r.MeanW),
	}
	if cfg.SlowFile != "" {
		out = append(out, num(r.SlowMeanU), num(r.SlowMeanV))
	}
	if cfg.MatchFile != "" {
		out = append(out, num(r.AlphaMean), num(r.AlphaMedian),
			num(r.RibMean), num(r.RibMedian), r.Stability,
			num(r.LapseMean), num(r.LapseMedian))
	}
	if cfg.SlowFile != "" {
		out = append(out, num(r.RMS), num(r.SlowRMS), num(r.TI), num(r.SlowTI), num(r.TKE))
	} else {
		out = append(out, num(r.RMS), num(r.TI), num(r.TKE))
	}
	if cfg.SaveFluxes {
		out = append(out, num(r.FluxRi), num(r.WU), num(r.WV), num(r.WT),
			num(r.ObukhovL), num(r.Zeta), num(r.UStar), num(r.UGrad))
	}
	if cfg.SaveScales {
		out = append(out, num(r.LengthScale))
	}
	if cfg.Direction {
		out = append(out, num(r.DeltaDir))
	}
	if cfg.QC {
		if r.HasQC {
			out = append(out, num(r.RMSChange), num(r.Instationarity), num(r.ITCDeviation),
				fmt.Sprintf("%d", r.CombinedFlag), fmt.Sprintf("%d", r.StationarityFlag))
		} else {
			out = append(out, "NaN", "NaN", "NaN", "NaN", "NaN")
		}
	}
	return out
}

// Line renders the row as one summary-file line.
func (r *SummaryRow) Line(cfg *Config) string {
	return strings.Join(r.Record(cfg), ",")
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.5f", v)
}
