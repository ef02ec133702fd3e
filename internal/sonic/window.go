package sonic

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/windfield-data/sonic.report/internal/logging"
	"github.com/windfield-data/sonic.report/internal/units"
)

// Analyzer runs the per-window pipeline: load, align, match, flux, scales,
// quality control, summary row. The reference tables are shared read-only
// across windows; each window owns its series exclusively.
type Analyzer struct {
	cfg      *Config
	match    *ReferenceData
	slow     *ReferenceData
	plotter  Plotter
	reporter Reporter
}

// NewAnalyzer builds an analyzer. match and slow may be nil; plotter and
// reporter may be nil to disable the corresponding artifacts.
func NewAnalyzer(cfg *Config, match, slow *ReferenceData, plotter Plotter, reporter Reporter) *Analyzer {
	return &Analyzer{cfg: cfg, match: match, slow: slow, plotter: plotter, reporter: reporter}
}

// AnalyzeFile processes one window file and returns its summary row. Any
// returned error terminates only this window; optional-stage failures are
// logged and leave the row partially filled.
func (a *Analyzer) AnalyzeFile(path string, id int, log logging.Logger) (SummaryRow, error) {
	cfg := a.cfg
	row := NewSummaryRow()
	row.File = filepath.Base(path)
	name := strings.TrimSuffix(row.File, filepath.Ext(row.File))

	log.Log(fmt.Sprintf("Loading %s (id %d)", path, id), true)
	series, err := LoadSeries(path, cfg.LoadOptions())
	if err != nil {
		return row, err
	}

	row.Start = series.Start()
	row.End = series.End()
	interval := fmt.Sprintf("Time interval: %s to %s",
		row.Start.Format(summaryTimeLayout), row.End.Format(summaryTimeLayout))
	log.Log(interval, false)

	// Pre-alignment means go into the summary; post-alignment values are
	// only logged and plotted.
	winds := cfg.WindColumns
	row.MeanU = channelMean(series, winds[0])
	row.MeanV = channelMean(series, winds[1])
	row.MeanW = channelMean(series, winds[2])

	var slowWind *CleanedSeries
	if a.slow != nil {
		sliced := a.slow.SliceWindow(row.Start, row.End)
		sw, err := sliced.SlowWindSeries(cfg.SlowSpeedColumn, cfg.SlowDirectionColumn)
		if err != nil {
			log.Log(fmt.Sprintf("Warning - no matching slow data: %v", err), false)
		} else {
			slowWind = sw
			row.HasSlow = true
			row.SlowMeanU = channelMean(slowWind, winds[0])
			row.SlowMeanV = channelMean(slowWind, winds[1])
			log.Log(fmt.Sprintf("Matched %d slow records in window span", slowWind.Len()), false)
		}
	}

	aligned := false
	if cfg.Align {
		angle, err := MeanDirection(series, winds[0], winds[1])
		if err != nil {
			log.Log(fmt.Sprintf("Warning - %v; continuing with unrotated series", err), false)
		} else {
			series = AlignToDirection(series, angle, winds[0], winds[1])
			aligned = true
			log.Log(fmt.Sprintf("Aligned data: %s oriented in direction of mean wind", winds[0]), false)
			if slowWind != nil {
				if slowAngle, err := MeanDirection(slowWind, winds[0], winds[1]); err == nil {
					row.DeltaDir = units.RadToDeg(angle - slowAngle)
					row.HasDirection = true
				}
				slowWind = AlignToDirection(slowWind, angle, winds[0], winds[1])
				log.Log("Aligned slow data to match orientation of sonic data", false)
			}
		}
	}

	artifactDir := filepath.Join(cfg.TargetDir, name)
	if cfg.anyArtifact() {
		if err := os.MkdirAll(artifactDir, 0755); err != nil {
			return row, fmt.Errorf("create artifact dir: %w", err)
		}
	}

	prefix := ""
	if aligned {
		prefix = "aligned_"
	}

	if cfg.SaveCopy {
		p := filepath.Join(artifactDir, fmt.Sprintf("%sdata_%d.csv", prefix, id))
		if err := WriteSeriesCSV(p, series); err != nil {
			log.Log(fmt.Sprintf("Warning - failed to save data copy: %v", err), false)
		} else {
			log.Log(fmt.Sprintf("Copied data to %s", p), false)
		}
		if slowWind != nil {
			p := filepath.Join(artifactDir, fmt.Sprintf("%sslowdata_%d.csv", prefix, id))
			if err := WriteSeriesCSV(p, slowWind); err != nil {
				log.Log(fmt.Sprintf("Warning - failed to save slow data copy: %v", err), false)
			}
		}
	}

	if cfg.PlotData && a.plotter != nil {
		p := filepath.Join(artifactDir, fmt.Sprintf("%sdata_%d.png", prefix, id))
		if err := a.plotter.PlotSeries(series, slowWind, winds[:], name+" Data", p); err != nil {
			log.Log(fmt.Sprintf("Warning - failed to plot data: %v", err), false)
		} else {
			log.Log(fmt.Sprintf("Saved wind plots to %s", p), false)
		}
	}

	var riLine, alphaLine string
	if a.match != nil {
		sliced := a.match.SliceWindow(row.Start, row.End)
		if alpha, err := sliced.MatchColumn(ColShearExponent); err == nil {
			row.AlphaMean, row.AlphaMedian = alpha.Mean, alpha.Median
			alphaLine = fmt.Sprintf("Wind shear exponent alpha: mean %.4f, median %.4f", alpha.Mean, alpha.Median)
			log.Log(alphaLine, false)
		}
		if ri, err := sliced.MatchColumn(ColBulkRi); err == nil {
			row.RibMean, row.RibMedian = ri.Mean, ri.Median
			row.Stability = MatchStability(ri)
			riLine = fmt.Sprintf("Bulk Ri: mean %.4f, median %.4f (%s)", ri.Mean, ri.Median, row.Stability)
			log.Log(riLine, false)
		}
		if lapse, err := sliced.MatchColumn(ColLapseRate); err == nil {
			row.LapseMean, row.LapseMedian = lapse.Mean, lapse.Median
			log.Log(fmt.Sprintf("Envt VPT lapse rate: mean %.4f, median %.4f", lapse.Mean, lapse.Median), false)
		}
		row.HasMatch = true
	}

	row.RMS, row.TI = RMS(series, winds[0])
	if slowWind != nil {
		row.SlowRMS, row.SlowTI = RMS(slowWind, winds[0])
		log.Log(fmt.Sprintf("RMS: %.4f m/s (slow %.4f m/s)", row.RMS, row.SlowRMS), false)
		log.Log(fmt.Sprintf("TI: %.4f (slow %.4f)", row.TI, row.SlowTI), false)
	} else {
		log.Log(fmt.Sprintf("RMS: %.4f m/s", row.RMS), false)
		log.Log(fmt.Sprintf("TI: %.4f", row.TI), false)
	}

	row.TKE = TKE(series, winds)
	log.Log(fmt.Sprintf("Computed TKE: %.4f J/kg", row.TKE), false)

	table, err := ComputeAutocorrs(series, winds[:], cfg.MaxLagFraction)
	if err != nil {
		return row, fmt.Errorf("window %s: %w", name, err)
	}
	log.Log("Computed autocorrelations", true)

	if cfg.SaveAutocorrs {
		p := filepath.Join(artifactDir, fmt.Sprintf("%sautocorrs_%d.csv", prefix, id))
		if err := WriteAutocorrCSV(p, table); err != nil {
			log.Log(fmt.Sprintf("Warning - failed to save autocorrelations: %v", err), false)
		} else {
			log.Log(fmt.Sprintf("Saved autocorrelations to %s", p), false)
		}
	}
	if cfg.PlotAutocorrs && a.plotter != nil {
		p := filepath.Join(artifactDir, fmt.Sprintf("%sautocorrs_%d.png", prefix, id))
		if err := a.plotter.PlotAutocorrs(table, cfg.ScaleThreshold, name+" Autocorrelations", p); err != nil {
			log.Log(fmt.Sprintf("Warning - failed to plot autocorrelations: %v", err), false)
		} else {
			log.Log(fmt.Sprintf("Saved autocorrelation plots to %s", p), false)
		}
	}

	var derived DerivedParams
	fluxOK := false
	if cfg.FluxEnabled() {
		fluxSeries, d, err := ComputeFluxes(series, winds, cfg.TempColumn, cfg.Height)
		var fluxErr *FluxError
		if errors.As(err, &fluxErr) {
			log.Log(fmt.Sprintf("Warning - %v; skipping flux and QC stages", err), false)
		} else if err != nil {
			log.Log(fmt.Sprintf("Warning - flux computation failed: %v", err), false)
		} else {
			derived = d
			fluxOK = true
			log.Log(fmt.Sprintf("Computed flux information; flux Ri = %g", d.FluxRichardson), false)

			if cfg.PlotFluxes && a.plotter != nil {
				p := filepath.Join(artifactDir, fmt.Sprintf("fluxes_%d.png", id))
				if err := a.plotter.PlotFluxes(fluxSeries, name+" Fluxes", p); err != nil {
					log.Log(fmt.Sprintf("Warning - failed to plot fluxes: %v", err), false)
				} else {
					log.Log(fmt.Sprintf("Saved flux plots to %s", p), false)
				}
			}
			if cfg.SaveFluxes {
				p := filepath.Join(artifactDir, fmt.Sprintf("flux_calculations_%d.txt", id))
				if a.reporter != nil {
					report := FluxReport{Derived: d, RiLine: riLine, AlphaLine: alphaLine}
					if err := a.reporter.WriteFluxReport(p, report); err != nil {
						log.Log(fmt.Sprintf("Warning - failed to save flux report: %v", err), false)
					} else {
						log.Log(fmt.Sprintf("Saved flux information to %s", p), false)
					}
				}
				csvPath := filepath.Join(artifactDir, fmt.Sprintf("fluxes_%d.csv", id))
				if err := WriteFluxCSV(csvPath, fluxSeries); err != nil {
					log.Log(fmt.Sprintf("Warning - failed to save flux table: %v", err), false)
				}
				row.HasFlux = true
				row.FluxRi = d.FluxRichardson
				row.WU = d.MeanUMomentumFlux
				row.WV = d.MeanVMomentumFlux
				row.WT = d.MeanHeatFlux
				row.ObukhovL = d.ObukhovLength
				row.Zeta = cfg.Height / d.ObukhovLength
				row.UStar = d.FrictionVelocity
				row.UGrad = d.WindGradient
			}
		}
	}

	if cfg.SaveScales {
		scales, warned := IntegralScales(series, table, winds[:], cfg.ScaleThreshold)
		for _, sc := range scales {
			if sc.NoCutoff {
				log.Log(fmt.Sprintf("Warning - failed to find cutoff for integration (variable %s)", sc.Channel), false)
			}
			if sc.Negative {
				log.Log(fmt.Sprintf("Warning - found negative integral time scale (variable %s)", sc.Channel), false)
			}
			log.Log(fmt.Sprintf("Mean %s = %.3f m/s", sc.Channel, sc.Mean), false)
			log.Log(fmt.Sprintf("\tIntegral time scale = %.3f s", sc.TimeScale), false)
			log.Log(fmt.Sprintf("\tIntegral length scale = %.3f m", sc.LengthScale), false)
		}
		for _, sc := range scales {
			if sc.Channel == winds[0] {
				row.LengthScale = sc.LengthScale
				row.HasScale = true
			}
		}
		if a.reporter != nil {
			p := filepath.Join(artifactDir, fmt.Sprintf("%sintegralscales_%d.txt", prefix, id))
			report := ScaleReport{
				Scales:   scales,
				Warned:   warned,
				Aligned:  aligned,
				Interval: interval,
				RiLine:   riLine,
				Order:    winds[:],
			}
			if err := a.reporter.WriteScaleReport(p, report); err != nil {
				log.Log(fmt.Sprintf("Warning - failed to save scale report: %v", err), false)
			} else {
				log.Log(fmt.Sprintf("Saved info to %s", p), false)
			}
		}
	}

	if cfg.QC && fluxOK {
		q := RunQualityControl(series, winds, cfg.Height, derived.FrictionVelocity,
			derived.ObukhovLength, cfg.Latitude)
		if math.IsNaN(q.Instationarity) {
			log.Log("Warning - zero full-window covariance; instationarity undefined", false)
		}
		for _, ct := range q.ChannelTests {
			if ct.Outcome == TestSkipped {
				log.Log(fmt.Sprintf("Stationarity test skipped for %s: %v", ct.Channel, ct.Err), false)
			}
		}
		row.RMSChange = q.RMSVariation
		row.Instationarity = q.Instationarity
		row.ITCDeviation = q.ITCDeviation
		row.CombinedFlag = q.CombinedFlag
		row.StationarityFlag = q.StationarityFlag
		row.HasQC = true
	}

	return row, nil
}

// anyArtifact reports whether a per-window artifact directory is needed.
func (c *Config) anyArtifact() bool {
	return c.SaveCopy || c.PlotData || c.PlotAutocorrs || c.SaveAutocorrs ||
		c.SaveScales || c.PlotFluxes || c.SaveFluxes
}
