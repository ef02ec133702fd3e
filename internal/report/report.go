// Package report writes the human-readable per-window text reports and the
// batch overview chart.
package report

import (
	"fmt"
	"os"

	"github.com/windfield-data/sonic.report/internal/sonic"
)

// TextReporter writes the flux and integral-scale text reports. It
// implements the sonic.Reporter sink.
type TextReporter struct{}

// NewTextReporter returns the standard text report writer.
func NewTextReporter() *TextReporter { return &TextReporter{} }

var _ sonic.Reporter = (*TextReporter)(nil)

// WriteScaleReport writes the integral-scale report: warning banner,
// alignment note, time interval, bulk-Ri line, then one line per channel.
func (tr *TextReporter) WriteScaleReport(path string, r sonic.ScaleReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if r.Warned {
		fmt.Fprintln(f, "Warning - at least one variable's autocorrelation did not fall below the threshold.")
	}
	if r.Aligned {
		fmt.Fprintln(f, "Data geometrically aligned with primary axis in direction of mean wind, secondary axis crosswind.")
	}
	if r.Interval != "" {
		fmt.Fprintln(f, r.Interval)
	}
	if r.RiLine != "" {
		fmt.Fprintln(f, r.RiLine)
	}

	byName := make(map[string]sonic.IntegralScale, len(r.Scales))
	for _, sc := range r.Scales {
		byName[sc.Channel] = sc
	}
	order := r.Order
	if len(order) == 0 {
		order = make([]string, 0, len(r.Scales))
		for _, sc := range r.Scales {
			order = append(order, sc.Channel)
		}
	}
	for _, name := range order {
		sc, ok := byName[name]
		if !ok {
			continue
		}
		fmt.Fprintf(f, "%s: Time scale = %.3f s, Length scale = %.3f m (Mean = %.3f m/s)\n",
			sc.Channel, sc.TimeScale, sc.LengthScale, sc.Mean)
	}
	return nil
}

// WriteFluxReport writes the derived flux parameters, preceded by the
// matched bulk-Ri and shear-exponent lines when available.
func (tr *TextReporter) WriteFluxReport(path string, r sonic.FluxReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if r.RiLine != "" {
		fmt.Fprintln(f, r.RiLine)
	}
	if r.AlphaLine != "" {
		fmt.Fprintln(f, r.AlphaLine)
	}

	d := r.Derived
	fmt.Fprintf(f, "Mean eddy u momentum flux: %.4f\n", d.MeanUMomentumFlux)
	fmt.Fprintf(f, "Mean eddy v momentum flux: %.4f\n", d.MeanVMomentumFlux)
	fmt.Fprintf(f, "Mean eddy heat flux: %.4f\n", d.MeanHeatFlux)
	fmt.Fprintf(f, "Friction velocity: %.4f\n", d.FrictionVelocity)
	fmt.Fprintf(f, "Obukhov length: %.4f\n", d.ObukhovLength)
	fmt.Fprintf(f, "Flux Ri: %.4f\n", d.FluxRichardson)
	fmt.Fprintf(f, "Vertical wind gradient: %.4f\n", d.WindGradient)
	return nil
}
