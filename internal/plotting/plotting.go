// Package plotting renders PNG artifacts for analysed windows using
// gonum/plot. It implements the sonic.Plotter sink.
package plotting

import (
	"image/color"
	"math"

	"github.com/windfield-data/sonic.report/internal/sonic"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PNGPlotter renders gonum/plot line plots sized for quick inspection.
type PNGPlotter struct{}

// NewPNGPlotter returns the standard PNG renderer.
func NewPNGPlotter() *PNGPlotter { return &PNGPlotter{} }

var _ sonic.Plotter = (*PNGPlotter)(nil)

// PlotSeries draws the wind channels against seconds since the window
// start, overlaying slow observations as a second set of lines when given.
func (pp *PNGPlotter) PlotSeries(fast, slow *sonic.CleanedSeries, channels []string, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Seconds since " + fast.Start().Format("2006-01-02 15:04:05")
	p.Y.Label.Text = "Wind speed (m/s)"

	colors := palette(len(channels))
	start := fast.Start()
	for i, name := range channels {
		xs, ok := fast.Channel(name)
		if !ok {
			continue
		}
		pts := make(plotter.XYs, 0, len(xs))
		for j, t := range fast.Times() {
			if math.IsNaN(xs[j]) {
				continue
			}
			pts = append(pts, plotter.XY{X: t.Sub(start).Seconds(), Y: xs[j]})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(name, line)
	}

	if slow != nil {
		for i, name := range channels {
			xs, ok := slow.Channel(name)
			if !ok {
				continue
			}
			pts := make(plotter.XYs, 0, len(xs))
			for j, t := range slow.Times() {
				if math.IsNaN(xs[j]) {
					continue
				}
				pts = append(pts, plotter.XY{X: t.Sub(start).Seconds(), Y: xs[j]})
			}
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return err
			}
			sc.Color = colors[i%len(colors)]
			p.Add(sc)
			p.Legend.Add(name+" (slow)", sc)
		}
	}

	p.Legend.Top = true
	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

// PlotAutocorrs draws the per-channel autocorrelation against lag seconds
// with the integration threshold as a gray reference line.
func (pp *PNGPlotter) PlotAutocorrs(table *sonic.AutocorrTable, threshold float64, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Lag (s)"
	p.Y.Label.Text = "Autocorrelation"
	p.Y.Min = -0.2
	p.Y.Max = 1.1

	if n := table.Len(); n > 0 {
		ref := plotter.XYs{
			{X: table.Lags[0], Y: threshold},
			{X: table.Lags[n-1], Y: threshold},
		}
		line, err := plotter.NewLine(ref)
		if err != nil {
			return err
		}
		line.Color = color.Gray{Y: 128}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("threshold", line)
	}

	colors := palette(len(table.Channels))
	for i, name := range table.Channels {
		vals := table.Values[name]
		pts := make(plotter.XYs, 0, len(vals))
		for j, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			pts = append(pts, plotter.XY{X: table.Lags[j], Y: v})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(name, line)
	}

	p.Legend.Top = true
	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

// PlotFluxes draws the three instantaneous eddy flux series.
func (pp *PNGPlotter) PlotFluxes(flux *sonic.FluxSeries, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Seconds since " + flux.Times[0].Format("2006-01-02 15:04:05")
	p.Y.Label.Text = "Flux"

	series := []struct {
		name string
		vals []float64
	}{
		{"w'u'", flux.WU},
		{"w'v'", flux.WV},
		{"w'T'", flux.WT},
	}
	colors := palette(len(series))
	start := flux.Times[0]
	for i, s := range series {
		pts := make(plotter.XYs, 0, len(s.vals))
		for j, v := range s.vals {
			if math.IsNaN(v) {
				continue
			}
			pts = append(pts, plotter.XY{X: flux.Times[j].Sub(start).Seconds(), Y: v})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	p.Legend.Top = true
	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

// palette creates n distinct line colors spaced around the hue circle.
func palette(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.45)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64
	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
