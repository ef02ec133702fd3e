package sonic

import (
	"math"
	"time"

	"github.com/windfield-data/sonic.report/internal/units"
)

// FluxSeries holds the per-timestamp instantaneous eddy fluxes: the two
// momentum flux components w'u' and w'v' and the heat flux w'T'.
type FluxSeries struct {
	Times []time.Time
	WU    []float64
	WV    []float64
	WT    []float64
}

// Len returns the number of flux samples.
func (f *FluxSeries) Len() int { return len(f.Times) }

// DerivedParams are the window-level quantities derived from Reynolds
// decomposition. Every field is always present; failed stages leave NaN.
type DerivedParams struct {
	MeanUMomentumFlux float64 // mean w'u', m^2/s^2
	MeanVMomentumFlux float64 // mean w'v', m^2/s^2
	MeanHeatFlux      float64 // mean w'T', K m/s
	FrictionVelocity  float64 // u*, m/s
	ObukhovLength     float64 // L, m
	FluxRichardson    float64
	WindGradient      float64 // dU/dz estimate, 1/s
	MeanTemperature   float64 // K
}

// ComputeFluxes Reynolds-decomposes the three wind components and the
// temperature channel, forms the instantaneous eddy fluxes, and derives the
// scalar boundary-layer parameters. The measurement height enters the wind
// gradient estimate. A channel with fewer than 2 non-missing samples yields
// a FluxError.
func ComputeFluxes(s *CleanedSeries, winds [3]string, temp string, height float64) (*FluxSeries, DerivedParams, error) {
	required := []string{winds[0], winds[1], winds[2], temp}
	means := make(map[string]float64, len(required))
	for _, name := range required {
		xs, ok := s.Channel(name)
		if !ok {
			return nil, DerivedParams{}, &FluxError{Channel: name, Samples: 0}
		}
		vs := finite(xs)
		if len(vs) < 2 {
			return nil, DerivedParams{}, &FluxError{Channel: name, Samples: len(vs)}
		}
		means[name] = nanMean(xs)
	}

	us, _ := s.Channel(winds[0])
	vs, _ := s.Channel(winds[1])
	ws, _ := s.Channel(winds[2])
	ts, _ := s.Channel(temp)

	n := s.Len()
	flux := &FluxSeries{
		Times: s.Times(),
		WU:    make([]float64, n),
		WV:    make([]float64, n),
		WT:    make([]float64, n),
	}
	for i := 0; i < n; i++ {
		fw := ws[i] - means[winds[2]]
		flux.WU[i] = fw * (us[i] - means[winds[0]])
		flux.WV[i] = fw * (vs[i] - means[winds[1]])
		flux.WT[i] = fw * (ts[i] - means[temp])
	}

	d := DerivedParams{
		MeanUMomentumFlux: nanMean(flux.WU),
		MeanVMomentumFlux: nanMean(flux.WV),
		MeanHeatFlux:      nanMean(flux.WT),
		MeanTemperature:   means[temp],
	}
	d.FrictionVelocity = math.Pow(d.MeanUMomentumFlux*d.MeanUMomentumFlux+
		d.MeanVMomentumFlux*d.MeanVMomentumFlux, 0.25)
	d.ObukhovLength = obukhovLength(d.FrictionVelocity, d.MeanTemperature, d.MeanHeatFlux)
	d.FluxRichardson, d.WindGradient = fluxRichardson(d.MeanUMomentumFlux, d.MeanTemperature,
		d.MeanHeatFlux, d.FrictionVelocity, height)
	return flux, d, nil
}

// obukhovLength is the Monin-Obukhov stability length scale.
func obukhovLength(uStar, meanTemp, meanHeatFlux float64) float64 {
	return -math.Pow(uStar, 3) * meanTemp / (units.VonKarman * units.Gravity * meanHeatFlux)
}

// fluxRichardson returns the flux Richardson number together with the
// log-law vertical wind gradient estimate u*/(kappa z) it is based on.
func fluxRichardson(meanUMomFlux, meanTemp, meanHeatFlux, uStar, height float64) (rif, gradient float64) {
	gradient = uStar / (units.VonKarman * height)
	rif = (units.Gravity / meanTemp) * meanHeatFlux / (meanUMomFlux * gradient)
	return rif, gradient
}
