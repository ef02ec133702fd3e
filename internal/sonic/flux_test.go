package sonic

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestComputeFluxesHandWorked(t *testing.T) {
	// Four samples chosen so the Reynolds decomposition is easy to carry
	// through by hand. Means: u=2, v=0, w=0, T=300.
	u := []float64{1, 3, 1, 3}
	v := []float64{-1, 1, 1, -1}
	w := []float64{-0.5, 0.5, -0.5, 0.5}
	ts := []float64{299, 301, 301, 299}
	s := makeSeries(t, 100*time.Millisecond, map[string][]float64{
		"Ux": u, "Uy": v, "Uz": w, "Ts": ts,
	}, []string{"Ux", "Uy", "Uz", "Ts"})

	flux, d, err := ComputeFluxes(s, DefaultWindColumns, DefaultTempColumn, 100)
	if err != nil {
		t.Fatalf("ComputeFluxes: %v", err)
	}
	if flux.Len() != 4 {
		t.Fatalf("flux length = %d, want 4", flux.Len())
	}

	// w'u' per sample: (-.5)(-1), (.5)(1), (-.5)(-1), (.5)(1) = all 0.5.
	for i, wu := range flux.WU {
		if !almostEqual(wu, 0.5, 1e-12) {
			t.Errorf("WU[%d] = %v, want 0.5", i, wu)
		}
	}
	if !almostEqual(d.MeanUMomentumFlux, 0.5, 1e-12) {
		t.Errorf("mean w'u' = %v, want 0.5", d.MeanUMomentumFlux)
	}

	// w'v' per sample: (-.5)(-1), (.5)(1), (-.5)(1), (.5)(-1) = .5,.5,-.5,-.5.
	if !almostEqual(d.MeanVMomentumFlux, 0, 1e-12) {
		t.Errorf("mean w'v' = %v, want 0", d.MeanVMomentumFlux)
	}

	// w'T' per sample: (-.5)(-1), (.5)(1), (-.5)(1), (.5)(-1) = .5,.5,-.5,-.5.
	if !almostEqual(d.MeanHeatFlux, 0, 1e-12) {
		t.Errorf("mean w'T' = %v, want 0", d.MeanHeatFlux)
	}

	// u* = (0.5^2 + 0^2)^(1/4) = sqrt(0.5).
	if want := math.Sqrt(0.5); !almostEqual(d.FrictionVelocity, want, 1e-12) {
		t.Errorf("u* = %v, want %v", d.FrictionVelocity, want)
	}

	// dU/dz = u* / (kappa * z).
	if want := math.Sqrt(0.5) / (0.4 * 100); !almostEqual(d.WindGradient, want, 1e-12) {
		t.Errorf("wind gradient = %v, want %v", d.WindGradient, want)
	}

	if !almostEqual(d.MeanTemperature, 300, 1e-12) {
		t.Errorf("mean temperature = %v, want 300", d.MeanTemperature)
	}
}

func TestObukhovLengthSign(t *testing.T) {
	// Upward heat flux (unstable) gives negative L; downward gives positive.
	if l := obukhovLength(0.5, 300, 0.1); l >= 0 {
		t.Errorf("unstable L = %v, want negative", l)
	}
	if l := obukhovLength(0.5, 300, -0.1); l <= 0 {
		t.Errorf("stable L = %v, want positive", l)
	}

	// Magnitude check: L = -u*^3 T / (kappa g wT).
	want := -math.Pow(0.5, 3) * 300 / (0.4 * 9.81 * 0.1)
	if l := obukhovLength(0.5, 300, 0.1); !almostEqual(l, want, 1e-9) {
		t.Errorf("L = %v, want %v", l, want)
	}
}

func TestComputeFluxesInsufficientSamples(t *testing.T) {
	s := makeSeries(t, time.Second, map[string][]float64{
		"Ux": {1, 2, 3},
		"Uy": {1, 2, 3},
		"Uz": {1, 2, 3},
		"Ts": {300, math.NaN(), math.NaN()},
	}, []string{"Ux", "Uy", "Uz", "Ts"})

	_, _, err := ComputeFluxes(s, DefaultWindColumns, DefaultTempColumn, 100)
	var fluxErr *FluxError
	if !errors.As(err, &fluxErr) {
		t.Fatalf("expected FluxError, got %v", err)
	}
	if fluxErr.Channel != "Ts" {
		t.Errorf("failing channel = %s, want Ts", fluxErr.Channel)
	}
}

func TestComputeFluxesMissingChannel(t *testing.T) {
	s := makeSeries(t, time.Second, map[string][]float64{
		"Ux": {1, 2}, "Uy": {1, 2}, "Uz": {1, 2},
	}, []string{"Ux", "Uy", "Uz"})

	_, _, err := ComputeFluxes(s, DefaultWindColumns, DefaultTempColumn, 100)
	var fluxErr *FluxError
	if !errors.As(err, &fluxErr) {
		t.Fatalf("expected FluxError for missing channel, got %v", err)
	}
}
