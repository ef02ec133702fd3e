package units

import (
	"math"
	"testing"

	"github.com/windfield-data/sonic.report/internal/testutil"
)

func TestDegRadRoundTrip(t *testing.T) {
	for _, deg := range []float64{-180, -90, 0, 41.91, 90, 270, 360} {
		got := RadToDeg(DegToRad(deg))
		if math.Abs(got-deg) > 1e-12 {
			t.Errorf("round trip for %v deg = %v", deg, got)
		}
	}
}

func TestCelsiusToKelvin(t *testing.T) {
	if got := CelsiusToKelvin(0); got != 273.15 {
		t.Errorf("CelsiusToKelvin(0) = %v, want 273.15", got)
	}
	if got := CelsiusToKelvin(-273.15); got != 0 {
		t.Errorf("CelsiusToKelvin(-273.15) = %v, want 0", got)
	}
}

func TestCoriolis(t *testing.T) {
	// Zero at the equator, maximal at the pole.
	if got := Coriolis(0); math.Abs(got) > 1e-18 {
		t.Errorf("Coriolis(0) = %v, want 0", got)
	}
	pole := Coriolis(90)
	if math.Abs(pole-2*EarthRotationRate) > 1e-12 {
		t.Errorf("Coriolis(90) = %v, want %v", pole, 2*EarthRotationRate)
	}
	if Coriolis(-45) >= 0 {
		t.Errorf("Coriolis should be negative in the southern hemisphere")
	}
}

func TestWindComponents(t *testing.T) {
	tests := []struct {
		name      string
		speed     float64
		direction float64
		wantU     float64
		wantV     float64
	}{
		{"northerly blows south", 10, 0, 0, -10},
		{"easterly blows west", 5, 90, -5, 0},
		{"southerly blows north", 2, 180, 0, 2},
		{"westerly blows east", 8, 270, 8, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, v := WindComponents(tt.speed, tt.direction)
			testutil.AssertClose(t, u, tt.wantU, 1e-12)
			testutil.AssertClose(t, v, tt.wantV, 1e-12)
		})
	}
}
