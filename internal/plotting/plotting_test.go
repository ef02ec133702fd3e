package plotting

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/windfield-data/sonic.report/internal/sonic"
)

func testSeries(t *testing.T, n int) *sonic.CleanedSeries {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	times := make([]time.Time, n)
	u := make([]float64, n)
	v := make([]float64, n)
	w := make([]float64, n)
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		times[i] = start.Add(time.Duration(i) * 100 * time.Millisecond)
		u[i] = 5 + rng.NormFloat64()
		v[i] = rng.NormFloat64()
		w[i] = 0.3 * rng.NormFloat64()
	}
	if n > 3 {
		u[3] = math.NaN()
	}
	s, err := sonic.NewSeries(times, map[string][]float64{
		"Ux": u, "Uy": v, "Uz": w,
	}, []string{"Ux", "Uy", "Uz"})
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	return s
}

func assertFileNonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}

func TestPlotSeries(t *testing.T) {
	s := testSeries(t, 100)
	path := filepath.Join(t.TempDir(), "data.png")

	p := NewPNGPlotter()
	if err := p.PlotSeries(s, nil, []string{"Ux", "Uy", "Uz"}, "Window Data", path); err != nil {
		t.Fatalf("PlotSeries: %v", err)
	}
	assertFileNonEmpty(t, path)
}

func TestPlotSeriesWithSlowOverlay(t *testing.T) {
	s := testSeries(t, 100)
	slow := testSeries(t, 3)
	path := filepath.Join(t.TempDir(), "data.png")

	p := NewPNGPlotter()
	if err := p.PlotSeries(s, slow, []string{"Ux", "Uy"}, "Window Data", path); err != nil {
		t.Fatalf("PlotSeries with overlay: %v", err)
	}
	assertFileNonEmpty(t, path)
}

func TestPlotAutocorrs(t *testing.T) {
	table := &sonic.AutocorrTable{
		Lags:     []float64{0, 0.1, 0.2, 0.3},
		Channels: []string{"Ux"},
		Values:   map[string][]float64{"Ux": {1, 0.7, 0.4, 0.1}},
	}
	path := filepath.Join(t.TempDir(), "autocorrs.png")

	p := NewPNGPlotter()
	if err := p.PlotAutocorrs(table, 0.25, "Autocorrelations", path); err != nil {
		t.Fatalf("PlotAutocorrs: %v", err)
	}
	assertFileNonEmpty(t, path)
}

func TestPlotFluxes(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	flux := &sonic.FluxSeries{
		Times: []time.Time{start, start.Add(100 * time.Millisecond), start.Add(200 * time.Millisecond)},
		WU:    []float64{0.5, -0.2, 0.3},
		WV:    []float64{0.1, 0.0, -0.1},
		WT:    []float64{0.01, 0.02, math.NaN()},
	}
	path := filepath.Join(t.TempDir(), "fluxes.png")

	p := NewPNGPlotter()
	if err := p.PlotFluxes(flux, "Fluxes", path); err != nil {
		t.Fatalf("PlotFluxes: %v", err)
	}
	assertFileNonEmpty(t, path)
}
