package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/windfield-data/sonic.report/internal/sonic"
)

func TestWriteScaleReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "integralscales_0.txt")
	r := sonic.ScaleReport{
		Scales: []sonic.IntegralScale{
			{Channel: "Uz", TimeScale: 0.5, LengthScale: 0.1, Mean: 0.2},
			{Channel: "Ux", TimeScale: 12.345, LengthScale: 61.725, Mean: 5.0},
		},
		Warned:   true,
		Aligned:  true,
		Interval: "Time interval: 2025-06-01 12:00:00 to 2025-06-01 12:30:00",
		RiLine:   "Bulk Ri: mean 0.0500, median 0.0500 (neutral)",
		Order:    []string{"Ux", "Uy", "Uz"},
	}

	if err := NewTextReporter().WriteScaleReport(path, r); err != nil {
		t.Fatalf("WriteScaleReport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"Warning - at least one variable's autocorrelation did not fall below the threshold.",
		"Data geometrically aligned",
		"Time interval: 2025-06-01 12:00:00",
		"Bulk Ri: mean 0.0500",
		"Ux: Time scale = 12.345 s, Length scale = 61.725 m (Mean = 5.000 m/s)",
		"Uz: Time scale = 0.500 s",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}

	// Channels follow the requested order, not the slice order.
	if strings.Index(text, "Ux: Time scale") > strings.Index(text, "Uz: Time scale") {
		t.Error("channels not reported in requested order")
	}
}

func TestWriteFluxReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flux_calculations_0.txt")
	r := sonic.FluxReport{
		Derived: sonic.DerivedParams{
			MeanUMomentumFlux: -0.25,
			MeanVMomentumFlux: 0.01,
			MeanHeatFlux:      0.05,
			FrictionVelocity:  0.5,
			ObukhovLength:     -120.5,
			FluxRichardson:    -0.08,
			WindGradient:      0.0118,
		},
		RiLine:    "Bulk Ri: mean -0.0500, median -0.0500 (neutral)",
		AlphaLine: "Wind shear exponent alpha: mean 0.2000, median 0.2000",
	}

	if err := NewTextReporter().WriteFluxReport(path, r); err != nil {
		t.Fatalf("WriteFluxReport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"Bulk Ri: mean -0.0500",
		"Wind shear exponent alpha",
		"Mean eddy u momentum flux: -0.2500",
		"Mean eddy v momentum flux: 0.0100",
		"Mean eddy heat flux: 0.0500",
		"Friction velocity: 0.5000",
		"Obukhov length: -120.5000",
		"Flux Ri: -0.0800",
		"Vertical wind gradient: 0.0118",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestWriteOverview(t *testing.T) {
	rows := make([]sonic.SummaryRow, 0, 3)
	for i, stability := range []string{"neutral", "neutral", "stable"} {
		row := sonic.NewSummaryRow()
		row.Start = time.Date(2025, 6, 1, 12+i, 0, 0, 0, time.UTC)
		row.End = row.Start.Add(30 * time.Minute)
		row.Stability = stability
		row.RibMean = 0.05 * float64(i)
		row.TKE = 1.0 + float64(i)
		row.HasMatch = true
		rows = append(rows, row)
	}

	path := filepath.Join(t.TempDir(), "overview.html")
	if err := WriteOverview(path, rows); err != nil {
		t.Fatalf("WriteOverview: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read overview: %v", err)
	}
	text := string(data)
	for _, want := range []string{"Stability class frequency", "Bulk Richardson number", "Turbulence kinetic energy"} {
		if !strings.Contains(text, want) {
			t.Errorf("overview missing %q", want)
		}
	}
}

func TestWriteOverviewEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overview.html")
	if err := WriteOverview(path, nil); err == nil {
		t.Fatal("expected error for empty row set")
	}
}
