package sonic

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStabilityClass(t *testing.T) {
	tests := []struct {
		ri   float64
		want string
	}{
		{-0.5, "unstable"},
		{-0.1, "neutral"},
		{0.0, "neutral"},
		{0.1, "stable"},
		{0.2, "stable"},
		{0.25, "strongly stable"},
		{1.0, "strongly stable"},
	}
	for _, tc := range tests {
		if got := StabilityClass(tc.ri); got != tc.want {
			t.Errorf("StabilityClass(%v) = %q, want %q", tc.ri, got, tc.want)
		}
	}
}

func TestMatchStabilityDisagreement(t *testing.T) {
	// Mean and median straddle the -0.1 boundary: both classes reported.
	got := MatchStability(MatchedStat{Mean: -0.15, Median: -0.05})
	if got != "unstable/neutral" {
		t.Errorf("MatchStability = %q, want \"unstable/neutral\"", got)
	}

	if got := MatchStability(MatchedStat{Mean: 0.05, Median: 0.02}); got != "neutral" {
		t.Errorf("agreeing classes = %q, want \"neutral\"", got)
	}
}

func writeReferenceFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "match.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadReferenceAndMatch(t *testing.T) {
	raw := `time,alpha,ri,vpt_lapse_env
2025-06-01 12:10:00,0.2,0.05,0.01
bad-timestamp,9.9,9.9,9.9
2025-06-01 12:00:00,0.1,-0.2,0.01
2025-06-01 12:20:00,0.3,not-a-number,0.02
2025-06-01 13:00:00,0.9,0.9,0.09
`
	path := writeReferenceFile(t, raw)

	ref, err := LoadReference(path, []string{ColShearExponent, ColBulkRi, ColLapseRate})
	if err != nil {
		t.Fatalf("LoadReference: %v", err)
	}
	if ref.Len() != 4 {
		t.Fatalf("expected 4 rows (bad timestamp dropped), got %d", ref.Len())
	}

	// Sorted: the 12:00 row comes first despite file order.
	if !ref.Times()[0].Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("first row = %v, want 12:00", ref.Times()[0])
	}

	window := ref.SliceWindow(
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC))
	if window.Len() != 3 {
		t.Fatalf("window rows = %d, want 3", window.Len())
	}

	alpha, err := window.MatchColumn(ColShearExponent)
	if err != nil {
		t.Fatalf("MatchColumn(alpha): %v", err)
	}
	if !almostEqual(alpha.Mean, 0.2, 1e-12) {
		t.Errorf("alpha mean = %v, want 0.2", alpha.Mean)
	}
	if !almostEqual(alpha.Median, 0.2, 1e-12) {
		t.Errorf("alpha median = %v, want 0.2", alpha.Median)
	}

	// The unparsable ri cell became NaN and is excluded from the stats.
	ri, err := window.MatchColumn(ColBulkRi)
	if err != nil {
		t.Fatalf("MatchColumn(ri): %v", err)
	}
	if !almostEqual(ri.Mean, (-0.2+0.05)/2, 1e-12) {
		t.Errorf("ri mean = %v, want %v", ri.Mean, (-0.2+0.05)/2)
	}
}

func TestLoadReferenceMissingColumn(t *testing.T) {
	path := writeReferenceFile(t, "time,alpha\n2025-06-01 12:00:00,0.1\n")
	if _, err := LoadReference(path, []string{ColBulkRi}); err == nil {
		t.Fatal("expected error for missing reference column")
	}
}

func TestMatchColumnEmptyWindow(t *testing.T) {
	path := writeReferenceFile(t, "time,ri\n2025-06-01 12:00:00,0.1\n")
	ref, err := LoadReference(path, []string{ColBulkRi})
	if err != nil {
		t.Fatalf("LoadReference: %v", err)
	}
	empty := ref.SliceWindow(
		time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC))

	st, err := empty.MatchColumn(ColBulkRi)
	if err != nil {
		t.Fatalf("MatchColumn on empty window: %v", err)
	}
	if !math.IsNaN(st.Mean) || !math.IsNaN(st.Median) {
		t.Errorf("empty window stats = %+v, want NaN", st)
	}
}

func TestSlowWindSeries(t *testing.T) {
	raw := `time,ws_106m,wd_106m
2025-06-01 12:00:00,10,90
2025-06-01 12:10:00,10,180
`
	path := writeReferenceFile(t, raw)
	ref, err := LoadReference(path, []string{"ws_106m", "wd_106m"})
	if err != nil {
		t.Fatalf("LoadReference: %v", err)
	}

	s, err := ref.SlowWindSeries("ws_106m", "wd_106m")
	if err != nil {
		t.Fatalf("SlowWindSeries: %v", err)
	}
	u, _ := s.Channel("Ux")
	v, _ := s.Channel("Uy")

	// Wind from 90 degrees blows toward the west: u = -10, v ~ 0.
	if !almostEqual(u[0], -10, 1e-9) || !almostEqual(v[0], 0, 1e-9) {
		t.Errorf("easterly components = (%v, %v), want (-10, 0)", u[0], v[0])
	}
	// Wind from 180 degrees blows toward the north: u ~ 0, v = 10.
	if !almostEqual(u[1], 0, 1e-9) || !almostEqual(v[1], 10, 1e-9) {
		t.Errorf("southerly components = (%v, %v), want (0, 10)", u[1], v[1])
	}
}
