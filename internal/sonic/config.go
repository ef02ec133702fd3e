package sonic

import "fmt"

// Config is the validated configuration shared by every window task. The
// driver parses and validates it; the core only reads it.
type Config struct {
	// SourceDir holds the raw high-frequency window files.
	SourceDir string

	// TargetDir receives the summary table, log and per-window artifacts.
	TargetDir string

	// MatchFile is the labeled ten-minute summary to match windows against;
	// empty disables matching.
	MatchFile string

	// SlowFile is the raw slow-cadence wind file; empty disables it.
	SlowFile string

	// Align rotates the horizontal wind into the mean-wind frame.
	Align bool

	// Artifact toggles, one per optional output.
	SaveCopy      bool
	PlotData      bool
	PlotAutocorrs bool
	SaveAutocorrs bool
	SaveScales    bool
	PlotFluxes    bool
	SaveFluxes    bool

	// Direction reports the fast/slow alignment-angle delta. Requires
	// alignment and a slow file.
	Direction bool

	// QC enables the quality-control diagnostics. Requires flux output.
	QC bool

	// Height is the measurement height in meters.
	Height float64

	// Latitude is the site latitude in degrees.
	Latitude float64

	// Workers sizes the worker pool; values below 1 mean serial.
	Workers int

	// MaxLagFraction bounds the autocorrelation table length as a fraction
	// of the window length.
	MaxLagFraction float64

	// ScaleThreshold is the autocorrelation level that ends the integral
	// scale integration.
	ScaleThreshold float64

	// SpacingTolerance is passed through to the loader.
	SpacingTolerance float64

	// Channel roles.
	WindColumns   [3]string
	TempColumn    string
	KelvinColumns []string
	IgnoreColumns []string

	// Slow-file column names for the wind at measurement height, e.g.
	// ws_106m / wd_106m.
	SlowSpeedColumn     string
	SlowDirectionColumn string

	// DBPath, when set, mirrors summary rows into a sqlite database.
	DBPath string

	// OverviewReport renders the batch overview HTML after the run.
	OverviewReport bool
}

// DefaultConfig returns a Config with the standard channel roles and
// numerical defaults filled in.
func DefaultConfig() Config {
	return Config{
		Align:            true,
		Height:           106,
		Latitude:         41.91,
		Workers:          1,
		MaxLagFraction:   0.5,
		ScaleThreshold:   0.25,
		SpacingTolerance: 0.25,
		WindColumns:      DefaultWindColumns,
		TempColumn:       DefaultTempColumn,
		KelvinColumns:    DefaultKelvinColumns,
		IgnoreColumns:    DefaultIgnoreColumns,
	}
}

// FluxEnabled reports whether the flux stage runs at all.
func (c *Config) FluxEnabled() bool {
	return c.SaveFluxes || c.PlotFluxes || c.QC
}

// Validate checks cross-field invariants. QC without flux output is a
// configuration error rather than a silent downgrade.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source directory is required")
	}
	if c.TargetDir == "" {
		return fmt.Errorf("target directory is required")
	}
	if c.QC && !c.SaveFluxes && !c.PlotFluxes {
		return fmt.Errorf("quality control requires flux computation; enable flux output")
	}
	if c.Direction && (!c.Align || c.SlowFile == "") {
		return fmt.Errorf("direction delta requires alignment and a slow file")
	}
	if c.MaxLagFraction <= 0 || c.MaxLagFraction > 1 {
		return fmt.Errorf("max lag fraction must be in (0, 1], got %v", c.MaxLagFraction)
	}
	if c.Height <= 0 {
		return fmt.Errorf("measurement height must be positive, got %v", c.Height)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.SlowFile != "" {
		if c.SlowSpeedColumn == "" {
			c.SlowSpeedColumn = fmt.Sprintf("ws_%dm", int(c.Height))
		}
		if c.SlowDirectionColumn == "" {
			c.SlowDirectionColumn = fmt.Sprintf("wd_%dm", int(c.Height))
		}
	}
	return nil
}

// LoadOptions derives the loader options from the configuration.
func (c *Config) LoadOptions() LoadOptions {
	return LoadOptions{
		KelvinColumns:    c.KelvinColumns,
		IgnoreColumns:    c.IgnoreColumns,
		SpacingTolerance: c.SpacingTolerance,
	}
}
