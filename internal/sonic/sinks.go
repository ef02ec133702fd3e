package sonic

// Plotter renders plot artifacts for one window. Implementations own the
// rendering backend; the analyzer only supplies computed data and a
// destination path. A nil Plotter disables plotting.
type Plotter interface {
	PlotSeries(fast, slow *CleanedSeries, channels []string, title, path string) error
	PlotAutocorrs(table *AutocorrTable, threshold float64, title, path string) error
	PlotFluxes(flux *FluxSeries, title, path string) error
}

// ScaleReport carries everything the integral-scale text report shows.
type ScaleReport struct {
	Scales   []IntegralScale
	Warned   bool
	Aligned  bool
	Interval string
	RiLine   string
	Order    []string
}

// FluxReport carries everything the flux text report shows.
type FluxReport struct {
	Derived   DerivedParams
	RiLine    string
	AlphaLine string
}

// Reporter writes the human-readable per-window text reports. A nil
// Reporter disables them.
type Reporter interface {
	WriteScaleReport(path string, r ScaleReport) error
	WriteFluxReport(path string, r FluxReport) error
}
