package sonic

import "testing"

func TestConfigValidate(t *testing.T) {
	base := func() Config {
		cfg := DefaultConfig()
		cfg.SourceDir = "/in"
		cfg.TargetDir = "/out"
		return cfg
	}

	tests := []struct {
		name    string
		mod     func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"missing source", func(c *Config) { c.SourceDir = "" }, true},
		{"missing target", func(c *Config) { c.TargetDir = "" }, true},
		{"qc without flux", func(c *Config) { c.QC = true }, true},
		{"qc with flux", func(c *Config) { c.QC = true; c.SaveFluxes = true }, false},
		{"qc with flux plot", func(c *Config) { c.QC = true; c.PlotFluxes = true }, false},
		{"direction without slow", func(c *Config) { c.Direction = true }, true},
		{"direction without align", func(c *Config) { c.Direction = true; c.SlowFile = "x"; c.Align = false }, true},
		{"direction ok", func(c *Config) { c.Direction = true; c.SlowFile = "x" }, false},
		{"bad lag fraction", func(c *Config) { c.MaxLagFraction = 1.5 }, true},
		{"zero height", func(c *Config) { c.Height = 0 }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mod(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestConfigSlowColumnDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SourceDir = "/in"
	cfg.TargetDir = "/out"
	cfg.SlowFile = "/slow.csv"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.SlowSpeedColumn != "ws_106m" || cfg.SlowDirectionColumn != "wd_106m" {
		t.Errorf("slow columns = %q/%q, want ws_106m/wd_106m",
			cfg.SlowSpeedColumn, cfg.SlowDirectionColumn)
	}
}

func TestConfigWorkerFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SourceDir = "/in"
	cfg.TargetDir = "/out"
	cfg.Workers = -3
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Workers != 1 {
		t.Errorf("workers = %d, want floor of 1", cfg.Workers)
	}
}

func TestFluxEnabled(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.FluxEnabled() {
		t.Error("flux enabled by default")
	}
	cfg.PlotFluxes = true
	if !cfg.FluxEnabled() {
		t.Error("flux plot should enable the flux stage")
	}
}
