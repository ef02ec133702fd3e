// Command sonic-report analyses a directory of sonic anemometer window
// files: turbulence statistics, eddy fluxes, integral scales, and quality
// control flags, merged into a single summary table.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/windfield-data/sonic.report/internal/logging"
	"github.com/windfield-data/sonic.report/internal/plotting"
	"github.com/windfield-data/sonic.report/internal/report"
	"github.com/windfield-data/sonic.report/internal/sonic"
	"github.com/windfield-data/sonic.report/internal/summarydb"
)

func main() {
	cfg := sonic.DefaultConfig()

	flag.StringVar(&cfg.SourceDir, "source", "", "Directory of window CSV files to analyse (required)")
	flag.StringVar(&cfg.TargetDir, "target", "", "Directory for results (required)")
	flag.StringVar(&cfg.MatchFile, "match", "", "Reference CSV with shear exponent, bulk Ri and lapse rate")
	flag.StringVar(&cfg.SlowFile, "slow", "", "Slow met-tower CSV with wind speed and direction")
	flag.BoolVar(&cfg.Align, "align", cfg.Align, "Rotate winds into the mean-wind frame")
	flag.BoolVar(&cfg.SaveCopy, "save-data", false, "Save a copy of each (aligned) window")
	flag.BoolVar(&cfg.PlotData, "plot-data", false, "Plot wind components per window")
	flag.BoolVar(&cfg.PlotAutocorrs, "plot-autocorrs", false, "Plot autocorrelation functions per window")
	flag.BoolVar(&cfg.SaveAutocorrs, "save-autocorrs", false, "Save autocorrelation tables per window")
	flag.BoolVar(&cfg.SaveScales, "scales", false, "Compute and report integral scales")
	flag.BoolVar(&cfg.PlotFluxes, "plot-fluxes", false, "Plot instantaneous flux series per window")
	flag.BoolVar(&cfg.SaveFluxes, "fluxes", false, "Compute and report eddy fluxes")
	flag.BoolVar(&cfg.Direction, "direction", false, "Record fast/slow alignment-angle difference (needs -slow)")
	flag.BoolVar(&cfg.QC, "qc", false, "Run quality-control tests (needs -fluxes)")
	flag.Float64Var(&cfg.Height, "height", cfg.Height, "Measurement height in metres")
	flag.Float64Var(&cfg.Latitude, "latitude", cfg.Latitude, "Site latitude in degrees")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of windows analysed concurrently")
	flag.Float64Var(&cfg.MaxLagFraction, "max-lag", cfg.MaxLagFraction, "Autocorrelation lags as a fraction of window length")
	flag.Float64Var(&cfg.ScaleThreshold, "scale-threshold", cfg.ScaleThreshold, "Autocorrelation cutoff for integral scales")
	flag.StringVar(&cfg.DBPath, "db", "", "Optional sqlite database to mirror summary rows into")
	flag.BoolVar(&cfg.OverviewReport, "overview", false, "Render an HTML batch overview after the run")

	clearFirst := flag.Bool("clear", false, "Remove existing contents of the target directory first")
	yes := flag.Bool("yes", false, "Skip the -clear confirmation prompt")
	verbose := flag.Bool("v", false, "Log to the console instead of a file")
	quiet := flag.Bool("q", false, "Disable logging")
	flag.Parse()

	if cfg.SourceDir == "" || cfg.TargetDir == "" {
		fmt.Fprintln(os.Stderr, "both -source and -target are required")
		flag.Usage()
		os.Exit(2)
	}
	absolutize(&cfg.SourceDir, &cfg.TargetDir, &cfg.MatchFile, &cfg.SlowFile, &cfg.DBPath)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	if *clearFirst {
		if err := clearTarget(cfg.TargetDir, *yes); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	log, err := buildLogger(cfg.TargetDir, *verbose, *quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	batch := sonic.NewBatch(&cfg, log, plotting.NewPNGPlotter(), report.NewTextReporter())
	result, err := batch.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "batch failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.DBPath != "" {
		if err := recordRun(&cfg, result); err != nil {
			log.Log(fmt.Sprintf("Failed to record run in %s: %v", cfg.DBPath, err), true)
		}
	}
	if cfg.OverviewReport {
		path := filepath.Join(cfg.TargetDir, "overview.html")
		if err := report.WriteOverview(path, result.Rows); err != nil {
			log.Log(fmt.Sprintf("Failed to render overview: %v", err), true)
		} else {
			log.Log(fmt.Sprintf("Batch overview written to %s", path), false)
		}
	}

	fmt.Printf("Analysed %d/%d windows (%d skipped); summary at %s\n",
		result.Completed, result.Discovered, result.Skipped, result.SummaryPath)
}

func buildLogger(targetDir string, verbose, quiet bool) (logging.Logger, error) {
	switch {
	case quiet:
		return logging.NewNopLogger(), nil
	case verbose:
		return logging.NewConsoleLogger()
	default:
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return nil, err
		}
		return logging.NewFileLogger(filepath.Join(targetDir, "report.log"))
	}
}

func recordRun(cfg *sonic.Config, result *sonic.BatchResult) error {
	store, err := summarydb.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRun(result, cfg.SourceDir, cfg.TargetDir)
}

// clearTarget removes the contents of dir, asking first unless confirmed.
func clearTarget(dir string, confirmed bool) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if !confirmed {
		fmt.Printf("Remove %d entries from %s? [y/N] ", len(entries), dir)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if ans := strings.ToLower(strings.TrimSpace(line)); ans != "y" && ans != "yes" {
			return fmt.Errorf("aborted: target directory not cleared")
		}
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func absolutize(paths ...*string) {
	for _, p := range paths {
		if *p == "" {
			continue
		}
		if abs, err := filepath.Abs(*p); err == nil {
			*p = abs
		}
	}
}
