package sonic

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/windfield-data/sonic.report/internal/logging"
)

// BatchResult reports a finished batch run. Rows arrive in completion
// order, not task order; consumers sort by the embedded start time when
// order matters.
type BatchResult struct {
	RunID       string
	SummaryPath string
	Rows        []SummaryRow
	Discovered  int
	Completed   int
	Skipped     int
}

// Batch discovers window files, fans them out across a fixed worker pool
// and funnels every resulting summary row through a single writer that
// exclusively owns the summary file.
type Batch struct {
	cfg      *Config
	log      logging.Logger
	plotter  Plotter
	reporter Reporter
}

// NewBatch builds a batch orchestrator. plotter and reporter may be nil.
func NewBatch(cfg *Config, log logging.Logger, plotter Plotter, reporter Reporter) *Batch {
	return &Batch{cfg: cfg, log: log, plotter: plotter, reporter: reporter}
}

type task struct {
	id   int
	path string
}

// Run executes the batch. Batch-level failures (missing source directory,
// unreadable reference files) return before any task is dispatched; a
// failed window is logged and skipped, never retried.
func (b *Batch) Run() (*BatchResult, error) {
	cfg := b.cfg

	info, err := os.Stat(cfg.SourceDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("source directory %s not found", cfg.SourceDir)
	}
	if err := os.MkdirAll(cfg.TargetDir, 0755); err != nil {
		return nil, fmt.Errorf("create target directory: %w", err)
	}

	var match, slow *ReferenceData
	if cfg.MatchFile != "" {
		match, err = LoadReference(cfg.MatchFile, []string{ColShearExponent, ColBulkRi, ColLapseRate})
		if err != nil {
			return nil, err
		}
	}
	if cfg.SlowFile != "" {
		slow, err = LoadReference(cfg.SlowFile, []string{cfg.SlowSpeedColumn, cfg.SlowDirectionColumn})
		if err != nil {
			return nil, err
		}
	}

	files, err := discoverWindows(cfg.SourceDir)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		RunID:       uuid.New().String(),
		SummaryPath: filepath.Join(cfg.TargetDir, "summary.csv"),
		Discovered:  len(files),
	}
	b.log.Log(fmt.Sprintf("Beginning analysis of %s (run %s, %d windows, %d workers)",
		cfg.SourceDir, result.RunID, len(files), cfg.Workers), true)

	// Header goes out once, before dispatch; its column set is frozen for
	// the whole run.
	summary, err := os.Create(result.SummaryPath)
	if err != nil {
		return nil, fmt.Errorf("create summary file: %w", err)
	}
	defer summary.Close()
	if _, err := fmt.Fprintln(summary, strings.Join(SummaryHeader(cfg), ",")); err != nil {
		return nil, fmt.Errorf("write summary header: %w", err)
	}
	b.log.Log(fmt.Sprintf("Saving summary information to %s", result.SummaryPath), false)

	analyzer := NewAnalyzer(cfg, match, slow, b.plotter, b.reporter)

	tasks := make(chan task)
	rows := make(chan SummaryRow)
	var wg sync.WaitGroup
	var skipped sync.Map

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			wlog := b.log.Sublogger(fmt.Sprintf("worker-%d", workerID))
			for t := range tasks {
				row, err := analyzer.AnalyzeFile(t.path, t.id, wlog)
				if err != nil {
					wlog.Log(fmt.Sprintf("Skipping window %s: %v", filepath.Base(t.path), err), true)
					skipped.Store(t.id, err)
					continue
				}
				rows <- row
			}
		}(w)
	}

	go func() {
		for i, path := range files {
			tasks <- task{id: i, path: path}
		}
		close(tasks)
		wg.Wait()
		close(rows)
	}()

	// Single writer: this goroutine is the only one touching the summary
	// file after the header.
	if err := collectRows(summary, cfg, rows, result); err != nil {
		return nil, err
	}
	result.Completed = len(result.Rows)
	skipped.Range(func(_, _ any) bool {
		result.Skipped++
		return true
	})

	b.log.Log(fmt.Sprintf("COMPLETED: %d of %d windows summarised, %d skipped",
		result.Completed, result.Discovered, result.Skipped), true)
	return result, nil
}

// collectRows appends every row to the summary writer. The channel is
// always drained to completion, even after a write failure, so workers
// sending on it are never left blocked; the first write error is returned
// once the channel closes.
func collectRows(w io.Writer, cfg *Config, rows <-chan SummaryRow, result *BatchResult) error {
	var writeErr error
	for row := range rows {
		if writeErr != nil {
			continue
		}
		if _, err := fmt.Fprintln(w, row.Line(cfg)); err != nil {
			writeErr = fmt.Errorf("append summary row: %w", err)
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return writeErr
}

// discoverWindows lists the candidate window files in sorted order.
func discoverWindows(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
