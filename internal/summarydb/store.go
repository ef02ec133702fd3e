// Package summarydb persists batch summary rows to a local sqlite database
// so that runs can be compared after the fact.
package summarydb

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/windfield-data/sonic.report/internal/sonic"
)

// Store wraps the summary database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the summary database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open summary db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			source_dir TEXT,
			target_dir TEXT,
			windows INTEGER,
			skipped INTEGER,
			created TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS windows (
			run_id TEXT,
			file TEXT,
			start_time TIMESTAMP,
			end_time TIMESTAMP,
			mean_u DOUBLE, mean_v DOUBLE, mean_w DOUBLE,
			rms DOUBLE, ti DOUBLE, tke DOUBLE,
			rib_mean DOUBLE, rib_median DOUBLE,
			stability TEXT,
			flux_ri DOUBLE, wu DOUBLE, wv DOUBLE, wt DOUBLE,
			obukhov_l DOUBLE, zeta DOUBLE, ustar DOUBLE,
			length_scale DOUBLE,
			delta_dir DOUBLE,
			rms_change DOUBLE, ss_dev DOUBLE, itc_dev DOUBLE,
			sflag INTEGER, urflag INTEGER,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create summary tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// RecordRun stores the batch result and its rows in one transaction.
func (s *Store) RecordRun(res *sonic.BatchResult, sourceDir, targetDir string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO runs (run_id, source_dir, target_dir, windows, skipped) VALUES (?, ?, ?, ?, ?)",
		res.RunID, sourceDir, targetDir, res.Completed, res.Skipped)
	if err != nil {
		return fmt.Errorf("record run %s: %w", res.RunID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO windows (
		run_id, file, start_time, end_time,
		mean_u, mean_v, mean_w,
		rms, ti, tke,
		rib_mean, rib_median, stability,
		flux_ri, wu, wv, wt, obukhov_l, zeta, ustar,
		length_scale, delta_dir,
		rms_change, ss_dev, itc_dev, sflag, urflag
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range res.Rows {
		r := &res.Rows[i]
		var sflag, urflag interface{}
		if r.HasQC {
			sflag, urflag = r.CombinedFlag, r.StationarityFlag
		}
		_, err = stmt.Exec(
			res.RunID, r.File,
			r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339),
			f(r.MeanU), f(r.MeanV), f(r.MeanW),
			f(r.RMS), f(r.TI), f(r.TKE),
			f(r.RibMean), f(r.RibMedian), r.Stability,
			f(r.FluxRi), f(r.WU), f(r.WV), f(r.WT),
			f(r.ObukhovL), f(r.Zeta), f(r.UStar),
			f(r.LengthScale), f(r.DeltaDir),
			f(r.RMSChange), f(r.Instationarity), f(r.ITCDeviation),
			sflag, urflag)
		if err != nil {
			return fmt.Errorf("record window %s: %w", r.File, err)
		}
	}
	return tx.Commit()
}

// RunCount returns the number of recorded runs.
func (s *Store) RunCount() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}

// f maps NaN to NULL so sqlite aggregates skip missing values.
func f(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
