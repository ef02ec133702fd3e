package sonic

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// WriteSeriesCSV writes a cleaned (possibly aligned) series as a timestamped
// CSV table.
func WriteSeriesCSV(path string, s *CleanedSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"time"}, s.Names()...)
	if err := w.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for i, t := range s.Times() {
		record[0] = t.Format(summaryTimeLayout + ".999999999")
		for j, name := range s.Names() {
			xs, _ := s.Channel(name)
			record[j+1] = strconv.FormatFloat(xs[i], 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteAutocorrCSV writes an autocorrelation table indexed by lag seconds.
func WriteAutocorrCSV(path string, table *AutocorrTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, 0, len(table.Channels)+1)
	header = append(header, "lag")
	for _, name := range table.Channels {
		header = append(header, "R_"+name)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for i, lag := range table.Lags {
		record[0] = strconv.FormatFloat(lag, 'g', -1, 64)
		for j, name := range table.Channels {
			record[j+1] = strconv.FormatFloat(table.Values[name][i], 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteFluxCSV writes the per-timestamp eddy flux series.
func WriteFluxCSV(path string, flux *FluxSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "wu", "wv", "wt"}); err != nil {
		return err
	}
	for i, t := range flux.Times {
		record := []string{
			t.Format(summaryTimeLayout + ".999999999"),
			strconv.FormatFloat(flux.WU[i], 'g', -1, 64),
			strconv.FormatFloat(flux.WV[i], 'g', -1, 64),
			strconv.FormatFloat(flux.WT[i], 'g', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
