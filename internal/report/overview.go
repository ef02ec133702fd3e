package report

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/windfield-data/sonic.report/internal/sonic"
)

// WriteOverview renders a batch-level HTML page from the summary rows: a bar
// chart of stability-class counts and scatters of bulk Ri and TKE across the
// window start times. Rows with no matched reference data contribute only to
// the TKE scatter.
func WriteOverview(path string, rows []sonic.SummaryRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no summary rows to plot")
	}

	page := components.NewPage()
	page.AddCharts(stabilityBar(rows))

	if sc := riScatter(rows); sc != nil {
		page.AddCharts(sc)
	}
	page.AddCharts(tkeScatter(rows))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return page.Render(f)
}

func stabilityBar(rows []sonic.SummaryRow) *charts.Bar {
	counts := make(map[string]int)
	for _, r := range rows {
		cls := r.Stability
		if cls == "" {
			cls = "unknown"
		}
		counts[cls]++
	}
	classes := make([]string, 0, len(counts))
	for cls := range counts {
		classes = append(classes, cls)
	}
	sort.Strings(classes)

	y := make([]opts.BarData, 0, len(classes))
	for _, cls := range classes {
		y = append(y, opts.BarData{Value: counts[cls]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Batch Overview", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Stability class frequency", Subtitle: fmt.Sprintf("%d windows", len(rows))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(classes).
		AddSeries("windows", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func riScatter(rows []sonic.SummaryRow) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(rows))
	for _, r := range rows {
		if !r.HasMatch || math.IsNaN(r.RibMean) {
			continue
		}
		data = append(data, opts.ScatterData{Value: []interface{}{r.Start.Format("2006-01-02 15:04:05"), r.RibMean}})
	}
	if len(data) == 0 {
		return nil
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Bulk Richardson number"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "window start"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Ri"}),
	)
	scatter.AddSeries("Ri (mean)", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return scatter
}

func tkeScatter(rows []sonic.SummaryRow) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(rows))
	for _, r := range rows {
		if math.IsNaN(r.TKE) {
			continue
		}
		data = append(data, opts.ScatterData{Value: []interface{}{r.Start.Format("2006-01-02 15:04:05"), r.TKE}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Turbulence kinetic energy"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "window start"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "TKE (m2/s2)"}),
	)
	scatter.AddSeries("TKE", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return scatter
}
