package trackers

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Series is a named sequence of per-episode values
type Series struct {
	Name   string
	Values []float64
}

// WriteChart renders the series of each tracker as a line chart over
// episodes and writes all charts to a single HTML page at filename
func WriteChart(filename, title string, t ...Seriesable) error {
	page := components.NewPage()
	page.PageTitle = title

	for _, tracker := range t {
		s := tracker.Series()
		episodes := make([]string, len(s.Values))
		items := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			episodes[i] = strconv.Itoa(i + 1)
			items[i] = opts.LineData{Value: v}
		}

		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: s.Name}),
			charts.WithXAxisOpts(opts.XAxis{Name: "Episode"}),
			charts.WithYAxisOpts(opts.YAxis{Name: s.Name}),
		)
		line.SetXAxis(episodes).AddSeries(s.Name, items)
		page.AddCharts(line)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("writeChart: could not create file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("writeChart: could not render page: %w", err)
	}
	return f.Close()
}
