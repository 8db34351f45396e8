// Package plot renders learning curves of experiments as HTML charts
package plot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"
)

// Series is a named sequence of per-episode values
type Series struct {
	Name   string
	Values []float64
}

// Smooth returns the moving average of values over a trailing window.
// Early values are averaged over the values seen so far.
func Smooth(values []float64, window int) []float64 {
	if window <= 1 {
		return append([]float64(nil), values...)
	}

	smoothed := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		smoothed[i] = stat.Mean(values[start:i+1], nil)
	}
	return smoothed
}

// Lines writes an HTML line chart of each Series to w, one point per
// episode. Each Series is smoothed over window episodes.
func Lines(w io.Writer, title string, window int, series ...Series) error {
	if len(series) == 0 {
		return fmt.Errorf("lines: no series to plot")
	}

	episodes := 0
	for _, s := range series {
		if len(s.Values) > episodes {
			episodes = len(s.Values)
		}
	}
	x := make([]string, episodes)
	for i := range x {
		x[i] = fmt.Sprint(i)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)
	line.SetXAxis(x)

	for _, s := range series {
		values := Smooth(s.Values, window)
		items := make([]opts.LineData, len(values))
		for i, v := range values {
			items[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("lines: %w", err)
	}
	return nil
}
