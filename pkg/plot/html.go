package plot

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
)

func lineChart(p Panel) *charts.Line {
	xType := "value"
	if p.LogX {
		xType = "log"
	}
	xAxis := opts.XAxis{Name: p.XLabel, Type: xType}
	if p.XRange != nil {
		xAxis.Min, xAxis.Max = p.XRange[0], p.XRange[1]
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "600px",
			Height: "400px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: p.Title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  p.YLabel,
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			XAxisIndex: []int{0},
		}),
	)

	for _, s := range p.Series {
		data := make([]opts.LineData, len(s.X))
		for i := range s.X {
			data[i] = opts.LineData{Value: []interface{}{s.X[i], s.Y[i]}}
		}
		line.AddSeries(s.Name, data)
	}
	return line
}

// WriteHTML renders the panels as a page of interactive line charts.
func WriteHTML(w io.Writer, panels []Panel) error {
	if len(panels) == 0 {
		return ErrEmpty
	}
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	for _, p := range panels {
		page.AddCharts(lineChart(p))
	}
	if err := page.Render(w); err != nil {
		return errors.Wrap(err, "render html")
	}
	return nil
}
