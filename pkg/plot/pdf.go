package plot

import (
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"
)

// Page geometry of the PDF report: 2 rows of 3 tiles on a 12x6 inch page.
const (
	pageRows   = 2
	pageCols   = 3
	pageWidth  = 12 * vg.Inch
	pageHeight = 6 * vg.Inch
)

func gonumPlot(p Panel) (*plot.Plot, error) {
	plt := plot.New()
	plt.Title.Text = p.Title
	plt.X.Label.Text = p.XLabel
	plt.Y.Label.Text = p.YLabel
	plt.Add(plotter.NewGrid())

	for i, s := range p.Series {
		if len(s.X) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.X))
		for j := range s.X {
			xys[j].X = s.X[j]
			xys[j].Y = s.Y[j]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: %s", p.Title, s.Name)
		}
		line.Color = plotutil.Color(i)
		plt.Add(line)
		plt.Legend.Add(s.Name, line)
	}
	plt.Legend.Top = true

	if p.LogX && plt.X.Min > 0 {
		plt.X.Scale = plot.LogScale{}
		plt.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if p.XRange != nil {
		plt.X.Min, plt.X.Max = p.XRange[0], p.XRange[1]
	}
	return plt, nil
}

// WritePDF draws the panels as tiles, pageRows x pageCols per page.
func WritePDF(w io.Writer, panels []Panel) error {
	if len(panels) == 0 {
		return ErrEmpty
	}
	c := vgpdf.New(pageWidth, pageHeight)
	tiles := draw.Tiles{
		Rows:      pageRows,
		Cols:      pageCols,
		PadX:      4 * vg.Millimeter,
		PadY:      4 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}

	perPage := pageRows * pageCols
	for start := 0; start < len(panels); start += perPage {
		if start > 0 {
			c.NextPage()
		}

		grid := make([][]*plot.Plot, pageRows)
		for r := range grid {
			grid[r] = make([]*plot.Plot, pageCols)
		}
		for i := start; i < len(panels) && i < start+perPage; i++ {
			plt, err := gonumPlot(panels[i])
			if err != nil {
				return err
			}
			k := i - start
			grid[k/pageCols][k%pageCols] = plt
		}

		canvases := plot.Align(grid, tiles, draw.New(c))
		for r := range grid {
			for col, plt := range grid[r] {
				if plt != nil {
					plt.Draw(canvases[r][col])
				}
			}
		}
	}

	if _, err := c.WriteTo(w); err != nil {
		return errors.Wrap(err, "write pdf")
	}
	return nil
}
