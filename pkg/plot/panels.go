package plot

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/edp1096/gmid-sizer/pkg/analysis"
	"github.com/edp1096/gmid-sizer/pkg/database"
	"github.com/edp1096/gmid-sizer/pkg/table"
	"github.com/edp1096/gmid-sizer/pkg/util"
)

// Series is one curve of a panel.
type Series struct {
	Name string
	X, Y []float64
}

// Panel is one plot tile, independent of the output format.
type Panel struct {
	Title  string
	XLabel string
	YLabel string
	LogX   bool
	XRange *[2]float64
	Series []Series
}

// Sources are the snapshots a report is drawn from. Nil databases are
// skipped.
type Sources struct {
	Char   *database.Database
	Ver    *database.Database
	Tran   *database.Database
	Freq   *database.Database
	Mirror *database.Database

	// CMInputSpan limits the x axis of the gain vs gate panel.
	CMInputSpan [2]float64
}

// axis names a record series and the factor it is drawn with.
type axis struct {
	name  string
	scale float64
}

type panelSpec struct {
	title, xlabel, ylabel string
	x, y                  axis
	logX                  bool
	xRange                *[2]float64
}

func (s panelSpec) build(db *database.Database) (Panel, error) {
	p := Panel{Title: s.title, XLabel: s.xlabel, YLabel: s.ylabel, LogX: s.logX, XRange: s.xRange}
	for _, key := range db.SortedKeys() {
		rec, err := db.Get(key)
		if err != nil {
			return p, err
		}
		x, err := rec.Get(s.x.name)
		if err != nil {
			return p, errors.Wrapf(err, "%s %s", db.Prefix, key)
		}
		y, err := rec.Get(s.y.name)
		if err != nil {
			return p, errors.Wrapf(err, "%s %s", db.Prefix, key)
		}
		p.Series = append(p.Series, scaled(string(key), x, y, s.x.scale, s.y.scale, s.logX))
	}
	return p, nil
}

// scaled multiplies the samples and drops points that cannot be drawn.
func scaled(name string, x, y []float64, sx, sy float64, logX bool) Series {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	s := Series{Name: name, X: make([]float64, 0, n), Y: make([]float64, 0, n)}
	for i := 0; i < n; i++ {
		xv, yv := x[i]*sx, y[i]*sy
		if !drawable(xv) || !drawable(yv) || (logX && xv <= 0) {
			continue
		}
		s.X = append(s.X, xv)
		s.Y = append(s.Y, yv)
	}
	return s
}

func drawable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func raw(name string) axis {
	return axis{name, 1}
}

func uA(name string) axis {
	return axis{name, 1e6}
}

var charSpecs = []panelSpec{
	{
		title: "Transit frequency x gm/Id", xlabel: "V* [V]", ylabel: "ft*gm/Id [GHz/V]",
		x: raw(analysis.VStar), y: axis{analysis.FtGmID, 1e-9},
	},
	{
		title: "Drain current", xlabel: "V* [V]", ylabel: "Id [uA]",
		x: raw(analysis.VStar), y: uA(table.ID),
	},
	{
		title: "Transit frequency x gm/Id", xlabel: "Vod [V]", ylabel: "ft*gm/Id [GHz/V]",
		x: raw(analysis.Vod), y: axis{analysis.FtGmID, 1e-9},
	},
}

var freqSpecs = []panelSpec{
	{
		title: "Bode magnitude", xlabel: "f [Hz]", ylabel: "Gain [dB]",
		x: raw(table.Freq), y: raw(table.Gain), logX: true,
	},
	{
		title: "Bode phase", xlabel: "f [Hz]", ylabel: "Phase [deg]",
		x: raw(table.Freq), y: raw(table.Phase), logX: true,
	},
}

func verSpecs(span [2]float64) []panelSpec {
	var gateRange *[2]float64
	if span[0] < span[1] {
		gateRange = &span
	}
	return []panelSpec{
		{
			title: "Transfer characteristic", xlabel: "Vg [V]", ylabel: "Vd [V]",
			x: raw(table.Gate), y: raw(table.Drain),
		},
		{
			title: "Gain vs gate", xlabel: "Vg [V]", ylabel: "dVd/dVg",
			x: raw(table.Gate), y: raw(table.Gain), xRange: gateRange,
		},
		{
			title: "Gain vs drain", xlabel: "Vd [V]", ylabel: "dVd/dVg",
			x: raw(table.Drain), y: raw(table.Gain),
		},
	}
}

func mirrorSpecs(db *database.Database) []panelSpec {
	return []panelSpec{
		{
			title: "Output resistance", xlabel: "Vo [V]", ylabel: "ro [MOhm]",
			x: raw(table.OutputV), y: axis{analysis.Ro, 1e-6},
		},
		{
			title: mirrorTitle(db), xlabel: "Vo [V]", ylabel: "Id [uA]",
			x: raw(table.OutputV), y: uA(table.ID),
		},
	}
}

// Panels lays out every available figure in report order.
func Panels(src Sources) ([]Panel, error) {
	var panels []Panel
	add := func(db *database.Database, specs []panelSpec) error {
		if db == nil {
			return nil
		}
		for _, spec := range specs {
			p, err := spec.build(db)
			if err != nil {
				return err
			}
			panels = append(panels, p)
		}
		return nil
	}

	if err := add(src.Char, charSpecs); err != nil {
		return nil, err
	}
	if err := add(src.Ver, verSpecs(src.CMInputSpan)); err != nil {
		return nil, err
	}
	if src.Tran != nil {
		p, err := transientPanel(src.Tran)
		if err != nil {
			return nil, err
		}
		panels = append(panels, p)
	}
	if err := add(src.Freq, freqSpecs); err != nil {
		return nil, err
	}
	if src.Mirror != nil {
		if err := add(src.Mirror, mirrorSpecs(src.Mirror)); err != nil {
			return nil, err
		}
	}
	return panels, nil
}

// transientPanel overlays input and output of the single transient run.
func transientPanel(db *database.Database) (Panel, error) {
	p := Panel{Title: "Transient", XLabel: "t [s]", YLabel: "V [V]"}
	for _, key := range db.SortedKeys() {
		rec, err := db.Get(key)
		if err != nil {
			return p, err
		}
		t, err := rec.Get(table.Time)
		if err != nil {
			return p, err
		}
		for _, node := range []string{table.Gate, table.Drain} {
			v, err := rec.Get(node)
			if err != nil {
				return p, errors.Wrapf(err, "%s %s", db.Prefix, key)
			}
			p.Series = append(p.Series, scaled(fmt.Sprintf("%s %s", node, key), t, v, 1, 1, false))
		}
		if gain, err := rec.Scalar(analysis.Gain); err == nil {
			p.Title = fmt.Sprintf("Transient, gain %.1f", gain)
		}
	}
	return p, nil
}

func mirrorTitle(db *database.Database) string {
	for _, key := range db.Keys() {
		rec, err := db.Get(key)
		if err != nil {
			continue
		}
		if ib, err := rec.Scalar(analysis.BiasCurrent); err == nil {
			return "Drain current, Ibias = " + util.FormatValueFactor(ib, "A")
		}
	}
	return "Drain current"
}
