package analysis

import (
	"context"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/edp1096/gmid-sizer/pkg/circuit"
	"github.com/edp1096/gmid-sizer/pkg/device"
	"github.com/edp1096/gmid-sizer/pkg/netlist"
	"github.com/edp1096/gmid-sizer/pkg/table"
	"github.com/edp1096/gmid-sizer/pkg/util"
)

// Sizing is the design target the characterization is sized against.
type Sizing struct {
	VStar       float64 // target overdrive-equivalent voltage 2/(gm/Id)
	BiasCurrent float64
	CMInput     float64 // common-mode input used for the Vod lookup
}

// Characterization sweeps a single device per length at a shared base
// width and sizes the width that carries the bias current at the target V*.
type Characterization struct {
	*BaseEngine
	BaseWidth float64
	Target    Sizing
}

func NewCharacterization(ckt *circuit.Circuit, baseWidth float64, target Sizing) *Characterization {
	return &Characterization{
		BaseEngine: NewBaseEngine(KindCharacterization, ckt),
		BaseWidth:  baseWidth,
		Target:     target,
	}
}

// Simulate runs the sweep for geom.Length. A zero geom.Width selects the
// base width.
func (c *Characterization) Simulate(ctx context.Context, geom device.Geometry) error {
	w := geom.Width
	if w == 0 {
		w = c.BaseWidth
	}
	return c.simulate(ctx, netlist.CharacterizationParams{L: geom.Length, W: w})
}

func (c *Characterization) Gather(key device.Key) error {
	cols, rec, err := c.load(key)
	if err != nil {
		return err
	}

	ss := device.SmallSignal{
		W:   cols[table.Width],
		Vgs: cols[table.Vgs],
		Vds: cols[table.Vds],
		Vth: cols[table.Vth],
		Id:  cols[table.ID],
		Gm:  cols[table.Gm],
		Gds: cols[table.Gds],
		Cgs: cols[table.Cgs],
		Cgb: cols[table.Cgb],
		Cgd: cols[table.Cgd],
	}
	d := ss.Derive()
	if d.NonPhysical > 0 {
		glog.Warningf("%s %s: %d of %d samples have non-physical V*", c.kind, key, d.NonPhysical, ss.Len())
	}
	err = rec.SetAll(map[string][]float64{
		Ft:     d.Ft,
		GmID:   d.GmID,
		FtGmID: d.FtGmID,
		VStar:  d.VStar,
		Vod:    d.Vod,
		Ro:     d.Ro,
	})
	if err != nil {
		return err
	}

	base := c.BaseWidth
	if len(ss.W) > 0 && ss.W[0] > 0 {
		base = ss.W[0]
	}

	idAt, err := c.lookup(rec, key, VStarClamped, c.Target.VStar, d.VStar, ss.Id)
	if err != nil {
		return err
	}
	if idAt <= 0 {
		return errors.Wrapf(device.ErrNonPhysical, "%s %s: Id at V* = %g", c.kind, key, idAt)
	}
	vodAt, err := c.lookup(rec, key, CMInputClamped, c.Target.CMInput, ss.Vgs, d.Vod)
	if err != nil {
		return err
	}

	vs, gm := finite(d.VStar, ss.Gm)
	gmAt, err := util.YOfX(c.Target.VStar, vs, gm)
	if err != nil {
		return errors.Wrapf(err, "%s %s: gm at V*", c.kind, key)
	}
	vs, ft := finite(d.VStar, d.Ft)
	ftAt, err := util.YOfX(c.Target.VStar, vs, ft)
	if err != nil {
		return errors.Wrapf(err, "%s %s: ft at V*", c.kind, key)
	}

	width := base * c.Target.BiasCurrent / idAt
	err = setScalars(rec, map[string]float64{
		BaseWidth:   base,
		Width:       width,
		VStarTarget: c.Target.VStar,
		BiasCurrent: c.Target.BiasCurrent,
		CMInput:     c.Target.CMInput,
		IDAtVStar:   idAt,
		GmAtVStar:   gmAt,
		FtAtVStar:   ftAt,
		VodAtCM:     vodAt,
	})
	if err != nil {
		return err
	}

	glog.V(1).Infof("%s %s: Id@V* = %s, W = %s, Vod@cm = %s", c.kind, key,
		util.FormatValueFactor(idAt, "A"), util.FormatValueFactor(width, "m"), util.FormatValueFactor(vodAt, "V"))
	c.gathered(key)
	return nil
}

// Width is the sized width of a gathered geometry.
func (c *Characterization) Width(key device.Key) (float64, error) {
	if s := c.State(key); s != Gathered && s != Recorded {
		return 0, errors.Wrapf(ErrState, "%s %s is %s, width not sized yet", c.kind, key, s)
	}
	rec, err := c.Circuit.Database().Get(key)
	if err != nil {
		return 0, err
	}
	return rec.Scalar(Width)
}

// Geometries returns the sized geometry of every gathered length, shortest
// first.
func (c *Characterization) Geometries() ([]device.Geometry, error) {
	var widths, lengths []float64
	for _, key := range c.Circuit.Database().SortedKeys() {
		w, err := c.Width(key)
		if err != nil {
			return nil, err
		}
		rec, err := c.Circuit.Database().Get(key)
		if err != nil {
			return nil, err
		}
		l, err := rec.Scalar(Length)
		if err != nil {
			return nil, err
		}
		widths = append(widths, w)
		lengths = append(lengths, l)
	}
	return device.Pairs(widths, lengths), nil
}
