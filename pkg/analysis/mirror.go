package analysis

import (
	"context"

	"github.com/golang/glog"

	"github.com/edp1096/gmid-sizer/pkg/circuit"
	"github.com/edp1096/gmid-sizer/pkg/device"
	"github.com/edp1096/gmid-sizer/pkg/netlist"
	"github.com/edp1096/gmid-sizer/pkg/table"
	"github.com/edp1096/gmid-sizer/pkg/util"
)

// Mirror sweeps the output node of a current mirror per length and records
// its output resistance.
type Mirror struct {
	*BaseEngine
	BiasCurrent float64
	Vdd         float64
}

func NewMirror(ckt *circuit.Circuit, biasCurrent, vdd float64) *Mirror {
	return &Mirror{
		BaseEngine:  NewBaseEngine(KindCurrentMirror, ckt),
		BiasCurrent: biasCurrent,
		Vdd:         vdd,
	}
}

func (m *Mirror) Simulate(ctx context.Context, geom device.Geometry) error {
	return m.simulate(ctx, netlist.MirrorParams{
		L:           geom.Length,
		W:           geom.Width,
		BiasCurrent: m.BiasCurrent,
		Vdd:         m.Vdd,
	})
}

func (m *Mirror) Gather(key device.Key) error {
	cols, rec, err := m.load(key)
	if err != nil {
		return err
	}
	vo, gds := cols[table.OutputV], cols[table.Gds]

	ro := make([]float64, len(gds))
	for i, g := range gds {
		ro[i] = device.OutputResistance(g)
	}
	if err := rec.SetSeries(Ro, ro); err != nil {
		return err
	}

	half := m.Vdd / 2
	x, y := finite(vo, ro)
	roAt, err := util.YOfX(half, x, y)
	if err != nil {
		return err
	}
	idAt, err := util.YOfX(half, vo, cols[table.ID])
	if err != nil {
		return err
	}
	err = setScalars(rec, map[string]float64{
		BiasCurrent: m.BiasCurrent,
		RoAtHalfVdd: roAt,
		IDAtHalfVdd: idAt,
	})
	if err != nil {
		return err
	}

	glog.V(1).Infof("%s %s: ro = %s, Id = %s at Vo = %s", m.kind, key,
		util.FormatValueFactor(roAt, "Ohm"), util.FormatValueFactor(idAt, "A"), util.FormatValueFactor(half, "V"))
	m.gathered(key)
	return nil
}
