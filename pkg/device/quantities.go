package device

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

var ErrNonPhysical = errors.New("non-physical operating point")

// TransitFrequency is |gm| / (2*pi*(Cgs+Cgb+Cgd)).
func TransitFrequency(gm, cgs, cgb, cgd float64) float64 {
	return math.Abs(gm) / (2 * math.Pi * (cgs + cgb + cgd))
}

// GmID is the transconductance efficiency gm/Id.
func GmID(gm, id float64) float64 {
	return gm / id
}

// VStar returns 2/(gm/Id). gm/Id must be nonzero and the result positive;
// otherwise the value is still returned together with ErrNonPhysical.
func VStar(gmid float64) (float64, error) {
	if gmid == 0 || math.IsNaN(gmid) {
		return math.Inf(1), errors.Wrap(ErrNonPhysical, "gm/Id is zero")
	}
	v := 2 / gmid
	if v <= 0 {
		return v, errors.Wrapf(ErrNonPhysical, "V* = %g", v)
	}
	return v, nil
}

func Overdrive(vgs, vth float64) float64 {
	return vgs - vth
}

// OutputResistance is 1/gds.
func OutputResistance(gds float64) float64 {
	return 1 / gds
}

// SmallSignal holds the raw columns of a characterization sweep, one
// sample per sweep point.
type SmallSignal struct {
	W, Vgs, Vds, Vth []float64
	Id, Gm, Gds      []float64
	Cgs, Cgb, Cgd    []float64
}

// Derived holds the quantities computed from a SmallSignal sweep.
type Derived struct {
	Ft, GmID, FtGmID []float64
	VStar, Vod, Ro   []float64

	// NonPhysical counts samples whose V* was rejected.
	NonPhysical int
}

func (s SmallSignal) Len() int {
	return len(s.Id)
}

// Derive computes ft, gm/Id, ft*gm/Id, V*, Vod and ro sample by sample.
func (s SmallSignal) Derive() Derived {
	n := s.Len()
	d := Derived{
		Ft:     make([]float64, n),
		GmID:   make([]float64, n),
		FtGmID: make([]float64, n),
		VStar:  make([]float64, n),
		Vod:    make([]float64, n),
		Ro:     make([]float64, n),
	}
	for i := 0; i < n; i++ {
		d.Ft[i] = TransitFrequency(s.Gm[i], s.Cgs[i], s.Cgb[i], s.Cgd[i])
		d.GmID[i] = GmID(s.Gm[i], s.Id[i])
		d.Ro[i] = OutputResistance(s.Gds[i])

		v, err := VStar(d.GmID[i])
		if err != nil {
			d.NonPhysical++
		}
		d.VStar[i] = v
	}
	floats.MulTo(d.FtGmID, d.Ft, d.GmID)
	floats.SubTo(d.Vod, s.Vgs, s.Vth)
	return d
}
