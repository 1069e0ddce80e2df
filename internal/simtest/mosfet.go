package simtest

const (
	CUTOFF     = 0 // Cutoff region
	LINEAR     = 1 // Linear/Triode region
	SATURATION = 2 // Saturation region
)

// Mosfet is a level 1 (Shockley) NMOS with Meyer gate capacitances. It is
// only accurate enough to fabricate plausible simulator tables.
type Mosfet struct {
	L float64 // Channel length (m)
	W float64 // Channel width (m)

	VTO    float64 // Threshold voltage
	KP     float64 // Transconductance parameter (A/V²)
	LAMBDA float64 // Channel length modulation at 1 um (1/V), scales as 1/L
	COX    float64 // Gate oxide capacitance per area (F/m²)
	CGDO   float64 // Gate-Drain overlap capacitance per unit width (F/m)
	CGBO   float64 // Gate-Bulk overlap capacitance per unit length (F/m)
}

func NewMosfet(w, l float64) Mosfet {
	return Mosfet{
		L:      l,
		W:      w,
		VTO:    0.35,
		KP:     300e-6,
		LAMBDA: 0.05,
		COX:    15e-3,
		CGDO:   0.3e-9,
		CGBO:   0.1e-9,
	}
}

func (m Mosfet) lambda() float64 {
	return m.LAMBDA * 1e-6 / m.L
}

// Operate returns drain current, gm, gds and the operating region.
func (m Mosfet) Operate(vgs, vds float64) (id, gm, gds float64, region int) {
	vgst := vgs - m.VTO
	if vgst <= 0 {
		return 0, 0, 0, CUTOFF
	}

	beta := m.KP * m.W / m.L
	lambda := m.lambda()
	if vds < vgst {
		id = beta * (vgst*vds - 0.5*vds*vds) * (1.0 + lambda*vds)
		gm = beta * vds * (1.0 + lambda*vds)
		gds = beta*(vgst-vds)*(1.0+lambda*vds) + beta*lambda*(vgst*vds-0.5*vds*vds)
		return id, gm, gds, LINEAR
	}
	id = 0.5 * beta * vgst * vgst * (1.0 + lambda*vds)
	gm = beta * vgst * (1.0 + lambda*vds)
	gds = 0.5 * beta * vgst * vgst * lambda
	return id, gm, gds, SATURATION
}

// Capacitances returns Meyer Cgs, Cgb, Cgd for the region at (vgs, vds).
func (m Mosfet) Capacitances(vgs, vds float64) (cgs, cgb, cgd float64) {
	cox := m.COX * m.W * m.L
	overlapD := m.CGDO * m.W
	overlapB := m.CGBO * m.L

	_, _, _, region := m.Operate(vgs, vds)
	switch region {
	case CUTOFF:
		return overlapD, cox + overlapB, overlapD
	case SATURATION:
		return 2.0/3.0*cox + overlapD, overlapB, overlapD
	default:
		return 0.5*cox + overlapD, overlapB, 0.5*cox + overlapD
	}
}

// Threshold ignores body effect.
func (m Mosfet) Threshold() float64 {
	return m.VTO
}
