package analysis

// Derived series stored next to the raw table columns.
const (
	Ft     = "ft"
	GmID   = "gmid"
	FtGmID = "ftgmid"
	VStar  = "vstar"
	Vod    = "vod"
	Ro     = "ro"
)

// Scalars.
const (
	Length         = "length"
	BaseWidth      = "base_width"
	Width          = "width"
	VStarTarget    = "vstar_target"
	BiasCurrent    = "bias_current"
	IDAtVStar      = "id_at_vstar"
	GmAtVStar      = "gm_at_vstar"
	FtAtVStar      = "ft_at_vstar"
	VodAtCM        = "vod_at_cm"
	VStarClamped   = "vstar_clamped"
	CMInput        = "cm_input"
	CMInputClamped = "cm_input_clamped"
	Swing          = "swing"
	MaxGain        = "max_gain"
	VgAtMaxGain    = "vg_at_max_gain"
	VdAtCM         = "vd_at_cm"
	GainAtCM       = "gain_at_cm"
	InputSwing     = "input_swing"
	OutputSwing    = "output_swing"
	InputCM        = "input_cm"
	OutputCM       = "output_cm"
	Gain           = "gain"
	UnityGain      = "fu"
	UnityClamped   = "fu_clamped"
	PhaseAtFu      = "phase_at_fu"
	DCGain         = "dc_gain"
	PhaseMargin    = "phase_margin"
	RoAtHalfVdd    = "ro_at_half_vdd"
	IDAtHalfVdd    = "id_at_half_vdd"
)
