package table

// Layout gives the column positions of one circuit's table. Tables written with
// wrdata interleave the sweep variable with every saved vector, so the
// quantities sit in the odd columns.
type Layout struct {
	MinCols int
	Columns map[string]int
}

// Quantity names used as column and record keys.
const (
	Width   = "width"
	Vgs     = "vgs"
	Vds     = "vds"
	Vth     = "vth"
	ID      = "id"
	Gm      = "gm"
	Gds     = "gds"
	Cgs     = "cgs"
	Cgb     = "cgb"
	Cgd     = "cgd"
	Gate    = "vg"
	Drain   = "vd"
	Gain    = "gain"
	Time    = "time"
	Freq    = "freq"
	Phase   = "phase"
	OutputV = "vvo"
)

var (
	Characterization = Layout{MinCols: 20, Columns: map[string]int{
		Width: 1, Vgs: 3, Vds: 5, Vth: 7, ID: 9, Gm: 11, Gds: 13, Cgs: 15, Cgb: 17, Cgd: 19,
	}}
	Verification = Layout{MinCols: 6, Columns: map[string]int{
		Gate: 1, Drain: 3, Gain: 5,
	}}
	Transient = Layout{MinCols: 4, Columns: map[string]int{
		Time: 0, Gate: 1, Drain: 3,
	}}
	Frequency = Layout{MinCols: 4, Columns: map[string]int{
		Freq: 0, Gain: 1, Phase: 3,
	}}
	CurrentMirror = Layout{MinCols: 8, Columns: map[string]int{
		OutputV: 1, ID: 3, Gds: 5, Vds: 7,
	}}
)

// Extract loads every column of the layout by name.
func (l Layout) Extract(t *Table) map[string][]float64 {
	out := make(map[string][]float64, len(l.Columns))
	for name, i := range l.Columns {
		out[name] = t.Col(i)
	}
	return out
}

// LoadLayout loads path and checks the layout's column count.
func LoadLayout(path string, l Layout) (map[string][]float64, error) {
	t, err := Load(path, l.MinCols)
	if err != nil {
		return nil, err
	}
	return l.Extract(t), nil
}
