package analysis

import (
	"context"
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/edp1096/gmid-sizer/pkg/circuit"
	"github.com/edp1096/gmid-sizer/pkg/database"
	"github.com/edp1096/gmid-sizer/pkg/device"
	"github.com/edp1096/gmid-sizer/pkg/netlist"
	"github.com/edp1096/gmid-sizer/pkg/table"
	"github.com/edp1096/gmid-sizer/pkg/util"
)

var (
	ErrState        = errors.New("operation not valid in current state")
	ErrNotMonotonic = errors.New("gain is not monotonically non-increasing")
)

type Kind int

const (
	KindCharacterization Kind = iota
	KindVerification
	KindTransient
	KindFrequency
	KindCurrentMirror
)

var kindInfo = [...]struct {
	name     string
	template string
	layout   table.Layout
}{
	KindCharacterization: {"characterization", "cktCHAR.sp", table.Characterization},
	KindVerification:     {"verification", "cktVER.sp", table.Verification},
	KindTransient:        {"transient", "cktTRAN.sp", table.Transient},
	KindFrequency:        {"frequency", "cktFREQ.sp", table.Frequency},
	KindCurrentMirror:    {"current mirror", "cktMIRROR.sp", table.CurrentMirror},
}

// Kinds lists every engine kind in pipeline order.
func Kinds() []Kind {
	return []Kind{KindCharacterization, KindVerification, KindTransient, KindFrequency, KindCurrentMirror}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindInfo) {
		return "unknown"
	}
	return kindInfo[k].name
}

// Template is the netlist file simulated by this kind.
func (k Kind) Template() string {
	return kindInfo[k].template
}

// Layout is the column layout of this kind's simulator table.
func (k Kind) Layout() table.Layout {
	return kindInfo[k].layout
}

// Engine drives one circuit through simulate, gather and export for a set
// of geometries.
type Engine interface {
	Kind() Kind
	Simulate(ctx context.Context, geom device.Geometry) error
	Gather(key device.Key) error
	Export() error
}

// State of one geometry inside an engine.
type State int

const (
	Idle State = iota
	Simulated
	Gathered
	Recorded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Simulated:
		return "simulated"
	case Gathered:
		return "gathered"
	case Recorded:
		return "recorded"
	}
	return "unknown"
}

type BaseEngine struct {
	Circuit *circuit.Circuit

	// Strict turns clamped lookups into ErrOutOfDomain failures.
	Strict bool

	kind   Kind
	states map[device.Key]State
}

func NewBaseEngine(kind Kind, ckt *circuit.Circuit) *BaseEngine {
	return &BaseEngine{
		Circuit: ckt,
		kind:    kind,
		states:  make(map[device.Key]State),
	}
}

func (e *BaseEngine) Kind() Kind {
	return e.kind
}

func (e *BaseEngine) State(key device.Key) State {
	return e.states[key]
}

func (e *BaseEngine) expect(key device.Key, want State) error {
	if got := e.states[key]; got != want {
		return errors.Wrapf(ErrState, "%s %s is %s, want %s", e.kind, key, got, want)
	}
	return nil
}

// simulate runs the circuit for one parameter record. A geometry may be
// simulated again from any state; its record starts over.
func (e *BaseEngine) simulate(ctx context.Context, params netlist.Params) error {
	key := device.LengthKey(params.Length())
	e.states[key] = Idle
	if _, err := e.Circuit.Simulate(ctx, params); err != nil {
		delete(e.states, key)
		return err
	}
	e.states[key] = Simulated
	return nil
}

// load reads the simulated table of key and stores its raw columns.
func (e *BaseEngine) load(key device.Key) (map[string][]float64, *database.Record, error) {
	if err := e.expect(key, Simulated); err != nil {
		return nil, nil, err
	}
	df, err := e.Circuit.DataFile(key)
	if err != nil {
		return nil, nil, err
	}
	cols, err := table.LoadLayout(df.Path, e.kind.Layout())
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s %s", e.kind, key)
	}
	rec, err := e.Circuit.Database().Get(key)
	if err != nil {
		return nil, nil, err
	}
	if err := rec.SetAll(cols); err != nil {
		return nil, nil, err
	}
	return cols, rec, nil
}

func (e *BaseEngine) gathered(key device.Key) {
	e.states[key] = Gathered
}

// lookup interpolates y at x and records in flag whether x had to be
// clamped to the sampled range.
func (e *BaseEngine) lookup(rec *database.Record, key device.Key, flag string, x float64, xs, ys []float64) (float64, error) {
	xs, ys = finite(xs, ys)
	if e.Strict {
		y, err := util.YOfXStrict(x, xs, ys)
		if err != nil {
			return y, errors.Wrapf(err, "%s %s: %s", e.kind, key, flag)
		}
		return y, rec.SetScalar(flag, 0)
	}

	r, err := util.Interpolate(x, xs, ys)
	if err != nil {
		return 0, errors.Wrapf(err, "%s %s: %s", e.kind, key, flag)
	}
	clamped := 0.0
	if r.Clamped {
		clamped = 1
		glog.Warningf("%s %s: %s target %g outside sampled range, clamped", e.kind, key, flag, x)
	}
	if err := rec.SetScalar(flag, clamped); err != nil {
		return 0, err
	}
	return r.Y, nil
}

// finite drops sample pairs where either value is NaN or infinite.
func finite(xs, ys []float64) ([]float64, []float64) {
	ok := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	fx := make([]float64, 0, n)
	fy := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if ok(xs[i]) && ok(ys[i]) {
			fx = append(fx, xs[i])
			fy = append(fy, ys[i])
		}
	}
	return fx, fy
}

func setScalars(rec *database.Record, values map[string]float64) error {
	for name, v := range values {
		if err := rec.SetScalar(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Record freezes the record of a gathered geometry.
func (e *BaseEngine) Record(key device.Key) error {
	if err := e.expect(key, Gathered); err != nil {
		return err
	}
	rec, err := e.Circuit.Database().Get(key)
	if err != nil {
		return err
	}
	rec.Freeze()
	e.states[key] = Recorded
	return nil
}

// Export records every gathered geometry and snapshots the database. A
// geometry that was simulated but never gathered blocks the export.
func (e *BaseEngine) Export() error {
	for _, key := range e.Circuit.Database().Keys() {
		switch e.states[key] {
		case Gathered:
			if err := e.Record(key); err != nil {
				return err
			}
		case Recorded:
		default:
			return errors.Wrapf(ErrState, "%s %s is %s, cannot export", e.kind, key, e.states[key])
		}
	}
	return e.Circuit.Write()
}
