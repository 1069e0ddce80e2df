// Package pipeline runs the design flow: characterize every length, size
// the widths, verify the sized pairs, then plot and export the results.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/edp1096/gmid-sizer/internal/config"
	"github.com/edp1096/gmid-sizer/pkg/analysis"
	"github.com/edp1096/gmid-sizer/pkg/circuit"
	"github.com/edp1096/gmid-sizer/pkg/database"
	"github.com/edp1096/gmid-sizer/pkg/device"
	"github.com/edp1096/gmid-sizer/pkg/netlist"
	"github.com/edp1096/gmid-sizer/pkg/plot"
	"github.com/edp1096/gmid-sizer/pkg/simulator"
	"github.com/edp1096/gmid-sizer/pkg/util"
)

type Pipeline struct {
	cfg      *config.Config
	runner   *simulator.Runner
	circuits map[analysis.Kind]*circuit.Circuit

	// Widths holds the sized geometries after Simulate, shortest first.
	Widths []device.Geometry
}

// New loads the netlist templates and prepares one circuit per kind. A nil
// executor runs the simulator command from the configuration.
func New(cfg *config.Config, ex simulator.Executor) (*Pipeline, error) {
	if ex == nil {
		ex = &simulator.Command{Path: cfg.Simulator.Command, Args: cfg.Simulator.Args}
	}
	if err := os.MkdirAll(cfg.Simulator.WorkDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create working directory")
	}
	runner := simulator.NewRunner(cfg.Simulator.WorkDir, ex)
	runner.PerGeometry = cfg.Simulator.PerGeometryNetlist

	p := &Pipeline{
		cfg:      cfg,
		runner:   runner,
		circuits: make(map[analysis.Kind]*circuit.Circuit),
	}
	for _, kind := range analysis.Kinds() {
		tmpl, err := netlist.Load(cfg.Simulator.TemplateDir, kind.Template())
		if err != nil {
			return nil, err
		}
		p.circuits[kind] = circuit.New(tmpl, runner)
	}
	return p, nil
}

func (p *Pipeline) Circuit(kind analysis.Kind) *circuit.Circuit {
	return p.circuits[kind]
}

func (p *Pipeline) amplifier() analysis.Amplifier {
	return analysis.Amplifier{
		BiasCurrent:     p.cfg.BiasCurrent(),
		WidthMirror:     p.cfg.Verify.ActiveLoadWidth.Float(),
		LengthMirror:    p.cfg.Verify.ActiveLoadLength.Float(),
		LoadCapacitance: p.cfg.Specs.LoadCapacitance.Float(),
		Vdd:             p.cfg.Specs.Vdd.Float(),
	}
}

// run drives one engine over geoms and snapshots its database. On failure
// the partial database is dropped and nothing is written.
func (p *Pipeline) run(ctx context.Context, e analysis.Engine, geoms []device.Geometry) error {
	ckt := p.circuits[e.Kind()]
	glog.Infof("%s: %d geometries", e.Kind(), len(geoms))

	err := func() error {
		for _, g := range geoms {
			if err := ctx.Err(); err != nil {
				return err
			}
			glog.V(1).Infof("%s: %s", e.Kind(), g)
			if err := e.Simulate(ctx, g); err != nil {
				return err
			}
			if err := e.Gather(g.Key()); err != nil {
				return err
			}
		}
		return e.Export()
	}()
	if err != nil {
		ckt.Discard()
		glog.Errorf("%s aborted: %v", e.Kind(), err)
		return errors.Wrapf(err, "%s stage", e.Kind())
	}
	return nil
}

// Simulate runs every stage: characterization, then verification of all
// sized pairs, transient and frequency runs of the design pair and the
// optional current mirror. Snapshots of an earlier run are removed first.
func (p *Pipeline) Simulate(ctx context.Context) error {
	if err := p.runner.RemoveTables(); err != nil {
		return err
	}
	for _, kind := range analysis.Kinds() {
		if err := p.circuits[kind].RemoveSnapshot(); err != nil {
			return err
		}
	}
	cfg := p.cfg
	strict := cfg.Simulator.Strict

	char := analysis.NewCharacterization(p.circuits[analysis.KindCharacterization], cfg.Char.Width.Float(), analysis.Sizing{
		VStar:       cfg.Specs.VStar.Float(),
		BiasCurrent: cfg.BiasCurrent(),
		CMInput:     cfg.Verify.CMInput.Float(),
	})
	char.Strict = strict
	var lengths []device.Geometry
	for _, l := range cfg.Lengths() {
		lengths = append(lengths, device.Geometry{Length: l})
	}
	glog.Infof("sizing for Ibias = %s at V* = %s", util.FormatValueFactor(cfg.BiasCurrent(), "A"),
		util.FormatValueFactor(cfg.Specs.VStar.Float(), "V"))
	if err := p.run(ctx, char, lengths); err != nil {
		return err
	}
	sized, err := char.Geometries()
	if err != nil {
		return err
	}
	p.Widths = sized
	for _, g := range sized {
		glog.Infof("sized %s", g)
	}

	amp := p.amplifier()
	ver := analysis.NewVerification(p.circuits[analysis.KindVerification], amp,
		cfg.Verify.CMInput.Float(), cfg.Verify.HalfSwing.Float())
	ver.Strict = strict
	if err := p.run(ctx, ver, sized); err != nil {
		return err
	}

	if cfg.Verify.DesignPair >= len(sized) {
		return errors.Wrapf(netlist.ErrConfiguration, "design pair %d of %d sized geometries", cfg.Verify.DesignPair, len(sized))
	}
	design := sized[cfg.Verify.DesignPair]
	glog.Infof("design pair %s", design)

	tran := analysis.NewTransient(p.circuits[analysis.KindTransient], amp, analysis.TransientSettings{
		StopTime: cfg.Transient.StopTime.Float(),
		Step:     cfg.Transient.Step.Float(),
		Freq:     cfg.Verify.InputFrequency.Float(),
		CMInput:  cfg.Verify.CMInput.Float(),
		Swing:    cfg.Verify.HalfSwing.Float(),
	})
	tran.Strict = strict
	if err := p.run(ctx, tran, []device.Geometry{design}); err != nil {
		return err
	}

	freq := analysis.NewFrequency(p.circuits[analysis.KindFrequency], amp, cfg.Verify.CMInput.Float())
	freq.Strict = strict
	if err := p.run(ctx, freq, []device.Geometry{design}); err != nil {
		return err
	}

	if !cfg.Mirror.Enabled {
		return nil
	}
	mirror := analysis.NewMirror(p.circuits[analysis.KindCurrentMirror], cfg.MirrorBiasCurrent(), cfg.MirrorVdd())
	mirror.Strict = strict
	var mirrors []device.Geometry
	for _, l := range cfg.MirrorLengths() {
		mirrors = append(mirrors, device.Geometry{Width: cfg.Mirror.Width.Float(), Length: l})
	}
	return p.run(ctx, mirror, mirrors)
}

// Snapshots loads the stored database of every kind. Kinds without a
// snapshot map to nil; the characterization snapshot is required.
func (p *Pipeline) Snapshots() (map[analysis.Kind]*database.Database, error) {
	out := make(map[analysis.Kind]*database.Database)
	for kind, ckt := range p.circuits {
		db, err := database.Load(ckt.SnapshotPath())
		if errors.Is(err, os.ErrNotExist) && kind != analysis.KindCharacterization {
			out[kind] = nil
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "%s snapshot", kind)
		}
		out[kind] = db
	}
	return out, nil
}

// Plot draws the stored snapshots to the configured output file.
func (p *Pipeline) Plot() (string, error) {
	snaps, err := p.Snapshots()
	if err != nil {
		return "", err
	}
	format, err := plot.ParseFormat(p.cfg.Output.Format)
	if err != nil {
		return "", err
	}
	src := plot.Sources{
		Char:        snaps[analysis.KindCharacterization],
		Ver:         snaps[analysis.KindVerification],
		Tran:        snaps[analysis.KindTransient],
		Freq:        snaps[analysis.KindFrequency],
		Mirror:      snaps[analysis.KindCurrentMirror],
		CMInputSpan: p.cfg.CMInputSpan(),
	}
	return plot.Write(p.outputPath(p.cfg.Output.Plot), format, src)
}

// Export copies every stored snapshot into the SQLite file.
func (p *Pipeline) Export(ctx context.Context) (string, error) {
	snaps, err := p.Snapshots()
	if err != nil {
		return "", err
	}
	var dbs []*database.Database
	for _, kind := range analysis.Kinds() {
		if db := snaps[kind]; db != nil {
			dbs = append(dbs, db)
		}
	}
	path := p.outputPath(p.cfg.Output.Database)
	if err := database.ExportSQLite(ctx, path, dbs...); err != nil {
		return "", err
	}
	glog.Infof("exported %d databases to %s", len(dbs), path)
	return path, nil
}

// Run simulates, plots and exports.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Simulate(ctx); err != nil {
		return err
	}
	if _, err := p.Plot(); err != nil {
		return err
	}
	_, err := p.Export(ctx)
	return err
}

// outputPath places relative output names in the working directory.
func (p *Pipeline) outputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.runner.WorkDir, name)
}
