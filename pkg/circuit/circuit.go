package circuit

import (
	"context"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/edp1096/gmid-sizer/internal/consts"
	"github.com/edp1096/gmid-sizer/pkg/database"
	"github.com/edp1096/gmid-sizer/pkg/device"
	"github.com/edp1096/gmid-sizer/pkg/netlist"
	"github.com/edp1096/gmid-sizer/pkg/simulator"
)

// Circuit is one circuit-pipeline instance: a netlist template, the runner
// that simulates it and the database its results go into.
type Circuit struct {
	tmpl      *netlist.Template
	runner    *simulator.Runner
	db        *database.Database
	dataFiles map[device.Key]simulator.DataFile
}

func New(tmpl *netlist.Template, runner *simulator.Runner) *Circuit {
	return &Circuit{
		tmpl:      tmpl,
		runner:    runner,
		db:        database.New(tmpl.Prefix()),
		dataFiles: make(map[device.Key]simulator.DataFile),
	}
}

func (c *Circuit) Name() string {
	return c.tmpl.Name()
}

// Prefix names the circuit's data files and snapshot.
func (c *Circuit) Prefix() string {
	return c.tmpl.Prefix()
}

func (c *Circuit) Database() *database.Database {
	return c.db
}

func (c *Circuit) SnapshotPath() string {
	return filepath.Join(c.runner.WorkDir, c.Prefix()+consts.SnapshotExt)
}

// Simulate starts a fresh record for the geometry, stores its length and
// runs the simulator. A failed run leaves no record behind.
func (c *Circuit) Simulate(ctx context.Context, params netlist.Params) (simulator.DataFile, error) {
	key := device.LengthKey(params.Length())
	rec := c.db.Reset(key)
	if err := rec.SetScalar(netlist.PLength, params.Length()); err != nil {
		return simulator.DataFile{}, err
	}

	df, err := c.runner.Run(ctx, c.tmpl, params)
	if err != nil {
		c.db.Remove(key)
		delete(c.dataFiles, key)
		return df, errors.Wrapf(err, "%s %s", c.Name(), key)
	}
	c.dataFiles[key] = df
	return df, nil
}

// DataFile returns the table produced for key by the last Simulate.
func (c *Circuit) DataFile(key device.Key) (simulator.DataFile, error) {
	df, ok := c.dataFiles[key]
	if !ok {
		return df, errors.Wrapf(database.ErrUnknownGeometry, "%s was not simulated by %s", key, c.Name())
	}
	return df, nil
}

// Write snapshots the whole database.
func (c *Circuit) Write() error {
	path := c.SnapshotPath()
	if err := c.db.Save(path); err != nil {
		return err
	}
	glog.Infof("%s: wrote %d geometries to %s", c.Name(), c.db.Len(), path)
	return nil
}

// RemoveSnapshot deletes the snapshot of an earlier run, if any.
func (c *Circuit) RemoveSnapshot() error {
	if err := os.Remove(c.SnapshotPath()); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s snapshot", c.Name())
	}
	return nil
}

// Discard drops everything gathered so far together with any snapshot on
// disk. Used when a run fails, so no partial or stale database survives.
func (c *Circuit) Discard() {
	c.db = database.New(c.Prefix())
	c.dataFiles = make(map[device.Key]simulator.DataFile)
	if err := c.RemoveSnapshot(); err != nil {
		glog.Warningf("%s: %v", c.Name(), err)
	}
}
