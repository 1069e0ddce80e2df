package simulator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/edp1096/gmid-sizer/internal/consts"
	"github.com/edp1096/gmid-sizer/pkg/device"
	"github.com/edp1096/gmid-sizer/pkg/netlist"
)

// Error reports a simulator process that could not start or exited with a
// non-zero status.
type Error struct {
	Netlist  string
	ExitCode int // -1 when the process did not start
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("simulation of %s failed (exit %d): %v", e.Netlist, e.ExitCode, e.Err)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Executor runs the simulator on a netlist file located in dir.
type Executor interface {
	Execute(ctx context.Context, dir, netlistFile string) (stdout []byte, err error)
}

// Command executes an external batch simulator, e.g. "ngspice -b".
type Command struct {
	Path string
	Args []string
}

// NewCommand returns the default ngspice batch invocation.
func NewCommand() *Command {
	return &Command{Path: consts.DefaultSimulator, Args: []string{consts.BatchFlag}}
}

func (c *Command) Execute(ctx context.Context, dir, netlistFile string) ([]byte, error) {
	args := append(append([]string{}, c.Args...), netlistFile)
	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	simErr := &Error{
		Netlist:  netlistFile,
		ExitCode: -1,
		Stderr:   tail(stderr.String(), consts.StderrTailLines),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		simErr.ExitCode = exitErr.ExitCode()
	}
	return stdout.Bytes(), simErr
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// DataFile names the table a simulation is expected to produce.
type DataFile struct {
	Key      device.Key
	Basename string // {prefix}_{key}
	Path     string
}

// Runner renders netlists into a working directory and invokes the
// simulator one netlist at a time.
type Runner struct {
	WorkDir string
	Exec    Executor

	// PerGeometry gives every geometry its own working netlist instead of
	// the shared simulate.sp. Needed if runs are ever made concurrent.
	PerGeometry bool
}

func NewRunner(workDir string, ex Executor) *Runner {
	if ex == nil {
		ex = NewCommand()
	}
	return &Runner{WorkDir: workDir, Exec: ex}
}

// DataFileFor predicts the table path for a circuit prefix and length.
func (r *Runner) DataFileFor(prefix string, length float64) DataFile {
	key := device.LengthKey(length)
	basename := fmt.Sprintf("%s_%s", prefix, key)
	return DataFile{
		Key:      key,
		Basename: basename,
		Path:     filepath.Join(r.WorkDir, basename+consts.DataExt),
	}
}

// Run renders tmpl with params, writes the working netlist and runs the
// simulator to completion. A stale table from an earlier run is removed
// first, so a silent simulator failure shows up as a missing table.
func (r *Runner) Run(ctx context.Context, tmpl *netlist.Template, params netlist.Params) (DataFile, error) {
	df := r.DataFileFor(tmpl.Prefix(), params.Length())

	text, err := tmpl.Render(params, df.Basename)
	if err != nil {
		return df, err
	}

	netlistFile := consts.WorkingNetlist
	if r.PerGeometry {
		netlistFile = "simulate_" + df.Basename + ".sp"
	}
	if err := os.WriteFile(filepath.Join(r.WorkDir, netlistFile), []byte(text), 0o644); err != nil {
		return df, errors.Wrap(err, "write working netlist")
	}
	if err := os.Remove(df.Path); err != nil && !os.IsNotExist(err) {
		return df, errors.Wrap(err, "remove stale table")
	}

	glog.V(1).Infof("simulating %s (%s) -> %s", tmpl.Name(), df.Key, df.Basename+consts.DataExt)
	stdout, err := r.Exec.Execute(ctx, r.WorkDir, netlistFile)
	if glog.V(2) {
		glog.Infof("%s output:\n%s", tmpl.Name(), stdout)
	}
	if err != nil {
		return df, err
	}
	return df, nil
}

// RemoveTables deletes every simulator table in the working directory.
func (r *Runner) RemoveTables() error {
	matches, err := filepath.Glob(filepath.Join(r.WorkDir, "*"+consts.DataExt))
	if err != nil {
		return errors.Wrap(err, "glob tables")
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "remove %s", m)
		}
	}
	return nil
}
