package simulator_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/gmid-sizer/internal/simtest"
	"github.com/edp1096/gmid-sizer/pkg/netlist"
	"github.com/edp1096/gmid-sizer/pkg/simulator"
)

func charTemplate(t *testing.T) *netlist.Template {
	t.Helper()
	tmpl, err := netlist.Parse("cktCHAR.sp", simtest.Template(netlist.PLength, netlist.PWidth))
	require.NoError(t, err)
	return tmpl
}

func TestRunWritesNetlistAndTable(t *testing.T) {
	dir := t.TempDir()
	fake := &simtest.Fake{Generators: simtest.Generators()}
	r := simulator.NewRunner(dir, fake)

	df, err := r.Run(context.Background(), charTemplate(t), netlist.CharacterizationParams{L: 200e-9, W: 1e-6})
	require.NoError(t, err)

	assert.Equal(t, "200n", string(df.Key))
	assert.Equal(t, "cktchar_200n", df.Basename)
	assert.Equal(t, filepath.Join(dir, "cktchar_200n.data"), df.Path)
	assert.FileExists(t, df.Path)
	assert.Equal(t, []string{"cktchar_200n"}, fake.Runs)

	text, err := os.ReadFile(filepath.Join(dir, "simulate.sp"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "data_filename=cktchar_200n")
}

func TestRunRemovesStaleTable(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "cktchar_300n.data")
	require.NoError(t, os.WriteFile(stale, []byte("1 2\n"), 0o644))

	fake := &simtest.Fake{SkipWrite: true}
	r := simulator.NewRunner(dir, fake)

	df, err := r.Run(context.Background(), charTemplate(t), netlist.CharacterizationParams{L: 300e-9, W: 1e-6})
	require.NoError(t, err)
	assert.NoFileExists(t, df.Path)
}

func TestRunPerGeometryNetlist(t *testing.T) {
	dir := t.TempDir()
	r := simulator.NewRunner(dir, &simtest.Fake{Generators: simtest.Generators()})
	r.PerGeometry = true

	_, err := r.Run(context.Background(), charTemplate(t), netlist.CharacterizationParams{L: 200e-9, W: 1e-6})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "simulate_cktchar_200n.sp"))
	assert.NoFileExists(t, filepath.Join(dir, "simulate.sp"))
}

func TestRunConfigurationError(t *testing.T) {
	fake := &simtest.Fake{}
	r := simulator.NewRunner(t.TempDir(), fake)

	_, err := r.Run(context.Background(), charTemplate(t), netlist.CharacterizationParams{L: 200e-9})
	require.Error(t, err)
	assert.True(t, errors.Is(err, netlist.ErrConfiguration))
	assert.Empty(t, fake.Runs)
}

func TestRunPropagatesExecutorFailure(t *testing.T) {
	boom := errors.New("boom")
	r := simulator.NewRunner(t.TempDir(), &simtest.Fake{Err: boom})

	_, err := r.Run(context.Background(), charTemplate(t), netlist.CharacterizationParams{L: 200e-9, W: 1e-6})
	assert.True(t, errors.Is(err, boom))
}

func TestRemoveTables(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.data", "b.data", "keep.sp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	require.NoError(t, simulator.NewRunner(dir, &simtest.Fake{}).RemoveTables())
	assert.NoFileExists(t, filepath.Join(dir, "a.data"))
	assert.NoFileExists(t, filepath.Join(dir, "b.data"))
	assert.FileExists(t, filepath.Join(dir, "keep.sp"))
}

func TestCommandMissingBinary(t *testing.T) {
	c := &simulator.Command{Path: filepath.Join(t.TempDir(), "no-such-simulator")}
	_, err := c.Execute(context.Background(), t.TempDir(), "simulate.sp")

	var simErr *simulator.Error
	require.True(t, errors.As(err, &simErr))
	assert.Equal(t, -1, simErr.ExitCode)
	assert.Equal(t, "simulate.sp", simErr.Netlist)
}

func TestCommandNonZeroExit(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	c := &simulator.Command{Path: sh, Args: []string{"-c", "echo boom >&2; exit 3", "sh"}}
	_, err = c.Execute(context.Background(), t.TempDir(), "simulate.sp")

	var simErr *simulator.Error
	require.True(t, errors.As(err, &simErr))
	assert.Equal(t, 3, simErr.ExitCode)
	assert.Equal(t, "boom", simErr.Stderr)
	assert.Contains(t, simErr.Error(), "exit 3")
}
