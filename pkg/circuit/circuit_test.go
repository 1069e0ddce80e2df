package circuit

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/gmid-sizer/internal/simtest"
	"github.com/edp1096/gmid-sizer/pkg/database"
	"github.com/edp1096/gmid-sizer/pkg/device"
	"github.com/edp1096/gmid-sizer/pkg/netlist"
	"github.com/edp1096/gmid-sizer/pkg/simulator"
)

func newCircuit(t *testing.T) *Circuit {
	t.Helper()
	tmpl, err := netlist.Parse("cktCHAR.sp", simtest.Template(netlist.PLength, netlist.PWidth))
	require.NoError(t, err)
	fake := &simtest.Fake{Generators: simtest.Generators()}
	return New(tmpl, simulator.NewRunner(t.TempDir(), fake))
}

func TestSimulateStoresLength(t *testing.T) {
	c := newCircuit(t)
	assert.Equal(t, "cktchar", c.Prefix())

	df, err := c.Simulate(context.Background(), netlist.CharacterizationParams{L: 200e-9, W: 1e-6})
	require.NoError(t, err)
	assert.Equal(t, "cktchar_200n", df.Basename)
	assert.FileExists(t, df.Path)

	got, err := c.DataFile("200n")
	require.NoError(t, err)
	assert.Equal(t, df, got)

	rec, err := c.Database().Get("200n")
	require.NoError(t, err)
	l, err := rec.Scalar(netlist.PLength)
	require.NoError(t, err)
	assert.Equal(t, 200e-9, l)
}

func TestFailedSimulateLeavesNoRecord(t *testing.T) {
	tmpl, err := netlist.Parse("cktCHAR.sp", simtest.Template(netlist.PLength, netlist.PWidth))
	require.NoError(t, err)
	c := New(tmpl, simulator.NewRunner(t.TempDir(), &simtest.Fake{Err: errors.New("boom")}))

	_, err = c.Simulate(context.Background(), netlist.CharacterizationParams{L: 200e-9, W: 1e-6})
	require.Error(t, err)
	assert.Zero(t, c.Database().Len())
	assert.Empty(t, c.Database().Keys())
}

func TestDataFileUnknownKey(t *testing.T) {
	c := newCircuit(t)
	_, err := c.DataFile("300n")
	assert.True(t, errors.Is(err, database.ErrUnknownGeometry))
}

func TestWriteAndDiscard(t *testing.T) {
	c := newCircuit(t)
	_, err := c.Simulate(context.Background(), netlist.CharacterizationParams{L: 300e-9, W: 1e-6})
	require.NoError(t, err)
	require.NoError(t, c.Write())

	db, err := database.Load(c.SnapshotPath())
	require.NoError(t, err)
	assert.Equal(t, []device.Key{"300n"}, db.Keys())

	c.Discard()
	assert.NoFileExists(t, c.SnapshotPath())
	assert.Zero(t, c.Database().Len())
	_, err = c.DataFile("300n")
	assert.Error(t, err)
}
