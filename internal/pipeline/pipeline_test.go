package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/gmid-sizer/internal/config"
	"github.com/edp1096/gmid-sizer/internal/simtest"
	"github.com/edp1096/gmid-sizer/pkg/analysis"
	"github.com/edp1096/gmid-sizer/pkg/database"
	"github.com/edp1096/gmid-sizer/pkg/table"
)

func newPipeline(t *testing.T, fake *simtest.Fake) (*Pipeline, *config.Config) {
	t.Helper()
	templates := t.TempDir()
	require.NoError(t, simtest.WriteTemplates(templates))

	cfg := config.Default()
	cfg.Simulator.WorkDir = filepath.Join(t.TempDir(), "work")
	cfg.Simulator.TemplateDir = templates
	if fake.Generators == nil {
		fake.Generators = simtest.Generators()
	}

	p, err := New(cfg, fake)
	require.NoError(t, err)
	return p, cfg
}

func TestRun(t *testing.T) {
	fake := &simtest.Fake{}
	p, cfg := newPipeline(t, fake)
	stale := filepath.Join(cfg.Simulator.WorkDir, "cktchar_900n.data")
	require.NoError(t, os.WriteFile(stale, []byte("1 2\n"), 0o644))

	ctx := context.Background()
	require.NoError(t, p.Run(ctx))

	assert.Equal(t, []string{
		"cktchar_200n", "cktchar_300n",
		"cktver_200n", "cktver_300n",
		"ckttran_300n",
		"cktfreq_300n",
		"cktmirror_200n", "cktmirror_300n",
	}, fake.Runs)
	assert.NoFileExists(t, stale)

	require.Len(t, p.Widths, 2)
	assert.Equal(t, 200e-9, p.Widths[0].Length)
	assert.Greater(t, p.Widths[0].Width, 0.0)

	for _, kind := range analysis.Kinds() {
		assert.FileExists(t, p.Circuit(kind).SnapshotPath(), kind.String())
	}
	assert.FileExists(t, filepath.Join(cfg.Simulator.WorkDir, "plot.pdf"))

	char := p.Circuit(analysis.KindCharacterization).Database()
	got, err := database.QueryScalar(ctx, filepath.Join(cfg.Simulator.WorkDir, "results.sqlite"),
		char.RunID, "200n", analysis.Width)
	require.NoError(t, err)
	assert.InEpsilon(t, p.Widths[0].Width, got, 1e-12)
}

func TestSnapshotsAreFrozenAndComplete(t *testing.T) {
	p, _ := newPipeline(t, &simtest.Fake{})
	require.NoError(t, p.Simulate(context.Background()))

	snaps, err := p.Snapshots()
	require.NoError(t, err)
	tran := snaps[analysis.KindTransient]
	require.NotNil(t, tran)
	require.Equal(t, 1, tran.Len())

	rec, err := tran.Get("300n")
	require.NoError(t, err)
	assert.True(t, rec.Frozen)
	gain, err := rec.Scalar(analysis.Gain)
	require.NoError(t, err)
	assert.InDelta(t, simtest.TransientGain, gain, 1e-6)
}

func TestMirrorDisabled(t *testing.T) {
	fake := &simtest.Fake{}
	p, cfg := newPipeline(t, fake)
	cfg.Mirror.Enabled = false
	cfg.Output.Format = "html"

	require.NoError(t, p.Simulate(context.Background()))
	assert.NotContains(t, fake.Runs, "cktmirror_200n")
	assert.NoFileExists(t, p.Circuit(analysis.KindCurrentMirror).SnapshotPath())

	snaps, err := p.Snapshots()
	require.NoError(t, err)
	assert.Nil(t, snaps[analysis.KindCurrentMirror])

	path, err := p.Plot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Simulator.WorkDir, "plot.html"), path)
}

func TestFailedStageWritesNoSnapshot(t *testing.T) {
	gens := simtest.Generators()
	gens["cktver"] = func(simtest.Params) [][]float64 { return [][]float64{{1, 2}} }
	fake := &simtest.Fake{Generators: gens}
	p, _ := newPipeline(t, fake)

	err := p.Simulate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, table.ErrMalformed), "got %v", err)

	assert.FileExists(t, p.Circuit(analysis.KindCharacterization).SnapshotPath())
	ver := p.Circuit(analysis.KindVerification)
	assert.NoFileExists(t, ver.SnapshotPath())
	assert.Zero(t, ver.Database().Len())
	assert.NotContains(t, fake.Runs, "ckttran_300n")
}

func TestFailedRerunDropsOlderSnapshots(t *testing.T) {
	fake := &simtest.Fake{}
	p, _ := newPipeline(t, fake)
	require.NoError(t, p.Simulate(context.Background()))
	for _, kind := range analysis.Kinds() {
		require.FileExists(t, p.Circuit(kind).SnapshotPath())
	}

	fake.Generators["cktver"] = func(simtest.Params) [][]float64 { return [][]float64{{1, 2}} }
	require.Error(t, p.Simulate(context.Background()))

	assert.FileExists(t, p.Circuit(analysis.KindCharacterization).SnapshotPath())
	snaps, err := p.Snapshots()
	require.NoError(t, err)
	for _, kind := range analysis.Kinds()[1:] {
		assert.NoFileExists(t, p.Circuit(kind).SnapshotPath(), kind.String())
		assert.Nil(t, snaps[kind], kind.String())
	}
}

func TestPlotWithoutCharacterization(t *testing.T) {
	p, _ := newPipeline(t, &simtest.Fake{})
	_, err := p.Plot()
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestCancelledContext(t *testing.T) {
	fake := &simtest.Fake{}
	p, _ := newPipeline(t, fake)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Simulate(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, fake.Runs)
}
