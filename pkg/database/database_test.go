package database

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/gmid-sizer/pkg/device"
)

func sample(t *testing.T) *Database {
	t.Helper()
	db := New("cktchar")
	for _, l := range []float64{300e-9, 200e-9} {
		r := db.Reset(device.LengthKey(l))
		require.NoError(t, r.SetSeries("id", []float64{1e-6, 2e-6, 3e-6}))
		require.NoError(t, r.SetSeries("vstar", []float64{0.25, 0.1, math.Inf(1)}))
		require.NoError(t, r.SetScalar("length", l))
		require.NoError(t, r.SetScalar("width", 4.2e-6))
	}
	return db
}

func TestResetKeepsInsertionOrder(t *testing.T) {
	db := sample(t)
	db.Reset("300n")
	assert.Equal(t, []device.Key{"300n", "200n"}, db.Keys())
	assert.Equal(t, []device.Key{"200n", "300n"}, db.SortedKeys())

	r, err := db.Get("300n")
	require.NoError(t, err)
	assert.Empty(t, r.Series, "reset discards the old record")

	_, err = db.Get("999n")
	assert.True(t, errors.Is(err, ErrUnknownGeometry))
}

func TestRemove(t *testing.T) {
	db := sample(t)
	db.Remove("300n")
	assert.Equal(t, []device.Key{"200n"}, db.Keys())
	assert.Equal(t, 1, db.Len())
	db.Remove("999n")
	assert.Equal(t, 1, db.Len())
}

func TestFrozenRecordRejectsWrites(t *testing.T) {
	r := NewRecord()
	require.NoError(t, r.SetScalar("a", 1))
	r.Freeze()
	assert.True(t, errors.Is(r.SetScalar("a", 2), ErrFrozen))
	assert.True(t, errors.Is(r.SetSeries("b", nil), ErrFrozen))

	v, err := r.Scalar("a")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = r.Get("missing")
	assert.True(t, errors.Is(err, ErrMissingQuantity))
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := sample(t)
	path := filepath.Join(t.TempDir(), "cktchar.snap")
	require.NoError(t, db.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, db.Prefix, got.Prefix)
	assert.Equal(t, db.RunID, got.RunID)
	assert.True(t, db.Created.Equal(got.Created))
	assert.Equal(t, db.Order, got.Order)

	for _, key := range db.Keys() {
		want, _ := db.Get(key)
		rec, err := got.Get(key)
		require.NoError(t, err)
		assert.True(t, rec.Frozen)
		assert.Equal(t, want.Scalars, rec.Scalars)
		assert.Equal(t, want.Series["id"], rec.Series["id"])
		assert.Equal(t, want.Series["vstar"][:2], rec.Series["vstar"][:2])
		assert.True(t, math.IsInf(rec.Series["vstar"][2], 1))
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp*"))
	assert.Empty(t, matches)
}

func TestLoadCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.snap"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.snap")
	require.NoError(t, os.WriteFile(bad, []byte("definitely not a snapshot"), 0o644))
	_, err = Load(bad)
	assert.True(t, errors.Is(err, ErrCorrupt))
}

func TestExportSQLite(t *testing.T) {
	ctx := context.Background()
	db := sample(t)
	path := filepath.Join(t.TempDir(), "results.sqlite")

	require.NoError(t, ExportSQLite(ctx, path, db))
	// exporting twice replaces rows instead of failing on the primary key
	require.NoError(t, ExportSQLite(ctx, path, db))

	v, err := QueryScalar(ctx, path, db.RunID, "200n", "length")
	require.NoError(t, err)
	assert.InDelta(t, 200e-9, v, 1e-21)

	_, err = QueryScalar(ctx, path, db.RunID, "200n", "nope")
	assert.True(t, errors.Is(err, ErrMissingQuantity))
}
