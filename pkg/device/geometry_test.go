package device

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthKeyQuantization(t *testing.T) {
	assert.Equal(t, Key("200n"), LengthKey(200e-9))
	assert.Equal(t, LengthKey(200e-9), LengthKey(200.4e-9))
	assert.NotEqual(t, LengthKey(199.4e-9), LengthKey(200.6e-9))
	assert.Equal(t, Key("199n"), LengthKey(199.4e-9))
	assert.Equal(t, Key("201n"), LengthKey(200.6e-9))
	assert.Equal(t, Key("1500n"), LengthKey(1.5e-6))
}

func TestKeyNanometers(t *testing.T) {
	v, err := Key("300n").Nanometers()
	require.NoError(t, err)
	assert.Equal(t, 300.0, v)

	_, err = Key("300u").Nanometers()
	assert.Error(t, err)
}

func TestSortKeys(t *testing.T) {
	keys := []Key{"1000n", "bogus", "200n", "30n"}
	SortKeys(keys)
	assert.Equal(t, []Key{"30n", "200n", "1000n", "bogus"}, keys)
}

func TestPairs(t *testing.T) {
	g := Pairs([]float64{1e-6, 2e-6, 3e-6}, []float64{200e-9, 300e-9})
	require.Len(t, g, 2)
	assert.Equal(t, Geometry{Width: 2e-6, Length: 300e-9}, g[1])
	assert.Equal(t, Key("300n"), g[1].Key())
}

func TestDeriveFigureOfMerit(t *testing.T) {
	s := SmallSignal{
		W:   []float64{1e-6, 1e-6, 1e-6},
		Vgs: []float64{0.4, 0.5, 0.6},
		Vds: []float64{0.6, 0.6, 0.6},
		Vth: []float64{0.35, 0.35, 0.36},
		Id:  []float64{1e-6, 5e-6, 12e-6},
		Gm:  []float64{25e-6, 80e-6, 120e-6},
		Gds: []float64{1e-7, 4e-7, 1e-6},
		Cgs: []float64{1e-15, 1.2e-15, 1.3e-15},
		Cgb: []float64{0.2e-15, 0.1e-15, 0.1e-15},
		Cgd: []float64{0.3e-15, 0.3e-15, 0.3e-15},
	}
	d := s.Derive()
	require.Equal(t, 0, d.NonPhysical)

	for i := 0; i < s.Len(); i++ {
		ft := math.Abs(s.Gm[i]) / (2 * math.Pi * (s.Cgs[i] + s.Cgb[i] + s.Cgd[i]))
		gmid := s.Gm[i] / s.Id[i]
		assert.InDelta(t, ft, d.Ft[i], ft*1e-12)
		assert.InDelta(t, gmid, d.GmID[i], 1e-12)
		assert.InDelta(t, ft*gmid, d.FtGmID[i], ft*gmid*1e-12)
		assert.InDelta(t, 2/gmid, d.VStar[i], 1e-12)
		assert.InDelta(t, s.Vgs[i]-s.Vth[i], d.Vod[i], 1e-12)
		assert.InDelta(t, 1/s.Gds[i], d.Ro[i], 1e-3)
	}
}

func TestVStarRejectsNonPhysical(t *testing.T) {
	_, err := VStar(0)
	assert.True(t, errors.Is(err, ErrNonPhysical))

	v, err := VStar(-10)
	assert.True(t, errors.Is(err, ErrNonPhysical))
	assert.Equal(t, -0.2, v)

	v, err = VStar(20)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, v, 1e-15)
}
