package netlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSubstitutesParameters(t *testing.T) {
	tmpl, err := Parse("cktX.sp", "m1 d g 0 0 nch l={{.length}} w={{.width}}\nwrdata {{.data_filename}}.data\n")
	require.NoError(t, err)

	out, err := tmpl.Render(CharacterizationParams{L: 2e-7, W: 1e-6}, "cktx_200n")
	require.NoError(t, err)
	assert.Contains(t, out, "l=2e-07 w=1e-06")
	assert.Contains(t, out, "wrdata cktx_200n.data")
}

func TestRenderUnresolvedPlaceholder(t *testing.T) {
	// bias_current is not part of the characterization record
	tmpl, err := Parse("cktX.sp", "ib vdd b {{.bias_current}}\n")
	require.NoError(t, err)

	_, err = tmpl.Render(CharacterizationParams{L: 2e-7, W: 1e-6}, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestRenderMissingRequiredParameter(t *testing.T) {
	tmpl, err := Parse("cktX.sp", "{{.length}}")
	require.NoError(t, err)

	_, err = tmpl.Render(CharacterizationParams{L: 2e-7}, "x")
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = tmpl.Render(TransientParams{AmplifierParams: AmplifierParams{L: 1, W: 1, BiasCurrent: 1, WidthMirror: 1, LengthMirror: 1, LoadCapacitance: 1, Vdd: 1}}, "x")
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestParseBrokenTemplate(t *testing.T) {
	_, err := Parse("bad.sp", "{{.length")
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestBuiltinTemplatesRender(t *testing.T) {
	amp := AmplifierParams{
		L: 200e-9, W: 4e-6, BiasCurrent: 3.77e-6,
		WidthMirror: 5e-6, LengthMirror: 500e-9,
		LoadCapacitance: 1e-12, Vdd: 1.2,
	}
	cases := []struct {
		name   string
		prefix string
		params Params
	}{
		{"cktCHAR.sp", "cktchar", CharacterizationParams{L: 200e-9, W: 0.647e-6}},
		{"cktVER.sp", "cktver", VerificationParams{amp}},
		{"cktTRAN.sp", "ckttran", TransientParams{AmplifierParams: amp, StopTime: 3, Step: 1e-3, Freq: 1, CMInput: 0.447, Swing: 0.0021}},
		{"cktFREQ.sp", "cktfreq", FrequencyParams{AmplifierParams: amp, CMInput: 0.447}},
		{"cktMIRROR.sp", "cktmirror", MirrorParams{L: 200e-9, W: 2e-6, BiasCurrent: 5e-6, Vdd: 1.2}},
	}
	for _, c := range cases {
		tmpl, err := Load("", c.name)
		require.NoError(t, err, c.name)
		assert.Equal(t, c.prefix, tmpl.Prefix())

		out, err := tmpl.Render(c.params, tmpl.Prefix()+"_200n")
		require.NoError(t, err, c.name)
		assert.Contains(t, out, tmpl.Prefix()+"_200n.data")
		assert.False(t, strings.Contains(out, "{{"), c.name)
	}
}

func TestLoadPrefersDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cktCHAR.sp"), []byte("custom {{.width}}"), 0o644))

	tmpl, err := Load(dir, "cktCHAR.sp")
	require.NoError(t, err)
	out, err := tmpl.Render(CharacterizationParams{L: 1, W: 2}, "x")
	require.NoError(t, err)
	assert.Equal(t, "custom 2", out)

	_, err = Load(dir, "nothing.sp")
	assert.True(t, errors.Is(err, ErrConfiguration))
}
