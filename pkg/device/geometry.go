package device

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/edp1096/gmid-sizer/pkg/util"
)

// Key identifies one simulated geometry by its channel length rounded to
// the nanometer, e.g. "200n". Lengths closer than 1 nm share a key.
type Key string

func LengthKey(length float64) Key {
	return Key(fmt.Sprintf("%.0fn", length*1e9))
}

// Nanometers parses the numeric part of the key back.
func (k Key) Nanometers() (float64, error) {
	s := string(k)
	if !strings.HasSuffix(s, "n") {
		return 0, errors.Errorf("malformed geometry key %q", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "n"), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed geometry key %q", s)
	}
	return v, nil
}

// SortKeys orders keys by physical length; malformed keys sort last by name.
func SortKeys(keys []Key) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := keys[i].Nanometers()
		b, errB := keys[j].Nanometers()
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}

// Geometry is a width/length pair in meters.
type Geometry struct {
	Width  float64
	Length float64
}

func (g Geometry) Key() Key {
	return LengthKey(g.Length)
}

func (g Geometry) String() string {
	return fmt.Sprintf("W/L = %s/%s", util.FormatValueFactor(g.Width, "m"), util.FormatValueFactor(g.Length, "m"))
}

// Pairs zips widths and lengths into geometries. The shorter slice wins.
func Pairs(widths, lengths []float64) []Geometry {
	n := len(widths)
	if len(lengths) < n {
		n = len(lengths)
	}
	out := make([]Geometry, n)
	for i := 0; i < n; i++ {
		out[i] = Geometry{Width: widths[i], Length: lengths[i]}
	}
	return out
}
