package netlist

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|MEG|Meg|[TGKkmunpf])?([a-zA-Z]*)$`)

// ParseValue parses a number in SPICE notation: "120m", "0.647u", "1meg",
// "1e-12", "5uA". A trailing unit name after the scale factor is ignored.
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, errors.Errorf("invalid value format: %q", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid value %q", val)
	}

	if factor := matches[2]; factor != "" {
		if strings.EqualFold(factor, "meg") {
			factor = "meg"
		}
		num *= unitMap[factor]
	}

	return num, nil
}

// Value is a float that can be written in configuration files either as a
// plain number or as a SPICE-notation string.
type Value float64

func (v Value) Float() float64 {
	return float64(v)
}

func (v *Value) UnmarshalText(text []byte) error {
	f, err := ParseValue(string(text))
	if err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

// UnmarshalTOML accepts TOML integers, floats and strings.
func (v *Value) UnmarshalTOML(data any) error {
	switch d := data.(type) {
	case float64:
		*v = Value(d)
	case int64:
		*v = Value(d)
	case string:
		return v.UnmarshalText([]byte(d))
	default:
		return errors.Errorf("unsupported value type %T", data)
	}
	return nil
}

// Floats converts a slice of Values.
func Floats(vs []Value) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}
