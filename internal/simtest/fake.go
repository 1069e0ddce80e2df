// Package simtest provides a stand-in for the external simulator so the
// characterization pipeline can be exercised without ngspice.
package simtest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/edp1096/gmid-sizer/pkg/netlist"
)

// Params are the numeric placeholders found in a rendered netlist.
type Params map[string]float64

// Generator fabricates the rows of a simulator table.
type Generator func(p Params) [][]float64

// Fake implements simulator.Executor. Netlists rendered from the templates
// written by WriteTemplates carry one "name=value" line per placeholder;
// the generator registered for the data file prefix turns them into a
// table next to the netlist.
type Fake struct {
	Generators map[string]Generator

	Runs      []string // data basenames in call order
	Err       error    // returned by every Execute when set
	SkipWrite bool     // exit cleanly without producing a table
}

func (f *Fake) Execute(_ context.Context, dir, netlistFile string) ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(dir, netlistFile))
	if err != nil {
		return nil, err
	}
	params, data, err := parse(content)
	if err != nil {
		return nil, err
	}
	f.Runs = append(f.Runs, data)
	if f.Err != nil {
		return []byte("fake simulator failed"), f.Err
	}
	if f.SkipWrite {
		return nil, nil
	}

	i := strings.LastIndex(data, "_")
	if i < 0 {
		return nil, errors.Errorf("unexpected data basename %q", data)
	}
	gen, ok := f.Generators[data[:i]]
	if !ok {
		return nil, errors.Errorf("no generator for %q", data[:i])
	}
	if err := WriteTable(filepath.Join(dir, data+".data"), gen(params)); err != nil {
		return nil, err
	}
	return []byte("ok " + data), nil
}

func parse(content []byte) (Params, string, error) {
	params := make(Params)
	var data string
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		name, val, ok := strings.Cut(line, "=")
		if !ok || strings.HasPrefix(line, "*") {
			continue
		}
		if name == netlist.PDataFilename {
			data = val
			continue
		}
		v, err := netlist.ParseValue(val)
		if err != nil {
			return nil, "", errors.Wrapf(err, "parameter %s", name)
		}
		params[name] = v
	}
	if data == "" {
		return nil, "", errors.New("netlist has no data_filename line")
	}
	return params, data, sc.Err()
}

// Template returns netlist text listing the given placeholders one per line.
func Template(names ...string) string {
	var b strings.Builder
	b.WriteString("* fake netlist\n")
	for _, n := range names {
		fmt.Fprintf(&b, "%s={{.%s}}\n", n, n)
	}
	fmt.Fprintf(&b, "%s={{.%s}}\n", netlist.PDataFilename, netlist.PDataFilename)
	return b.String()
}

// WriteTemplates writes fake templates for every built-in circuit into dir.
func WriteTemplates(dir string) error {
	amp := []string{
		netlist.PLength, netlist.PWidth, netlist.PBiasCurrent, netlist.PWidthMirror,
		netlist.PLengthMirror, netlist.PLoadCapacitance, netlist.PVdd,
	}
	files := map[string][]string{
		"cktCHAR.sp":   {netlist.PLength, netlist.PWidth},
		"cktVER.sp":    amp,
		"cktTRAN.sp":   append(append([]string{}, amp...), netlist.PStopTime, netlist.PStep, netlist.PFreq, netlist.PCMInput, netlist.PSwing),
		"cktFREQ.sp":   append(append([]string{}, amp...), netlist.PCMInput),
		"cktMIRROR.sp": {netlist.PLength, netlist.PWidth, netlist.PBiasCurrent, netlist.PVdd},
	}
	for name, params := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(Template(params...)), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable writes rows as whitespace separated columns.
func WriteTable(path string, rows [][]float64) error {
	var b strings.Builder
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%.12e", v)
		}
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
