package netlist

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

//go:embed templates/*.sp
var builtin embed.FS

// Template is a parsed netlist template. Placeholders use text/template
// syntax, e.g. {{.length}}; referencing a name the parameter record does
// not provide is a configuration error.
type Template struct {
	name string
	tmpl *template.Template
}

// Parse compiles template text. name is the netlist file name and also
// determines the data file prefix.
func Parse(name, text string) (*Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, errors.Wrapf(ErrConfiguration, "parse template %s: %v", name, err)
	}
	return &Template{name: name, tmpl: t}, nil
}

// Load reads a template from dir, or from the built-in set when dir is empty
// or does not contain the file.
func Load(dir, name string) (*Template, error) {
	if dir != "" {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return Parse(name, string(content))
		}
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read template %s", name)
		}
	}

	content, err := builtin.ReadFile("templates/" + name)
	if err != nil {
		return nil, errors.Wrapf(ErrConfiguration, "template %s not found", name)
	}
	return Parse(name, string(content))
}

func (t *Template) Name() string {
	return t.name
}

// Prefix is the lower-cased netlist name without extension, used to name
// data files and snapshots ("cktCHAR.sp" -> "cktchar").
func (t *Template) Prefix() string {
	base := filepath.Base(t.name)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return strings.ToLower(base)
}

// Render substitutes params and the data file basename into the template.
func (t *Template) Render(params Params, dataFilename string) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	values := params.Values()
	values[PDataFilename] = dataFilename

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, values); err != nil {
		return "", errors.Wrapf(ErrConfiguration, "render %s: %v", t.name, err)
	}
	return buf.String(), nil
}
