// Package plot draws the characterization and verification figures from
// database snapshots, either as a tiled PDF or as an HTML page.
package plot

import (
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var ErrEmpty = errors.New("nothing to plot")

type Format string

const (
	PDF  Format = "pdf"
	HTML Format = "html"
)

// ParseFormat accepts "pdf" or "html".
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case PDF, HTML:
		return f, nil
	}
	return "", errors.Errorf("unknown plot format %q", s)
}

func (f Format) writer() func(io.Writer, []Panel) error {
	if f == HTML {
		return WriteHTML
	}
	return WritePDF
}

// Write draws src into base.{pdf,html} and returns the file written. The
// file is replaced only once drawing succeeded.
func Write(base string, f Format, src Sources) (string, error) {
	panels, err := Panels(src)
	if err != nil {
		return "", err
	}

	path := base + "." + string(f)
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "create plot file")
	}
	defer os.Remove(tmp.Name())

	if err := f.writer()(tmp, panels); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "close plot file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrap(err, "rename plot file")
	}
	glog.Infof("plotted %d panels to %s", len(panels), path)
	return path, nil
}
