package database

import (
	"sort"

	"github.com/pkg/errors"
)

var (
	ErrFrozen          = errors.New("record is frozen")
	ErrMissingQuantity = errors.New("quantity not recorded")
)

// Record holds every measured or derived quantity of one geometry: sweep
// columns in Series and single values in Scalars.
type Record struct {
	Series  map[string][]float64
	Scalars map[string]float64
	Frozen  bool
}

func NewRecord() *Record {
	return &Record{
		Series:  make(map[string][]float64),
		Scalars: make(map[string]float64),
	}
}

func (r *Record) SetSeries(name string, values []float64) error {
	if r.Frozen {
		return errors.Wrapf(ErrFrozen, "set series %s", name)
	}
	r.Series[name] = values
	return nil
}

func (r *Record) SetScalar(name string, value float64) error {
	if r.Frozen {
		return errors.Wrapf(ErrFrozen, "set scalar %s", name)
	}
	r.Scalars[name] = value
	return nil
}

// SetAll stores a batch of series, stopping at the first failure.
func (r *Record) SetAll(series map[string][]float64) error {
	for _, name := range sortedNames(series) {
		if err := r.SetSeries(name, series[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Record) Get(name string) ([]float64, error) {
	v, ok := r.Series[name]
	if !ok {
		return nil, errors.Wrapf(ErrMissingQuantity, "series %s", name)
	}
	return v, nil
}

func (r *Record) Scalar(name string) (float64, error) {
	v, ok := r.Scalars[name]
	if !ok {
		return 0, errors.Wrapf(ErrMissingQuantity, "scalar %s", name)
	}
	return v, nil
}

// Freeze makes the record read-only.
func (r *Record) Freeze() {
	r.Frozen = true
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
