package database

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/edp1096/gmid-sizer/pkg/device"
)

// ErrCorrupt reports a snapshot that cannot be read back.
var ErrCorrupt = errors.New("corrupt snapshot")

const snapshotVersion = 1

type snapshot struct {
	Version  int
	Database *Database
}

// Save writes the whole database to path. The snapshot is written to a
// temporary file and renamed, so readers never see a partial snapshot.
func (db *Database) Save(path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrap(err, "create snapshot")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := snappy.NewBufferedWriter(tmp)
	if err = gob.NewEncoder(w).Encode(snapshot{Version: snapshotVersion, Database: db}); err != nil {
		return errors.Wrapf(err, "encode snapshot %s", path)
	}
	if err = w.Close(); err != nil {
		return errors.Wrapf(err, "flush snapshot %s", path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "close snapshot %s", path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "rename snapshot %s", path)
	}
	return nil
}

// Load reads a snapshot written by Save. Loaded records are frozen. A
// missing file is reported with os.ErrNotExist in its chain.
func Load(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot")
	}
	defer f.Close()

	var s snapshot
	if err := gob.NewDecoder(snappy.NewReader(f)).Decode(&s); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "%s: %v", path, err)
	}
	if s.Version != snapshotVersion || s.Database == nil {
		return nil, errors.Wrapf(ErrCorrupt, "%s: unsupported snapshot version %d", path, s.Version)
	}

	db := s.Database
	if db.Records == nil {
		db.Records = make(map[device.Key]*Record)
	}
	for _, r := range db.Records {
		if r.Series == nil {
			r.Series = make(map[string][]float64)
		}
		if r.Scalars == nil {
			r.Scalars = make(map[string]float64)
		}
	}
	db.Freeze()
	return db, nil
}
