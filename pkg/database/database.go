package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edp1096/gmid-sizer/pkg/device"
)

var ErrUnknownGeometry = errors.New("geometry not in database")

// Database maps geometry keys to records for one circuit. It is owned by a
// single pipeline and persisted only as a whole.
type Database struct {
	Prefix  string
	RunID   string
	Created time.Time
	Records map[device.Key]*Record
	Order   []device.Key
}

func New(prefix string) *Database {
	return &Database{
		Prefix:  prefix,
		RunID:   uuid.NewString(),
		Created: time.Now().UTC(),
		Records: make(map[device.Key]*Record),
	}
}

// Reset starts a fresh record for key, discarding any earlier one.
func (db *Database) Reset(key device.Key) *Record {
	if _, ok := db.Records[key]; !ok {
		db.Order = append(db.Order, key)
	}
	r := NewRecord()
	db.Records[key] = r
	return r
}

// Remove drops key and its record.
func (db *Database) Remove(key device.Key) {
	if _, ok := db.Records[key]; !ok {
		return
	}
	delete(db.Records, key)
	for i, k := range db.Order {
		if k == key {
			db.Order = append(db.Order[:i], db.Order[i+1:]...)
			break
		}
	}
}

func (db *Database) Get(key device.Key) (*Record, error) {
	r, ok := db.Records[key]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownGeometry, "%s in %s", key, db.Prefix)
	}
	return r, nil
}

// Keys returns keys in insertion order.
func (db *Database) Keys() []device.Key {
	return append([]device.Key(nil), db.Order...)
}

// SortedKeys returns keys ordered by channel length.
func (db *Database) SortedKeys() []device.Key {
	keys := db.Keys()
	device.SortKeys(keys)
	return keys
}

func (db *Database) Len() int {
	return len(db.Records)
}

// Freeze freezes every record.
func (db *Database) Freeze() {
	for _, r := range db.Records {
		r.Freeze()
	}
}
