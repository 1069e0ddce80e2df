package database

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	circuit    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	run_id   TEXT NOT NULL,
	geometry TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (run_id, geometry)
);
CREATE TABLE IF NOT EXISTS scalars (
	run_id   TEXT NOT NULL,
	geometry TEXT NOT NULL,
	name     TEXT NOT NULL,
	value    REAL,
	PRIMARY KEY (run_id, geometry, name)
);
CREATE TABLE IF NOT EXISTS series (
	run_id   TEXT NOT NULL,
	geometry TEXT NOT NULL,
	name     TEXT NOT NULL,
	idx      INTEGER NOT NULL,
	value    REAL,
	PRIMARY KEY (run_id, geometry, name, idx)
);
`

// ExportSQLite appends the given databases to the SQLite file at path,
// one transaction per database. NaN and infinite samples are stored as NULL.
func ExportSQLite(ctx context.Context, path string, dbs ...*Database) error {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.Wrapf(err, "open sqlite %s", path)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "create schema")
	}
	for _, db := range dbs {
		if err := exportOne(ctx, conn, db); err != nil {
			return errors.Wrapf(err, "export %s", db.Prefix)
		}
	}
	return nil
}

func exportOne(ctx context.Context, conn *sql.DB, db *Database) (err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, circuit, created_at) VALUES (?, ?, ?)`,
		db.RunID, db.Prefix, db.Created.Format(time.RFC3339Nano)); err != nil {
		return err
	}

	recStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO records (run_id, geometry, position) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer recStmt.Close()
	scalarStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO scalars (run_id, geometry, name, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer scalarStmt.Close()
	seriesStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO series (run_id, geometry, name, idx, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer seriesStmt.Close()

	for pos, key := range db.Order {
		rec := db.Records[key]
		if _, err = recStmt.ExecContext(ctx, db.RunID, string(key), pos); err != nil {
			return err
		}
		for _, name := range sortedNames(rec.Scalars) {
			if _, err = scalarStmt.ExecContext(ctx, db.RunID, string(key), name, nullable(rec.Scalars[name])); err != nil {
				return err
			}
		}
		for _, name := range sortedNames(rec.Series) {
			for i, v := range rec.Series[name] {
				if _, err = seriesStmt.ExecContext(ctx, db.RunID, string(key), name, i, nullable(v)); err != nil {
					return err
				}
			}
		}
	}
	return tx.Commit()
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// QueryScalar reads one exported scalar back.
func QueryScalar(ctx context.Context, path, runID, geometry, name string) (float64, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, errors.Wrapf(err, "open sqlite %s", path)
	}
	defer conn.Close()

	var v sql.NullFloat64
	err = conn.QueryRowContext(ctx,
		`SELECT value FROM scalars WHERE run_id = ? AND geometry = ? AND name = ?`,
		runID, geometry, name).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, errors.Wrapf(ErrMissingQuantity, "scalar %s/%s", geometry, name)
	}
	if err != nil {
		return 0, errors.Wrap(err, "query scalar")
	}
	if !v.Valid {
		return math.NaN(), nil
	}
	return v.Float64, nil
}
