package queue

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in SQLite's user_version pragma.
const schemaVersion = 2

// ErrSchemaMismatch is returned when the database was written by a newer or
// incompatible build.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func readUserVersion(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}) (int, error) {
	var version int
	if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}

// upgrades lifts a database from the version it is keyed by to the next one.
var upgrades = map[int]string{
	// Sessions written before the scan flag existed were scanned before they
	// were stored.
	1: "ALTER TABLE sessions ADD COLUMN scan_completed INTEGER NOT NULL DEFAULT 1",
}

// migrate creates the schema on an empty database, upgrades older versions in
// place, and refuses anything newer than schemaVersion.
func (s *Store) migrate(ctx context.Context) error {
	version, err := readUserVersion(ctx, s.db)
	if err != nil {
		return err
	}
	switch {
	case version == schemaVersion:
		return nil
	case version > schemaVersion:
		return fmt.Errorf("%w: %s is at version %d, this build expects %d; remove it to start over",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if version == 0 {
			if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		} else {
			for v := version; v < schemaVersion; v++ {
				if _, err := tx.ExecContext(ctx, upgrades[v]); err != nil {
					return fmt.Errorf("upgrade schema from version %d: %w", v, err)
				}
			}
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
		return nil
	})
}
