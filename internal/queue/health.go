package queue

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"
)

var requiredTables = []string{"queue_entries", "sessions"}

// CheckHealth inspects the database file and reports what it finds. A missing
// file is not an error; the returned error describes the first failing probe.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}
	if s.path == "" {
		return health, errors.New("queue database path is unknown")
	}
	switch info, err := os.Stat(s.path); {
	case errors.Is(err, fs.ErrNotExist):
		return health, nil
	case err != nil:
		return health, fmt.Errorf("stat queue database: %w", err)
	case info.IsDir():
		return health, fmt.Errorf("queue database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	ctx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	fail := func(probe string, err error) (DatabaseHealth, error) {
		health.Error = err.Error()
		return health, fmt.Errorf("%s: %w", probe, err)
	}

	if err := s.db.PingContext(ctx); err != nil {
		return fail("ping queue database", err)
	}
	health.DatabaseReadable = true

	tables, err := s.tableNames(ctx)
	if err != nil {
		return fail("list tables", err)
	}
	for _, name := range requiredTables {
		if slices.Contains(tables, name) {
			health.TablesPresent = append(health.TablesPresent, name)
		} else {
			health.MissingTables = append(health.MissingTables, name)
		}
	}

	if health.SchemaVersion, err = readUserVersion(ctx, s.db); err != nil {
		return fail("read schema version", err)
	}
	if slices.Contains(tables, "queue_entries") {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM queue_entries").Scan(&health.TotalEntries); err != nil {
			return fail("count queue entries", err)
		}
	}

	var verdict string
	if err := s.db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&verdict); err != nil {
		return fail("integrity check", err)
	}
	health.IntegrityCheck = verdict == "ok"
	return health, nil
}

func (s *Store) tableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_schema WHERE type = 'table'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
