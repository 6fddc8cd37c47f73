package queue

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"artreview/internal/config"
	"artreview/internal/services"
)

// Store persists the review queue and its sessions in a SQLite file.
type Store struct {
	db       *sql.DB
	path     string
	lockPath string

	// mu serializes dequeue and resolve so an entry is handed out once.
	mu sync.Mutex
}

// connPragmas are applied by the driver to every new connection.
var connPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"synchronous(FULL)",
}

// Open creates the state directories if needed and opens the queue database,
// applying the schema on first use.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "queue", "open", "ensure directories", err)
	}

	path := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "queue", "open", path, err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, path: path, lockPath: cfg.LockPath()}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrPersistence, "queue", "open", "schema", err)
	}
	return store, nil
}

func dsn(path string) string {
	query := url.Values{"_pragma": connPragmas}
	return path + "?" + query.Encode()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle. Closing a nil store is a no-op.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// busyBackoff lists the waits between attempts when SQLite reports a lock.
var busyBackoff = []time.Duration{
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	// modernc reports SQLITE_BUSY (5) through a Code method.
	var coded interface{ Code() int }
	if errors.As(err, &coded) && coded.Code()&0xff == 5 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	err := op()
	for _, wait := range busyBackoff {
		if !isBusy(err) {
			return err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = op()
	}
	return err
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	return res, err
}

// withTx runs fn in a transaction. A busy database retries the whole unit.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// persistenceError classifies a storage failure. Context errors pass through
// so callers can tell cancellation apart from a broken database.
func persistenceError(operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return services.Wrap(services.ErrPersistence, "queue", operation, "", err)
}
