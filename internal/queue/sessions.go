package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"artreview/internal/artwork"
	"artreview/internal/report"
	"artreview/internal/services"
)

// SessionRequest describes how a review session should start.
type SessionRequest struct {
	Scope      artwork.Scope
	Mode       artwork.PolicyMode
	Processing artwork.ProcessingMode
	// Resume continues the unfinished session instead of starting fresh.
	Resume bool
	// Discard drops an unfinished session and its queue before starting fresh.
	Discard bool
}

// SessionHandle is an open, locked review session. Close must be called to
// release the lock.
type SessionHandle struct {
	store   *Store
	lock    *flock.Flock
	Session *Session
	Resumed bool
	// Recovered counts in-review entries returned to pending on resume.
	Recovered int64
}

// OpenSession acquires the session lock and either resumes the unfinished
// session or starts a new one.
func (s *Store) OpenSession(ctx context.Context, req SessionRequest) (*SessionHandle, error) {
	ctx = ensureContext(ctx)
	lock := flock.New(s.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "queue", "session lock", s.lockPath, err)
	}
	if !locked {
		return nil, ErrSessionLocked
	}

	handle, err := s.openLocked(ctx, req)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	handle.lock = lock
	return handle, nil
}

func (s *Store) openLocked(ctx context.Context, req SessionRequest) (*SessionHandle, error) {
	existing, err := s.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}

	if req.Resume {
		if existing == nil {
			return nil, ErrNoSession
		}
		recovered, err := s.RecoverInReview(ctx)
		if err != nil {
			return nil, err
		}
		existing.Status = SessionActive
		if err := s.SaveSession(ctx, existing); err != nil {
			return nil, err
		}
		return &SessionHandle{store: s, Session: existing, Resumed: true, Recovered: recovered}, nil
	}

	if existing != nil && !req.Discard {
		return nil, fmt.Errorf("%w: session %s started %s", ErrSessionExists, existing.ID, existing.StartedAt.Local().Format(time.DateTime))
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:         uuid.NewString(),
		Scope:      req.Scope,
		Mode:       req.Mode,
		Processing: req.Processing,
		Status:     SessionActive,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	sess.Report = report.New(sess.ID, string(req.Scope), string(req.Mode), string(req.Processing), now)
	payload, err := json.Marshal(sess.Report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		// A fresh session always starts from an empty queue.
		if _, err := tx.ExecContext(ctx, "DELETE FROM queue_entries"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE status != ?", string(SessionCompleted)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO sessions ("+sessionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, NULL, 0, ?)",
			sess.ID,
			string(sess.Scope),
			string(sess.Mode),
			string(sess.Processing),
			string(sess.Status),
			formatTime(now),
			formatTime(now),
			string(payload),
		)
		return err
	})
	if err != nil {
		return nil, persistenceError("start session", err)
	}
	return &SessionHandle{store: s, Session: sess}, nil
}

// Save persists the session and its report.
func (h *SessionHandle) Save(ctx context.Context) error {
	return h.store.SaveSession(ctx, h.Session)
}

// Retire resolves an in-review entry and saves the session report in one
// transaction, so a recorded outcome and the queue row can never disagree.
func (h *SessionHandle) Retire(ctx context.Context, id int64, status Status) error {
	return h.store.RetireEntry(ctx, h.Session, id, status)
}

// MarkScanned records that the session's library scan finished.
func (h *SessionHandle) MarkScanned(ctx context.Context) error {
	return h.store.MarkScanCompleted(ctx, h.Session)
}

// Complete marks the session finished and keeps its report as the last report.
func (h *SessionHandle) Complete(ctx context.Context) error {
	return h.store.CompleteSession(ctx, h.Session)
}

// Close pauses a still-active session and releases the lock.
func (h *SessionHandle) Close() error {
	if h == nil {
		return nil
	}
	var saveErr error
	if h.Session != nil && h.Session.Status == SessionActive {
		h.Session.Status = SessionPaused
		saveErr = h.store.SaveSession(context.Background(), h.Session)
	}
	if h.lock != nil {
		if err := h.lock.Unlock(); err != nil && saveErr == nil {
			saveErr = fmt.Errorf("release session lock: %w", err)
		}
		h.lock = nil
	}
	return saveErr
}

// ActiveSession returns the unfinished session, or nil when there is none.
func (s *Store) ActiveSession(ctx context.Context) (*Session, error) {
	return s.sessionWhere(ctx, "active session",
		"status != ? ORDER BY started_at DESC LIMIT 1", string(SessionCompleted))
}

// LastReport returns the most recently completed session, or nil.
func (s *Store) LastReport(ctx context.Context) (*Session, error) {
	return s.sessionWhere(ctx, "last report",
		"status = ? ORDER BY completed_at DESC LIMIT 1", string(SessionCompleted))
}

// SaveSession persists session status, mode, and report.
func (s *Store) SaveSession(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("save session: nil session")
	}
	payload, err := encodeReport(sess.Report)
	if err != nil {
		return err
	}
	sess.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		"UPDATE sessions SET status = ?, mode = ?, updated_at = ?, report_json = ? WHERE id = ?",
		string(sess.Status), string(sess.Mode), formatTime(sess.UpdatedAt), payload, sess.ID,
	)
	if err != nil {
		return persistenceError("save session", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrPersistence, "queue", "save session", "session "+sess.ID+" not found", nil)
	}
	return nil
}

// RetireEntry deletes the in-review entry id as status and writes the session
// status and report in the same transaction. Nothing is committed when either
// statement fails.
func (s *Store) RetireEntry(ctx context.Context, sess *Session, id int64, status Status) error {
	if !status.Terminal() {
		return fmt.Errorf("resolve entry %d as %q: %w", id, status, ErrInvalidStatus)
	}
	if sess == nil {
		return errors.New("retire entry: nil session")
	}
	payload, err := encodeReport(sess.Report)
	if err != nil {
		return err
	}
	updated := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM queue_entries WHERE id = ? AND status = ?",
			id, string(StatusInReview),
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("resolve entry %d: %w", id, ErrNotInReview)
		}
		res, err = tx.ExecContext(ctx,
			"UPDATE sessions SET status = ?, mode = ?, updated_at = ?, report_json = ? WHERE id = ?",
			string(sess.Status), string(sess.Mode), formatTime(updated), payload, sess.ID,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errSessionMissing
		}
		return nil
	})
	switch {
	case err == nil:
		sess.UpdatedAt = updated
		return nil
	case errors.Is(err, ErrNotInReview):
		return err
	case errors.Is(err, errSessionMissing):
		return services.Wrap(services.ErrPersistence, "queue", "retire entry", "session "+sess.ID+" not found", nil)
	}
	return persistenceError("retire entry", err)
}

// MarkScanCompleted flags the session as fully scanned.
func (s *Store) MarkScanCompleted(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("mark scan completed: nil session")
	}
	res, err := s.execWithRetry(ctx,
		"UPDATE sessions SET scan_completed = 1, updated_at = ? WHERE id = ?",
		formatTime(time.Now()), sess.ID,
	)
	if err != nil {
		return persistenceError("mark scan completed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrPersistence, "queue", "mark scan completed", "session "+sess.ID+" not found", nil)
	}
	sess.ScanCompleted = true
	return nil
}

// CompleteSession finishes the session and drops any older completed sessions.
func (s *Store) CompleteSession(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("complete session: nil session")
	}
	now := time.Now().UTC()
	sess.Status = SessionCompleted
	sess.UpdatedAt = now
	sess.CompletedAt = &now
	if sess.Report != nil {
		sess.Report.MarkCompleted(now)
	}
	payload, err := encodeReport(sess.Report)
	if err != nil {
		return err
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"UPDATE sessions SET status = ?, updated_at = ?, completed_at = ?, report_json = ? WHERE id = ?",
			string(SessionCompleted), formatTime(now), formatTime(now), payload, sess.ID,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE status = ? AND id != ?", string(SessionCompleted), sess.ID)
		return err
	})
	if err != nil {
		return persistenceError("complete session", err)
	}
	return nil
}

func (s *Store) sessionWhere(ctx context.Context, operation, clause string, args ...any) (*Session, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+sessionColumns+" FROM sessions WHERE "+clause, args...)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError(operation, err)
	}
	return sess, nil
}

func scanSession(scanner rowScanner) (*Session, error) {
	var (
		sess         Session
		scope        string
		mode         string
		processing   string
		status       string
		startedRaw   sql.NullString
		updatedRaw   sql.NullString
		completedRaw sql.NullString
		scanned      int
		reportRaw    sql.NullString
	)
	if err := scanner.Scan(&sess.ID, &scope, &mode, &processing, &status,
		&startedRaw, &updatedRaw, &completedRaw, &scanned, &reportRaw); err != nil {
		return nil, err
	}
	sess.Scope = artwork.Scope(scope)
	sess.Mode = artwork.PolicyMode(mode)
	sess.Processing = artwork.ProcessingMode(processing)
	sess.Status = SessionStatus(status)
	sess.ScanCompleted = scanned != 0
	sess.StartedAt = parseTimeString(startedRaw)
	sess.UpdatedAt = parseTimeString(updatedRaw)
	if completedRaw.Valid {
		completed := parseTimeString(completedRaw)
		sess.CompletedAt = &completed
	}

	rep := &report.Report{}
	if reportRaw.Valid && reportRaw.String != "" {
		if err := json.Unmarshal([]byte(reportRaw.String), rep); err != nil {
			return nil, fmt.Errorf("decode session report: %w", err)
		}
	}
	if rep.SessionID == "" {
		rep = report.New(sess.ID, scope, mode, processing, sess.StartedAt)
	}
	sess.Report = rep
	return &sess, nil
}

func encodeReport(rep *report.Report) (string, error) {
	if rep == nil {
		return "{}", nil
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return string(payload), nil
}
