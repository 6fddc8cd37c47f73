package queue

import "errors"

var (
	// ErrNotInReview is returned when resolving or releasing an entry that
	// is not currently in review.
	ErrNotInReview = errors.New("entry is not in review")
	// ErrInvalidStatus is returned when resolving with a non-terminal status.
	ErrInvalidStatus = errors.New("status is not terminal")
	// ErrSessionLocked is returned when another process owns the session lock.
	ErrSessionLocked = errors.New("another review session is running")
	// ErrSessionExists is returned when starting fresh while an unfinished
	// session exists and discard was not requested.
	ErrSessionExists = errors.New("an unfinished review session exists")
	// ErrNoSession is returned when resuming without an unfinished session.
	ErrNoSession = errors.New("no unfinished review session")

	errSessionMissing = errors.New("session row missing")
)
