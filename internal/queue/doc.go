// Package queue persists review entries and session state in SQLite.
//
// Entries move through a small state machine: pending rows are dequeued in
// insertion order and marked in_review, and resolving an in_review row with a
// terminal status (applied, skipped, stale) deletes it. A crash between
// dequeue and resolve leaves the row in_review; resuming a session puts such
// rows back to pending so nothing is lost.
//
// Sessions are exclusive. OpenSession takes a file lock next to the database
// and refuses to start while another process holds it. At most one unfinished
// session exists at a time, and only the most recently completed session is
// kept so its report can be shown as the last report.
//
// Schema changes bump the version in schema.go; users clear the database to
// adopt the new schema.
package queue
