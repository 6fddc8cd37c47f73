// Package review runs artwork review sessions.
//
// A Scanner walks the library and enqueues one entry per missing (and,
// optionally, populated) art slot. The Engine then drains the queue one entry
// at a time: every entry is re-validated against the library before any
// provider is contacted, candidates are aggregated, a policy.Resolver decides,
// and the outcome is retired from the queue and recorded in the session
// report. Progress survives restarts because every decision is committed
// before the next entry is dequeued.
package review
