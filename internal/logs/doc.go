// Package logs reads the review log file for the CLI.
//
// Manual reviews log to the file only, so "artreview logs" is the way to see
// what a session did. Last returns the final lines of the file, optionally
// restricted to lines containing a match string such as a session id, and
// Follow polls for appended lines until its context ends.
package logs
