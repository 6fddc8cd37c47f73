// Package logging builds the slog loggers used by artreview.
//
// Console output uses a compact single-line format that surfaces the session,
// queue entry and art type of each record; files and --json use slog's JSON
// handler. Context helpers attach those identifiers so callers do not repeat
// them on every call.
package logging
