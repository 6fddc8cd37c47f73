// Package preflight provides readiness checks for the directories and
// services a review depends on.
//
// The CLI "artreview status" command runs RunAll to display them; "review"
// runs the same Kodi check before opening a session so an unreachable
// library fails fast instead of after the scan lock is taken.
package preflight
