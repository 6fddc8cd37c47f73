// Package services defines shared utilities consumed by the review engine and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, queue entry IDs, art types, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the session loop
//     tell recoverable provider failures apart from fatal persistence ones.
package services
