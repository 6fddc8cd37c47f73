// Package artwork defines the shared vocabulary of the review engine: media
// types, art types, processing scopes and modes, and the ArtworkCandidate value
// returned by providers.
//
// It also owns the pure helpers every other package relies on to agree about
// identity: URL normalisation for deduplication, language tag normalisation for
// compliance checks, numbered multi-image slot naming, and the ranking order used
// when candidates are presented or auto-applied.
//
// The package has no dependencies on storage, transport, or presentation so it
// can be imported from anywhere without cycles.
package artwork
