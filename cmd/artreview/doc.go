// Command artreview finds missing artwork in a Kodi library and reviews
// candidates from TMDB and fanart.tv, either interactively or automatically.
//
// A review runs inside a session that can be paused with Ctrl-C and resumed
// later with --resume; the queue and the session report live in a SQLite
// database under the configured state directory.
package main
