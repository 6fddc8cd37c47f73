// Package config reads artreview's TOML configuration.
//
// Load fills gaps from built-in defaults, expands ~ in paths, and falls back
// to TMDB_API_KEY, FANARTTV_API_KEY and KODI_PASSWORD from the environment. A
// provider without a key is disabled rather than treated as an error.
package config
