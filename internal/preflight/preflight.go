package preflight

import (
	"context"

	"artreview/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	// Warning marks a failed check that does not block a review.
	Warning bool   `json:"warning,omitempty"`
	Detail  string `json:"detail"`
}

// Pinger is the part of the library client preflight needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunAll executes every check for the given config. A nil library skips the
// Kodi check.
func RunAll(ctx context.Context, cfg *config.Config, lib Pinger) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Cache.Enabled {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	}
	if lib != nil {
		results = append(results, CheckKodi(ctx, cfg.Kodi.URL, lib))
	}
	results = append(results,
		CheckProviderKey("TMDB", cfg.TMDB.APIKey),
		CheckProviderKey("fanart.tv", cfg.FanartTV.APIKey),
	)
	if !anyProvider(cfg) {
		results = append(results, Result{Name: "Providers", Detail: "no provider api key set; every slot will be skipped"})
	}
	return results
}

// Failed returns the blocking failures in results.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Warning {
			failed = append(failed, r)
		}
	}
	return failed
}

func anyProvider(cfg *config.Config) bool {
	return cfg.TMDB.APIKey != "" || cfg.FanartTV.APIKey != ""
}
