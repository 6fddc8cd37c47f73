package testsupport

import (
	"path/filepath"
	"testing"

	"artreview/internal/config"
)

// NewConfig returns the default configuration rooted in a fresh temp
// directory. Both provider keys are set and the provider cache is off, so
// tests opt into caching explicitly.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Paths = config.Paths{
		StateDir: filepath.Join(root, "state"),
		LogDir:   filepath.Join(root, "logs"),
		CacheDir: filepath.Join(root, "cache"),
	}
	cfg.TMDB.APIKey = "test"
	cfg.FanartTV.APIKey = "test"
	cfg.Cache.Enabled = false
	return &cfg
}
