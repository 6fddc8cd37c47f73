package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfigLocation = "~/.config/artreview/config.toml"
	projectConfigName     = "artreview.toml"
)

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigLocation)
}

// locate resolves an explicit path, or searches the per-user location and
// then ./artreview.toml. With nothing found it settles on the per-user path.
func locate(explicit string) (string, bool, error) {
	var candidates []string
	if explicit != "" {
		p, err := ExpandPath(explicit)
		if err != nil {
			return "", false, err
		}
		candidates = []string{p}
	} else {
		user, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		project, err := filepath.Abs(projectConfigName)
		if err != nil {
			return "", false, err
		}
		candidates = []string{user, project}
	}

	for _, p := range candidates {
		info, err := os.Stat(p)
		switch {
		case err == nil && !info.IsDir():
			return p, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return candidates[0], false, nil
}

// ExpandPath resolves a leading ~ and returns a clean absolute path. The
// empty string is returned unchanged.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = home + p[1:]
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", p, err)
	}
	return abs, nil
}

func parentDir(p string) string { return filepath.Dir(p) }

func ensureDir(dir string) error { return os.MkdirAll(dir, 0o755) }

// EnsureDirectories creates the state and log directories, plus the cache
// directory when the provider cache is enabled.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir, c.Paths.LogDir}
	if c.Cache.Enabled && strings.TrimSpace(c.Paths.CacheDir) != "" {
		dirs = append(dirs, c.Paths.CacheDir)
	}
	for _, dir := range dirs {
		if err := ensureDir(dir); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath is the queue database inside the state directory.
func (c *Config) DatabasePath() string { return filepath.Join(c.Paths.StateDir, "artreview.db") }

// LockPath is the session lock file inside the state directory.
func (c *Config) LockPath() string { return filepath.Join(c.Paths.StateDir, "artreview.lock") }

// LogPath is the review log file.
func (c *Config) LogPath() string { return filepath.Join(c.Paths.LogDir, "artreview.log") }

// CachePath is the provider cache database.
func (c *Config) CachePath() string { return filepath.Join(c.Paths.CacheDir, "providers.db") }
