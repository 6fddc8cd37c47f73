package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"artreview/internal/artcache"
	"artreview/internal/config"
	"artreview/internal/queue"
)

// commandContext is shared by every subcommand. Configuration is loaded at
// most once per invocation.
type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	loadConfig func() (*config.Config, error)
	configPath string
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	c := &commandContext{configFlag: configFlag, jsonFlag: jsonFlag}
	c.loadConfig = sync.OnceValues(func() (*config.Config, error) {
		cfg, resolved, _, err := config.Load(strings.TrimSpace(deref(c.configFlag)))
		if err != nil {
			return nil, err
		}
		c.configPath = resolved
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, err
		}
		return cfg, nil
	})
	return c
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	return c.loadConfig()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// JSONMode reports whether --json was passed.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withStore opens the queue database for the duration of fn.
func (c *commandContext) withStore(fn func(*queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue database: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// withCache opens the provider cache for the duration of fn.
func (c *commandContext) withCache(fn func(*artcache.Cache) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		return errors.New("provider cache is disabled ([cache] enabled = false)")
	}
	cache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer cache.Close()
	return fn(cache)
}

func openCache(cfg *config.Config) (*artcache.Cache, error) {
	cache, err := artcache.Open(cfg.CachePath(), cfg.CacheTTL(), cfg.CacheRecentTTL())
	if err != nil {
		return nil, fmt.Errorf("open provider cache: %w", err)
	}
	return cache, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
