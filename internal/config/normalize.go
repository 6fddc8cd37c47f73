package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeKodi()
	c.normalizeTMDB()
	c.normalizeFanartTV()
	c.normalizeArtwork()
	c.normalizeAggregator()
	c.normalizeCache()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	for _, p := range []struct {
		key   string
		value *string
		def   string
	}{
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"paths.cache_dir", &c.Paths.CacheDir, defaultCacheDir},
	} {
		raw := strings.TrimSpace(*p.value)
		if raw == "" {
			raw = p.def
		}
		expanded, err := ExpandPath(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", p.key, err)
		}
		*p.value = expanded
	}
	return nil
}

func (c *Config) normalizeKodi() {
	c.Kodi.URL = strings.TrimSpace(c.Kodi.URL)
	if c.Kodi.URL == "" {
		c.Kodi.URL = defaultKodiURL
	}
	if c.Kodi.Password == "" {
		if value, ok := os.LookupEnv("KODI_PASSWORD"); ok {
			c.Kodi.Password = value
		}
	}
	if c.Kodi.TimeoutSeconds <= 0 {
		c.Kodi.TimeoutSeconds = defaultKodiTimeoutSeconds
	}
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
}

func (c *Config) normalizeFanartTV() {
	if c.FanartTV.APIKey == "" {
		if value, ok := os.LookupEnv("FANARTTV_API_KEY"); ok {
			c.FanartTV.APIKey = value
		}
	}
	c.FanartTV.APIKey = strings.TrimSpace(c.FanartTV.APIKey)
	c.FanartTV.ClientKey = strings.TrimSpace(c.FanartTV.ClientKey)
	c.FanartTV.BaseURL = strings.TrimSpace(c.FanartTV.BaseURL)
	if c.FanartTV.BaseURL == "" {
		c.FanartTV.BaseURL = defaultFanartTVBaseURL
	}
}

func (c *Config) normalizeArtwork() {
	c.Artwork.PreferredLanguage = strings.ToLower(strings.TrimSpace(c.Artwork.PreferredLanguage))
	c.Artwork.MovieTypes = normalizeList(c.Artwork.MovieTypes)
	c.Artwork.TVShowTypes = normalizeList(c.Artwork.TVShowTypes)
	c.Artwork.ArtistTypes = normalizeList(c.Artwork.ArtistTypes)
	c.Artwork.AlbumTypes = normalizeList(c.Artwork.AlbumTypes)
	c.Artwork.TextFreeTypes = normalizeList(c.Artwork.TextFreeTypes)
	if c.Artwork.AutoExtraCount < 0 {
		c.Artwork.AutoExtraCount = 0
	}
}

func (c *Config) normalizeAggregator() {
	if c.Aggregator.MaxConcurrent <= 0 {
		c.Aggregator.MaxConcurrent = defaultAggregatorConcurrency
	}
	if c.Aggregator.ProviderTimeoutSeconds <= 0 {
		c.Aggregator.ProviderTimeoutSeconds = defaultProviderTimeoutSeconds
	}
}

func (c *Config) normalizeCache() {
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = defaultCacheTTLHours
	}
	if c.Cache.RecentTTLHours <= 0 {
		c.Cache.RecentTTLHours = defaultCacheRecentTTLHours
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
