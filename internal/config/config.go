package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains on-disk locations for state, logs, and caches.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
	CacheDir string `toml:"cache_dir"`
}

// Kodi contains the JSON-RPC endpoint of the media library.
type Kodi struct {
	URL            string `toml:"url"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TMDB contains configuration for The Movie Database image API.
type TMDB struct {
	APIKey       string `toml:"api_key"`
	BaseURL      string `toml:"base_url"`
	ImageBaseURL string `toml:"image_base_url"`
	Language     string `toml:"language"`
}

// FanartTV contains configuration for the fanart.tv v3 API.
type FanartTV struct {
	APIKey    string `toml:"api_key"`
	ClientKey string `toml:"client_key"`
	BaseURL   string `toml:"base_url"`
}

// Artwork controls which slots are reviewed and how language compliance works.
type Artwork struct {
	PreferredLanguage string   `toml:"preferred_language"`
	MovieTypes        []string `toml:"movie_types"`
	TVShowTypes       []string `toml:"tvshow_types"`
	ArtistTypes       []string `toml:"artist_types"`
	AlbumTypes        []string `toml:"album_types"`
	// TextFreeTypes must carry no text to pass the automatic language filter.
	TextFreeTypes []string `toml:"text_free_types"`
	// AutoExtraCount is how many images automatic mode adds to an empty
	// multi-image slot. Zero leaves those slots to manual review.
	AutoExtraCount int `toml:"auto_extra_count"`
}

// Aggregator bounds provider fan-out per entry.
type Aggregator struct {
	MaxConcurrent          int `toml:"max_concurrent"`
	ProviderTimeoutSeconds int `toml:"provider_timeout_seconds"`
}

// Cache configures the provider response cache.
type Cache struct {
	Enabled        bool `toml:"enabled"`
	TTLHours       int  `toml:"ttl_hours"`
	RecentTTLHours int  `toml:"recent_ttl_hours"`
}

// Notifications configures ntfy pushes for unattended reviews.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for artreview.
//
// Configuration sections by subsystem:
//   - Paths: state database, logs, provider cache
//   - Kodi: media library JSON-RPC endpoint
//   - TMDB / FanartTV: artwork provider credentials
//   - Artwork: reviewed slots and language policy
//   - Aggregator: provider concurrency and timeouts
//   - Cache: provider response cache TTLs
//   - Notifications: ntfy topic for review summaries
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Kodi          Kodi          `toml:"kodi"`
	TMDB          TMDB          `toml:"tmdb"`
	FanartTV      FanartTV      `toml:"fanarttv"`
	Artwork       Artwork       `toml:"artwork"`
	Aggregator    Aggregator    `toml:"aggregator"`
	Cache         Cache         `toml:"cache"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// Load reads the configuration at path, or from the first standard location
// that exists when path is empty. A missing file yields the defaults. It
// returns the config, the path it settled on, and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse %s: %w", resolved, err)
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := ensureDir(parentDir(path)); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
