package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"artreview/internal/artwork"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateKodi(); err != nil {
		return err
	}
	if err := c.validateArtwork(); err != nil {
		return err
	}
	if err := c.validateAggregator(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateKodi() error {
	parsed, err := url.Parse(c.Kodi.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("kodi.url must be an absolute http(s) URL, got %q", c.Kodi.URL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("kodi.url scheme must be http or https, got %q", parsed.Scheme)
	}
	return nil
}

func (c *Config) validateArtwork() error {
	lists := []struct {
		key    string
		values []string
		multi  bool
	}{
		{"artwork.movie_types", c.Artwork.MovieTypes, true},
		{"artwork.tvshow_types", c.Artwork.TVShowTypes, true},
		{"artwork.artist_types", c.Artwork.ArtistTypes, false},
		{"artwork.album_types", c.Artwork.AlbumTypes, false},
		{"artwork.text_free_types", c.Artwork.TextFreeTypes, true},
	}
	for _, list := range lists {
		for _, value := range list.values {
			artType, err := artwork.ParseArtType(value)
			if err != nil {
				return fmt.Errorf("%s: %w", list.key, err)
			}
			if artType.IsMulti() && !list.multi {
				return fmt.Errorf("%s: %s is only supported for movies and tv shows", list.key, artType)
			}
		}
	}
	if strings.ContainsAny(c.Artwork.PreferredLanguage, " ,;") {
		return errors.New("artwork.preferred_language must be a single language tag")
	}
	return nil
}

func (c *Config) validateAggregator() error {
	if c.Aggregator.MaxConcurrent > maxAggregatorConcurrency {
		return fmt.Errorf("aggregator.max_concurrent must be between 1 and %d", maxAggregatorConcurrency)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("notifications.ntfy_topic must be a full topic URL such as https://ntfy.sh/artwork, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
