package config

import (
	"time"

	"artreview/internal/artwork"
)

// ArtTypesFor returns the configured art types for a media type in review
// priority order. Unknown names are skipped; Validate rejects them earlier.
func (c *Config) ArtTypesFor(mediaType artwork.MediaType) []artwork.ArtType {
	var names []string
	switch mediaType {
	case artwork.MediaMovie:
		names = c.Artwork.MovieTypes
	case artwork.MediaTVShow:
		names = c.Artwork.TVShowTypes
	case artwork.MediaArtist:
		names = c.Artwork.ArtistTypes
	case artwork.MediaAlbum:
		names = c.Artwork.AlbumTypes
	}
	types := parseArtTypes(names)
	artwork.SortByPriority(types)
	return types
}

// LanguagePolicy returns the language rules for automatic compliance.
func (c *Config) LanguagePolicy() artwork.LanguagePolicy {
	return artwork.LanguagePolicy{
		Preferred: c.Artwork.PreferredLanguage,
		TextFree:  parseArtTypes(c.Artwork.TextFreeTypes),
	}
}

// ProviderTimeout returns the per-call provider timeout.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Aggregator.ProviderTimeoutSeconds) * time.Second
}

// KodiTimeout returns the JSON-RPC request timeout.
func (c *Config) KodiTimeout() time.Duration {
	return time.Duration(c.Kodi.TimeoutSeconds) * time.Second
}

// CacheTTL is how long cached provider payloads stay fresh.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// CacheRecentTTL is the shorter lifetime for recently released items.
func (c *Config) CacheRecentTTL() time.Duration {
	return time.Duration(c.Cache.RecentTTLHours) * time.Hour
}

// NtfyTimeout returns the per-request timeout for notifications.
func (c *Config) NtfyTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeoutSeconds) * time.Second
}

func parseArtTypes(names []string) []artwork.ArtType {
	types := make([]artwork.ArtType, 0, len(names))
	for _, name := range names {
		artType, err := artwork.ParseArtType(name)
		if err != nil {
			continue
		}
		types = append(types, artType)
	}
	return types
}
