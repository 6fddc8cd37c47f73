package config

const (
	defaultStateDir               = "~/.local/share/artreview"
	defaultLogDir                 = "~/.local/share/artreview/logs"
	defaultCacheDir               = "~/.cache/artreview"
	defaultKodiURL                = "http://localhost:8080/jsonrpc"
	defaultKodiTimeoutSeconds     = 15
	defaultTMDBBaseURL            = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL       = "https://image.tmdb.org/t/p/original"
	defaultTMDBLanguage           = "en"
	defaultFanartTVBaseURL        = "https://webservice.fanart.tv/v3"
	defaultPreferredLanguage      = "en"
	defaultAggregatorConcurrency  = 3
	defaultProviderTimeoutSeconds = 10
	defaultCacheTTLHours          = 7 * 24
	defaultCacheRecentTTLHours    = 24
	defaultNtfyTimeoutSeconds     = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	maxAggregatorConcurrency      = 4
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir,
		},
		Kodi: Kodi{
			URL:            defaultKodiURL,
			TimeoutSeconds: defaultKodiTimeoutSeconds,
		},
		TMDB: TMDB{
			BaseURL:      defaultTMDBBaseURL,
			ImageBaseURL: defaultTMDBImageBaseURL,
			Language:     defaultTMDBLanguage,
		},
		FanartTV: FanartTV{
			BaseURL: defaultFanartTVBaseURL,
		},
		Artwork: Artwork{
			PreferredLanguage: defaultPreferredLanguage,
			MovieTypes:        []string{"poster", "fanart", "clearlogo", "clearart", "banner", "landscape", "discart", "keyart"},
			TVShowTypes:       []string{"poster", "fanart", "clearlogo", "clearart", "banner", "landscape", "characterart"},
			ArtistTypes:       []string{"thumb", "fanart", "clearlogo", "banner"},
			AlbumTypes:        []string{"thumb", "discart"},
			TextFreeTypes:     []string{"fanart", "keyart", "extrafanart"},
		},
		Aggregator: Aggregator{
			MaxConcurrent:          defaultAggregatorConcurrency,
			ProviderTimeoutSeconds: defaultProviderTimeoutSeconds,
		},
		Cache: Cache{
			Enabled:        true,
			TTLHours:       defaultCacheTTLHours,
			RecentTTLHours: defaultCacheRecentTTLHours,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
