package aggregate

import (
	"log/slog"
	"strings"

	"artreview/internal/config"
	"artreview/internal/logging"
	"artreview/internal/providers"
	"artreview/internal/providers/fanarttv"
	"artreview/internal/providers/tmdb"
)

// ProvidersFromConfig builds the configured providers in merge order. A
// provider without an API key is disabled with a log line.
func ProvidersFromConfig(cfg *config.Config, logger *slog.Logger) []providers.Provider {
	if logger == nil {
		logger = logging.NewNop()
	}
	var out []providers.Provider

	if strings.TrimSpace(cfg.TMDB.APIKey) == "" {
		logger.Info("tmdb provider disabled", logging.String("reason", "tmdb.api_key not set"))
	} else if client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.ImageBaseURL, cfg.TMDB.Language); err != nil {
		logging.WarnWithContext(logger, "tmdb provider disabled", "provider_config",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the [tmdb] config section"),
			logging.String(logging.FieldImpact, "tmdb candidates unavailable"),
		)
	} else {
		out = append(out, client)
	}

	if strings.TrimSpace(cfg.FanartTV.APIKey) == "" {
		logger.Info("fanart.tv provider disabled", logging.String("reason", "fanarttv.api_key not set"))
	} else if client, err := fanarttv.New(cfg.FanartTV.APIKey, cfg.FanartTV.ClientKey, cfg.FanartTV.BaseURL); err != nil {
		logging.WarnWithContext(logger, "fanart.tv provider disabled", "provider_config",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the [fanarttv] config section"),
			logging.String(logging.FieldImpact, "fanart.tv candidates unavailable"),
		)
	} else {
		out = append(out, client)
	}
	return out
}

// NewFromConfig creates an aggregator over the configured providers.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, cache Cache) *Aggregator {
	opts := []Option{
		WithMaxConcurrent(cfg.Aggregator.MaxConcurrent),
		WithTimeout(cfg.ProviderTimeout()),
		WithLogger(logger),
	}
	if cache != nil {
		opts = append(opts, WithCache(cache))
	}
	return New(ProvidersFromConfig(cfg, logger), opts...)
}
