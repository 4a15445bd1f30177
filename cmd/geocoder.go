package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/canvass-cli/internal/config"
	"github.com/sells-group/canvass-cli/internal/geocache"
	"github.com/sells-group/canvass-cli/internal/resilience"
	"github.com/sells-group/canvass-cli/pkg/geocode"
)

// buildProviders returns the configured providers in lookup order. The
// primary provider comes first; the other is a fallback when it has a key.
func buildProviders(g config.GeocodeConfig) []geocode.Provider {
	opts := func(name string) []geocode.Option {
		policy := resilience.DefaultPolicy()
		policy.Attempts = g.MaxAttempts
		policy.OnRetry = resilience.LogRetries(name)
		breaker := resilience.NewBreaker(g.BreakerThreshold, g.BreakerCooldown()).
			OnStateChange(resilience.LogStateChanges(name))
		return []geocode.Option{
			geocode.WithTimeout(g.Timeout()),
			geocode.WithRateLimit(g.RateLimit),
			geocode.WithRetryPolicy(policy),
			geocode.WithBreaker(breaker),
		}
	}

	var geocodio, google geocode.Provider
	if g.APIKey != "" {
		o := opts("geocodio")
		if g.BaseURL != "" {
			o = append(o, geocode.WithBaseURL(g.BaseURL))
		}
		geocodio = geocode.NewGeocodio(g.APIKey, o...)
	}
	if g.GoogleAPIKey != "" {
		google = geocode.NewGoogle(g.GoogleAPIKey, opts("google")...)
	}

	ordered := []geocode.Provider{geocodio, google}
	if g.Provider == "google" {
		ordered = []geocode.Provider{google, geocodio}
	}

	var providers []geocode.Provider
	for _, p := range ordered {
		if p != nil {
			providers = append(providers, p)
		}
	}
	return providers
}

// initGeocoder assembles the geocoding client for a run. The returned
// client is nil when no provider has credentials. A cache that cannot be
// opened is logged and skipped.
func initGeocoder(ctx context.Context) (geocode.Client, func(), error) {
	noop := func() {}

	providers := buildProviders(cfg.Geocode)
	if len(providers) == 0 {
		zap.L().Warn("no geocoding API key configured; rows without coordinates will not be located (set CANVASS_GEOCODE_API_KEY)")
		return nil, noop, nil
	}

	var client geocode.Client = providers[0]
	if len(providers) > 1 {
		client = geocode.NewCascade(providers...)
	}

	store, err := geocache.Open(ctx, geocache.Options{
		Driver:      cfg.Cache.Driver,
		Path:        cfg.Cache.Path,
		DatabaseURL: cfg.Cache.DatabaseURL,
		TTL:         cfg.Cache.TTL(),
	})
	if err != nil {
		zap.L().Warn("geocode cache unavailable; continuing without it", zap.Error(err))
		return client, noop, nil
	}
	if store == nil {
		return client, noop, nil
	}

	return geocode.NewCachedClient(client, store), func() {
		if err := store.Close(); err != nil {
			zap.L().Warn("close geocode cache", zap.Error(err))
		}
	}, nil
}
