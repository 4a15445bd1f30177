package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/canvass-cli/internal/config"
	"github.com/sells-group/canvass-cli/pkg/geocode"
)

func providerNames(ps []geocode.Provider) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name()
	}
	return names
}

func TestBuildProviders(t *testing.T) {
	base := config.GeocodeConfig{Provider: "geocodio", RateLimit: 10, TimeoutSecs: 30, MaxAttempts: 3}

	tests := []struct {
		name   string
		mutate func(*config.GeocodeConfig)
		want   []string
	}{
		{name: "no keys", mutate: func(*config.GeocodeConfig) {}, want: []string{}},
		{name: "geocodio only", mutate: func(g *config.GeocodeConfig) { g.APIKey = "k" }, want: []string{"geocodio"}},
		{name: "google fallback", mutate: func(g *config.GeocodeConfig) {
			g.APIKey = "k"
			g.GoogleAPIKey = "g"
		}, want: []string{"geocodio", "google"}},
		{name: "google primary", mutate: func(g *config.GeocodeConfig) {
			g.Provider = "google"
			g.APIKey = "k"
			g.GoogleAPIKey = "g"
		}, want: []string{"google", "geocodio"}},
		{name: "google without geocodio key", mutate: func(g *config.GeocodeConfig) { g.GoogleAPIKey = "g" }, want: []string{"google"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := base
			tt.mutate(&g)
			assert.Equal(t, tt.want, providerNames(buildProviders(g)))
		})
	}
}

func TestInitGeocoder_NoKeys(t *testing.T) {
	setupCLI(t)
	cfg = &config.Config{Cache: config.CacheConfig{Driver: "none"}}

	client, closeFn, err := initGeocoder(context.Background())
	require.NoError(t, err)
	assert.Nil(t, client)
	closeFn()
}

func TestInitGeocoder_WrapsWithCache(t *testing.T) {
	dir := setupCLI(t)
	cfg = &config.Config{
		Geocode: config.GeocodeConfig{Provider: "geocodio", APIKey: "k", TimeoutSecs: 5, MaxAttempts: 1},
		Cache:   config.CacheConfig{Driver: "sqlite", Path: filepath.Join(dir, "cache.db"), TTLDays: 30},
	}

	client, closeFn, err := initGeocoder(context.Background())
	require.NoError(t, err)
	defer closeFn()

	_, ok := client.(*geocode.CachedClient)
	assert.True(t, ok, "expected cached client, got %T", client)
	assert.FileExists(t, filepath.Join(dir, "cache.db"))
}

func TestInitGeocoder_CacheFailureIsSoft(t *testing.T) {
	setupCLI(t)
	cfg = &config.Config{
		Geocode: config.GeocodeConfig{Provider: "geocodio", APIKey: "k", TimeoutSecs: 5, MaxAttempts: 1},
		Cache:   config.CacheConfig{Driver: "postgres"},
	}

	client, closeFn, err := initGeocoder(context.Background())
	require.NoError(t, err)
	defer closeFn()

	_, ok := client.(*geocode.Geocodio)
	assert.True(t, ok, "expected bare provider, got %T", client)
}
