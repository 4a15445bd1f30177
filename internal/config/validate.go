package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the settings a command mode depends on. Modes: "sort",
// "convert", "cache".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "sort":
		errs = append(errs, c.validateGeocode()...)
		errs = append(errs, c.validateCache()...)
	case "convert":
	case "cache":
		errs = append(errs, c.validateCache()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateGeocode() []string {
	var errs []string
	g := c.Geocode
	if g.Provider != "geocodio" && g.Provider != "google" {
		errs = append(errs, fmt.Sprintf("geocode.provider %q must be geocodio or google", g.Provider))
	}
	if g.Provider == "google" && g.GoogleAPIKey == "" {
		errs = append(errs, "geocode.google_api_key is required when provider is google")
	}
	if g.RateLimit < 0 {
		errs = append(errs, "geocode.rate_limit must be >= 0")
	}
	if g.TimeoutSecs <= 0 {
		errs = append(errs, "geocode.timeout_secs must be > 0")
	}
	if g.MaxAttempts < 1 || g.MaxAttempts > 10 {
		errs = append(errs, "geocode.max_attempts must be between 1 and 10")
	}
	if g.Concurrency < 1 || g.Concurrency > 50 {
		errs = append(errs, "geocode.concurrency must be between 1 and 50")
	}
	return errs
}

func (c *Config) validateCache() []string {
	var errs []string
	switch c.Cache.Driver {
	case "sqlite":
		if c.Cache.Path == "" {
			errs = append(errs, "cache.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Cache.DatabaseURL == "" {
			errs = append(errs, "cache.database_url is required for the postgres driver")
		}
	case "none", "":
	default:
		errs = append(errs, fmt.Sprintf("cache.driver %q must be sqlite, postgres or none", c.Cache.Driver))
	}
	if c.Cache.TTLDays < 0 {
		errs = append(errs, "cache.ttl_days must be >= 0")
	}
	return errs
}
