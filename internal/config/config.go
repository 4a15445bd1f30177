package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig       `yaml:"log" mapstructure:"log"`
	Geocode    GeocodeConfig   `yaml:"geocode" mapstructure:"geocode"`
	Cache      CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Territory  TerritoryConfig `yaml:"territory" mapstructure:"territory"`
	Enrich     EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Validation ValidateConfig  `yaml:"validate" mapstructure:"validate"`
}

// GeocodeConfig configures the geocoding providers.
type GeocodeConfig struct {
	Provider     string  `yaml:"provider" mapstructure:"provider"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey       string  `yaml:"api_key" mapstructure:"api_key"`
	GoogleAPIKey string  `yaml:"google_api_key" mapstructure:"google_api_key"`
	RateLimit    float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts  int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	Concurrency  int     `yaml:"concurrency" mapstructure:"concurrency"`

	// Consecutive transient failures before a provider is skipped, and how
	// long it is skipped for.
	BreakerThreshold    int `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownSecs int `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// Timeout returns the per-request HTTP timeout.
func (g GeocodeConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// BreakerCooldown returns how long a tripped provider is skipped.
func (g GeocodeConfig) BreakerCooldown() time.Duration {
	return time.Duration(g.BreakerCooldownSecs) * time.Second
}

// CacheConfig configures the geocode result cache.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite", "postgres" or "none"
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	TTLDays     int    `yaml:"ttl_days" mapstructure:"ttl_days"`
}

// TTL returns the cache entry lifetime; zero means entries never expire.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

// TerritoryConfig supplies territory labels directly instead of parsing
// them from the input file name.
type TerritoryConfig struct {
	Type   string `yaml:"type" mapstructure:"type"`
	Number string `yaml:"number" mapstructure:"number"`
}

// EnrichConfig configures address enrichment.
type EnrichConfig struct {
	StampAll bool `yaml:"stamp_all" mapstructure:"stamp_all"`
}

// ValidateConfig configures coordinate validation.
type ValidateConfig struct {
	Strict bool `yaml:"strict" mapstructure:"strict"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CANVASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("geocode.provider", "geocodio")
	v.SetDefault("geocode.base_url", "https://api.geocod.io/v1.7")
	v.SetDefault("geocode.api_key", "")
	v.SetDefault("geocode.google_api_key", "")
	v.SetDefault("geocode.rate_limit", 10)
	v.SetDefault("geocode.timeout_secs", 30)
	v.SetDefault("geocode.max_attempts", 3)
	v.SetDefault("geocode.concurrency", 1)
	v.SetDefault("geocode.breaker_threshold", 5)
	v.SetDefault("geocode.breaker_cooldown_secs", 30)
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.path", "geocode-cache.db")
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.ttl_days", 90)
	v.SetDefault("territory.type", "")
	v.SetDefault("territory.number", "")
	v.SetDefault("enrich.stamp_all", true)
	v.SetDefault("validate.strict", false)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
