package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/vicinity/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Storage     StorageConfig   `toml:"storage"`
	Discovery   DiscoveryConfig `toml:"discovery"`
	Providers   ProvidersConfig `toml:"providers"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// DiscoveryConfig tunes the orchestration, dedup, ranking and cache layers.
type DiscoveryConfig struct {
	MinPrimaryResults       int           `toml:"min_primary_results" validate:"gt=0"`
	MaxResults              int           `toml:"max_results" validate:"gt=0"`
	DedupDistanceMeters     float64       `toml:"dedup_distance_meters" validate:"gt=0"`
	NameSimilarityThreshold float64       `toml:"name_similarity_threshold" validate:"gte=0,lte=1"`
	MaxRadiusMeters         int           `toml:"max_radius_meters" validate:"gt=0"`
	RadiusWidenFactor       float64       `toml:"radius_widen_factor" validate:"gt=1"`
	NegativeCacheTTL        time.Duration `toml:"negative_cache_ttl" validate:"gt=0"`
	PositiveCacheTTL        time.Duration `toml:"positive_cache_ttl" validate:"gt=0"`
	SponsorBoostCap         float64       `toml:"sponsor_boost_cap" validate:"gte=0"`
	ProviderPriority        []string      `toml:"provider_priority"` // highest priority first, wins dedup conflicts
}

// ProvidersConfig holds per-provider settings. Primary is the commercial
// places index, secondary the tourism/culture POI index.
type ProvidersConfig struct {
	GooglePlaces ProviderConfig `toml:"googleplaces"`
	OpenTripMap  ProviderConfig `toml:"opentripmap"`
}

// ProviderConfig is one external provider's credentials and budgets.
type ProviderConfig struct {
	APIKey     string        `toml:"api_key"`
	BaseURL    string        `toml:"base_url"`
	Timeout    time.Duration `toml:"timeout" validate:"gt=0"`
	DailyCap   int           `toml:"daily_cap" validate:"gt=0"`
	RPMCap     int           `toml:"rpm_cap" validate:"gt=0"`
	RatePerSec float64       `toml:"rate_per_sec"` // courtesy pacing inside the transport, 0 = unlimited
}

// NewDefaultConfig returns the built-in defaults. File, environment and flag
// values layer on top.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/vicinity",
			},
		},
		Discovery: DiscoveryConfig{
			MinPrimaryResults:       25,
			MaxResults:              40,
			DedupDistanceMeters:     70,
			NameSimilarityThreshold: 0.55,
			MaxRadiusMeters:         12000,
			RadiusWidenFactor:       2.0,
			NegativeCacheTTL:        45 * time.Second,
			PositiveCacheTTL:        20 * time.Minute,
			SponsorBoostCap:         0.15,
			ProviderPriority:        []string{"googleplaces", "opentripmap"},
		},
		Providers: ProvidersConfig{
			GooglePlaces: ProviderConfig{
				BaseURL:    "https://maps.googleapis.com/maps/api/place",
				Timeout:    10 * time.Second,
				DailyCap:   1000,
				RPMCap:     60,
				RatePerSec: 10,
			},
			OpenTripMap: ProviderConfig{
				BaseURL:    "https://api.opentripmap.com/0.1",
				Timeout:    8 * time.Second,
				DailyCap:   2000,
				RPMCap:     120,
				RatePerSec: 10,
			},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VICINITY_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("VICINITY_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VICINITY_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if level := os.Getenv("VICINITY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("VICINITY_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	if key := os.Getenv("VICINITY_GOOGLE_PLACES_API_KEY"); key != "" {
		config.Providers.GooglePlaces.APIKey = key
	}
	if key := os.Getenv("VICINITY_OPENTRIPMAP_API_KEY"); key != "" {
		config.Providers.OpenTripMap.APIKey = key
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks structural validity of the configuration. Provider
// credentials are checked separately at startup because missing keys must be
// fatal before the first request degrades silently.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if len(c.Discovery.ProviderPriority) == 0 {
		return fmt.Errorf("invalid configuration: discovery.provider_priority must not be empty")
	}

	return nil
}

// ResolveAPIKey resolves an API key by provider name with environment
// variable priority. Resolution order: environment → KV store → config
// fallback → error.
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"googleplaces": {"VICINITY_GOOGLE_PLACES_API_KEY", "GOOGLE_PLACES_API_KEY"},
		"opentripmap":  {"VICINITY_OPENTRIPMAP_API_KEY", "OPENTRIPMAP_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name+"_api_key")
		if err == nil && strings.TrimSpace(apiKey) != "" {
			return apiKey, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
