package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

type AppConfig struct {
	Port string

	// Location store backend.
	DBDriver string
	DBPath   string
	DBDSN    string
	DBDebug  bool

	// SeedOnStartup inserts the default locations when the store is empty.
	SeedOnStartup bool

	// Upstream providers.
	GeocodingURL       string
	WeatherURL         string
	HTTPTimeout        time.Duration
	UpstreamMaxRetries int
	BreakerTimeout     time.Duration

	LogLevel  string
	LogFormat string

	// Client side.
	APIURL         string
	PollInterval   time.Duration
	SearchDebounce time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_driver", store.DriverSQLite)
	v.SetDefault("db_path", "weather.db")
	v.SetDefault("db_dsn", "")
	v.SetDefault("db_debug", false)
	v.SetDefault("seed_on_startup", true)
	v.SetDefault("geocoding_url", providers.DefaultGeocodingURL)
	v.SetDefault("weather_url", providers.DefaultForecastURL)
	v.SetDefault("http_timeout", "10s")
	v.SetDefault("upstream_max_retries", 0)
	v.SetDefault("breaker_timeout", "2m")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("poll_interval", "60s")
	v.SetDefault("search_debounce", "500ms")
}

// Load reads configuration from the environment (and a .env file when present)
// with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Port:          v.GetString("port"),
		DBDriver:      v.GetString("db_driver"),
		DBPath:        v.GetString("db_path"),
		DBDSN:         v.GetString("db_dsn"),
		DBDebug:       v.GetBool("db_debug"),
		SeedOnStartup: v.GetBool("seed_on_startup"),
		GeocodingURL:  v.GetString("geocoding_url"),
		WeatherURL:    v.GetString("weather_url"),
		LogLevel:      v.GetString("log_level"),
		LogFormat:     v.GetString("log_format"),
		APIURL:        v.GetString("api_url"),
	}

	switch cfg.DBDriver {
	case store.DriverSQLite, store.DriverMySQL, store.DriverMemory:
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q", cfg.DBDriver)
	}

	retries := v.GetInt("upstream_max_retries")
	if retries < 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_MAX_RETRIES: %d", retries)
	}
	cfg.UpstreamMaxRetries = retries

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"http_timeout", &cfg.HTTPTimeout},
		{"breaker_timeout", &cfg.BreakerTimeout},
		{"poll_interval", &cfg.PollInterval},
		{"search_debounce", &cfg.SearchDebounce},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", strings.ToUpper(d.key), err)
		}
		*d.dst = parsed
	}

	return cfg, nil
}

// StoreConfig returns the store settings.
func (c *AppConfig) StoreConfig() store.Config {
	return store.Config{
		Driver: c.DBDriver,
		Path:   c.DBPath,
		DSN:    c.DBDSN,
		Debug:  c.DBDebug,
	}
}
