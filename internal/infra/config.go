package infra

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // embedded zone database for api.coingecko.location

	"gopkg.in/yaml.v3"
)

var (
	// currentUserAgent is protected by a mutex so it can be swapped at runtime
	uaMu             sync.RWMutex
	currentUserAgent = PlatformUserAgent("CryptoAdda", "dev")
)

// GetUserAgent returns the current active User-Agent string. (Thread-safe)
func GetUserAgent() string {
	uaMu.RLock()
	defer uaMu.RUnlock()
	return currentUserAgent
}

// SetUserAgent updates the global User-Agent string. (Thread-safe)
func SetUserAgent(ua string) {
	uaMu.Lock()
	defer uaMu.Unlock()
	currentUserAgent = ua
}

// PlatformUserAgent identifies the app and the host platform,
// e.g. "CryptoAdda/1.0.0 (linux; amd64)".
func PlatformUserAgent(name, version string) string {
	if name == "" {
		name = "CryptoAdda"
	}
	if version == "" {
		version = "dev"
	}
	name = strings.ReplaceAll(name, " ", "-")
	return fmt.Sprintf("%s/%s (%s; %s)", name, version, runtime.GOOS, runtime.GOARCH)
}

// Storage drivers for the bookmark store.
const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
)

// Config holds every setting of the dashboard backend.
// Values from the yaml file are overridden by environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		CoinGecko struct {
			RestURL       string `yaml:"rest_url"`
			APIKey        string `yaml:"api_key"`
			VsCurrency    string `yaml:"vs_currency"`
			PerPage       int    `yaml:"per_page"`
			HistoryDays   int    `yaml:"history_days"`
			TimeoutMS     int    `yaml:"timeout_ms"`
			RatePerMinute int    `yaml:"rate_per_minute"`
			Location      string `yaml:"location"` // IANA zone used for date labels
		} `yaml:"coingecko"`
	} `yaml:"api"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		Driver string `yaml:"driver"` // "sqlite" or "file"
	} `yaml:"storage"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // "text" or "json"
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration that works against the public API.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "CryptoAdda"
	cfg.App.Version = "1.0.0"
	cfg.API.CoinGecko.RestURL = "https://api.coingecko.com/api/v3"
	cfg.API.CoinGecko.VsCurrency = "usd"
	cfg.API.CoinGecko.PerPage = 250
	cfg.API.CoinGecko.HistoryDays = 90
	cfg.API.CoinGecko.TimeoutMS = 10000
	cfg.API.CoinGecko.RatePerMinute = 30
	cfg.Server.Addr = ":8080"
	cfg.Storage.Driver = StorageSQLite
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	return &cfg
}

// LoadConfig reads and parses the yaml file at path on top of DefaultConfig.
// A missing file is not an error: defaults plus environment are used.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// run on defaults
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	cg := c.API.CoinGecko
	if !strings.HasPrefix(cg.RestURL, "http://") && !strings.HasPrefix(cg.RestURL, "https://") {
		return fmt.Errorf("invalid CoinGecko REST URL: %s", cg.RestURL)
	}
	if cg.PerPage <= 0 || cg.PerPage > 250 {
		return fmt.Errorf("per_page must be between 1 and 250, got %d", cg.PerPage)
	}
	if cg.HistoryDays <= 0 {
		return fmt.Errorf("history_days must be positive")
	}
	if cg.TimeoutMS <= 0 {
		return fmt.Errorf("timeout_ms must be positive")
	}
	if cg.RatePerMinute <= 0 {
		return fmt.Errorf("rate_per_minute must be positive")
	}
	if cg.Location != "" {
		if _, err := time.LoadLocation(cg.Location); err != nil {
			return fmt.Errorf("invalid location %q: %w", cg.Location, err)
		}
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}

	switch c.Storage.Driver {
	case StorageSQLite, StorageFile:
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	return nil
}

// RequestTimeout is the fixed transport timeout applied to every provider call.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.CoinGecko.TimeoutMS) * time.Millisecond
}

// DateLocation is the zone in which provider timestamps become calendar labels.
func (c *Config) DateLocation() *time.Location {
	if c.API.CoinGecko.Location == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.API.CoinGecko.Location)
	if err != nil {
		return time.Local
	}
	return loc
}

// overrideWithEnv overrides config values with environment variables when set.
// Environment always wins over the config file.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("CRYPTO_CG_API_KEY"); key != "" {
		cfg.API.CoinGecko.APIKey = key
	}
	if addr := os.Getenv("CRYPTO_SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if lvl := os.Getenv("CRYPTO_LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = strings.ToLower(lvl)
	}
}
