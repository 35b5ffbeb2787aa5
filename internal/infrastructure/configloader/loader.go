package configloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Price source names.
const (
	PriceSourceCoinGecko   = "coingecko"
	PriceSourceDEXScreener = "dexscreener"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                string   `yaml:"port"`
	ReadTimeoutSeconds  int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int      `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int      `yaml:"idleTimeoutSeconds"`
	AllowedOrigins      []string `yaml:"allowedOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	APIKey               string `yaml:"apiKey"`
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	RequestsPerMinute    int    `yaml:"requestsPerMinute"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// TokenPriceServiceConfig holds batching configuration for token price lookups.
type TokenPriceServiceConfig struct {
	MaxTokensPerBatchRequest int   `yaml:"maxTokensPerBatchRequest"`
	RequestTimeoutMillis     int64 `yaml:"requestTimeoutMillis"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	RPCCallTimeoutSeconds    int `yaml:"rpcCallTimeoutSeconds"`
	MaxAddressesPerBatchCall int `yaml:"maxAddressesPerBatchCall"`
}

// DashboardConfig controls how dashboard rows are rendered.
type DashboardConfig struct {
	DefaultChainID         uint64 `yaml:"defaultChainId"`
	VsCurrency             string `yaml:"vsCurrency"`
	BalanceSigFigs         int    `yaml:"balanceSigFigs"`
	ReferenceFixedDecimals int    `yaml:"referenceFixedDecimals"`
	ValuePrecision         int    `yaml:"valuePrecision"`
	SwapPath               string `yaml:"swapPath"`
}

// ViewsConfig controls the lifetime of idle valuation views.
type ViewsConfig struct {
	IdleTTLMinutes         int    `yaml:"idleTTLMinutes"`
	CleanupIntervalMinutes int    `yaml:"cleanupIntervalMinutes"`
	WatchlistFile          string `yaml:"watchlistFile"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SpecPath string `yaml:"specPath"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server        ServerConfig            `yaml:"server"`
	Logging       LoggingConfig           `yaml:"logging"`
	CoinGecko     CoinGeckoConfig         `yaml:"coinGecko"`
	DEXScreener   DEXScreenerConfig       `yaml:"dexScreener"`
	PriceSource   string                  `yaml:"priceSource"`
	TokenPriceSvc TokenPriceServiceConfig `yaml:"tokenPriceService"`
	Performance   PerformanceConfig       `yaml:"performance"`
	Dashboard     DashboardConfig         `yaml:"dashboard"`
	Views         ViewsConfig             `yaml:"views"`
	Swagger       SwaggerConfig           `yaml:"swagger"`
	TokensDir     string                  `yaml:"tokensDir"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML data and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data: %v", err)
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
		logrus.Infof("CoinGecko.BaseURL not set, defaulting to %s", cfg.CoinGecko.BaseURL)
	}
	if cfg.CoinGecko.RequestTimeoutMillis <= 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
	}
	if cfg.CoinGecko.RequestsPerMinute <= 0 {
		// Public API allowance.
		cfg.CoinGecko.RequestsPerMinute = 30
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
		logrus.Infof("DEXScreener.BaseURL not set, defaulting to %s", cfg.DEXScreener.BaseURL)
	}
	if cfg.DEXScreener.RequestTimeoutMillis <= 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
	}

	if cfg.PriceSource == "" {
		cfg.PriceSource = PriceSourceCoinGecko
	}
	cfg.PriceSource = strings.ToLower(cfg.PriceSource)

	if cfg.TokenPriceSvc.MaxTokensPerBatchRequest <= 0 {
		cfg.TokenPriceSvc.MaxTokensPerBatchRequest = 30 // DEXScreener limit
		logrus.Infof("MaxTokensPerBatchRequest for TokenPriceSvc not set, defaulting to %d", cfg.TokenPriceSvc.MaxTokensPerBatchRequest)
	}
	if cfg.TokenPriceSvc.RequestTimeoutMillis <= 0 {
		if cfg.PriceSource == PriceSourceDEXScreener {
			cfg.TokenPriceSvc.RequestTimeoutMillis = cfg.DEXScreener.RequestTimeoutMillis
		} else {
			cfg.TokenPriceSvc.RequestTimeoutMillis = cfg.CoinGecko.RequestTimeoutMillis
		}
	}

	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}
	if cfg.Performance.MaxAddressesPerBatchCall <= 0 {
		cfg.Performance.MaxAddressesPerBatchCall = 100
	}

	if cfg.Dashboard.DefaultChainID == 0 {
		cfg.Dashboard.DefaultChainID = 1
	}
	if cfg.Dashboard.VsCurrency == "" {
		cfg.Dashboard.VsCurrency = "usd"
	}
	cfg.Dashboard.VsCurrency = strings.ToLower(cfg.Dashboard.VsCurrency)
	if cfg.Dashboard.BalanceSigFigs <= 0 {
		cfg.Dashboard.BalanceSigFigs = 4
	}
	if cfg.Dashboard.ReferenceFixedDecimals == 0 {
		cfg.Dashboard.ReferenceFixedDecimals = 2
	}
	if cfg.Dashboard.ValuePrecision <= 0 {
		cfg.Dashboard.ValuePrecision = 2
	}
	if cfg.Dashboard.SwapPath == "" {
		cfg.Dashboard.SwapPath = "/swap/"
	}

	if cfg.Views.IdleTTLMinutes <= 0 {
		cfg.Views.IdleTTLMinutes = 30
	}
	if cfg.Views.CleanupIntervalMinutes <= 0 {
		cfg.Views.CleanupIntervalMinutes = 5
	}

	if cfg.Swagger.SpecPath == "" {
		cfg.Swagger.SpecPath = "docs/swagger.yaml"
	}
	if cfg.TokensDir == "" {
		cfg.TokensDir = "data/tokens"
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	switch c.PriceSource {
	case PriceSourceCoinGecko, PriceSourceDEXScreener:
	default:
		return fmt.Errorf("unsupported priceSource %q", c.PriceSource)
	}
	if c.PriceSource == PriceSourceDEXScreener && c.Dashboard.VsCurrency != "usd" {
		logrus.Warnf("DEXScreener only quotes in usd, ignoring vsCurrency %q", c.Dashboard.VsCurrency)
		c.Dashboard.VsCurrency = "usd"
	}
	return nil
}
