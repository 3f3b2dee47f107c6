package configloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServiceConfig identifies the service in responses and logs.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// DEXScreenerConfig holds DEX Screener API configuration.
type DEXScreenerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// PricingConfig holds price-source behavior configuration.
type PricingConfig struct {
	MaxTokensPerBatchRequest int     `yaml:"maxTokensPerBatchRequest"`
	CacheTTLMinutes          int     `yaml:"cacheTTLMinutes"`
	RequestsPerSecond        float64 `yaml:"requestsPerSecond"`
}

// AdviceConfig holds the text-generation collaborator configuration. The API
// key may also come from the ADVICE_API_KEY environment variable, which takes
// precedence over the file.
type AdviceConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"`
	Model                string `yaml:"model"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// PaymentConfig holds the paid-request gate configuration.
type PaymentConfig struct {
	Enabled          bool   `yaml:"enabled"`
	ReceivingAddress string `yaml:"receivingAddress"`
	PriceUSD         string `yaml:"priceUsd"`
}

// PerformanceConfig holds performance-related configuration.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"max_concurrent_routines"`
	RPCCallTimeoutSeconds int `yaml:"rpc_call_timeout_seconds"`
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// Config is the top-level configuration structure. Loaded once at startup and
// treated as read-only for the process lifetime.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Service     ServiceConfig     `yaml:"service"`
	Logging     LoggingConfig     `yaml:"logging"`
	DEXScreener DEXScreenerConfig `yaml:"dexScreener"`
	Pricing     PricingConfig     `yaml:"pricing"`
	Advice      AdviceConfig      `yaml:"advice"`
	Payment     PaymentConfig     `yaml:"payment"`
	Performance PerformanceConfig `yaml:"performance"`
}

// Load reads the YAML configuration file and applies defaults. A missing file
// is not an error; the defaults make a usable config on their own.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if key := os.Getenv("ADVICE_API_KEY"); key != "" {
		cfg.Advice.APIKey = key
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 120
	}

	if cfg.Service.Name == "" {
		cfg.Service.Name = "wallet-exposure-advisor"
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = "dev"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
	}
	if cfg.DEXScreener.RequestTimeoutMillis <= 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
	}

	if cfg.Pricing.MaxTokensPerBatchRequest <= 0 {
		cfg.Pricing.MaxTokensPerBatchRequest = 30 // DEX Screener limit
	}
	if cfg.Pricing.CacheTTLMinutes <= 0 {
		cfg.Pricing.CacheTTLMinutes = 5
	}
	if cfg.Pricing.RequestsPerSecond <= 0 {
		cfg.Pricing.RequestsPerSecond = 5
	}

	if cfg.Advice.BaseURL == "" {
		cfg.Advice.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Advice.Model == "" {
		cfg.Advice.Model = "gpt-4o-mini"
	}
	if cfg.Advice.RequestTimeoutMillis <= 0 {
		cfg.Advice.RequestTimeoutMillis = 20000
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}
	if cfg.Performance.RequestTimeoutSeconds <= 0 {
		cfg.Performance.RequestTimeoutSeconds = 30
	}
}
