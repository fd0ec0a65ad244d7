// Package common provides shared utilities for Optifolio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Optifolio
type Config struct {
	Environment  string        `toml:"environment"`
	BaseCurrency string        `toml:"base_currency"` // reporting currency for portfolio totals
	Server       ServerConfig  `toml:"server"`
	Clients      ClientsConfig `toml:"clients"`
	Logging      LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo  YahooConfig  `toml:"yahoo"`
	Gemini GeminiConfig `toml:"gemini"`
}

// YahooConfig holds Yahoo Finance API configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration.
// ModelPool is the ordered fallback pool tried after the preferred model.
type GeminiConfig struct {
	APIKey    string   `toml:"api_key"`
	Model     string   `toml:"model"`
	ModelPool []string `toml:"model_pool"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment:  "development",
		BaseCurrency: "SEK",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.5-flash",
				ModelPool: []string{
					"gemini-2.5-flash",
					"gemini-2.5-flash-lite",
					"gemini-2.5-pro",
					"gemini-flash-latest",
				},
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	config.BaseCurrency = strings.ToUpper(config.BaseCurrency)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("OPTIFOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("OPTIFOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("OPTIFOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("OPTIFOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if cur := os.Getenv("OPTIFOLIO_BASE_CURRENCY"); cur != "" {
		config.BaseCurrency = strings.ToUpper(cur)
	}

	if model := os.Getenv("OPTIFOLIO_GEMINI_MODEL"); model != "" {
		config.Clients.Gemini.Model = model
	}

	if key := ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey); key != "" {
		config.Clients.Gemini.APIKey = key
	}
}

// ResolveAPIKey resolves an API key from the environment with fallback.
// Environment variables take priority over configured values.
func ResolveAPIKey(name string, fallback string) string {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key": {"GEMINI_API_KEY", "OPTIFOLIO_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue
			}
		}
	}

	return fallback
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
