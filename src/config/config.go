package config

import (
	"fmt"
	"os"
	"time"

	"quote-board/src/helpers"
	"quote-board/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills unset options with the values the dashboard ships with.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "quote-board"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8600
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Network.MaxRetries == 0 {
		c.Network.MaxRetries = 2
	}
	if c.Network.UserAgent == "" {
		c.Network.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.Cache.QuoteTTLSeconds == 0 {
		c.Cache.QuoteTTLSeconds = 10
	}
	if c.Cache.IntradayTTLSeconds == 0 {
		c.Cache.IntradayTTLSeconds = 30
	}
	if c.Cache.DailyTTLSeconds == 0 {
		c.Cache.DailyTTLSeconds = 3600
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "data/quote_board.db"
	}
	if c.Markets == nil {
		c.Markets = map[string]models.MMarketConfig{}
	}
	if _, ok := c.Markets["TW"]; !ok {
		c.Markets["TW"] = models.MMarketConfig{
			Timezone:           "Asia/Taipei",
			OpenTime:           "09:00",
			CloseTime:          "13:30",
			CutoffGraceMinutes: 5,
			LotSize:            1000,
			Benchmark:          "^TWII",
			MIC:                "xtai",
			Currency:           "TWD",
		}
	}
	if _, ok := c.Markets["US"]; !ok {
		c.Markets["US"] = models.MMarketConfig{
			Timezone:           "America/New_York",
			OpenTime:           "09:30",
			CloseTime:          "16:00",
			CutoffGraceMinutes: 0,
			LotSize:            1,
			Benchmark:          "^GSPC",
			MIC:                "xnys",
			Currency:           "USD",
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	if c.Cache.QuoteTTLSeconds <= 0 || c.Cache.IntradayTTLSeconds <= 0 || c.Cache.DailyTTLSeconds <= 0 {
		return fmt.Errorf("cache TTLs must all be greater than 0")
	}

	for name, m := range c.Markets {
		if _, err := time.LoadLocation(m.Timezone); err != nil {
			return fmt.Errorf("market %s: invalid timezone '%s': %w", name, m.Timezone, err)
		}
		if !validClock(m.OpenTime) || !validClock(m.CloseTime) {
			return fmt.Errorf("market %s: trading window must be HH:MM local times", name)
		}
		if m.LotSize <= 0 {
			return fmt.Errorf("market %s: lot size must be greater than 0", name)
		}
		if m.CutoffGraceMinutes < 0 {
			return fmt.Errorf("market %s: cutoff grace cannot be negative", name)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
