package weather

import (
	"fmt"
	"time"
)

// Config holds the OpenWeatherMap connection settings.
type Config struct {
	BaseURL string `json:"base_url,omitempty" toml:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty" toml:"api_key,omitempty"`
	Units   string `json:"units,omitempty" toml:"units,omitempty"`
	Lang    string `json:"lang,omitempty" toml:"lang,omitempty"`
	Timeout string `json:"timeout,omitempty" toml:"timeout,omitempty"` // Go duration; empty or "0" waits indefinitely
}

// DefaultConfig targets the public API with metric units and Korean descriptions.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.openweathermap.org",
		Units:   "metric",
		Lang:    "kr",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.Units != "" {
		c.Units = source.Units
	}
	if source.Lang != "" {
		c.Lang = source.Lang
	}
	if source.Timeout != "" {
		c.Timeout = source.Timeout
	}
}

// TimeoutDuration parses Timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid weather timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}
