package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the match scraper
type Config struct {
	Riot    RiotConfig    `yaml:"riot" json:"riot"`
	Scrape  ScrapeConfig  `yaml:"scrape" json:"scrape"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RiotConfig holds Riot API settings
type RiotConfig struct {
	APIKey            string        `yaml:"api_key" json:"api_key" env:"RIOTSCRAPE_API_KEY"`
	Region            string        `yaml:"region" json:"region" env:"RIOTSCRAPE_REGION"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second" env:"RIOTSCRAPE_REQUESTS_PER_SECOND"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout" env:"RIOTSCRAPE_TIMEOUT"`
}

// ScrapeConfig holds settings for the scrape algorithm
type ScrapeConfig struct {
	EmptyWeeksToStop int  `yaml:"empty_weeks_to_stop" json:"empty_weeks_to_stop" env:"RIOTSCRAPE_EMPTY_WEEKS"`
	WithTimeline     bool `yaml:"with_timeline" json:"with_timeline" env:"RIOTSCRAPE_WITH_TIMELINE"`
}

// OutputConfig holds settings for the match store file
type OutputConfig struct {
	File       string `yaml:"file" json:"file" env:"RIOTSCRAPE_OUTPUT"`
	Append     bool   `yaml:"append" json:"append" env:"RIOTSCRAPE_APPEND"`
	Continuous bool   `yaml:"continuous" json:"continuous" env:"RIOTSCRAPE_CONTINUOUS"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" env:"RIOTSCRAPE_LOG_LEVEL"`
	File  string `yaml:"file" json:"file" env:"RIOTSCRAPE_LOG_FILE"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Riot: RiotConfig{
			// A development API key allows 100 requests per two minutes.
			RequestsPerSecond: 0.8,
			Timeout:           10 * time.Second,
		},
		Scrape: ScrapeConfig{
			EmptyWeeksToStop: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a YAML file. An empty path searches
// the standard locations and is not an error when nothing is found.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	locations := []string{
		".riotscrape.yaml",
		".riotscrape.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "riotscrape", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".riotscrape.yaml"),
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// LoadFromEnv overrides configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment variables: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Riot.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("requests per second must be positive"))
	}
	if c.Riot.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Scrape.EmptyWeeksToStop <= 0 {
		errs = append(errs, errors.New("empty weeks to stop must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Environment variables > .env file > Config file > Defaults.
// Command line flags are merged by the caller on top of the result.
func Load(configPath string) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".riotscrape.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, err
	}
	if err := config.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}
