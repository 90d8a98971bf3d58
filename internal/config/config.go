// Package config loads the portal configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the portal configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Backend     BackendConfig     `yaml:"backend"`
	Auth        AuthConfig        `yaml:"auth"`
	Database    DatabaseConfig    `yaml:"database"`
	Logging     LoggingConfig     `yaml:"logging"`
	Consumption ConsumptionConfig `yaml:"consumption"`
	Branding    BrandingConfig    `yaml:"branding"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// BackendConfig points at the AquaSmart REST backend.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig configures inbound credential checks. An empty secret means
// tokens are forwarded without signature verification.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	LoginPath string `yaml:"login_path"`
}

// DatabaseConfig enables the audit store when URL is set.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ConsumptionConfig configures the time-bucketing aggregator.
type ConsumptionConfig struct {
	Timezone       string `yaml:"timezone"`
	MaxChartPoints int    `yaml:"max_chart_points"`
}

// BrandingConfig feeds the export headers. It is reloadable.
type BrandingConfig struct {
	Title        string `yaml:"title"`
	Organization string `yaml:"organization"`
	LogoPath     string `yaml:"logo_path"`
	Watermark    string `yaml:"watermark"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Backend: BackendConfig{Timeout: 15 * time.Second},
		Auth:    AuthConfig{LoginPath: "/login"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Consumption: ConsumptionConfig{
			Timezone:       "America/Bogota",
			MaxChartPoints: 50,
		},
		Branding: BrandingConfig{
			Title:        "AquaSmart",
			Organization: "Distrito de Riego",
			Watermark:    "AquaSmart",
		},
	}
}

// LoadDotEnv loads a .env file without overriding variables already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Load reads defaults, then the YAML file at path (optional), then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("config: backend.base_url (BACKEND_BASE_URL) is required")
	}
	if _, err := time.LoadLocation(c.Consumption.Timezone); err != nil {
		return fmt.Errorf("config: invalid consumption.timezone %q: %w", c.Consumption.Timezone, err)
	}
	if c.Consumption.MaxChartPoints <= 0 {
		return errors.New("config: consumption.max_chart_points must be positive")
	}
	return nil
}

// Location returns the zone used for bucket labels.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Consumption.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func applyEnv(cfg *Config) {
	cfg.Server.Addr = getenvDefault("HTTP_ADDR", cfg.Server.Addr)
	cfg.Backend.BaseURL = getenvDefault("BACKEND_BASE_URL", cfg.Backend.BaseURL)
	cfg.Backend.Timeout = getenvDuration("BACKEND_TIMEOUT", cfg.Backend.Timeout)
	cfg.Auth.JWTSecret = getenvDefault("AUTH_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Database.URL = getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", cfg.Database.URL))
	cfg.Logging.Level = getenvDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getenvDefault("LOG_FORMAT", cfg.Logging.Format)
	cfg.Consumption.Timezone = getenvDefault("PORTAL_TIMEZONE", cfg.Consumption.Timezone)
	cfg.Consumption.MaxChartPoints = getenvIntDefault("CHART_MAX_POINTS", cfg.Consumption.MaxChartPoints)
	cfg.Branding.Title = getenvDefault("BRANDING_TITLE", cfg.Branding.Title)
	cfg.Branding.LogoPath = getenvDefault("BRANDING_LOGO_PATH", cfg.Branding.LogoPath)
	cfg.Branding.Watermark = getenvDefault("BRANDING_WATERMARK", cfg.Branding.Watermark)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
