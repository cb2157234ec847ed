// Package config resolves server and worker settings. Values come from
// defaults, then an optional YAML file at CONFIG_PATH, then the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/catalog/internal/currency"
	"github.com/mmynk/catalog/pkg/logging"
)

// EnvConfigPath names the YAML file to load, if any.
const EnvConfigPath = "CONFIG_PATH"

// Config holds every tunable of the server and the notification worker.
type Config struct {
	Port   string `yaml:"port"`
	DBPath string `yaml:"db-path"`

	// JWTSecret verifies bearer tokens issued by the identity provider.
	JWTSecret string `yaml:"jwt-secret"`

	ExchangeRateAPIKey  string        `yaml:"exchange-rate-api-key"`
	ExchangeRateBaseURL string        `yaml:"exchange-rate-base-url"`
	GeoIPBaseURL        string        `yaml:"geoip-base-url"`
	CountryBaseURL      string        `yaml:"country-base-url"`
	HTTPTimeout         time.Duration `yaml:"http-timeout"`
	RateCacheTTL        time.Duration `yaml:"rate-cache-ttl"`

	// AMQPURL is optional; without it events are stored in-process.
	AMQPURL      string `yaml:"amqp-url"`
	AMQPExchange string `yaml:"amqp-exchange"`
	AMQPQueue    string `yaml:"amqp-queue"`

	ReminderInterval time.Duration `yaml:"reminder-interval"`
	LogLevel         string        `yaml:"log-level"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:                "8080",
		DBPath:              "./data/catalog.db",
		ExchangeRateBaseURL: currency.DefaultRateBaseURL,
		GeoIPBaseURL:        currency.DefaultGeoBaseURL,
		CountryBaseURL:      currency.DefaultCountryBaseURL,
		HTTPTimeout:         5 * time.Second,
		RateCacheTTL:        time.Hour,
		AMQPExchange:        "catalog",
		AMQPQueue:           "notifications",
		ReminderInterval:    time.Hour,
		LogLevel:            "info",
	}
}

// Load builds the configuration. A CONFIG_PATH that cannot be read or parsed
// is an error; an unset one is skipped.
func Load() (*Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(EnvConfigPath)); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.ExchangeRateAPIKey = getEnv("EXCHANGE_RATE_API_KEY", c.ExchangeRateAPIKey)
	c.ExchangeRateBaseURL = getEnv("EXCHANGE_RATE_BASE_URL", c.ExchangeRateBaseURL)
	c.GeoIPBaseURL = getEnv("GEOIP_BASE_URL", c.GeoIPBaseURL)
	c.CountryBaseURL = getEnv("COUNTRY_BASE_URL", c.CountryBaseURL)
	c.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", c.HTTPTimeout)
	c.RateCacheTTL = getEnvDuration("RATE_CACHE_TTL", c.RateCacheTTL)
	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)
	c.ReminderInterval = getEnvDuration("REMINDER_INTERVAL", c.ReminderInterval)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT secret is required")
	}

	for name, raw := range map[string]string{
		"exchange rate base URL": c.ExchangeRateBaseURL,
		"geoip base URL":         c.GeoIPBaseURL,
		"country base URL":       c.CountryBaseURL,
	} {
		if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			problems = append(problems, fmt.Sprintf("invalid %s '%s'", name, raw))
		}
	}

	if c.HTTPTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid HTTP timeout %v: must be positive", c.HTTPTimeout))
	}
	if c.RateCacheTTL < 0 {
		problems = append(problems, fmt.Sprintf("invalid rate cache TTL %v: must not be negative", c.RateCacheTTL))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ReminderInterval < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid reminder interval %v: must be at least 1 minute", c.ReminderInterval))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
