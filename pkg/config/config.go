// Package config reads process configuration from the environment. A .env
// file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL       = "https://skm.digital"
	DefaultSchedulingURL = "https://calendly.com/sean-skm/20min"
	DefaultEndpoint      = "http://localhost:8080/api/contact"
)

type Config struct {
	Mail   MailConfig
	Server ServerConfig
	Site   SiteConfig
	Log    LogConfig
	Client ClientConfig
}

// MailConfig is the outbound email setup. An empty APIKey leaves the contact
// endpoint answering "not configured".
type MailConfig struct {
	APIKey   string
	From     string
	To       []string
	Location *time.Location
}

type ServerConfig struct {
	Addr            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ListenAddr joins Addr and Port.
func (s ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.Addr, s.Port)
}

type SiteConfig struct {
	BaseURL       string
	SchedulingURL string
}

type LogConfig struct {
	Level  string
	Format string
}

type ClientConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	tz := getEnv("CONTACT_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("CONTACT_TIMEZONE %q: %w", tz, err)
	}

	cfg := &Config{
		Mail: MailConfig{
			APIKey:   strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
			From:     getEnv("CONTACT_FROM", ""),
			To:       getEnvAsList("CONTACT_TO"),
			Location: loc,
		},
		Server: ServerConfig{
			Addr:            getEnv("SERVER_ADDR", ""),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Site: SiteConfig{
			BaseURL:       strings.TrimRight(getEnv("SITE_BASE_URL", DefaultBaseURL), "/"),
			SchedulingURL: getEnv("SCHEDULING_URL", DefaultSchedulingURL),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Client: ClientConfig{
			Endpoint: getEnv("CONTACT_ENDPOINT", DefaultEndpoint),
			Timeout:  getEnvAsDuration("CONTACT_TIMEOUT", 15*time.Second),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Log.Format)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
