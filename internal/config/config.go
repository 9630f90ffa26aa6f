package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the client core.
type Config struct {
	AppName     string
	Environment string
	Remote      RemoteConfig
	Cache       CacheConfig
	Session     SessionConfig
	Probe       ProbeConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

// RemoteConfig points the clients at the hosted document store and
// auth provider (or the local emulator).
type RemoteConfig struct {
	BaseURL        string
	AuthBaseURL    string
	APIKey         string
	RequestTimeout time.Duration
}

type CacheConfig struct {
	Path string
}

type SessionConfig struct {
	RefreshInterval time.Duration
	ExpiryLeeway    time.Duration
}

type ProbeConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

type ContextConfig struct {
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults that point at the local emulator.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "vsgo-app"),
		Environment: getString("APP_ENV", "development"),
		Remote: RemoteConfig{
			BaseURL:        getString("REMOTE_BASE_URL", "http://localhost:9099"),
			AuthBaseURL:    getString("AUTH_BASE_URL", "http://localhost:9099"),
			APIKey:         os.Getenv("REMOTE_API_KEY"),
			RequestTimeout: getDuration("REQUEST_TIMEOUT_SECONDS", 10*time.Second),
		},
		Cache: CacheConfig{
			Path: getString("CACHE_PATH", "./data/session.db"),
		},
		Session: SessionConfig{
			RefreshInterval: getDuration("SESSION_REFRESH_INTERVAL", 5*time.Minute),
			ExpiryLeeway:    getDuration("SESSION_EXPIRY_LEEWAY", time.Minute),
		},
		Probe: ProbeConfig{
			Interval: getDuration("PROBE_INTERVAL", 10*time.Second),
			Timeout:  getDuration("PROBE_TIMEOUT", 3*time.Second),
		},
		Context: ContextConfig{
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
