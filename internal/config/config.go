package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"valorant-scout/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	StatsBaseURL      string
	UserAgent         string
	FetchTimeout      time.Duration
	ServerPort        string
	LogLevel          string
	CacheBackend      string
	DBPath            string
	DefaultWindowDays int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	fetchTimeout, err := getEnvDuration("FETCH_TIMEOUT", constants.ExternalAPITimeout)
	if err != nil {
		return nil, err
	}
	windowDays, err := getEnvInt("DEFAULT_WINDOW_DAYS", constants.DefaultWindowDays)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		StatsBaseURL:      strings.TrimRight(getEnv("STATS_BASE_URL", constants.DefaultStatsBaseURL), "/"),
		UserAgent:         getEnv("USER_AGENT", constants.DefaultUserAgent),
		FetchTimeout:      fetchTimeout,
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CacheBackend:      getEnv("CACHE_BACKEND", constants.DefaultCacheBackend),
		DBPath:            getEnv("DB_PATH", constants.DefaultMemoryDBPath),
		DefaultWindowDays: windowDays,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("stats_base_url", cfg.StatsBaseURL).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("cache_backend", cfg.CacheBackend).
		Int("default_window_days", cfg.DefaultWindowDays).
		Dur("fetch_timeout", cfg.FetchTimeout).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.StatsBaseURL == "" {
		return fmt.Errorf("STATS_BASE_URL is required")
	}
	if c.DefaultWindowDays <= 0 {
		return fmt.Errorf("DEFAULT_WINDOW_DAYS must be positive, got %d", c.DefaultWindowDays)
	}
	switch c.CacheBackend {
	case constants.DefaultCacheBackend:
	case constants.SQLiteCacheBackend:
		// cached stats must not outlive the process
		if !strings.Contains(c.DBPath, "mode=memory") && c.DBPath != ":memory:" {
			return fmt.Errorf("DB_PATH must be an in-memory database, got %q", c.DBPath)
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

var Module = fx.Provide(Load)
