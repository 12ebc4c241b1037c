package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	DatabasePath   string
	JWTSecret      string
	FinnhubAPIKey  string
	RateLimit      int
	RateWindow     time.Duration
	StreamSymbols  []string
	StreamInterval time.Duration
	LogLevel       string
}

// Load reads configuration from environment variables. Callers are expected
// to load a .env file first (see cmd/main.go).
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DatabasePath:   getEnv("DATABASE_PATH", "portfolio.db"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		FinnhubAPIKey:  os.Getenv("FINNHUB_API_KEY"),
		RateLimit:      30,
		RateWindow:     time.Second,
		StreamInterval: 3 * time.Second,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT %q", v)
		}
		cfg.RateLimit = n
	}

	symbols := getEnv("STREAM_SYMBOLS", "AAPL,GOOGL,MSFT,TSLA,AMZN")
	for _, s := range strings.Split(symbols, ",") {
		if s = strings.TrimSpace(s); s != "" {
			cfg.StreamSymbols = append(cfg.StreamSymbols, strings.ToUpper(s))
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.FinnhubAPIKey == "" {
		return nil, fmt.Errorf("FINNHUB_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
