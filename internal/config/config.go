package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	APIPort  string
	LogLevel string

	BackendURL            string
	BackendTimeout        time.Duration
	BackendBreakerEnabled bool

	APIRateLimitRPS     float64
	APIRateLimitBurst   int
	APIMaxInFlight      int
	APIBackpressureWait time.Duration
	APIMaxConnections   int
	MaxUploadBytes      int64

	SessionTTL     time.Duration
	CSRFKey        string
	CookieSecure   bool
	TrustedOrigins string

	GatewayURL string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		BackendURL:            mustEnv("BACKEND_URL", "http://localhost:8000"),
		BackendTimeout:        mustEnvDuration("BACKEND_TIMEOUT", 120*time.Second),
		BackendBreakerEnabled: mustEnvBool("BACKEND_BREAKER_ENABLED", true),

		APIRateLimitRPS:     mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:   mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxInFlight:      mustEnvInt("API_MAX_IN_FLIGHT", 64),
		APIBackpressureWait: mustEnvDuration("API_BACKPRESSURE_WAIT", 100*time.Millisecond),
		APIMaxConnections:   mustEnvInt("API_MAX_CONNECTIONS", 256),
		MaxUploadBytes:      int64(mustEnvInt("MAX_UPLOAD_BYTES", 6<<20)),

		SessionTTL:     mustEnvDuration("SESSION_TTL", 30*time.Minute),
		CSRFKey:        mustEnv("CSRF_KEY", ""),
		CookieSecure:   mustEnvBool("COOKIE_SECURE", false),
		TrustedOrigins: mustEnv("CSRF_TRUSTED_ORIGINS", ""),

		GatewayURL: mustEnv("MAILCHECK_GATEWAY_URL", "http://localhost:8080"),
	}
}

// CSRFKeyBytes decodes CSRF_KEY, given as 64 hex characters or 32 raw bytes.
// An empty key yields nil and the server generates one per process.
func (c Config) CSRFKeyBytes() ([]byte, error) {
	key := strings.TrimSpace(c.CSRFKey)
	switch {
	case key == "":
		return nil, nil
	case len(key) == 64:
		decoded, err := hex.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("decode CSRF_KEY: %w", err)
		}
		return decoded, nil
	case len(key) == 32:
		return []byte(key), nil
	default:
		return nil, fmt.Errorf("CSRF_KEY must be 32 bytes or 64 hex characters, got %d characters", len(key))
	}
}

// TrustedOriginList splits CSRF_TRUSTED_ORIGINS on commas.
func (c Config) TrustedOriginList() []string {
	var origins []string
	for _, origin := range strings.Split(c.TrustedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// mustEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
