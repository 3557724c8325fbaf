// Package config loads the example server's configuration from environment
// variables. httpmw's layers themselves are never configured from globals —
// each takes an explicit struct literal (see body, encoding, compression,
// auth, cors, fileserver, gateway) — this package only exists to translate
// an application's environment into those literals for cmd/server.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the example server's environment-derived settings.
type Config struct {
	// Server
	ListenAddr             string
	RequestTimeout         time.Duration
	MaxRequestSize         int64 // request-body-limit, bytes
	MaxConcurrentRequests  int   // 0 disables the concurrency limiter

	// Compression
	CompressionMinSize int   // bytes; below this, responses aren't compressed
	EnabledEncodings   []string

	// CORS
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSMaxAge         time.Duration

	// Authorization
	BearerToken string // empty disables the bearer-auth layer

	// Static files
	StaticRoot      string
	StaticIndexHTML bool

	// Gateway / reverse proxy
	GatewayTargetURL string
	GatewayViaName   string

	// Redirects (client-side follow-redirect layer)
	MaxRedirects int

	// Logging
	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
}

// New loads configuration from environment variables, applying the default
// given here for each variable that is unset or unparseable, and validates
// required settings.
func New() (*Config, error) {
	cfg := &Config{
		ListenAddr:     EnvOrDefault("LISTEN_ADDR", ":8080"),
		RequestTimeout: envDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestSize: envInt64OrDefault("MAX_REQUEST_SIZE", 10*1024*1024),
		MaxConcurrentRequests: EnvIntOrDefault("MAX_CONCURRENT_REQUESTS", 0),

		CompressionMinSize: EnvIntOrDefault("COMPRESSION_MIN_SIZE", 32),
		EnabledEncodings:    envStringSlice("ENABLED_ENCODINGS", []string{"zstd", "br", "gzip", "deflate"}),

		CORSAllowedOrigins: envStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		CORSAllowedMethods: envStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		CORSAllowedHeaders: envStringSlice("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type"}),
		CORSMaxAge:         envDurationOrDefault("CORS_MAX_AGE", 24*time.Hour),

		BearerToken: EnvOrDefault("BEARER_TOKEN", ""),

		StaticRoot:      EnvOrDefault("STATIC_ROOT", "./public"),
		StaticIndexHTML: EnvBoolOrDefault("STATIC_INDEX_HTML", true),

		GatewayTargetURL: EnvOrDefault("GATEWAY_TARGET_URL", ""),
		GatewayViaName:   EnvOrDefault("GATEWAY_VIA_NAME", "httpmw"),

		MaxRedirects: EnvIntOrDefault("MAX_REDIRECTS", 10),

		LogLevel:      EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:       EnvOrDefault("LOG_FILE", ""),
		LogMaxSizeMB:  EnvIntOrDefault("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: EnvIntOrDefault("LOG_MAX_BACKUPS", 5),
	}

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return cfg, nil
}

func envStringSlice(key string, fallback []string) []string {
	v := EnvOrDefault(key, "")
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
