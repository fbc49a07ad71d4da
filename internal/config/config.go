// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, auth credentials, push
// gateway connectivity, per-tenant rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-notify-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// AuthConfig defines bearer-credential verification settings. Inbound calls
// carry either the trusted service token (machine-to-machine triggers) or a
// user JWT signed with JWTSecret.
type AuthConfig struct {
	JWTSecret    string // AUTH_JWT_SECRET
	ServiceToken string // AUTH_SERVICE_TOKEN
}

// PushConfig defines connectivity to the upstream push gateway.
type PushConfig struct {
	GatewayURL  string        // PUSH_GATEWAY_URL
	AccessToken string        // PUSH_ACCESS_TOKEN (optional gateway bearer)
	Timeout     time.Duration // PUSH_TIMEOUT per batch call
	BatchSize   int           // PUSH_BATCH_SIZE (gateway ceiling, max 100)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath         string        // SQLite path
	DefaultLocale  string        // fallback when a recipient locale is unknown
	TokenFreshness time.Duration // device token eligibility window

	// Per-tenant dispatch rate limiting (domain limiter)
	RateWindow   time.Duration // counter window length
	RateMaxCalls int           // dispatch calls allowed per tenant per window

	// Edge rate limiting (token bucket, per caller identity)
	EdgeRateRPS   float64 // tokens per second (>= 0)
	EdgeRateBurst int     // bucket size (>= 1)

	// Auth / Push
	Auth AuthConfig
	Push PushConfig

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath:         getenv("DB_PATH", "app.db"),
		DefaultLocale:  getenv("DEFAULT_LOCALE", "en"),
		TokenFreshness: getdur("TOKEN_FRESHNESS", 90*24*time.Hour),

		// Per-tenant dispatch limiter
		RateWindow:   getdur("RATE_WINDOW", 60*time.Second),
		RateMaxCalls: getint("RATE_MAX_CALLS", 1000),

		// Edge rate limiting
		EdgeRateRPS:   getfloat("EDGE_RATE_RPS", 20.0),
		EdgeRateBurst: getint("EDGE_RATE_BURST", 40),

		// Auth
		Auth: AuthConfig{
			JWTSecret:    getenv("AUTH_JWT_SECRET", ""),
			ServiceToken: getenv("AUTH_SERVICE_TOKEN", ""),
		},

		// Push gateway
		Push: PushConfig{
			GatewayURL:  getenv("PUSH_GATEWAY_URL", "https://exp.host/--/api/v2/push/send"),
			AccessToken: getenv("PUSH_ACCESS_TOKEN", ""),
			Timeout:     getdur("PUSH_TIMEOUT", 30*time.Second),
			BatchSize:   getint("PUSH_BATCH_SIZE", 100),
		},

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-notify-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		return cfg, errors.New("DEFAULT_LOCALE must not be empty")
	}
	if cfg.TokenFreshness <= 0 {
		return cfg, errors.New("TOKEN_FRESHNESS must be > 0")
	}
	if cfg.RateWindow <= 0 {
		return cfg, errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.RateMaxCalls < 1 {
		return cfg, errors.New("RATE_MAX_CALLS must be >= 1")
	}
	if cfg.EdgeRateRPS < 0 {
		return cfg, errors.New("EDGE_RATE_RPS must be >= 0")
	}
	if cfg.EdgeRateBurst < 1 {
		return cfg, errors.New("EDGE_RATE_BURST must be >= 1")
	}
	if strings.TrimSpace(cfg.Push.GatewayURL) == "" {
		return cfg, errors.New("PUSH_GATEWAY_URL must not be empty")
	}
	if cfg.Push.Timeout <= 0 {
		return cfg, errors.New("PUSH_TIMEOUT must be > 0")
	}
	if cfg.Push.BatchSize < 1 || cfg.Push.BatchSize > 100 {
		return cfg, errors.New("PUSH_BATCH_SIZE must be between 1 and 100")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
