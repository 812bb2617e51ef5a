package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
	"github.com/aussiebroadwan/tokenreg/pkg/jwtx"
)

// Database engines.
const (
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

type Config struct {
	AccessMaxAge  time.Duration // Default access token lifetime (default: 300s)
	RefreshMaxAge time.Duration // Default refresh token lifetime (default: 86400s)
	AccountLimit  int           // Live refresh tokens per account, <= 0 disables (default: 5)

	Algorithm     string   // HS256, HS512, RS256 or RS512 (default: RS256)
	HSSecretKey   string   // Optional: HMAC secret, generated when empty
	RSAPrivateKey string   // Optional: PKCS8 or PKCS1 PEM, generated when empty
	RSAPublicKey  string   // Optional: SPKI PEM, derived from the private key when empty
	VerifyIssuer  string   // Optional: "iss" the verifier enforces
	VerifyAud     []string // Optional: audiences the verifier enforces
	VerifyLeeway  time.Duration

	DBEngine  string // sqlite or postgres (default: sqlite)
	DBDSN     string // sqlite file or postgres URL (default: tokens.db)
	DBMigrate bool   // Apply embedded migrations on startup (default: true)
	Columns   store.Columns

	AdminKeyHash string // Optional: argon2id hash guarding the management API

	RedisAddr     string // Optional: enables the redis remote response cache
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string // Optional: enables kafka lifecycle events
	KafkaTopic   string   // (default: jwt-token-events)

	OTLPEndpoint string // Optional: OTLP/HTTP trace collector

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// LoadConfig reads the environment, after loading .env when one exists.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return Config{
		AccessMaxAge:  getEnvSecondsOrDefault("JWT_ACCESS_MAX_AGE", 300*time.Second),
		RefreshMaxAge: getEnvSecondsOrDefault("JWT_REFRESH_MAX_AGE", 86400*time.Second),
		AccountLimit:  getEnvIntOrDefault("JWT_ACCOUNT_LIMIT", 5),

		Algorithm:     getEnvOrDefault("JWT_DEFAULT_ALGORITHM", jwtx.AlgRS256),
		HSSecretKey:   os.Getenv("JWT_HS_SECRET_KEY"),
		RSAPrivateKey: os.Getenv("JWT_RSA_PRIVATE_KEY"),
		RSAPublicKey:  os.Getenv("JWT_RSA_PUBLIC_KEY"),
		VerifyIssuer:  os.Getenv("JWT_VERIFY_ISSUER"),
		VerifyAud:     getEnvListOrDefault("JWT_VERIFY_AUDIENCE", nil),
		VerifyLeeway:  getEnvDurationOrDefault("JWT_VERIFY_LEEWAY", 0),

		DBEngine:  getEnvOrDefault("JWT_DB_ENGINE", EngineSQLite),
		DBDSN:     getEnvOrDefault("JWT_DB_DSN", "tokens.db"),
		DBMigrate: getEnvBoolOrDefault("JWT_DB_MIGRATE", true),
		Columns: store.Columns{
			Table:     getEnvOrDefault("JWT_DB_TABLE", "jwt_tokens"),
			ID:        getEnvOrDefault("JWT_DB_COL_KID", "kid"),
			Account:   getEnvOrDefault("JWT_DB_COL_ACCOUNT", "account"),
			Token:     getEnvOrDefault("JWT_DB_COL_TOKEN", "token"),
			Algorithm: getEnvOrDefault("JWT_DB_COL_ALGORITHM", "algorithm"),
			Decoder:   getEnvOrDefault("JWT_DB_COL_DECODER", "decoder"),
		},

		AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		KafkaBrokers: getEnvListOrDefault("KAFKA_BROKERS", nil),
		KafkaTopic:   getEnvOrDefault("KAFKA_TOPIC", "jwt-token-events"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	if !jwtx.SupportedAlg(c.Algorithm) {
		errs = append(errs, fmt.Errorf("JWT_DEFAULT_ALGORITHM: unsupported algorithm %q", c.Algorithm))
	}
	if c.DBEngine != EngineSQLite && c.DBEngine != EnginePostgres {
		errs = append(errs, fmt.Errorf("JWT_DB_ENGINE: unknown engine %q", c.DBEngine))
	}
	if err := c.Columns.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.AccessMaxAge <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_MAX_AGE must be positive"))
	}
	if c.RefreshMaxAge <= c.AccessMaxAge {
		errs = append(errs, errors.New("JWT_REFRESH_MAX_AGE must exceed JWT_ACCESS_MAX_AGE"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d out of range", c.Port))
	}

	return errors.Join(errs...)
}

// IsDev reports whether the service runs in the development environment.
func (c Config) IsDev() bool { return c.Env == "dev" }

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

// getEnvSecondsOrDefault reads an integer number of seconds, also accepting
// Go duration syntax.
func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
