package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Issuer    string // Optional: issuer claim for session tokens (default: ecobazaar)
	JWTSecret string // Required: HMAC secret for session token signing

	DatabaseURL string // Optional: postgres:// DSN, otherwise treated as a SQLite file path (default: ./ecobazaar.db)
	PepperFile  string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	SessionTTL time.Duration // Optional: session token lifetime (default: 24h)

	PayeeVPA  string // Optional: UPI VPA receiving payments (default: ecobazaar@upi)
	PayeeName string // Optional: payee display name on UPI intents (default: EcoBazaarX)

	// RevealResetTokens returns reset tokens in API responses for
	// environments without mail delivery. Never enable in prod.
	RevealResetTokens bool

	CORSOrigins []string // Optional: allowed CORS origins (default: *)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:    getEnvOrDefault("ISSUER", "ecobazaar"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		DatabaseURL: getEnvOrDefault(
			"DATABASE_URL",
			"ecobazaar.db",
		),
		PepperFile:           getEnvOrDefault("PEPPER_FILE", "pepper"),
		SessionTTL:           getEnvDurationOrDefault("SESSION_TTL", 24*time.Hour),
		PayeeVPA:             getEnvOrDefault("UPI_PAYEE_VPA", "ecobazaar@upi"),
		PayeeName:            getEnvOrDefault("UPI_PAYEE_NAME", "EcoBazaarX"),
		RevealResetTokens:    getEnvBoolOrDefault("REVEAL_RESET_TOKENS", false),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return cfg
}

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

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
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
