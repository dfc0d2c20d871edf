package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	Environment     string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	MigrationsPath  string
	StaticFilesPath string
	SessionDuration time.Duration

	// Bearer tokens for students and school portals
	JWTSecret     string
	TokenDuration time.Duration
	CSRFSecret    string

	// Live contest state; empty RedisAddr keeps it in memory
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ContestTTL    time.Duration

	OAuthRedirectBaseURL string
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string

	// Email: "ses", "sendgrid" or "console"
	EmailProvider  string
	EmailFrom      string
	SendGridAPIKey string
	AWSRegion      string

	RollbarToken string

	LoginRateLimit  int
	LoginRateWindow time.Duration
	TTSEnabled      bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		Environment:     getEnv("APP_ENV", "development"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./spellingbee.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", ""),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		SessionDuration: getEnvAsDuration("SESSION_DURATION", 24*time.Hour),

		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		TokenDuration: getEnvAsDuration("TOKEN_DURATION", 12*time.Hour),
		CSRFSecret:    getEnv("CSRF_SECRET", "change-me-in-production"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		ContestTTL:    getEnvAsDuration("CONTEST_TTL", 12*time.Hour),

		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", "http://localhost:8080"),
		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),

		EmailProvider:  getEnv("EMAIL_PROVIDER", "console"),
		EmailFrom:      getEnv("EMAIL_FROM", "noreply@spellingbee.local"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),

		RollbarToken: getEnv("ROLLBAR_TOKEN", ""),

		LoginRateLimit:  getEnvAsInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: getEnvAsDuration("LOGIN_RATE_WINDOW", time.Minute),
		TTSEnabled:      getEnvAsBool("TTS_ENABLED", true),
	}
}

// IsProduction reports whether the service runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
