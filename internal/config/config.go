package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TokenSource names where the console reads its bearer credential from.
type TokenSource string

const (
	TokenSourceEnv   TokenSource = "env"
	TokenSourceFile  TokenSource = "file"
	TokenSourceRedis TokenSource = "redis"
)

// Config aggregates runtime configuration for the console and the fake backend.
type Config struct {
	App    AppConfig
	API    APIConfig
	Redis  RedisConfig
	Logger LoggerConfig
	Auth   AuthConfig
}

// AppConfig controls fake backend server behavior.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string

	// SeedDemoData fills the fake backend with sample tickets at startup.
	SeedDemoData bool
}

// APIConfig points the console at the ticket service.
type APIConfig struct {
	BaseURL               string
	RequestTimeoutSeconds int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// AuthConfig defines how credentials are obtained and, for the fake backend, signed.
type AuthConfig struct {
	TokenSource           TokenSource
	AccessToken           string
	TokenFile             string
	RedisTokenKey         string
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	source := TokenSource(strings.ToLower(getEnv("AUTH_TOKEN_SOURCE", string(TokenSourceEnv))))
	switch source {
	case TokenSourceEnv, TokenSourceFile, TokenSourceRedis:
	default:
		return nil, fmt.Errorf("invalid AUTH_TOKEN_SOURCE: %q", source)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "ticket-mockapi"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "127.0.0.1"),
			Port:    getEnv("APP_PORT", "8000"),
			Version: getEnv("APP_VERSION", "dev"),

			SeedDemoData: getEnvAsBool("APP_SEED_DEMO_DATA", true),
		},
		API: APIConfig{
			BaseURL:               strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Auth: AuthConfig{
			TokenSource:           source,
			AccessToken:           os.Getenv("AUTH_ACCESS_TOKEN"),
			TokenFile:             getEnv("AUTH_TOKEN_FILE", ""),
			RedisTokenKey:         getEnv("AUTH_REDIS_TOKEN_KEY", "console:access_token"),
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
