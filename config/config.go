package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Placeholder values shipped in .env.example. A store configured with either
// of them is treated as unconfigured.
const (
	PlaceholderDBHost     = "your-db-host"
	PlaceholderDBPassword = "your-db-password"
)

type Config struct {
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	JWTSecret      string
	TokenTTL       time.Duration
	Port           string
	PublicURL      string
	StorageBucket  string
	AllowedOrigins []string
}

func Load() *Config {
	return &Config{
		DBHost:         getEnv("DB_HOST", ""),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "postgres"),
		DBSSLMode:      getEnv("DB_SSLMODE", "require"),
		JWTSecret:      getEnv("JWT_SECRET", "default-secret"),
		TokenTTL:       getDuration("TOKEN_TTL", 24*time.Hour),
		Port:           getEnv("PORT", "4001"),
		PublicURL:      strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:4001"), "/"),
		StorageBucket:  getEnv("STORAGE_BUCKET", "my-personal-blog"),
		AllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),
	}
}

// BackendLive reports whether a relational store is configured. It is
// evaluated once at startup; everything downstream receives the strategy
// chosen from it instead of re-checking.
func (c *Config) BackendLive() bool {
	if c.DBHost == "" || c.DBPassword == "" {
		return false
	}
	return c.DBHost != PlaceholderDBHost && c.DBPassword != PlaceholderDBPassword
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func getList(key string) []string {
	var values []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
