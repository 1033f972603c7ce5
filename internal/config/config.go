// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Store       StoreConfig
	Auth        AuthConfig
	I18n        I18nConfig
	Log         LogConfig
	Metrics     MetricsConfig
	CORS        CORSConfig
	Client      ClientConfig
	Ledger      LedgerConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Driver       string // postgres or sqlite
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	Path         string // sqlite file, ":memory:" allowed
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
	Issuer         string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	S3Bucket        string
	S3Prefix        string
}

type StoreConfig struct {
	Backend string // database, s3 or memory
}

type AuthConfig struct {
	AdminUsername string
	AdminPassword string
	AdminName     string
}

type I18nConfig struct {
	DefaultLocale string
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	Language    string
	SessionFile string
}

type LedgerConfig struct {
	LowStockThreshold int
	RecentSalesLimit  int
}

const defaultJWTSecret = "change-me-in-production"

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "5000"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "sqlite"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "sales_ledger"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			Path:         getEnv("DB_PATH", "sales_ledger.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 12),
			Issuer:         getEnv("JWT_ISSUER", "sales-ledger"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "sales-ledger"),
			S3Prefix:        getEnv("AWS_S3_PREFIX", "collections"),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "database"),
		},
		Auth: AuthConfig{
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
			AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "pt_BR"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
		Metrics: MetricsConfig{
			Enabled:   getEnvAsBool("METRICS_ENABLED", true),
			Namespace: getEnv("METRICS_NAMESPACE", "sales_ledger"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Client: ClientConfig{
			BaseURL:     getEnv("LEDGER_API_URL", "http://localhost:5000"),
			Timeout:     getEnvAsDuration("LEDGER_API_TIMEOUT", 10*time.Second),
			Language:    getEnv("LEDGER_LANG", "pt_BR"),
			SessionFile: getEnv("LEDGER_SESSION_FILE", ""),
		},
		Ledger: LedgerConfig{
			LowStockThreshold: getEnvAsInt("LOW_STOCK_THRESHOLD", 5),
			RecentSalesLimit:  getEnvAsInt("RECENT_SALES_LIMIT", 5),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == defaultJWTSecret && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Database.Driver == "postgres" && c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	switch c.Store.Backend {
	case "database", "memory":
	case "s3":
		if c.AWS.S3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required for the s3 store backend")
		}
	default:
		return fmt.Errorf("unsupported store backend %q", c.Store.Backend)
	}

	if c.Ledger.LowStockThreshold < 0 {
		return fmt.Errorf("low stock threshold must not be negative")
	}
	if c.Ledger.RecentSalesLimit <= 0 {
		return fmt.Errorf("recent sales limit must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
