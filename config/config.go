package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Edit total policies for the order editor
const (
	EditTotalClient    = "client"
	EditTotalRecompute = "recompute"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	Port               string
	GoEnv              string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LogLevel           string
	RedisURL           string
	CatalogCacheTTL    time.Duration
	EditTotalPolicy    string
	CORSAllowedOrigins []string
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			// so it's okay if .env files don't exist
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	config := &Config{
		DatabaseURL:        v.GetString("DATABASE_URL"),
		Port:               v.GetString("PORT"),
		GoEnv:              v.GetString("GO_ENV"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		JWTAudience:        v.GetString("JWT_AUDIENCE"),
		AWSRegion:          v.GetString("AWS_REGION"),
		AWSS3Bucket:        v.GetString("AWS_S3_BUCKET"),
		AWSAccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		RedisURL:           v.GetString("REDIS_URL"),
		CatalogCacheTTL:    v.GetDuration("CATALOG_CACHE_TTL"),
		EditTotalPolicy:    strings.ToLower(v.GetString("ORDER_EDIT_TOTAL_POLICY")),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GO_ENV", "development")
	v.SetDefault("JWT_ISSUER", "route-orders-api")
	v.SetDefault("JWT_AUDIENCE", "route-orders-mobile")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CATALOG_CACHE_TTL", "5m")
	v.SetDefault("ORDER_EDIT_TOTAL_POLICY", EditTotalClient)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:8081")
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.EditTotalPolicy != EditTotalClient && c.EditTotalPolicy != EditTotalRecompute {
		return fmt.Errorf("ORDER_EDIT_TOTAL_POLICY must be %q or %q, got %q",
			EditTotalClient, EditTotalRecompute, c.EditTotalPolicy)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// S3Enabled reports whether defect photos can be stored
func (c *Config) S3Enabled() bool {
	return c.AWSS3Bucket != ""
}

// GetConfig returns the configuration loaded by the last successful Load
func GetConfig() *Config {
	return appConfig
}

// SetConfig replaces the global configuration (primarily for testing)
func SetConfig(cfg *Config) {
	appConfig = cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
