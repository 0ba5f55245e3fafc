package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Cache TTLs per key category. Aggregate query results go stale faster than
// single entities, hence the shorter search TTL.
const (
	RecipeCacheTTL = time.Hour
	MatchCacheTTL  = time.Hour
	SearchCacheTTL = 30 * time.Minute
)

// SlowOperationThreshold is the soft latency budget for recipe operations.
// Exceeding it is logged, never aborted.
const SlowOperationThreshold = 200 * time.Millisecond

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Elasticsearch configuration
	ESAddresses       []string
	ESUsername        string
	ESPassword        string
	ESRecipeIndex     string
	ESIngredientIndex string

	// Kafka configuration
	KafkaBrokers string

	// JWT configuration
	JWTSecret string

	// S3 configuration
	S3Bucket string
}

// LoadConfig creates a new Config instance with values from environment
// variables or Docker secrets depending on the environment.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI, Test:
		loadEnvConfig(cfg)
	case Development:
		loadEnvConfig(cfg)
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	applyDefaults(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvConfig loads configuration from plain environment variables.
func loadEnvConfig(cfg *Config) {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	cfg.ESAddresses = splitList(os.Getenv("ELASTICSEARCH_ADDRESSES"))
	cfg.ESUsername = os.Getenv("ELASTICSEARCH_USERNAME")
	cfg.ESPassword = os.Getenv("ELASTICSEARCH_PASSWORD")
	cfg.ESRecipeIndex = os.Getenv("ELASTICSEARCH_RECIPE_INDEX")
	cfg.ESIngredientIndex = os.Getenv("ELASTICSEARCH_INGREDIENT_INDEX")
	cfg.KafkaBrokers = os.Getenv("KAFKA_BROKERS")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.S3Bucket = os.Getenv("S3_BUCKET_NAME")
}

// loadProdConfig loads configuration for production using ONLY Docker secrets
func loadProdConfig(cfg *Config) error {
	cfg.ServerPort = readSecret("server_port")
	cfg.ServerHost = readSecret("server_host")
	cfg.DBHost = readSecret("db_host")
	cfg.DBPort = readSecret("db_port")
	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.DBName = readSecret("db_name")
	cfg.DBSSLMode = readSecret("db_ssl_mode")
	cfg.RedisHost = readSecret("redis_host")
	cfg.RedisPort = readSecret("redis_port")
	cfg.RedisPassword = readSecret("redis_password")
	cfg.RedisURL = readSecret("redis_url")
	cfg.RedisDB = 0 // This is a constant, not a secret
	cfg.ESAddresses = splitList(readSecret("elasticsearch_addresses"))
	cfg.ESUsername = readSecret("elasticsearch_username")
	cfg.ESPassword = readSecret("elasticsearch_password")
	cfg.ESRecipeIndex = readSecret("elasticsearch_recipe_index")
	cfg.ESIngredientIndex = readSecret("elasticsearch_ingredient_index")
	cfg.KafkaBrokers = readSecret("kafka_brokers")
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.S3Bucket = readSecret("s3_bucket_name")

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}
	if len(cfg.ESAddresses) == 0 {
		cfg.ESAddresses = []string{"http://localhost:9200"}
	}
	if cfg.ESRecipeIndex == "" {
		cfg.ESRecipeIndex = "recipes"
	}
	if cfg.ESIngredientIndex == "" {
		cfg.ESIngredientIndex = "ingredients"
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
