package config

import "fmt"

// ValidateConfig ensures required settings are present before startup.
func ValidateConfig(cfg *Config) error {
	if cfg.DBHost == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.DBUser == "" {
		return fmt.Errorf("database user is required")
	}
	if cfg.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if cfg.RedisHost == "" && cfg.RedisURL == "" {
		return fmt.Errorf("redis host or redis url is required")
	}
	if cfg.KafkaBrokers == "" {
		return fmt.Errorf("kafka brokers are required")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	return nil
}
