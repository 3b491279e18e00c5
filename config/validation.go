package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the loaded configuration. Development and test fall
// back to defaults for everything, so only production gets the strict checks.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.ServerPort == "" {
		errors = append(errors, "server port is required")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBName == "" {
		errors = append(errors, "database host, port and name are required")
	}

	if IsProduction() {
		if cfg.JWTSecret == "" || cfg.JWTSecret == "your-secret-key" {
			errors = append(errors, "JWT_SECRET must be set in production")
		}
		if cfg.DBPassword == "" || cfg.DBPassword == "postgres" {
			errors = append(errors, "DB_PASSWORD must be set in production")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
