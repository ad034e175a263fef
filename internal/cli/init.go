// Package cli provides common initialization shared by the server and
// parser binaries.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"chitieu/internal/config"
	applog "chitieu/internal/log"
	"chitieu/internal/storage"
)

// SetupLogger initializes structured logging and sets it as the
// process default.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the document store at the given path, running
// pending migrations. Exits the process on failure.
func OpenStore(logger *applog.Logger, dbPath string) *storage.Store {
	store, err := storage.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open document store", applog.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return store
}
