package config

import "github.com/versely/versely/internal/domain/entities"

// GetDefaultConfig returns the built-in configuration used when no config
// file exists yet.
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{
			Host:            "localhost",
			Port:            9090,
			ReadTimeout:     15,
			WriteTimeout:    15,
			ShutdownTimeout: 5,
			Environment:     "development",
		},
		Storage: entities.StorageConfig{
			Path: "versely.db",
		},
		Editor: entities.EditorConfig{
			DebounceMs: 800,
		},
		Display: entities.DisplayConfig{
			CycleIntervalMs: 7000,
		},
		Logging: entities.LoggingConfig{
			Level: string(entities.LogLevelInfo),
		},
	}
}
