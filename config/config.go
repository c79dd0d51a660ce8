// Package config loads application configuration from the environment and
// an optional YAML file with the engine's working-hours settings.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/turnos/schedule-engine/engine"
)

type AppConfig struct {
	Port         int
	DatabasePath string
	Engine       engine.Config
}

// Load reads .env (when present), then the environment, then the optional
// engine config file named by SCHEDULE_CONFIG. Missing pieces fall back to
// defaults; a broken config file is a warning, not a startup failure.
func Load() *AppConfig {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file loaded")
	}

	cfg := &AppConfig{
		Port:         getEnvAsInt("PORT", 8080),
		DatabasePath: getEnv("DATABASE_PATH", "schedules.db"),
		Engine:       engine.DefaultConfig(),
	}

	if path := getEnv("SCHEDULE_CONFIG", ""); path != "" {
		loaded, err := engine.LoadConfig(path)
		if err != nil {
			logrus.WithError(err).Warn("failed to load engine config, using defaults")
		} else {
			cfg.Engine = loaded
		}
	}
	return cfg
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(name string, defaultVal int) int {
	if val, err := strconv.Atoi(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}
