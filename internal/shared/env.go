package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override configuration values.
const (
	EnvDatabasePath = "VIDSHELF_DB_PATH"
	EnvServerPort   = "VIDSHELF_PORT"
	EnvRemoteURL    = "VIDSHELF_REMOTE_URL"
	EnvMirrorPath   = "VIDSHELF_MIRROR_PATH"
	EnvMirrorKind   = "VIDSHELF_MIRROR_BACKEND"
	EnvRedisAddr    = "VIDSHELF_REDIS_ADDR"
	EnvRedisPass    = "VIDSHELF_REDIS_PASSWORD"
)

// LoadEnvFile loads variables from a dotenv file without overriding variables already set.
//
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides config values with any VIDSHELF_* variables present in the environment.
func ApplyEnv(c *Config) error {
	if v := os.Getenv(EnvDatabasePath); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(EnvServerPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a port", ErrInvalidConfig, EnvServerPort, v)
		}
		c.Server.Port = port
	}

	if v := os.Getenv(EnvRemoteURL); v != "" {
		c.Remote.URL = v
	}

	if v := os.Getenv(EnvMirrorPath); v != "" {
		c.Mirror.Path = v
	}

	if v := os.Getenv(EnvMirrorKind); v != "" {
		c.Mirror.Backend = v
	}

	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Mirror.RedisAddr = v
	}

	if v := os.Getenv(EnvRedisPass); v != "" {
		c.Mirror.RedisPassword = v
	}

	return c.Validate()
}
