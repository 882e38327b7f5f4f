package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string
	DBPath         string
	StorageKey     string
	LogLevel       string
	LogFile        string
	LogFormat      string
	BackupSchedule string
	BackupPath     string
	BackupKeep     int
	DigestBackend  string
	OllamaHost     string
	OllamaModel    string
	ClaudeAPIKey   string
	ClaudeModel    string

	// Warnings lists problems found while loading. The logger does not exist
	// yet at that point, so the caller logs them once it does.
	Warnings []string
}

// Load reads the configuration from the environment. Variables from a .env
// file in the working directory fill in anything not already set.
func Load() *Config {
	var warnings []string
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		warnings = append(warnings, fmt.Sprintf("failed to load .env: %v", err))
	}

	cfg := &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		DBPath:         getEnv("DB_PATH", "/data/bbqreviews.db"),
		StorageKey:     getEnv("STORAGE_KEY", "bbq-reviews"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		BackupSchedule: getEnv("BACKUP_SCHEDULE", ""),
		BackupPath:     getEnv("BACKUP_PATH", "/data/backups"),
		DigestBackend:  getEnv("DIGEST_BACKEND", "none"),
		OllamaHost:     getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:    getEnv("OLLAMA_MODEL", "llama3.2"),
		ClaudeAPIKey:   getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:    getEnv("CLAUDE_MODEL", "claude-3-5-haiku-latest"),
		Warnings:       warnings,
	}
	cfg.BackupKeep = cfg.getEnvInt("BACKUP_KEEP", 14)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func (c *Config) getEnvInt(key string, defaultVal int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s %q, using %d", key, val, defaultVal))
		return defaultVal
	}
	return n
}
