package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`

	StoreType string `yaml:"store_type"` // "memory" | "mongo"
	MongoURI  string `yaml:"mongo_uri"`
	MongoDB   string `yaml:"mongo_db"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	MatchScoreFloor   int `yaml:"match_score_floor"`
	MaxRounds         int `yaml:"max_rounds"`
	A2ATimeoutSeconds int `yaml:"a2a_timeout_seconds"`

	// Webhooks maps event types to observer endpoints.
	Webhooks map[string]string `yaml:"webhooks"`
}

// Load reads an optional YAML file (CONFIG_FILE) and applies env-var
// overrides on top.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              "8080",
		Environment:       "development",
		StoreType:         "memory",
		MongoURI:          "mongodb://localhost:27017",
		MongoDB:           "agent_bazaar",
		GeminiModel:       "gemini-2.0-flash-001",
		MatchScoreFloor:   60,
		MaxRounds:         20,
		A2ATimeoutSeconds: 30,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.StoreType = getEnv("STORE_TYPE", cfg.StoreType)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getEnv("MONGO_DB", cfg.MongoDB)
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.MatchScoreFloor = getEnvInt("MATCH_SCORE_FLOOR", cfg.MatchScoreFloor)
	cfg.MaxRounds = getEnvInt("MAX_ROUNDS", cfg.MaxRounds)
	cfg.A2ATimeoutSeconds = getEnvInt("A2A_TIMEOUT_SECONDS", cfg.A2ATimeoutSeconds)

	if cfg.Environment == "production" && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required in production")
	}
	if cfg.Environment == "production" && cfg.StoreType != "mongo" {
		return nil, fmt.Errorf("STORE_TYPE must be mongo in production")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
