package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultServerPort = 5000
	defaultBcryptCost = 10
	defaultOpenAIBase = "https://api.openai.com"
	defaultModel      = "gpt-3.5-turbo-instruct"
)

type Config struct {
	ServerPort  int
	DatabaseURL string
	JWTSecret   string
	BcryptCost  int
	OpenAI      OpenAIConfig
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// LoadConfig reads process configuration from the environment. Required
// values that are missing make startup fail rather than surfacing later at
// sign or query time.
func LoadConfig() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	cfg := Config{
		ServerPort:  getEnvInt("SERVER_PORT", defaultServerPort),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		BcryptCost:  getEnvInt("BCRYPT_COST", defaultBcryptCost),
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", defaultOpenAIBase),
			Model:   getEnv("OPENAI_MODEL", defaultModel),
		},
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		return Config{}, errors.New("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}
