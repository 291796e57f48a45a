package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	OpenAIAPIKey string
	ClipDir      string

	ScoreThreshold int
	RemoteInterval time.Duration
	LocalInterval  time.Duration
	QuotaBackoff   time.Duration
	ChunkDuration  time.Duration

	DefaultMode string
}

// Load reads configuration from the environment, with a .env file as
// fallback when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnvAsInt("PORT", 8080),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		ClipDir:        getEnv("CLIP_DIR", "./clips"),
		ScoreThreshold: getEnvAsInt("SCORE_THRESHOLD", 45),
		RemoteInterval: getEnvAsMillis("REMOTE_INTERVAL_MS", 4000),
		LocalInterval:  getEnvAsMillis("LOCAL_INTERVAL_MS", 1000),
		QuotaBackoff:   getEnvAsMillis("QUOTA_BACKOFF_MS", 10000),
		ChunkDuration:  getEnvAsMillis("CHUNK_DURATION_MS", 1000),
		DefaultMode:    getEnv("DETECTION_MODE", "local"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Millisecond
}
