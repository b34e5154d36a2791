package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             int
	DBPath           string
	UploadDir        string
	ModelPath        string
	LogDirectory     string
	InferenceWorkers int // Maximum number of concurrent model invocations
}

func Load() *Config {
	// Load .env file (missing file is fine)
	_ = godotenv.Load()

	return &Config{
		Port:             getEnvAsInt("PORT", 5000),
		DBPath:           getEnv("DB_PATH", "road_damage_detection.db"),
		UploadDir:        getEnv("UPLOAD_DIR", filepath.Join(".", "uploads")),
		ModelPath:        getEnv("MODEL_PATH", filepath.Join(".", "models", "yolov8s_rdd.onnx")),
		LogDirectory:     getEnv("LOG_DIR", filepath.Join(".", "logs")),
		InferenceWorkers: getEnvAsInt("INFERENCE_WORKERS", 2),
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
