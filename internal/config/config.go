package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// defaultRangeMax keeps every ID when no translation range is configured.
const defaultRangeMax = 1<<31 - 1

type Config struct {
	DatabaseURL   string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	WorkerCount   int
	RangeMin      int
	RangeMax      int
	LogFile       string
	LogLevel      string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/transtools?sslmode=disable"),
		Neo4jURI:      getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:     getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword: getEnv("NEO4J_PASSWORD", "password"),
		WorkerCount:   getEnvInt("WORKER_COUNT", 8),
		RangeMin:      getEnvInt("RANGE_MIN", 0),
		RangeMax:      getEnvInt("RANGE_MAX", defaultRangeMax),
		LogFile:       getEnv("LOG_FILE", ""),
		LogLevel:      getEnv("LOG_LEVEL", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
