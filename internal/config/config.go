package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret string
	JWTTTL    time.Duration

	ServerPort string
	GinMode    string

	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	ProfileCacheTTL     time.Duration
	LeaderboardCacheTTL time.Duration

	AIAPIKey  string
	AIAPIURL  string
	AIModel   string
	AITimeout time.Duration

	RabbitMQURL      string
	RabbitMQExchange string

	AttemptExpiry         time.Duration
	AttemptExpirySchedule string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "quizai"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", "super-secret-key-change-me"),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),

		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),

		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getInt("REDIS_DB", 0),
		ProfileCacheTTL:     getDuration("PROFILE_CACHE_TTL", time.Hour),
		LeaderboardCacheTTL: getDuration("LEADERBOARD_CACHE_TTL", 30*time.Second),

		AIAPIKey:  getEnv("AI_API_KEY", ""),
		AIAPIURL:  getEnv("AI_API_URL", "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"),
		AIModel:   getEnv("AI_MODEL", "qwen-plus"),
		AITimeout: getDuration("AI_TIMEOUT", 120*time.Second),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "quiz.events"),

		AttemptExpiry:         getDuration("ATTEMPT_EXPIRY", 3*time.Hour),
		AttemptExpirySchedule: getEnv("ATTEMPT_EXPIRY_SCHEDULE", "@every 15m"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, val, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %s", key, val, fallback)
		return fallback
	}
	return d
}
