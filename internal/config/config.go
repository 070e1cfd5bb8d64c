package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"neetmentor-backend/internal/analytics"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string
	Timezone *time.Location

	// Database
	DatabaseURL   string
	MigrationsDir string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Gemini AI (optional; doubt solver is disabled without a key)
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int

	// Email
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	EmailFrom    string
	EmailWorkers int

	// Registration
	OTPTTL time.Duration

	// Weekly digest
	DigestEnabled bool
	DigestCron    string

	// Analytics
	Scoring analytics.ScoringConfig

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	defaults := analytics.DefaultScoring()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		Timezone:             getEnvAsLocationOrDefault("TIMEZONE", time.UTC),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		MigrationsDir:        getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		RedisURL:             mustGetEnv("REDIS_URL"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		ResendAPIKey:         getEnvOrDefault("RESEND_API_KEY", ""),
		SMTPHost:             getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:             getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:             getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:             getEnvOrDefault("SMTP_PASS", ""),
		EmailFrom:            getEnvOrDefault("EMAIL_FROM", "NEETMentor <noreply@neetmentor.app>"),
		EmailWorkers:         getEnvAsIntOrDefault("EMAIL_WORKERS", 2),
		OTPTTL:               time.Duration(getEnvAsIntOrDefault("OTP_TTL_MINUTES", 30)) * time.Minute,
		DigestEnabled:        getEnvAsBoolOrDefault("DIGEST_ENABLED", false),
		DigestCron:           getEnvOrDefault("DIGEST_CRON", "0 9 * * 1"),
		Scoring: analytics.ScoringConfig{
			Base:             getEnvAsIntOrDefault("SCORE_BASE", defaults.Base),
			Ceiling:          getEnvAsIntOrDefault("SCORE_CEILING", defaults.Ceiling),
			AccuracyWeight:   getEnvAsFloatOrDefault("SCORE_ACCURACY_WEIGHT", defaults.AccuracyWeight),
			QuestionsDivisor: getEnvAsFloatOrDefault("SCORE_QUESTIONS_DIVISOR", defaults.QuestionsDivisor),
			HoursDivisor:     getEnvAsFloatOrDefault("SCORE_HOURS_DIVISOR", defaults.HoursDivisor),
		},
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	if cfg.Scoring.Ceiling < cfg.Scoring.Base {
		panic(fmt.Sprintf("SCORE_CEILING (%d) must not be below SCORE_BASE (%d)", cfg.Scoring.Ceiling, cfg.Scoring.Base))
	}

	return cfg
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvAsLocationOrDefault(key string, defaultVal *time.Location) *time.Location {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	loc, err := time.LoadLocation(val)
	if err != nil {
		return defaultVal
	}
	return loc
}
