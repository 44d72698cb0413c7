package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string
	MaxBodySize int64

	// Generative model
	GeminiAPIKey      string
	CredentialsFile   string // service account JSON, used when no API key is set
	GeminiModel       string
	GeminiTier        string
	ModelTemperature  float64
	InputCostPer1K    float64
	OutputCostPer1K   float64
	VerboseAccounting bool
	CountTokens       bool

	// Transcript loading
	TranscriptLanguage string
	ChunkSize          int
	ChunkOverlap       int
	TranscriptCacheTTL int // minutes, 0 disables caching

	// Redis Configuration (optional: transcript cache, rate limiting, async jobs)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// MongoDB (optional: analysis history)
	MongoURI              string
	DBName                string
	AnalysisRetentionDays int
	CleanupCron           string

	RateLimitReqs   int
	RateLimitWindow int

	// Optional bearer-token protection of the analysis endpoints
	APIJWTSecret string

	// Tracing
	OTelEndpoint    string
	OTelSampleRatio float64
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		MaxBodySize: getEnvInt64("MAX_BODY_SIZE", 65536),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		CredentialsFile:   getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-pro"),
		GeminiTier:        getEnv("GEMINI_TIER", "free"),
		ModelTemperature:  getEnvFloat64("MODEL_TEMPERATURE", 0.2),
		InputCostPer1K:    getEnvFloat64("INPUT_COST_PER_1K_CHARS", 0.000125),
		OutputCostPer1K:   getEnvFloat64("OUTPUT_COST_PER_1K_CHARS", 0.000375),
		VerboseAccounting: getEnvBool("VERBOSE_ACCOUNTING", true),
		CountTokens:       getEnvBool("COUNT_TOKENS", false),

		TranscriptLanguage: getEnv("TRANSCRIPT_LANGUAGE", "en"),
		ChunkSize:          getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:       getEnvInt("CHUNK_OVERLAP", 0),
		TranscriptCacheTTL: getEnvInt("TRANSCRIPT_CACHE_TTL", 60),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MongoURI:              getEnv("MONGO_URI", ""),
		DBName:                getEnv("DB_NAME", "dynamocards"),
		AnalysisRetentionDays: getEnvInt("ANALYSIS_RETENTION_DAYS", 30),
		CleanupCron:           getEnv("CLEANUP_CRON", "0 3 * * *"),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		APIJWTSecret: getEnv("API_JWT_SECRET", ""),

		OTelEndpoint:    getEnv("OTEL_EXPORTER_ENDPOINT", ""),
		OTelSampleRatio: getEnvFloat64("OTEL_SAMPLE_RATIO", 0.1),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values LoadConfig cannot default.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" && c.CredentialsFile == "" {
		return fmt.Errorf("GEMINI_API_KEY or GOOGLE_APPLICATION_CREDENTIALS is required - set it in .env file")
	}
	if c.CredentialsFile != "" && c.GeminiAPIKey == "" {
		if _, err := os.Stat(c.CredentialsFile); err != nil {
			return fmt.Errorf("credentials file %q is not readable: %w", c.CredentialsFile, err)
		}
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	return nil
}

// RedisEnabled reports whether a Redis endpoint was configured.
func (c *Config) RedisEnabled() bool { return c.RedisURL != "" }

// MongoEnabled reports whether analysis history should be persisted.
func (c *Config) MongoEnabled() bool { return c.MongoURI != "" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
