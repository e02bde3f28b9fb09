package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	PricingAPIBaseURL string
	PricingAPIKey     string

	RequestTimeoutMs int
	RateLimitMs      int
	MaxRetries       int

	HorizonDays        int
	OptimizeRanges     bool
	MinReductionPct    float64
	IncludeDefaultRate bool

	OutputDir string
	Verbose   bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "pricing"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "pricing123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_pricing"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		PricingAPIBaseURL: getEnv("PRICING_API_BASE_URL", "http://localhost:54321"),
		PricingAPIKey:     getEnv("PRICING_API_KEY", ""),

		RequestTimeoutMs: getEnvInt("REQUEST_TIMEOUT_MS", 15000),
		RateLimitMs:      getEnvInt("RATE_LIMIT_MS", 250),
		MaxRetries:       getEnvInt("MAX_RETRIES", 2),

		HorizonDays:        getEnvInt("HORIZON_DAYS", 730),
		OptimizeRanges:     getEnvBool("OPTIMIZE_RANGES", true),
		MinReductionPct:    getEnvFloat("MIN_REDUCTION_PCT", 0.6),
		IncludeDefaultRate: getEnvBool("INCLUDE_DEFAULT_RATE", true),

		OutputDir: getEnv("OUTPUT_DIR", "./output"),
		Verbose:   getEnvBool("VERBOSE", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
