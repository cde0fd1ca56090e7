// config/config.go
package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	Port          string
	MongoURI      string
	MongoDB       string
	JWTKey        []byte
	JWTExpiration time.Duration

	// Completer (upstream text-completion service)
	CompleterURL     string
	CompleterAPIKey  string
	CompleterModel   string
	CompleterTimeout time.Duration
	CompleterRPS     float64

	// Background risk runner
	RunnerWorkers int
	RunnerHistory int

	// Periodic trigger scanner; zero disables the interval loop
	ScannerInterval time.Duration

	LogLevel string
)

func LoadConfig() {
	Port = getEnv("PORT", "8080")
	MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017")
	MongoDB = getEnv("MONGO_DB", "grc")
	LogLevel = getEnv("LOG_LEVEL", "info")

	JWTKey = []byte(os.Getenv("JWT_SECRET"))
	if len(JWTKey) == 0 {
		JWTKey = []byte("secret")
	}
	JWTExpiration = getDuration("JWT_EXPIRE", 24*time.Hour)

	CompleterURL = os.Getenv("COMPLETER_URL")
	CompleterAPIKey = os.Getenv("COMPLETER_API_KEY")
	CompleterModel = getEnv("COMPLETER_MODEL", "gpt-4o-mini")
	CompleterTimeout = getDuration("COMPLETER_TIMEOUT", 45*time.Second)
	CompleterRPS = getFloat("COMPLETER_RPS", 1)

	RunnerWorkers = getInt("RUNNER_WORKERS", runtime.NumCPU())
	RunnerHistory = getInt("RUNNER_HISTORY", 100)

	ScannerInterval = getDuration("SCANNER_INTERVAL", 0)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer env value, using default")
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid float env value, using default")
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if v == "7d" {
		return 7 * 24 * time.Hour
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration env value, using default")
		return fallback
	}
	return d
}
