package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings. Command-line flags override these values.
type Config struct {
	LabelPrefix string
	// PrefixSet is true when SEATMAP_PREFIX was present in the environment,
	// so it wins over the saved preference.
	PrefixSet   bool
	Background  string
	ClampSeats  bool
	HTTPTimeout time.Duration

	LogLevel string
	LogFile  string
}

// Load reads an optional .env file and then the process environment.
// A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() *Config {
	_, prefixSet := os.LookupEnv("SEATMAP_PREFIX")
	return &Config{
		LabelPrefix: getEnv("SEATMAP_PREFIX", "A"),
		PrefixSet:   prefixSet,
		Background:  getEnv("SEATMAP_BACKGROUND", ""),
		ClampSeats:  getEnvAsBool("SEATMAP_CLAMP_SEATS", false),
		HTTPTimeout: getEnvAsDuration("SEATMAP_HTTP_TIMEOUT", 12*time.Second),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("SEATMAP_LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
