package utils

import (
	"log"
	"os"
	"strconv"
	"time"
)

// MustGetEnv returns a required environment variable or exits.
func MustGetEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("%s environment variable not set", key)
	}
	return v
}

// GetEnvDefault returns an optional variable with a fallback.
func GetEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt parses an optional integer variable, logging on bad values.
func GetEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  %s=%q is not an integer, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

// GetEnvDuration parses an optional duration variable (e.g. "1h", "5m").
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a duration, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
