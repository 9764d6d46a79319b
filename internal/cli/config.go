package cli

import (
	"os"
	"time"
)

// Config holds CLI configuration
type Config struct {
	ServerAddr string
	Username   string
	Password   string
	Timeout    time.Duration
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerAddr: getEnvOrDefault("SKYDUEL_SERVER", "localhost:8080"),
		Username:   os.Getenv("SKYDUEL_USER"),
		Password:   os.Getenv("SKYDUEL_PASS"),
		Timeout:    10 * time.Second,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
