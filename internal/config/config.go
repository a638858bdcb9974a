// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port            string
	DatabaseURL     string
	RedisAddr       string
	RedisDB         int
	SessionSecret   string
	FrontendURL     string
	ContentDir      string
	RoomIdleTimeout time.Duration
	CleanupInterval time.Duration
	PingInterval    time.Duration
	LogLevel        string
	SecureCookies   bool
}

// Load reads the configuration. Unset or malformed values fall back to defaults.
func Load() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		ContentDir:      getEnv("CONTENT_DIR", "./data"),
		RoomIdleTimeout: getEnvDuration("ROOM_IDLE_TIMEOUT", 120*time.Minute),
		CleanupInterval: getEnvDuration("CLEANUP_INTERVAL", 30*time.Second),
		PingInterval:    getEnvDuration("PING_INTERVAL", 25*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "debug"),
		SecureCookies:   getEnvBool("SECURE_COOKIES", false),
	}
}

// getEnv reads an environment variable or returns def.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
