package config

import (
	"os"
	"strconv"
)

// Config carries every env-driven setting. Loaded once in main and passed
// into the handlers that need it; nothing reads the environment after boot.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// Access window around a slot during which a key code may be issued
	// and viewed, in minutes.
	KeyBeforeMin int
	KeyAfterMin  int

	// AllowOverbooking drops the capacity guard on reservation creation.
	// Load-test switch, never enable in production.
	AllowOverbooking bool

	// GeneratePastSlots also materializes hours that have already begun
	// when a day's slots are first generated.
	GeneratePastSlots bool

	AdminUser string
	AdminPass string
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DB_CONNECTION_STRING"),
		RedisURL:          os.Getenv("REDIS_URL"),
		KeyBeforeMin:      getEnvInt("KEY_BEFORE_MIN", 30),
		KeyAfterMin:       getEnvInt("KEY_AFTER_MIN", 30),
		AllowOverbooking:  getEnvBool("ALLOW_OVERBOOKING", false),
		GeneratePastSlots: getEnvBool("GENERATE_PAST_SLOTS", false),
		AdminUser:         getEnv("ADMIN_USER", "admin"),
		AdminPass:         getEnv("ADMIN_PASS", "password"),
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
