package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/activity-dashboard-go/internal/logger"
)

// DefaultJWTSecret signs share links when JWT_SECRET is unset
const DefaultJWTSecret = "your-secret-key-change-in-production"

// DefaultMaxImport caps an import body at 32 MiB
const DefaultMaxImport = 32 << 20

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	ShareTTL  time.Duration // lifetime of share-link tokens
	RateLimit int           // requests per minute per client IP
	MaxImport int64         // largest accepted import body in bytes
	Log       logger.Options
}

// Load 加载配置
func Load() *Config {
	return &Config{
		Port:      envString("PORT", ":8080"),
		DBPath:    envString("DB_PATH", "./data/activities.db"),
		JWTSecret: envString("JWT_SECRET", DefaultJWTSecret),
		ShareTTL:  envDuration("SHARE_TTL", 30*24*time.Hour),
		RateLimit: envInt("RATE_LIMIT", 120),
		MaxImport: int64(envInt("IMPORT_MAX_BYTES", DefaultMaxImport)),
		Log:       logger.FromEnv(),
	}
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// envInt returns def when the variable is missing, malformed or not positive
func envInt(key string, def int) int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		logger.Get().Warn().Str("key", key).Str("value", s).Int("default", def).Msg("invalid int; using default")
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		logger.Get().Warn().Str("key", key).Str("value", s).Dur("default", def).Msg("invalid duration; using default")
		return def
	}
	return d
}
