package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the directory service reads from the
// environment so main stays lean.
type Config struct {
	Addr string

	// Upstream record source.
	SourceBaseURL string
	SourceTimeout time.Duration
	Seed          string

	// Pagination and auto-continuation.
	PageSize     int
	TargetTotal  int
	LowWaterMark int
	LoadDelay    time.Duration

	// Search debouncing.
	DebounceWindow time.Duration

	// Grouping backend. WorkerEnabled selects the background worker at
	// startup; when off the coordinator falls back to deferred inline
	// computation.
	WorkerEnabled bool

	Redis RedisConfig
}

// RedisConfig controls the optional upstream page cache. An empty URL
// disables Redis entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// FromEnv builds a Config from environment variables with development
// defaults.
func FromEnv() Config {
	return Config{
		Addr:           envString("DIRECTORY_ADDR", ":8080"),
		SourceBaseURL:  envString("DIRECTORY_SOURCE_URL", "https://randomuser.me/api/"),
		SourceTimeout:  envDuration("DIRECTORY_SOURCE_TIMEOUT", 10*time.Second),
		Seed:           envString("DIRECTORY_SEED", "users-directory"),
		PageSize:       envInt("DIRECTORY_PAGE_SIZE", 100),
		TargetTotal:    envInt("DIRECTORY_TARGET_TOTAL", 1000),
		LowWaterMark:   envInt("DIRECTORY_LOW_WATER_MARK", 50),
		LoadDelay:      envDuration("DIRECTORY_LOAD_DELAY", 500*time.Millisecond),
		DebounceWindow: envDuration("DIRECTORY_DEBOUNCE_WINDOW", 300*time.Millisecond),
		WorkerEnabled:  envString("DIRECTORY_WORKER", "on") != "off",
		Redis: RedisConfig{
			URL:          os.Getenv("DIRECTORY_REDIS_URL"),
			PoolSize:     envInt("DIRECTORY_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("DIRECTORY_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("DIRECTORY_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("DIRECTORY_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("DIRECTORY_REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     envDuration("DIRECTORY_REDIS_CACHE_TTL", 15*time.Minute),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
