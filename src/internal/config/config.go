package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=transfers_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultHTTPAddr = ":8080"
const defaultRedisAddr = "localhost:6379"

const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"

	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

type Config struct {
	HTTPAddr        string
	Environment     string
	LogLevel        string
	StorageBackend  string
	DatabaseDSN     string
	MigrationsDir   string
	LockBackend     string
	LockTimeout     time.Duration
	LockExpiry      time.Duration
	LockRetryDelay  time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ShutdownTimeout time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any env-style lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
		return fallback
	}

	var errs []string

	duration := func(key, fallback string) time.Duration {
		raw := get(key, fallback)
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			errs = append(errs, fmt.Sprintf("%s must be a non-negative duration", key))
			return 0
		}
		return parsed
	}

	storage := strings.ToLower(get("STORAGE_BACKEND", StorageBackendPostgres))
	if storage != StorageBackendPostgres && storage != StorageBackendMemory {
		errs = append(errs, "STORAGE_BACKEND must be one of postgres, memory")
	}

	lockBackend := strings.ToLower(get("LOCK_BACKEND", LockBackendMemory))
	if lockBackend != LockBackendMemory && lockBackend != LockBackendRedis {
		errs = append(errs, "LOCK_BACKEND must be one of memory, redis")
	}

	redisDB, err := strconv.Atoi(get("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		errs = append(errs, "REDIS_DB must be a non-negative integer")
	}

	cfg := Config{
		HTTPAddr:        get("HTTP_ADDR", defaultHTTPAddr),
		Environment:     strings.ToLower(get("APP_ENV", "development")),
		LogLevel:        get("LOG_LEVEL", ""),
		StorageBackend:  storage,
		DatabaseDSN:     normalizeConnectionString(get("DATABASE_DSN", defaultConnectionString)),
		MigrationsDir:   get("MIGRATIONS_DIR", filepath.Join("src", "migrations")),
		LockBackend:     lockBackend,
		LockTimeout:     duration("LOCK_TIMEOUT", "5s"),
		LockExpiry:      duration("LOCK_EXPIRY", "30s"),
		LockRetryDelay:  duration("LOCK_RETRY_DELAY", "50ms"),
		RedisAddr:       get("REDIS_ADDR", defaultRedisAddr),
		RedisPassword:   get("REDIS_PASSWORD", ""),
		RedisDB:         redisDB,
		ShutdownTimeout: duration("SHUTDOWN_TIMEOUT", "15s"),
	}

	if cfg.LockBackend == LockBackendRedis && cfg.LockExpiry == 0 {
		errs = append(errs, "LOCK_EXPIRY must be greater than zero for the redis lock backend")
	}
	if cfg.LockBackend == LockBackendRedis && cfg.LockRetryDelay == 0 {
		errs = append(errs, "LOCK_RETRY_DELAY must be greater than zero for the redis lock backend")
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

func normalizeConnectionString(raw string) string {
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
