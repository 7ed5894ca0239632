package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	AppEnv     string

	DBDriver    string
	MySQLDSN    string
	PostgresDSN string
	SQLitePath  string
	AutoMigrate bool
	ResetDB     bool

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	JWTSecret string
	WriteAuth bool

	SwaggerHost     string
	DefaultPageSize int
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		AppEnv:          getEnv("APP_ENV", "development"),
		DBDriver:        getEnv("DB_DRIVER", "mysql"),
		MySQLDSN:        getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/docentes?charset=utf8mb4&parseTime=True&loc=Local"),
		PostgresDSN:     getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=docentes port=5432 sslmode=disable TimeZone=UTC"),
		SQLitePath:      getEnv("SQLITE_PATH", "docentes.db"),
		AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		ResetDB:         getEnvBool("RESET_DB", false),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisPass:       os.Getenv("REDIS_PASSWORD"),
		CacheTTL:        getEnvDuration("CACHE_TTL", 5*time.Minute),
		JWTSecret:       getEnv("JWT_SECRET", "change-me"),
		WriteAuth:       getEnvBool("WRITE_AUTH", false),
		SwaggerHost:     os.Getenv("SWAGGER_HOST"),
		DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 10),
	}
}

// CacheEnabled reports whether a redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
