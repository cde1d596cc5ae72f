package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	DBDriver      string // postgres | sqlite
	PostgresUrl   string
	SQLitePath    string
	PostStore     string // sql | mongo
	MongoURI      string
	MongoDatabase string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	AdminEmail    string
	AdminPassword string

	RateLimitStore  string // memory | redis
	RateLimitMax    int
	RateLimitWindow time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	FirebaseCredentialsPath string
	AllowedOrigins          []string
	// TrustedProxies are CIDRs or IPs allowed to set X-Forwarded-For.
	// Empty means the peer address is the client address.
	TrustedProxies []string

	Log LogConfig
}

type LogConfig struct {
	Level      string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load reads configuration from the environment, after merging a .env file
// when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		PostgresUrl:   getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "vortex.db"),
		PostStore:     strings.ToLower(getEnv("POST_STORE", "sql")),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "vortex"),

		SessionSecret: getEnv("SESSION_SECRET", os.Getenv("JWT_SECRET")),
		SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:  getBool("COOKIE_SECURE", false),
		AdminEmail:    strings.TrimSpace(getEnv("ADMIN_EMAIL", "")),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		RateLimitStore:  strings.ToLower(getEnv("RATE_LIMIT_STORE", "memory")),
		RateLimitMax:    getInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", time.Minute),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getInt("REDIS_DB", 0),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		AllowedOrigins:          getList("ALLOWED_ORIGINS"),
		TrustedProxies:          getList("TRUSTED_PROXIES"),

		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Path:       getEnv("LOG_PATH", ""),
			MaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getInt("LOG_MAX_AGE_DAYS", 7),
			Compress:   getBool("LOG_COMPRESS", false),
		},
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET must be set"))
	}
	switch c.DBDriver {
	case "postgres":
		if c.PostgresUrl == "" {
			errs = append(errs, errors.New("POSTGRES_CONN_STR must be set when DB_DRIVER=postgres"))
		}
	case "sqlite":
	default:
		errs = append(errs, errors.New("DB_DRIVER must be postgres or sqlite"))
	}
	switch c.PostStore {
	case "sql":
	case "mongo":
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI must be set when POST_STORE=mongo"))
		}
	default:
		errs = append(errs, errors.New("POST_STORE must be sql or mongo"))
	}
	if c.RateLimitStore != "memory" && c.RateLimitStore != "redis" {
		errs = append(errs, errors.New("RATE_LIMIT_STORE must be memory or redis"))
	}
	if _, err := parseProxies(c.TrustedProxies); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

func getList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
