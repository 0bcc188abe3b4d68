package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Application
	App AppConfig `mapstructure:"app"`

	// Logging
	Log LogConfig `mapstructure:"log"`

	// Storage backend selection
	Storage StorageConfig `mapstructure:"storage"`

	// PostgreSQL
	Postgres PostgresConfig `mapstructure:"postgres"`

	// Redis
	Redis RedisConfig `mapstructure:"redis"`

	// NATS
	NATS NATSConfig `mapstructure:"nats"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`

	// Public catalog cache
	Catalog CatalogConfig `mapstructure:"catalog"`

	// Rate limiting for public endpoints
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type AppConfig struct {
	Env           string        `mapstructure:"env"`
	Port          int           `mapstructure:"port"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	CORSOrigins   []string      `mapstructure:"cors_origins"`
	// DevSessions mounts POST /api/dev/session, which mints a token for any
	// user id. Off unless explicitly enabled.
	DevSessions bool `mapstructure:"dev_sessions"`
}

// IsDevelopment reports whether the app runs outside production.
func (c AppConfig) IsDevelopment() bool {
	return c.Env != "production"
}

// DevSessionsEnabled reports whether the token minting endpoint may be
// mounted. Production never mounts it.
func (c AppConfig) DevSessionsEnabled() bool {
	return c.DevSessions && c.IsDevelopment()
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type StorageConfig struct {
	// Driver is either "postgres" or "memory".
	Driver string `mapstructure:"driver"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	Port              int    `mapstructure:"port"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   string `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   string `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod string `mapstructure:"health_check_period"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	// InvalidationSubject carries catalog cache invalidations between replicas.
	InvalidationSubject string `mapstructure:"invalidation_subject"`
}

type PrometheusConfig struct {
	Port int `mapstructure:"port"`
}

type CatalogConfig struct {
	CacheDisabled   bool          `mapstructure:"cache_disabled"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CacheMaxEntries int           `mapstructure:"cache_max_entries"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

func Load() (*Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Preserve legacy env variable names.
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.session_ttl", 24*time.Hour)
	v.SetDefault("app.dev_sessions", false)

	v.SetDefault("storage.driver", "postgres")

	v.SetDefault("nats.invalidation_subject", "catalog.invalidate")

	v.SetDefault("prometheus.port", 9090)

	v.SetDefault("catalog.cache_disabled", false)
	v.SetDefault("catalog.cache_ttl", 60*time.Second)
	v.SetDefault("catalog.cache_max_entries", 100)
	v.SetDefault("catalog.sweep_interval", 30*time.Second)

	v.SetDefault("rate_limit.max_requests", 100)
	v.SetDefault("rate_limit.window", time.Minute)
}

func bindEnvVars(v *viper.Viper) {
	// Application
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.port", "PORT")
	v.BindEnv("app.session_secret", "SESSION_SECRET")
	v.BindEnv("app.session_ttl", "SESSION_TTL")
	v.BindEnv("app.cors_origins", "CORS_ORIGINS")
	v.BindEnv("app.dev_sessions", "DEV_SESSIONS")

	// Logging
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.encoding", "LOG_ENCODING")

	// Storage
	v.BindEnv("storage.driver", "STORAGE_DRIVER")

	// PostgreSQL
	v.BindEnv("postgres.host", "PG_HOST")
	v.BindEnv("postgres.user", "PG_USER")
	v.BindEnv("postgres.password", "PG_PASSWORD")
	v.BindEnv("postgres.database", "PG_DB")
	v.BindEnv("postgres.port", "PG_PORT")
	v.BindEnv("postgres.sslmode", "PG_SSLMODE")
	v.BindEnv("postgres.max_conns", "PG_MAX_CONNS")
	v.BindEnv("postgres.min_conns", "PG_MIN_CONNS")
	v.BindEnv("postgres.max_conn_lifetime", "PG_MAX_CONN_LIFETIME")
	v.BindEnv("postgres.max_conn_idle_time", "PG_MAX_CONN_IDLE_TIME")
	v.BindEnv("postgres.health_check_period", "PG_HEALTH_CHECK_PERIOD")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// NATS
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")
	v.BindEnv("nats.invalidation_subject", "NATS_INVALIDATION_SUBJECT")

	// Prometheus
	v.BindEnv("prometheus.port", "PROM_PORT")

	// Catalog cache
	v.BindEnv("catalog.cache_disabled", "DISABLE_PUBLIC_CATALOG_CACHE")
	v.BindEnv("catalog.cache_ttl", "CATALOG_CACHE_TTL")
	v.BindEnv("catalog.cache_max_entries", "CATALOG_CACHE_MAX_ENTRIES")
	v.BindEnv("catalog.sweep_interval", "CATALOG_SWEEP_INTERVAL")

	// Rate limit
	v.BindEnv("rate_limit.max_requests", "RATE_LIMIT_MAX_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
}
