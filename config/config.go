// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration.
type Config struct {
	Environment   string
	Server        ServerConfig
	Auth          AuthConfig
	Providers     ProvidersConfig
	Routing       RoutingConfig
	Cache         CacheConfig
	Database      *DatabaseConfig // Optional: durable usage store. Nil keeps usage in memory only.
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Address returns the HTTP server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig holds API authentication configuration. An empty secret
// disables authentication.
type AuthConfig struct {
	JWTSecret string
}

// ProviderConfig holds one upstream provider's settings. An empty APIKey
// leaves the provider unregistered.
type ProviderConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// ProvidersConfig holds all upstream provider configurations.
type ProvidersConfig struct {
	OpenAI    ProviderConfig
	Anthropic ProviderConfig
	Google    ProviderConfig
	Mistral   ProviderConfig
}

// RoutingConfig holds routing behavior settings.
type RoutingConfig struct {
	// Strategy is the default selection strategy; requests may override it.
	Strategy string

	// EnableFallback retries a failed invocation once with the catalog's
	// fallback model.
	EnableFallback bool

	// InvokeTimeout bounds each provider call.
	InvokeTimeout time.Duration

	// CatalogPath points at a YAML model catalog. Empty uses the built-in
	// catalog.
	CatalogPath string

	// WatchCatalog hot-reloads the catalog file on change.
	WatchCatalog bool
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled bool
	Backend string // memory or redis
	TTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// DatabaseConfig holds PostgreSQL configuration. When ConnectionString is
// set it takes precedence over the individual fields.
type DatabaseConfig struct {
	ConnectionString string
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// DSN returns the connection string for the driver.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password).
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			return fmt.Sprintf("host=%s port=%s database=%s",
				u.Hostname(), port, strings.TrimPrefix(u.Path, "/"))
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// ObservabilityConfig holds logging and metrics configuration.
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or console
	MetricsEnabled bool
}

// New loads the configuration from the environment, reading .env first when
// present.
func New() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Providers: ProvidersConfig{
			OpenAI: ProviderConfig{
				APIKey:     getEnv("OPENAI_API_KEY", ""),
				BaseURL:    getEnv("OPENAI_BASE_URL", ""),
				Timeout:    getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
				MaxRetries: getEnvAsInt("OPENAI_MAX_RETRIES", 2),
			},
			Anthropic: ProviderConfig{
				APIKey:     getEnv("ANTHROPIC_API_KEY", ""),
				BaseURL:    getEnv("ANTHROPIC_BASE_URL", ""),
				Timeout:    getEnvAsDuration("ANTHROPIC_TIMEOUT", 30*time.Second),
				MaxRetries: getEnvAsInt("ANTHROPIC_MAX_RETRIES", 2),
			},
			Google: ProviderConfig{
				APIKey:     getEnv("GOOGLE_API_KEY", ""),
				BaseURL:    getEnv("GOOGLE_BASE_URL", ""),
				Timeout:    getEnvAsDuration("GOOGLE_TIMEOUT", 30*time.Second),
				MaxRetries: getEnvAsInt("GOOGLE_MAX_RETRIES", 2),
			},
			Mistral: ProviderConfig{
				APIKey:     getEnv("MISTRAL_API_KEY", ""),
				BaseURL:    getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
				Timeout:    getEnvAsDuration("MISTRAL_TIMEOUT", 30*time.Second),
				MaxRetries: getEnvAsInt("MISTRAL_MAX_RETRIES", 2),
			},
		},
		Routing: RoutingConfig{
			Strategy:       getEnv("ROUTING_STRATEGY", "cost_optimized"),
			EnableFallback: getEnvAsBool("ROUTING_ENABLE_FALLBACK", true),
			InvokeTimeout:  getEnvAsDuration("ROUTING_INVOKE_TIMEOUT", 60*time.Second),
			CatalogPath:    getEnv("ROUTING_CATALOG_PATH", ""),
			WatchCatalog:   getEnvAsBool("ROUTING_WATCH_CATALOG", false),
		},
		Cache: CacheConfig{
			Enabled:       getEnvAsBool("CACHE_ENABLED", true),
			Backend:       getEnv("CACHE_BACKEND", "memory"),
			TTL:           getEnvAsDuration("CACHE_TTL", time.Hour),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: loadDatabaseConfig(),
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Routing.Strategy {
	case "cost_optimized", "quality_first", "balanced":
	default:
		return fmt.Errorf("invalid routing strategy: %q", c.Routing.Strategy)
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid cache backend: %q", c.Cache.Backend)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.Cache.TTL)
	}

	if c.Routing.WatchCatalog && c.Routing.CatalogPath == "" {
		return fmt.Errorf("ROUTING_WATCH_CATALOG requires ROUTING_CATALOG_PATH")
	}
	return nil
}

// loadDatabaseConfig returns nil unless DATABASE_URL or DB_HOST is set.
func loadDatabaseConfig() *DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL != "" {
		return &DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	if getEnv("DB_HOST", "") == "" {
		return nil
	}
	return &DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "router"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "smartllm"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
