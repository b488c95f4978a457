package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	Server     ServerConfig
	Session    SessionConfig
	Pagination PaginationConfig
	Bootstrap  BootstrapConfig
	Logging    LoggingConfig
	Telemetry  TelemetryConfig
}

// DatabaseConfig holds database configuration. URL is either a postgres://
// connection string or sqlite:<path> (sqlite::memory: for an in-memory db).
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL        string
	Enabled    bool
	ListingTTL time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port               int
	Host               string
	AllowedOrigins     []string
	RateLimitPerMinute int
}

// SessionConfig holds session token configuration
type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	Secure       bool
	PasswordCost int
}

// PaginationConfig bounds page sizes for listing endpoints
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// BootstrapConfig names an administrator ensured at startup.
// Both fields empty disables the bootstrap.
type BootstrapConfig struct {
	AdminUsername string
	AdminPassword string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string
	Format       string // "json" or "text"
	ScalyrFormat bool   // Enable Scalyr-compatible JSON format
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	ServiceName       string
}

const envPrefix = "INKWELL"

// Load loads configuration from a .env file, environment variables and
// an optional config file
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.inkwell")
	viper.AddConfigPath("/etc/inkwell")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	redisURL := getString("redis_url", "")
	cfg := &Config{
		Database: DatabaseConfig{
			URL:          getString("database_url", "sqlite:inkwell.db"),
			MaxOpenConns: getInt("database_max_open_conns", 20),
		},
		Redis: RedisConfig{
			URL:        redisURL,
			Enabled:    redisURL != "",
			ListingTTL: getDuration("cache_listing_ttl", 30*time.Second),
		},
		Server: ServerConfig{
			Port:               getInt("http_server_port", 8080),
			Host:               getString("http_server_host", "0.0.0.0"),
			AllowedOrigins:     splitList(getString("allowed_origins", "http://localhost:3000")),
			RateLimitPerMinute: getInt("auth_rate_limit_per_minute", 30),
		},
		Session: SessionConfig{
			Secret:       getString("session_secret", ""),
			TTL:          getDuration("session_ttl", 7*24*time.Hour),
			CookieName:   getString("session_cookie_name", "inkwell_session"),
			Secure:       getBool("session_cookie_secure", false),
			PasswordCost: getInt("password_cost", 10),
		},
		Pagination: PaginationConfig{
			DefaultPageSize: getInt("default_page_size", 10),
			MaxPageSize:     getInt("max_page_size", 100),
		},
		Bootstrap: BootstrapConfig{
			AdminUsername: getString("admin_username", ""),
			AdminPassword: getString("admin_password", ""),
		},
		Logging: LoggingConfig{
			Level:        getString("log_level", "INFO"),
			Format:       getString("log_format", "json"),
			ScalyrFormat: getBool("log_scalyr_format", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", false),
			JaegerURL:         getString("jaeger_url", ""),
			PrometheusEnabled: getBool("prometheus_enabled", true),
			ServiceName:       getString("service_name", "inkwell"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("database_url", "sqlite:inkwell.db")
	viper.SetDefault("http_server_port", 8080)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("session_cookie_name", "inkwell_session")
	viper.SetDefault("session_ttl", "168h")
	viper.SetDefault("default_page_size", 10)
	viper.SetDefault("max_page_size", 100)
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("service_name", "inkwell")
}

func getString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	// Also check environment variable directly
	if val := os.Getenv(envKey(key)); val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if val := os.Getenv(envKey(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if val := os.Getenv(envKey(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	if val := os.Getenv(envKey(key)); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}

// envKey maps a config key to its environment variable name,
// e.g. "session_ttl" -> "INKWELL_SESSION_TTL".
func envKey(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database_url is required")
	}
	if len(c.Session.Secret) < 16 {
		return fmt.Errorf("session_secret must be at least 16 bytes")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("http_server_port must be between 1 and 65535")
	}
	if c.Pagination.MaxPageSize <= 0 || c.Pagination.MaxPageSize > 1000 {
		return fmt.Errorf("max_page_size must be between 1 and 1000")
	}
	if c.Pagination.DefaultPageSize <= 0 || c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		return fmt.Errorf("default_page_size must be between 1 and max_page_size")
	}
	if (c.Bootstrap.AdminUsername == "") != (c.Bootstrap.AdminPassword == "") {
		return fmt.Errorf("admin_username and admin_password must be set together")
	}
	return nil
}
