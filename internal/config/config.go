package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	Dataset   DatasetConfig
	Dashboard DashboardConfig
	Logger    LoggerConfig
	Security  SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatasetConfig struct {
	Source        string
	CSVFile       string
	CacheDir      string
	CacheEnabled  bool
	PostgresDSN   string `json:"-"`
	PostgresTable string
	LoadTimeout   time.Duration
}

// DashboardConfig holds the defaults the page opens with.
type DashboardConfig struct {
	CurrentYear  int
	PreviousYear int
	RankSize     int
	TableRows    int
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

// Load reads the configuration from the environment. Variables in a .env
// file in the working directory are applied first without overriding ones
// already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8501),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Dataset: DatasetConfig{
			Source:        strings.ToLower(getEnvString("DATASET_SOURCE", SourceCSV)),
			CSVFile:       getEnvString("CSV_FILE", "cleanOrders.csv"),
			CacheDir:      getEnvString("DATASET_CACHE_DIR", ".cache"),
			CacheEnabled:  getEnvBool("DATASET_CACHE_ENABLED", true),
			PostgresDSN:   getEnvString("DATASET_POSTGRES_DSN", ""),
			PostgresTable: getEnvString("DATASET_POSTGRES_TABLE", "orders"),
			LoadTimeout:   getEnvDuration("DATASET_LOAD_TIMEOUT", 30*time.Second),
		},
		Dashboard: DashboardConfig{
			CurrentYear:  getEnvInt("DASHBOARD_CURRENT_YEAR", 2023),
			PreviousYear: getEnvInt("DASHBOARD_PREVIOUS_YEAR", 2022),
			RankSize:     getEnvInt("DASHBOARD_RANK_SIZE", 10),
			TableRows:    getEnvInt("DASHBOARD_TABLE_ROWS", 200),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8501"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	switch c.Dataset.Source {
	case SourceCSV:
		if c.Dataset.CSVFile == "" {
			return fmt.Errorf("CSV file path cannot be empty")
		}
	case SourcePostgres:
		if c.Dataset.PostgresDSN == "" {
			return fmt.Errorf("postgres DSN is required when dataset source is %q", SourcePostgres)
		}
		if c.Dataset.PostgresTable == "" {
			return fmt.Errorf("postgres table cannot be empty")
		}
	default:
		return fmt.Errorf("invalid dataset source %q, must be one of: %s, %s", c.Dataset.Source, SourceCSV, SourcePostgres)
	}

	if c.Dataset.LoadTimeout <= 0 {
		return fmt.Errorf("dataset load timeout must be positive")
	}

	if c.Dashboard.CurrentYear == c.Dashboard.PreviousYear {
		return fmt.Errorf("current and previous year must differ, both are %d", c.Dashboard.CurrentYear)
	}

	if c.Dashboard.RankSize < 1 || c.Dashboard.RankSize > 50 {
		return fmt.Errorf("dashboard rank size must be between 1 and 50, got %d", c.Dashboard.RankSize)
	}

	if c.Dashboard.TableRows <= 0 {
		return fmt.Errorf("dashboard table rows must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
