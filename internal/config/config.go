package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingJWTSecret aborts startup when tokens cannot be signed
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not configured")

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Email     EmailConfig
	Registry  RegistryConfig
	Security  SecurityConfig
	Scheduler SchedulerConfig
	CORS      CORSConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    string
	Env     string
	BaseURL string
}

// IsProduction reports whether the server runs in production mode
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment reports whether development conveniences are enabled
func (c ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL. An explicit DSN wins over the parts.
func (c DatabaseConfig) URL() string {
	if c.DSN != "" {
		return c.DSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	SessionExpiry     time.Duration
	UnsubscribeExpiry time.Duration
}

// EmailConfig holds the transactional email provider settings
type EmailConfig struct {
	ResendAPIKey string
	From         string
	APIURL       string
}

// RegistryConfig holds the upstream vehicle registry settings
type RegistryConfig struct {
	APIKey  string
	BaseURL string
}

// SecurityConfig holds operator credentials
type SecurityConfig struct {
	CronSecret  string
	AdminSecret string
}

// SchedulerConfig controls the in-process reminder job and send pacing
type SchedulerConfig struct {
	ReminderCron string
	SendDelay    time.Duration
	LockTTL      time.Duration
}

// CORSConfig lists origins allowed to call the registry proxy
type CORSConfig struct {
	AllowedOrigins []string
}

// AdminSecret returns ADMIN_SECRET, falling back to CRON_SECRET.
func (c *Config) AdminSecret() string {
	if c.Security.AdminSecret != "" {
		return c.Security.AdminSecret
	}
	return c.Security.CronSecret
}

// Validate fails when a setting required at startup is missing
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    getEnv("SERVER_PORT", "8080"),
			Env:     getEnv("SERVER_ENV", getEnv("NODE_ENV", "development")),
			BaseURL: baseURL(),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("POSTGRES_URL", getEnv("DATABASE_URL", "")),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "vininfo"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:            os.Getenv("JWT_SECRET"),
			SessionExpiry:     getEnvAsDuration("JWT_SESSION_EXPIRY", 30*24*time.Hour),
			UnsubscribeExpiry: getEnvAsDuration("JWT_UNSUBSCRIBE_EXPIRY", 30*24*time.Hour),
		},
		Email: EmailConfig{
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			From:         getEnv("EMAIL_FROM", "VINInfo <noreply@mail.vininfo.cz>"),
			APIURL:       getEnv("RESEND_API_URL", "https://api.resend.com/"),
		},
		Registry: RegistryConfig{
			APIKey:  os.Getenv("API_KEY"),
			BaseURL: os.Getenv("API_BASE_URL"),
		},
		Security: SecurityConfig{
			CronSecret:  os.Getenv("CRON_SECRET"),
			AdminSecret: os.Getenv("ADMIN_SECRET"),
		},
		Scheduler: SchedulerConfig{
			ReminderCron: getEnvAllowEmpty("REMINDER_CRON", "0 7 * * *"),
			SendDelay:    getEnvAsDuration("EMAIL_SEND_DELAY", 600*time.Millisecond),
			LockTTL:      getEnvAsDuration("DISPATCH_LOCK_TTL", 10*time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{
				"https://vininfo.cz",
				"https://www.vininfo.cz",
				"http://localhost:3000",
				"http://localhost:3001",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:3001",
			}),
		},
	}
}

func baseURL() string {
	if host := os.Getenv("VERCEL_URL"); host != "" {
		return "https://" + host
	}
	return strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset variable from one set to "".
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
