package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the fitroom server.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Session  SessionConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
}

type ServerConfig struct {
	Port          int
	Env           string
	CORSOrigin    string
	PublicBaseURL string // optional; empty means derive from the request
	RatePerMinute int
}

type UploadConfig struct {
	Dir         string
	MaxFileSize int64
}

type SessionConfig struct {
	Store        string // "memory" or "postgres"
	Retention    time.Duration
	FetchTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string // optional; empty disables the cache
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	Ark              ArkConfig
}

// ArkConfig configures the Volcengine Ark chat endpoint.
type ArkConfig struct {
	APIKey     string
	EndpointID string
	BaseURL    string
}

var validProviders = map[string]bool{
	"mock": true,
	"ark":  true,
}

var validStores = map[string]bool{
	"memory":   true,
	"postgres": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:          envInt("PORT", 3001),
			Env:           envString("FITROOM_ENV", "development"),
			CORSOrigin:    envString("CORS_ORIGIN", "http://localhost:3000"),
			PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),
			RatePerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		Upload: UploadConfig{
			Dir:         envString("UPLOAD_DIR", "./uploads"),
			MaxFileSize: envInt64("MAX_FILE_SIZE", 10485760),
		},
		Session: SessionConfig{
			Store:        envString("SESSION_STORE", "memory"),
			Retention:    envDuration("SESSION_RETENTION", 30*time.Minute),
			FetchTimeout: envDurationSecs("FETCH_TIMEOUT_SECS", 20*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		AI: AIConfig{
			Provider:         envString("AI_PROVIDER", "mock"),
			InferenceTimeout: envDurationSecs("AI_TIMEOUT_SECS", 30*time.Second),
			Ark: ArkConfig{
				APIKey:     os.Getenv("ARK_API_KEY"),
				EndpointID: os.Getenv("ARK_ENDPOINT_ID"),
				BaseURL:    envString("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of mock, ark; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "ark" {
		if c.AI.Ark.APIKey == "" {
			return fmt.Errorf("ARK_API_KEY is required when AI_PROVIDER is ark")
		}
		if c.AI.Ark.EndpointID == "" {
			return fmt.Errorf("ARK_ENDPOINT_ID is required when AI_PROVIDER is ark")
		}
		if !strings.HasPrefix(c.AI.Ark.BaseURL, "http://") && !strings.HasPrefix(c.AI.Ark.BaseURL, "https://") {
			return fmt.Errorf("ARK_BASE_URL must start with http:// or https://, got %q", c.AI.Ark.BaseURL)
		}
	}

	if !validStores[c.Session.Store] {
		return fmt.Errorf("SESSION_STORE must be one of memory, postgres; got %q", c.Session.Store)
	}
	if c.Session.Store == "postgres" && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when SESSION_STORE is postgres")
	}

	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.Upload.MaxFileSize)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
