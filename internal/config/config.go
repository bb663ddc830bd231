package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Portal   PortalConfig   `json:"portal"`
	Captcha  CaptchaConfig  `json:"captcha"`
	PDF      PDFConfig      `json:"pdf"`
	Log      LogConfig      `json:"log"`
	Security SecurityConfig `json:"security"`
	Browser  BrowserConfig  `json:"browser"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int    `json:"port"`
	Environment  string `json:"environment"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	IdleTimeout  int    `json:"idle_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	Name            string        `json:"name"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// ConnString builds a pgx-compatible connection string
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// PortalConfig holds eCourts portal configuration
type PortalConfig struct {
	BaseURL      string        `json:"base_url"`
	StepTimeout  time.Duration `json:"step_timeout"`
	SettleDelay  time.Duration `json:"settle_delay"`
	SearchBudget time.Duration `json:"search_budget"`
	UserAgent    string        `json:"user_agent"`
	// DefaultState is the state selected when the requested court has no
	// explicit jurisdiction mapping. See CourtMappings.
	DefaultState string        `json:"default_state"`
	CacheTTL     time.Duration `json:"cache_ttl"`
}

// CaptchaConfig holds captcha provider configuration
type CaptchaConfig struct {
	APIKey         string        `json:"api_key"`
	BaseURL        string        `json:"base_url"`
	PollInterval   time.Duration `json:"poll_interval"`
	Timeout        time.Duration `json:"timeout"`
	MaxRetries     int           `json:"max_retries"`
	ManualFallback bool          `json:"manual_fallback"`
}

// PDFConfig holds order PDF download configuration
type PDFConfig struct {
	StoragePath string `json:"storage_path"`
	MaxSizeMB   int    `json:"max_size_mb"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `json:"rate_limit"`
	CORS      CORSConfig      `json:"cors"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute"`
	BurstSize         int           `json:"burst_size"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// BrowserConfig holds browser automation configuration
type BrowserConfig struct {
	MinBrowsers int           `json:"min_browsers"`
	MaxBrowsers int           `json:"max_browsers"`
	PageTimeout time.Duration `json:"page_timeout"`
	Headless    bool          `json:"headless"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("PORT", 8080),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 30),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 180),
			IdleTimeout:  getEnvAsInt("IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "court_data"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			ConnMaxLifetime: time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  time.Duration(getEnvAsInt("REDIS_DIAL_TIMEOUT", 5)) * time.Second,
			ReadTimeout:  time.Duration(getEnvAsInt("REDIS_READ_TIMEOUT", 3)) * time.Second,
			WriteTimeout: time.Duration(getEnvAsInt("REDIS_WRITE_TIMEOUT", 3)) * time.Second,
		},
		Portal: PortalConfig{
			BaseURL:      getEnv("ECOURTS_BASE_URL", "https://services.ecourts.gov.in/ecourtindia_v6/"),
			StepTimeout:  time.Duration(getEnvAsInt("PORTAL_STEP_TIMEOUT", 30)) * time.Second,
			SettleDelay:  time.Duration(getEnvAsInt("PORTAL_SETTLE_DELAY_MS", 2000)) * time.Millisecond,
			SearchBudget: time.Duration(getEnvAsInt("PORTAL_SEARCH_BUDGET", 240)) * time.Second,
			UserAgent:    getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"),
			DefaultState: getEnv("PORTAL_DEFAULT_STATE", "Delhi"),
			CacheTTL:     time.Duration(getEnvAsInt("PORTAL_CACHE_TTL", 3600)) * time.Second,
		},
		Captcha: CaptchaConfig{
			APIKey:         getEnv("TWOCAPTCHA_API_KEY", ""),
			BaseURL:        getEnv("TWOCAPTCHA_BASE_URL", "http://2captcha.com"),
			PollInterval:   time.Duration(getEnvAsInt("CAPTCHA_POLL_INTERVAL", 5)) * time.Second,
			Timeout:        time.Duration(getEnvAsInt("CAPTCHA_TIMEOUT", 120)) * time.Second,
			MaxRetries:     getEnvAsInt("CAPTCHA_RETRY_LIMIT", 3),
			ManualFallback: getEnvAsBool("CAPTCHA_MANUAL_FALLBACK", false),
		},
		PDF: PDFConfig{
			StoragePath: getEnv("PDF_STORAGE_PATH", "downloads/pdfs"),
			MaxSizeMB:   getEnvAsInt("MAX_PDF_SIZE_MB", 50),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
				BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
				CleanupInterval:   time.Duration(getEnvAsInt("RATE_LIMIT_CLEANUP", 60)) * time.Second,
			},
			CORS: CORSConfig{
				AllowedOrigins:   []string{"*"},
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: false,
			},
		},
		Browser: BrowserConfig{
			MinBrowsers: getEnvAsInt("BROWSER_MIN", 1),
			MaxBrowsers: getEnvAsInt("BROWSER_MAX", 4),
			PageTimeout: time.Duration(getEnvAsInt("PAGE_TIMEOUT", 30)) * time.Second,
			Headless:    getEnvAsBool("BROWSER_HEADLESS", true),
		},
	}

	if cfg.Portal.BaseURL == "" {
		return nil, fmt.Errorf("ECOURTS_BASE_URL is required")
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
