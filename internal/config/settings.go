package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete panel configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	TLS       TLSConfig
	Backend   BackendConfig
	Session   SessionConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Table     TableConfig
	Rendering RenderingConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Version     string
	Environment string // development, staging, production
	Name        string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port     string
	Protocol string // http or https
	Domain   string
}

// TLSConfig holds TLS/HTTPS certificate settings
type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

// BackendConfig points at the ZuPOS web panel the dashboard talks to
type BackendConfig struct {
	// WebPanelURL hosts Login/SignIn, Home/Index, Login/Logout and api/Menu
	WebPanelURL string

	// APIBaseURL is the token API; only used to forward bearer tokens
	APIBaseURL string

	// MenuLanguageID is sent as languageID on getMenuList
	MenuLanguageID int

	SignInTimeout   time.Duration
	ValidateTimeout time.Duration
	MenuTimeout     time.Duration
}

// SessionConfig controls panel sessions and per-session navigation state
type SessionConfig struct {
	CookieName   string
	CookieSecure bool
	TTL          time.Duration

	// MenuCacheTTL bounds how long a fetched menu tree is reused for a session
	MenuCacheTTL time.Duration

	// ResolverIdleTTL evicts navigation state of sessions that stopped browsing
	ResolverIdleTTL time.Duration

	// MenuWait is how long a page render waits for the first menu fetch
	MenuWait time.Duration

	// LoginBurst and LoginRefill throttle sign-in attempts per client IP
	LoginBurst  int
	LoginRefill time.Duration
}

// RedisConfig holds redis settings; an empty Addr keeps sessions in memory
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig holds the optional warehouse database settings
type DatabaseConfig struct {
	URL               string
	MaxConns          int32
	MinConns          int32
	HealthCheckPeriod time.Duration
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	ConnectTimeout    time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
}

// TableConfig holds list screen defaults
type TableConfig struct {
	RowsPerPage int
}

// RenderingConfig holds static file settings
type RenderingConfig struct {
	StaticDir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig(logger *slog.Logger) (*Config, error) {
	// Load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("loading panel configuration")

	config := &Config{}

	loadAppConfig(&config.App, logger)

	if err := loadServerConfig(&config.Server, logger); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	loadTLSConfig(&config.TLS, logger)

	if err := loadBackendConfig(&config.Backend, logger); err != nil {
		return nil, fmt.Errorf("failed to load backend config: %w", err)
	}

	loadSessionConfig(&config.Session, config.App.Environment, logger)
	loadRedisConfig(&config.Redis, logger)
	loadDatabaseConfig(&config.Database, logger)
	loadTableConfig(&config.Table, logger)
	loadRenderingConfig(&config.Rendering, logger)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger.Info("configuration loaded successfully",
		"environment", config.App.Environment,
		"version", config.App.Version,
		"port", config.Server.Port,
		"web_panel", config.Backend.WebPanelURL,
	)

	return config, nil
}

func loadAppConfig(cfg *AppConfig, logger *slog.Logger) {
	cfg.Version = getEnvOrDefault("VERSION", "1.0.0", logger)
	cfg.Environment = getEnvOrDefault("ENV", "development", logger)
	cfg.Name = os.Getenv("APP_NAME")
	if cfg.Name == "" {
		cfg.Name = "ZuPOS"
	}
}

func loadServerConfig(cfg *ServerConfig, logger *slog.Logger) error {
	port := os.Getenv("PORT")
	if port == "" {
		return fmt.Errorf("PORT environment variable is required")
	}
	cfg.Port = port
	cfg.Protocol = getEnvOrDefault("PROTOCOL", "http", logger)
	cfg.Domain = getEnvOrDefault("DOMAIN", "localhost", logger)
	return nil
}

func loadTLSConfig(cfg *TLSConfig, logger *slog.Logger) {
	cfg.CertFile = os.Getenv("TLS_CERT_FILE")
	cfg.KeyFile = os.Getenv("TLS_KEY_FILE")
	cfg.Enabled = cfg.CertFile != "" && cfg.KeyFile != ""

	if cfg.Enabled {
		logger.Info("TLS enabled", "cert_file", cfg.CertFile, "key_file", cfg.KeyFile)
	}
}

func loadBackendConfig(cfg *BackendConfig, logger *slog.Logger) error {
	webPanel := strings.TrimRight(os.Getenv("WEB_PANEL_URL"), "/")
	if webPanel == "" {
		return fmt.Errorf("WEB_PANEL_URL environment variable is required")
	}
	cfg.WebPanelURL = webPanel

	cfg.APIBaseURL = strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = webPanel + "/api"
		logger.Warn("API_BASE_URL not set, deriving from web panel", "default", cfg.APIBaseURL)
	}

	cfg.MenuLanguageID = getEnvAsInt("MENU_LANGUAGE_ID", 1)
	cfg.SignInTimeout = getEnvAsDuration("SIGNIN_TIMEOUT", 10*time.Second)
	cfg.ValidateTimeout = getEnvAsDuration("VALIDATE_TIMEOUT", 5*time.Second)
	cfg.MenuTimeout = getEnvAsDuration("MENU_TIMEOUT", 10*time.Second)

	logger.Debug("backend config loaded",
		"language_id", cfg.MenuLanguageID,
		"signin_timeout", cfg.SignInTimeout.String(),
		"validate_timeout", cfg.ValidateTimeout.String(),
	)
	return nil
}

func loadSessionConfig(cfg *SessionConfig, env string, logger *slog.Logger) {
	cfg.CookieName = os.Getenv("SESSION_COOKIE_NAME")
	if cfg.CookieName == "" {
		cfg.CookieName = "zupos_session"
	}
	cfg.CookieSecure = getEnvAsBool("SESSION_COOKIE_SECURE", env == "production")
	cfg.TTL = getEnvAsDuration("SESSION_TTL", 12*time.Hour)
	cfg.MenuCacheTTL = getEnvAsDuration("MENU_CACHE_TTL", 30*time.Minute)
	cfg.ResolverIdleTTL = getEnvAsDuration("RESOLVER_IDLE_TTL", time.Hour)
	cfg.MenuWait = getEnvAsDuration("MENU_WAIT", 2*time.Second)
	cfg.LoginBurst = getEnvAsInt("LOGIN_BURST", 5)
	cfg.LoginRefill = getEnvAsDuration("LOGIN_REFILL", 12*time.Second)

	if !cfg.CookieSecure && env == "production" {
		logger.Warn("session cookie is not marked secure in production")
	}
}

func loadRedisConfig(cfg *RedisConfig, logger *slog.Logger) {
	cfg.Addr = os.Getenv("REDIS_ADDR")
	cfg.Password = os.Getenv("REDIS_PASSWORD")
	cfg.DB = getEnvAsInt("REDIS_DB", 0)

	if cfg.Addr != "" {
		logger.Debug("Redis config loaded", "addr", cfg.Addr, "db", cfg.DB)
	} else {
		logger.Warn("REDIS_ADDR not set, sessions are kept in memory")
	}
}

func loadDatabaseConfig(cfg *DatabaseConfig, logger *slog.Logger) {
	cfg.URL = os.Getenv("DB_URL")
	cfg.MaxConns = int32(getEnvAsInt("DB_MAX_CONNS", 10))
	cfg.MinConns = int32(getEnvAsInt("DB_MIN_CONNS", 2))
	cfg.HealthCheckPeriod = time.Duration(getEnvAsInt("DB_HEALTH_CHECK_PERIOD_SECONDS", 60)) * time.Second
	cfg.MaxConnLifetime = time.Duration(getEnvAsInt("DB_MAX_CONN_LIFETIME_MINUTES", 0)) * time.Minute
	cfg.MaxConnIdleTime = time.Duration(getEnvAsInt("DB_MAX_CONN_IDLE_TIME_MINUTES", 0)) * time.Minute
	cfg.ConnectTimeout = 10 * time.Second
	cfg.MaxRetries = 3
	cfg.RetryDelay = 1 * time.Second

	if cfg.URL == "" {
		logger.Warn("DB_URL not set, warehouse definitions are kept in memory")
		return
	}
	logger.Debug("database config loaded", "max_conns", cfg.MaxConns, "min_conns", cfg.MinConns)
}

func loadTableConfig(cfg *TableConfig, logger *slog.Logger) {
	cfg.RowsPerPage = getEnvAsInt("TABLE_ROWS_PER_PAGE", 5)
	if cfg.RowsPerPage <= 0 {
		logger.Warn("TABLE_ROWS_PER_PAGE must be positive, using default", "default", 5)
		cfg.RowsPerPage = 5
	}
}

func loadRenderingConfig(cfg *RenderingConfig, logger *slog.Logger) {
	cfg.StaticDir = os.Getenv("STATIC_DIR")
	if cfg.StaticDir != "" {
		logger.Info("serving static files from disk", "dir", cfg.StaticDir)
	}
}

// Helper functions

func getEnvOrDefault(key, defaultVal string, logger *slog.Logger) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	logger.Warn(key+" not set, using default", "default", defaultVal)
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// GetServerAddress returns the full server address (protocol://domain:port)
func (c *Config) GetServerAddress() string {
	if c.Server.Protocol == "https" && c.Server.Port == "443" {
		return fmt.Sprintf("https://%s", c.Server.Domain)
	}
	if c.Server.Protocol == "http" && c.Server.Port == "80" {
		return fmt.Sprintf("http://%s", c.Server.Domain)
	}
	return fmt.Sprintf("%s://%s:%s", c.Server.Protocol, c.Server.Domain, c.Server.Port)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Backend.WebPanelURL == "" {
		return fmt.Errorf("web panel URL is required")
	}
	if !strings.HasPrefix(c.Backend.WebPanelURL, "http://") && !strings.HasPrefix(c.Backend.WebPanelURL, "https://") {
		return fmt.Errorf("web panel URL must be absolute: %q", c.Backend.WebPanelURL)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	return nil
}
