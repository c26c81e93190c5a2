package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverFile     = "file"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// minSecretLen matches the HKDF and HMAC key material the secrets need.
const minSecretLen = 32

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Slack    SlackConfig
	Secrets  SecretsConfig
	Log      LogConfig
}

// StoreConfig selects where workspaces and saved lists live.
type StoreConfig struct {
	Driver  string
	DataDir string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings. An empty Addr disables board
// events and the user profile cache.
type RedisConfig struct {
	Addr         string
	Password     string //nolint:gosec // G117: Redis connection config
	DB           int
	UserCacheTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	CORSOrigins    []string
	BaseURL        string
	RateLimitRPS   float64
	RateLimitBurst int
	StaticDir      string

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy bool
}

// SlackConfig holds the Slack app credentials and API pacing.
type SlackConfig struct {
	ClientID     string
	ClientSecret string //nolint:gosec // G117: OAuth client config
	BotScopes    []string
	UserScopes   []string
	APIURL       string
	RPS          float64
	Burst        int
}

// Configured reports whether the OAuth install flow can run.
func (c *SlackConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// SecretsConfig holds key material for OAuth state and token encryption.
type SecretsConfig struct {
	StateSecret   string //nolint:gosec // G117: HMAC key config
	StateTTL      time.Duration
	EncryptionKey string //nolint:gosec // G117: encryption key config
}

// LogConfig selects the zerolog level and output format.
type LogConfig struct {
	Level  zerolog.Level
	Format string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (encryption key, state secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("SLACKDONE_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("SLACKDONE_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("SLACKDONE_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	userCacheTTL, err := getEnvDuration("SLACKDONE_USER_CACHE_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("SLACKDONE_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("SLACKDONE_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateRPS, err := getEnvFloat("SLACKDONE_RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("SLACKDONE_RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	slackRPS, err := getEnvFloat("SLACKDONE_SLACK_RPS", 2)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	slackBurst, err := getEnvInt("SLACKDONE_SLACK_BURST", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	stateTTL, err := getEnvDuration("SLACKDONE_STATE_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	trustProxy, err := getEnvBool("SLACKDONE_TRUST_PROXY", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	logLevel, err := zerolog.ParseLevel(strings.ToLower(getEnv("SLACKDONE_LOG_LEVEL", "info")))
	if err != nil {
		return nil, fmt.Errorf("config.Load: parsing SLACKDONE_LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Store: StoreConfig{
			Driver:  getEnv("SLACKDONE_STORE_DRIVER", StoreDriverFile),
			DataDir: getEnv("SLACKDONE_DATA_DIR", "./data"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("SLACKDONE_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("SLACKDONE_DB_USER", "slackdone"),
			Password: getEnv("SLACKDONE_DB_PASSWORD", ""),
			DBName:   getEnv("SLACKDONE_DB_NAME", "slackdone"),
			SSLMode:  getEnv("SLACKDONE_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:         getEnv("SLACKDONE_REDIS_ADDR", ""),
			Password:     getEnv("SLACKDONE_REDIS_PASSWORD", ""),
			DB:           redisDB,
			UserCacheTTL: userCacheTTL,
		},
		Server: ServerConfig{
			Addr:           getEnv("SLACKDONE_SERVER_ADDR", ":8080"),
			ReadTimeout:    readTimeout,
			WriteTimeout:   writeTimeout,
			CORSOrigins:    getEnvList("SLACKDONE_CORS_ORIGINS", []string{"http://localhost:3000"}),
			BaseURL:        getEnv("SLACKDONE_BASE_URL", "http://localhost:3000"),
			RateLimitRPS:   rateRPS,
			RateLimitBurst: rateBurst,
			StaticDir:      getEnv("SLACKDONE_STATIC_DIR", ""),
			TrustProxy:     trustProxy,
		},
		Slack: SlackConfig{
			ClientID:     getEnv("SLACKDONE_SLACK_CLIENT_ID", ""),
			ClientSecret: getEnv("SLACKDONE_SLACK_CLIENT_SECRET", ""),
			BotScopes:    getEnvList("SLACKDONE_SLACK_BOT_SCOPES", []string{"lists:read", "lists:write", "team:read", "users:read"}),
			UserScopes:   getEnvList("SLACKDONE_SLACK_USER_SCOPES", []string{"lists:read", "lists:write", "users:read"}),
			APIURL:       getEnv("SLACKDONE_SLACK_API_URL", "https://slack.com/api/"),
			RPS:          slackRPS,
			Burst:        slackBurst,
		},
		Secrets: SecretsConfig{
			StateSecret:   getEnv("SLACKDONE_STATE_SECRET", ""),
			StateTTL:      stateTTL,
			EncryptionKey: getEnv("SLACKDONE_ENCRYPTION_KEY", ""),
		},
		Log: LogConfig{
			Level:  logLevel,
			Format: strings.ToLower(getEnv("SLACKDONE_LOG_FORMAT", LogFormatJSON)),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// Tokens are always encrypted at rest, so the key is required.
	if c.Secrets.EncryptionKey == "" {
		return errors.New("SLACKDONE_ENCRYPTION_KEY is required")
	}
	if len(c.Secrets.EncryptionKey) < minSecretLen {
		return fmt.Errorf("SLACKDONE_ENCRYPTION_KEY must be at least %d characters", minSecretLen)
	}

	if (c.Slack.ClientID == "") != (c.Slack.ClientSecret == "") {
		return errors.New("SLACKDONE_SLACK_CLIENT_ID and SLACKDONE_SLACK_CLIENT_SECRET must be set together")
	}
	if c.Slack.Configured() && c.Secrets.StateSecret == "" {
		return errors.New("SLACKDONE_STATE_SECRET is required when Slack OAuth is configured")
	}
	if c.Secrets.StateSecret != "" && len(c.Secrets.StateSecret) < minSecretLen {
		return fmt.Errorf("SLACKDONE_STATE_SECRET must be at least %d characters", minSecretLen)
	}
	if c.Secrets.StateTTL <= 0 {
		return fmt.Errorf("SLACKDONE_STATE_TTL must be positive, got %s", c.Secrets.StateTTL)
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("SLACKDONE_DB_PORT must be 1-65535, got %d", c.Database.Port)
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("SLACKDONE_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
		}
		if c.Database.SSLMode == "disable" && c.Database.Host != "localhost" && c.Database.Host != "127.0.0.1" {
			log.Warn().Msg("SLACKDONE_DB_SSLMODE=disable is insecure for remote databases; set to 'require' or 'verify-full'")
		}
	case StoreDriverFile:
		if c.Store.DataDir == "" {
			return errors.New("SLACKDONE_DATA_DIR must not be empty")
		}
	default:
		return fmt.Errorf("SLACKDONE_STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverFile, c.Store.Driver)
	}

	if c.Redis.Addr != "" && c.Redis.UserCacheTTL <= 0 {
		return fmt.Errorf("SLACKDONE_USER_CACHE_TTL must be positive, got %s", c.Redis.UserCacheTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("SLACKDONE_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SLACKDONE_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("SLACKDONE_RATE_LIMIT_RPS must be positive, got %g", c.Server.RateLimitRPS)
	}
	if c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("SLACKDONE_RATE_LIMIT_BURST must be >= 1, got %d", c.Server.RateLimitBurst)
	}
	if c.Slack.RPS <= 0 {
		return fmt.Errorf("SLACKDONE_SLACK_RPS must be positive, got %g", c.Slack.RPS)
	}
	if c.Slack.Burst < 1 {
		return fmt.Errorf("SLACKDONE_SLACK_BURST must be >= 1, got %d", c.Slack.Burst)
	}

	switch c.Log.Format {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("SLACKDONE_LOG_FORMAT must be %q or %q, got %q", LogFormatJSON, LogFormatText, c.Log.Format)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
