package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Detection DetectionConfig `mapstructure:"detection"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	Callback  CallbackConfig  `mapstructure:"callback"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig controls the honeypot API key check. Invalid keys are still
// answered with a decoy success so callers cannot probe for the real key.
type AuthConfig struct {
	APIKey     string `mapstructure:"api_key"`
	HeaderName string `mapstructure:"header_name"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Schema          string        `mapstructure:"schema"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.Schema,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	StreamName string `mapstructure:"stream_name"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// LLMConfig configures the external verdict and reply provider.
type LLMConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type DetectionConfig struct {
	// Minimum confidence an external verdict needs before the first tier fires.
	LLMConfidenceThreshold float64 `mapstructure:"llm_confidence_threshold"`
	// Turn count after which the safety net forces detection.
	SafetyNetTurn int `mapstructure:"safety_net_turn"`
	// Weight applied per keyword hit when scoring lexical matches.
	KeywordWeight float64 `mapstructure:"keyword_weight"`
	// Cap on the number of reasons reported from the keyword tier.
	MaxKeywordReasons int `mapstructure:"max_keyword_reasons"`
}

type SessionsConfig struct {
	TTL     time.Duration `mapstructure:"ttl"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type CallbackConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/scamtrap-lab")
	}

	// Environment variables
	v.SetEnvPrefix("SCAMTRAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.host", "SCAMTRAP_REDIS_HOST")
	v.BindEnv("redis.port", "SCAMTRAP_REDIS_PORT")
	v.BindEnv("redis.password", "SCAMTRAP_REDIS_PASSWORD")
	v.BindEnv("database.host", "SCAMTRAP_DATABASE_HOST")
	v.BindEnv("database.port", "SCAMTRAP_DATABASE_PORT")
	v.BindEnv("database.user", "SCAMTRAP_DATABASE_USER")
	v.BindEnv("database.password", "SCAMTRAP_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "SCAMTRAP_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "SCAMTRAP_DATABASE_SSLMODE")
	v.BindEnv("nats.enabled", "SCAMTRAP_NATS_ENABLED")
	v.BindEnv("llm.enabled", "SCAMTRAP_LLM_ENABLED")
	v.BindEnv("llm.api_key", "SCAMTRAP_LLM_API_KEY")
	v.BindEnv("auth.api_key", "SCAMTRAP_AUTH_API_KEY")
	v.BindEnv("app.environment", "SCAMTRAP_APP_ENVIRONMENT")

	setDefaults(v)

	// Read config file; env-only configuration is fine if no file exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "scamtrap-lab")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("auth.header_name", "X-API-Key")

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.schema", "public")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "scamtrap:")

	v.SetDefault("nats.stream_name", "SCAMTRAP_EVENTS")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_minute", 120)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 512)
	v.SetDefault("llm.timeout", 20*time.Second)

	v.SetDefault("detection.llm_confidence_threshold", 0.5)
	v.SetDefault("detection.safety_net_turn", 2)
	v.SetDefault("detection.keyword_weight", 0.15)
	v.SetDefault("detection.max_keyword_reasons", 8)

	v.SetDefault("sessions.ttl", 24*time.Hour)
	v.SetDefault("sessions.lock_ttl", 30*time.Second)

	v.SetDefault("callback.enabled", true)
	v.SetDefault("callback.max_retries", 3)
	v.SetDefault("callback.retry_delay", 2*time.Second)
	v.SetDefault("callback.timeout", 10*time.Second)
}
