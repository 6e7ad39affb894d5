package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Redis         RedisConfig        `mapstructure:"redis"`
	JWT           JWTConfig          `mapstructure:"jwt"`
	SMTP          SMTPConfig         `mapstructure:"smtp"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	RateLimit     RateLimitConfig    `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port" default:"8080"`
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

type DatabaseConfig struct {
	Host                   string `mapstructure:"host" default:"localhost"`
	Port                   int    `mapstructure:"port" default:"5432"`
	User                   string `mapstructure:"user" default:"postgres"`
	Password               string `mapstructure:"password"`
	Name                   string `mapstructure:"name" default:"showrunner"`
	SSLMode                string `mapstructure:"sslmode" default:"disable"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" default:"25"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" default:"5"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" default:"30"`
}

type RedisConfig struct {
	// Empty URL disables the broker; created events are then not published
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours" default:"24"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled" default:"false"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" default:"587"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type NotificationConfig struct {
	// FanoutWorkers bounds the per-call fan-out parallelism
	FanoutWorkers int `mapstructure:"fanout_workers" default:"8"`
	// EmailCopies enables best-effort email copies of created notifications
	EmailCopies bool `mapstructure:"email_copies" default:"false"`
	// UserCacheTTLSeconds bounds how long resolved identities are cached
	UserCacheTTLSeconds int `mapstructure:"user_cache_ttl_seconds" default:"300"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" default:"50"`
	Burst int     `mapstructure:"burst" default:"100"`
}

// LoadConfig reads config.yaml through viper with environment overrides.
// When no config file exists (container deployments), the whole config is
// taken from NOTIFY_* environment variables via envconfig.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return loadFromEnv()
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

func loadFromEnv() (*Config, error) {
	var config Config
	if err := envconfig.Process("notify", &config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 30
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeMinutes == 0 {
		c.Database.ConnMaxLifetimeMinutes = 30
	}
	if c.JWT.ExpiryHours == 0 {
		c.JWT.ExpiryHours = 24
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Notifications.FanoutWorkers == 0 {
		c.Notifications.FanoutWorkers = 8
	}
	if c.Notifications.UserCacheTTLSeconds == 0 {
		c.Notifications.UserCacheTTLSeconds = 300
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 50
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 100
	}
}
