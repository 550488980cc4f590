package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "STOREFRONT"

type AppConfig struct {
	API       *APIConfig       `mapstructure:"api"`
	Gin       *GinConfig       `mapstructure:"gin"`
	Postgres  *PostgresConfig  `mapstructure:"postgres"`
	Engine    *EngineConfig    `mapstructure:"engine"`
	Log       *LogConfig       `mapstructure:"log"`
	RateLimit *RateLimitConfig `mapstructure:"rate_limit"`

	v *viper.Viper
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTExpiry          time.Duration `mapstructure:"jwt_expiry"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode,
	)
}

type EngineConfig struct {
	// StoreTimeout bounds every engine operation, transaction included.
	StoreTimeout      time.Duration `mapstructure:"store_timeout"`
	OrderNumberPrefix string        `mapstructure:"order_number_prefix"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type RateLimitConfig struct {
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	Burst             int     `mapstructure:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.jwt_expiry", "12h")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("engine.store_timeout", "5s")
	v.SetDefault("engine.order_number_prefix", "ORD")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("rate_limit.requests_per_minute", 60)
	v.SetDefault("rate_limit.burst", 10)
}

// Load reads the YAML file at path; STOREFRONT_* environment variables
// override file values (e.g. STOREFRONT_API_PORT).
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
		}
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}
	conf.v = v

	return conf, nil
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if conf.API == nil || conf.Gin == nil || conf.Postgres == nil || conf.Engine == nil ||
		conf.Log == nil || conf.RateLimit == nil {
		return nil, errors.New("config is missing a section")
	}
	if conf.Engine.StoreTimeout <= 0 {
		return nil, errors.New("engine.store_timeout must be positive")
	}

	return conf, nil
}

// Watch calls onChange with the re-read config whenever the file changes.
// Only settings read at call time, such as the log level, pick up changes.
func (c *AppConfig) Watch(onChange func(*AppConfig)) {
	if c.v == nil {
		return
	}

	c.v.OnConfigChange(func(fsnotify.Event) {
		conf, err := decode(c.v)
		if err != nil {
			return
		}
		onChange(conf)
	})
	c.v.WatchConfig()
}
