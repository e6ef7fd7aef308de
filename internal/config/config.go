package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Categories CategoriesConfig `mapstructure:"categories"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // seconds
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CategoriesConfig describes where category records are fetched from
type CategoriesConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Endpoint             string `mapstructure:"endpoint"`
	Source               string `mapstructure:"source"` // json or html
	APIToken             string `mapstructure:"api_token"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	RefreshInterval      int    `mapstructure:"refresh_interval"` // seconds, 0 disables periodic refresh
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MinIdleTime   int    `mapstructure:"min_idle_time"`
	Workers       int    `mapstructure:"workers"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

const (
	SourceJSON = "json"
	SourceHTML = "html"
)

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config.yaml file not found in current directory")
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch c.Categories.Source {
	case SourceJSON, SourceHTML:
	default:
		return fmt.Errorf("categories.source must be %q or %q, got %q", SourceJSON, SourceHTML, c.Categories.Source)
	}
	if c.Categories.MaxRequestsPerSecond <= 0 {
		return fmt.Errorf("categories.max_requests_per_second must be positive")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:1337"})
	viper.SetDefault("server.shutdown_timeout", 10)

	viper.SetDefault("categories.base_url", "http://localhost:1337")
	viper.SetDefault("categories.endpoint", "/paths/pathscategories")
	viper.SetDefault("categories.source", SourceJSON)
	viper.SetDefault("categories.api_token", "")
	viper.SetDefault("categories.timeout", 30)
	viper.SetDefault("categories.max_retries", 3)
	viper.SetDefault("categories.max_requests_per_second", 5)
	viper.SetDefault("categories.refresh_interval", 300)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "pathscategories")
	viper.SetDefault("database.user", "pathscategories_user")
	viper.SetDefault("database.password", "pathscategories_pass")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)
	viper.SetDefault("redis.consumer_group", "pathscategories_consumer")
	viper.SetDefault("redis.min_idle_time", 120)
	viper.SetDefault("redis.workers", 4)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}
