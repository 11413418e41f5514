package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Site     SiteConfig     `mapstructure:"site"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Export   ExportConfig   `mapstructure:"export"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SiteConfig describes the crawled site and how politely to talk to it
type SiteConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	Locale               string   `mapstructure:"locale"`
	Store                string   `mapstructure:"store"`
	PageSize             int      `mapstructure:"page_size"`
	Timeout              int      `mapstructure:"timeout"` // seconds
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	UserAgent            string   `mapstructure:"user_agent"`
	ExcludedCategories   []string `mapstructure:"excluded_categories"`
	MainCategoryOffset   int      `mapstructure:"main_category_offset"`
	MainCategoryLimit    int      `mapstructure:"main_category_limit"`
}

// RootURL is the localized landing page carrying the navigation.
func (s SiteConfig) RootURL() string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + s.Locale + "/"
}

func (s SiteConfig) RequestTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// CacheConfig holds the on-disk response cache location
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int32  `mapstructure:"max_conns"`
	Migrate  bool   `mapstructure:"migrate"`
}

// DSN renders the keyword/value connection string understood by pgx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
	)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
}

type MetricsConfig struct {
	Listen string `mapstructure:"listen"` // empty disables the metrics server
}

type ExportConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from YAML file with environment variable overrides.
// Without an explicit path config.yaml is looked up in the current directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.yaml file not found in current directory")
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the crawler cannot work with.
func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	if c.Site.Locale == "" {
		return fmt.Errorf("site.locale is required")
	}
	if c.Site.PageSize <= 0 {
		return fmt.Errorf("site.page_size must be positive, got %d", c.Site.PageSize)
	}
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://www.baslerweb.com")
	v.SetDefault("site.locale", "en-us")
	v.SetDefault("site.store", "amer_en")
	v.SetDefault("site.page_size", 21)
	v.SetDefault("site.timeout", 30)
	v.SetDefault("site.max_requests_per_second", 2)
	v.SetDefault("site.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("site.excluded_categories", []string{"Kits & Bundles", "Software"})
	v.SetDefault("site.main_category_offset", 1)
	v.SetDefault("site.main_category_limit", 7)

	v.SetDefault("cache.dir", "./project_files")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "baslerweb")
	v.SetDefault("database.user", "basler_user")
	v.SetDefault("database.password", "basler_pass")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "basler_product_pages")

	v.SetDefault("metrics.listen", "")

	v.SetDefault("export.path", "basler_web_product_links.xlsx")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}
