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
	Log      LogConfig      `mapstructure:"log"`
	Site     SiteConfig     `mapstructure:"site"`
	Capture  CaptureConfig  `mapstructure:"capture"`
	Search   SearchConfig   `mapstructure:"search"`
	Crawl    CrawlConfig    `mapstructure:"crawl"`
	Output   OutputConfig   `mapstructure:"output"`
	Export   ExportConfig   `mapstructure:"export"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// LogConfig controls logrus output
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// SiteConfig describes the storefront whose menu is captured
type SiteConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	Locale    string `mapstructure:"locale"`
}

// CaptureConfig holds browser capture settings
type CaptureConfig struct {
	Headless          bool     `mapstructure:"headless"`
	NavigationTimeout int      `mapstructure:"navigation_timeout"` // seconds
	Timeout           int      `mapstructure:"timeout"`            // seconds to wait for the menu after navigation
	MenuHints         []string `mapstructure:"menu_hints"`
}

// SearchConfig holds the facet search endpoint configuration
type SearchConfig struct {
	Host                 string   `mapstructure:"host"`
	Path                 string   `mapstructure:"path"`
	Params               []string `mapstructure:"params"` // key=value, case preserved
	AcceptLanguage       string   `mapstructure:"accept_language"`
	Timeout              int      `mapstructure:"timeout"` // seconds per request
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"` // 0 = unlimited
	Cooldown             int      `mapstructure:"cooldown"`                // seconds the circuit stays open after HTTP 429, 0 disables it
	Proxies              []string `mapstructure:"proxies"`
}

// CrawlConfig holds orchestrator settings
type CrawlConfig struct {
	Concurrency   int  `mapstructure:"concurrency"`
	SortRecords   bool `mapstructure:"sort_records"`
	ProgressEvery int  `mapstructure:"progress_every"`
}

// OutputConfig holds artifact paths
type OutputConfig struct {
	MenuFile     string `mapstructure:"menu_file"`
	SubjectsFile string `mapstructure:"subjects_file"`
	Workbook     string `mapstructure:"workbook"`
}

// ExportConfig holds workbook layout settings
type ExportConfig struct {
	SheetSuffix string  `mapstructure:"sheet_suffix"`
	BaseWidth   float64 `mapstructure:"base_width"`
	NameWidth   float64 `mapstructure:"name_width"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds, 0 disables the subject cache
	MaxLen   int64  `mapstructure:"max_len"`   // approximate stream length cap
}

// DSN builds the pgx connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// Addr returns host:port of the Redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (c CaptureConfig) WaitTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (s SearchConfig) RequestTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// Load reads configuration from path, or from ./config.yaml when path is empty.
// A missing default file falls back to defaults; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
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

// Validate rejects values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.Crawl.Concurrency < 1 {
		return fmt.Errorf("crawl.concurrency must be at least 1, got %d", c.Crawl.Concurrency)
	}
	if c.Capture.Timeout <= 0 {
		return fmt.Errorf("capture.timeout must be positive, got %d", c.Capture.Timeout)
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive, got %d", c.Search.Timeout)
	}
	for _, p := range c.Search.Params {
		if !strings.Contains(p, "=") {
			return fmt.Errorf("search.params entry %q is not key=value", p)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("site.base_url", "https://www.wildberries.ru")
	v.SetDefault("site.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123 Safari/537.36")
	v.SetDefault("site.locale", "ru-RU")

	v.SetDefault("capture.headless", true)
	v.SetDefault("capture.navigation_timeout", 15)
	v.SetDefault("capture.timeout", 10)
	v.SetDefault("capture.menu_hints", []string{"main-menu", "v3"})

	v.SetDefault("search.host", "https://search.wb.ru")
	v.SetDefault("search.path", "/exactmatch/ru/common/v18/search")
	v.SetDefault("search.params", []string{
		"appType=1",
		"curr=rub",
		"dest=-1257786",
		"hide_dtype=13",
		"lang=ru",
		"filters=ffsubject",
		"resultset=filters",
		"spp=30",
	})
	v.SetDefault("search.accept_language", "ru-RU,ru;q=0.9,en;q=0.8")
	v.SetDefault("search.timeout", 8)
	v.SetDefault("search.max_retries", 0)
	v.SetDefault("search.max_requests_per_second", 0)
	v.SetDefault("search.cooldown", 0)
	v.SetDefault("search.proxies", []string{})

	v.SetDefault("crawl.concurrency", 24)
	v.SetDefault("crawl.sort_records", false)
	v.SetDefault("crawl.progress_every", 100)

	v.SetDefault("output.menu_file", "menu.json")
	v.SetDefault("output.subjects_file", "leaf_subjects.json")
	v.SetDefault("output.workbook", "wb_categories.xlsx")

	v.SetDefault("export.sheet_suffix", " – Категории")
	v.SetDefault("export.base_width", 12)
	v.SetDefault("export.name_width", 60)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "catalog")
	v.SetDefault("database.user", "catalog_user")
	v.SetDefault("database.password", "catalog_pass")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.cache_ttl", 86400)
	v.SetDefault("redis.max_len", 100000)
}
