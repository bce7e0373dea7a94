package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SCRAPER_BASE_URL.
const EnvPrefix = "SCRAPER"

// Config holds scraper configuration.
type Config struct {
	BaseURL         string        `mapstructure:"base_url"`
	CatalogPath     string        `mapstructure:"catalog_path"`
	MaxPages        int           `mapstructure:"max_pages"`
	Timeout         time.Duration `mapstructure:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	Transport       string        `mapstructure:"transport"` // colly or resty
	OutputFile      string        `mapstructure:"output_file"`
	OutputFormat    string        `mapstructure:"output_format"` // table, csv, json, or dual
	BatchSize       int           `mapstructure:"batch_size"`
	PreviewRows     int           `mapstructure:"preview_rows"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	StrictDiscovery bool          `mapstructure:"strict_discovery"`
	Verbose         bool          `mapstructure:"verbose"`
}

// DefaultConfig returns defaults for the demo target.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "https://books.toscrape.com",
		CatalogPath:     "catalogue/page-%d.html",
		MaxPages:        0,
		Timeout:         10 * time.Second,
		UserAgent:       "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		Transport:       "colly",
		OutputFile:      "output/books.csv",
		OutputFormat:    "table",
		BatchSize:       64,
		PreviewRows:     5,
		MetricsAddr:     "",
		StrictDiscovery: false,
		Verbose:         false,
	}
}

// PageURL formats the catalog URL of a 1-based page index.
func (c *Config) PageURL(page int) string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/" + strings.TrimPrefix(fmt.Sprintf(c.CatalogPath, page), "/")
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if strings.Count(c.CatalogPath, "%d") != 1 {
		return fmt.Errorf("catalog path must contain exactly one %%d verb")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max pages cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.Transport != "colly" && c.Transport != "resty" {
		return fmt.Errorf("transport must be colly or resty")
	}
	switch c.OutputFormat {
	case "table":
	case "csv", "json", "dual":
		if c.OutputFile == "" {
			return fmt.Errorf("output file cannot be empty")
		}
	default:
		return fmt.Errorf("output format must be table, csv, json, or dual")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}

	return nil
}

// Load reads defaults, an optional YAML file and SCRAPER_* environment
// overrides into a Config. Values already set on v (flags bound by the
// caller) take precedence over both.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("config file %s not found", path)
			}
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Transport = strings.ToLower(cfg.Transport)
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("catalog_path", d.CatalogPath)
	v.SetDefault("max_pages", d.MaxPages)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("transport", d.Transport)
	v.SetDefault("output_file", d.OutputFile)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("batch_size", d.BatchSize)
	v.SetDefault("preview_rows", d.PreviewRows)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("strict_discovery", d.StrictDiscovery)
	v.SetDefault("verbose", d.Verbose)
}
