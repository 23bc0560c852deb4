// Package config loads settings from flags, environment, an optional .env
// file, an optional recipespark.yaml and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/recipespark/content-core/internal/validation"
)

// EnvPrefix prefixes every environment variable, e.g. RECIPESPARK_API_BASE_URL.
const EnvPrefix = "RECIPESPARK"

// Config holds the application configuration.
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Logger LoggerConfig `mapstructure:"logger"`
	API    APIConfig    `mapstructure:"api"`
	Site   SiteConfig   `mapstructure:"site"`
	Paths  PathsConfig  `mapstructure:"paths"`
	Server ServerConfig `mapstructure:"server"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `mapstructure:"environment" validate:"required,oneof=development staging production"`
	Version     string `mapstructure:"version"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"loglevel"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json pretty"`
}

// APIConfig configures the content API client.
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url" validate:"required,url"`
	WebsiteID  int           `mapstructure:"website_id" validate:"gt=0"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RPS        float64       `mapstructure:"rps"`
	Burst      int           `mapstructure:"burst" validate:"gte=0"`
}

// SiteConfig describes the public site the artifacts are generated for.
type SiteConfig struct {
	URL  string `mapstructure:"url" validate:"required,url"`
	Name string `mapstructure:"name"`
}

// PathsConfig locates the snapshot tree and generated output.
type PathsConfig struct {
	Root   string `mapstructure:"root" validate:"required"`   // holds data/ and src/data/
	Public string `mapstructure:"public" validate:"required"` // sitemap.xml, build-info.json
	Cache  string `mapstructure:"cache"`                      // badger directory
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	LiveTimeout    time.Duration `mapstructure:"live_timeout" validate:"gt=0"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	WatchSnapshot  bool          `mapstructure:"watch_snapshot"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps" validate:"gte=0"` // per client IP, 0 disables
	RateLimitBurst int           `mapstructure:"rate_limit_burst" validate:"gte=0"`
}

// CacheConfig configures the live response cache.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	InMemory  bool          `mapstructure:"in_memory"`
	TTL       time.Duration `mapstructure:"ttl" validate:"gt=0"`
	Retention time.Duration `mapstructure:"retention" validate:"gtefield=TTL"`
}

// FetchConfig configures the build-time fetch.
type FetchConfig struct {
	WriteBuildInfo bool `mapstructure:"write_build_info"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

var defaults = map[string]any{
	"app.environment":         "development",
	"app.version":             "0.0.0",
	"logger.level":            "info",
	"logger.format":           "",
	"api.base_url":            "https://webspark.markhazleton.com/api",
	"api.website_id":          2,
	"api.timeout":             "10s",
	"api.max_retries":         2,
	"api.rps":                 5.0,
	"api.burst":               5,
	"site.url":                "https://mechanicsofmotherhood.com",
	"site.name":               "Mechanics of Motherhood",
	"paths.root":              ".",
	"paths.public":            "public",
	"paths.cache":             "",
	"server.host":             "",
	"server.port":             8080,
	"server.read_timeout":     "15s",
	"server.write_timeout":    "15s",
	"server.idle_timeout":     "60s",
	"server.live_timeout":     "8s",
	"server.cors_origins":     []string{"*"},
	"server.watch_snapshot":   true,
	"server.rate_limit_rps":   20.0,
	"server.rate_limit_burst": 40,
	"cache.enabled":           true,
	"cache.in_memory":         false,
	"cache.ttl":               "5m",
	"cache.retention":         "24h",
	"fetch.write_build_info":  true,
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"env":          "app.environment",
	"version-tag":  "app.version",
	"log-level":    "logger.level",
	"log-format":   "logger.format",
	"api-url":      "api.base_url",
	"website-id":   "api.website_id",
	"site-url":     "site.url",
	"root":         "paths.root",
	"public-dir":   "paths.public",
	"cache-dir":    "paths.cache",
	"port":         "server.port",
	"no-cache":     "cache.enabled",
	"cache-memory": "cache.in_memory",
}

// RegisterFlags adds the config flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default ./recipespark.yaml)")
	fs.String("env-file", ".env", "path to .env file")
	fs.String("env", "", "environment (development, staging, production)")
	fs.String("version-tag", "", "version stamped into build-info.json")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-format", "", "log format (json, pretty)")
	fs.String("api-url", "", "content API base URL")
	fs.Int("website-id", 0, "CMS website id")
	fs.String("site-url", "", "public site URL")
	fs.String("root", "", "project root holding data/ and src/data/")
	fs.String("public-dir", "", "output directory for sitemap.xml and build-info.json")
	fs.String("cache-dir", "", "response cache directory (default {root}/.cache/content)")
	fs.Int("port", 0, "HTTP port")
	fs.Bool("no-cache", false, "disable the response cache")
	fs.Bool("cache-memory", false, "keep the response cache in memory")
}

// Load builds the configuration. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	envFile := ".env"
	configFile := ""
	if flags != nil {
		if f := flags.Lookup("env-file"); f != nil {
			envFile = f.Value.String()
		}
		if f := flags.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}

	// Existing environment variables win over the file.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("recipespark")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// bindFlags binds flags the user actually set so unset flags do not mask
// env and file values.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		if f.Name == "no-cache" {
			v.Set(key, f.Value.String() != "true")
			return
		}
		err = v.BindPFlag(key, f)
	})
	if err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	return nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validation.New().Validate(c); err != nil {
		return err
	}
	if c.Cache.Enabled && !c.Cache.InMemory && c.Paths.Cache == "" {
		return errors.New("paths.cache is required when the on-disk cache is enabled")
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, uses defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		path = defaultPath
	}
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandPaths resolves Public and Cache relative to Root.
func (c *Config) expandPaths() error {
	root, err := expandPath(c.Paths.Root, ".")
	if err != nil {
		return fmt.Errorf("invalid root path: %w", err)
	}
	c.Paths.Root = root

	public := c.Paths.Public
	if public != "" && !filepath.IsAbs(public) && !strings.HasPrefix(public, "~") {
		public = filepath.Join(root, public)
	}
	if c.Paths.Public, err = expandPath(public, filepath.Join(root, "public")); err != nil {
		return fmt.Errorf("invalid public path: %w", err)
	}

	cache := c.Paths.Cache
	if cache != "" && !filepath.IsAbs(cache) && !strings.HasPrefix(cache, "~") {
		cache = filepath.Join(root, cache)
	}
	if c.Paths.Cache, err = expandPath(cache, filepath.Join(root, ".cache", "content")); err != nil {
		return fmt.Errorf("invalid cache path: %w", err)
	}
	return nil
}
