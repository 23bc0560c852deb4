package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty dir so no stray .env or recipespark.yaml is read.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		API: APIConfig{
			BaseURL:   "https://api.example.com",
			WebsiteID: 2,
			Timeout:   time.Second,
		},
		Site:  SiteConfig{URL: "https://example.com"},
		Paths: PathsConfig{Root: "/srv", Public: "/srv/public", Cache: "/srv/.cache"},
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
			LiveTimeout:  time.Second,
		},
		Cache: CacheConfig{Enabled: true, TTL: time.Minute, Retention: time.Hour},
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := chdir(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 2, cfg.API.WebsiteID)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 8*time.Second, cfg.Server.LiveTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.Retention)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)

	root, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(cfg.Paths.Root)
	require.NoError(t, err)
	assert.Equal(t, root, gotRoot)
	assert.Equal(t, filepath.Join(cfg.Paths.Root, "public"), cfg.Paths.Public)
	assert.Equal(t, filepath.Join(cfg.Paths.Root, ".cache", "content"), cfg.Paths.Cache)
}

func TestLoad_Precedence(t *testing.T) {
	dir := chdir(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "recipespark.yaml"), []byte(
		"logger:\n  level: warn\nserver:\n  port: 7000\napi:\n  website_id: 9\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"RECIPESPARK_SERVER_PORT=7100\nRECIPESPARK_SITE_NAME=From Dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("RECIPESPARK_SITE_NAME") })
	t.Setenv("RECIPESPARK_SERVER_PORT", "7200")
	t.Setenv("RECIPESPARK_LOGGER_LEVEL", "debug")

	cfg, err := Load(newFlags(t, "--log-level=error"))
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logger.Level, "flag beats env")
	assert.Equal(t, 7200, cfg.Server.Port, "env beats .env and file")
	assert.Equal(t, "From Dotenv", cfg.Site.Name, ".env beats default")
	assert.Equal(t, 9, cfg.API.WebsiteID, "file beats default")
}

func TestLoad_UnsetFlagsDoNotMaskEnv(t *testing.T) {
	chdir(t)
	t.Setenv("RECIPESPARK_API_WEBSITE_ID", "5")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.API.WebsiteID)
}

func TestLoad_FlagOverrides(t *testing.T) {
	chdir(t)

	cfg, err := Load(newFlags(t,
		"--root=/srv/site",
		"--public-dir=dist",
		"--port=9090",
		"--no-cache",
		"--website-id=3",
	))
	require.NoError(t, err)

	assert.Equal(t, "/srv/site", cfg.Paths.Root)
	assert.Equal(t, "/srv/site/dist", cfg.Paths.Public)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 3, cfg.API.WebsiteID)
}

func TestLoad_DurationsFromEnv(t *testing.T) {
	chdir(t)
	t.Setenv("RECIPESPARK_CACHE_TTL", "30s")
	t.Setenv("RECIPESPARK_SERVER_LIVE_TIMEOUT", "2s")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 2*time.Second, cfg.Server.LiveTimeout)
}

func TestLoad_ExplicitConfigFileMissing(t *testing.T) {
	chdir(t)

	_, err := Load(newFlags(t, "--config=nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	chdir(t)
	t.Setenv("RECIPESPARK_APP_ENVIRONMENT", "test")

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "staging", mutate: func(c *Config) { c.App.Environment = "staging" }},
		{name: "uppercase environment", mutate: func(c *Config) { c.App.Environment = "PRODUCTION" }, wantErr: true},
		{name: "empty environment", mutate: func(c *Config) { c.App.Environment = "" }, wantErr: true},
		{name: "warning level", mutate: func(c *Config) { c.Logger.Level = "warning" }},
		{name: "bad level", mutate: func(c *Config) { c.Logger.Level = "verbose" }, wantErr: true},
		{name: "bad format", mutate: func(c *Config) { c.Logger.Format = "xml" }, wantErr: true},
		{name: "base url not a url", mutate: func(c *Config) { c.API.BaseURL = "webspark" }, wantErr: true},
		{name: "zero website id", mutate: func(c *Config) { c.API.WebsiteID = 0 }, wantErr: true},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "retention below ttl", mutate: func(c *Config) { c.Cache.Retention = time.Second }, wantErr: true},
		{name: "disk cache without dir", mutate: func(c *Config) { c.Paths.Cache = "" }, wantErr: true},
		{name: "memory cache without dir", mutate: func(c *Config) {
			c.Paths.Cache = ""
			c.Cache.InMemory = true
		}},
		{name: "disabled cache without dir", mutate: func(c *Config) {
			c.Paths.Cache = ""
			c.Cache.Enabled = false
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name        string
		path        string
		defaultPath string
		want        string
	}{
		{name: "absolute", path: "/var/data", want: "/var/data"},
		{name: "tilde", path: "~/site", want: filepath.Join(home, "site")},
		{name: "bare tilde", path: "~", want: home},
		{name: "default used", defaultPath: "/opt/x", want: "/opt/x"},
		{name: "both empty", want: ""},
		{name: "cleaned", path: "/var//data/../data", want: "/var/data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandPath(tt.path, tt.defaultPath)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	assert.Equal(t, ":8080", ServerConfig{Port: 8080}.Addr())
	assert.Equal(t, "127.0.0.1:9000", ServerConfig{Host: "127.0.0.1", Port: 9000}.Addr())
}
