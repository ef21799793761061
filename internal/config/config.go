// Package config loads runtime settings from defaults, an optional TOML file
// and TASKDASH_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is used for the XDG config and data directory names.
	AppName = "taskdash"

	// FileName is the config file looked up in the config directory.
	FileName = "config.toml"

	// DefaultAPIURL is the API base address used when nothing is configured.
	DefaultAPIURL = "http://localhost:8080"
)

// Config keeps runtime settings for the client.
type Config struct {
	// APIURL is the base address for task endpoints.
	APIURL string `toml:"api_url"`

	// AuthURL is the base address for auth endpoints. Defaults to APIURL.
	AuthURL string `toml:"auth_url"`

	// HTTPTimeout bounds each request, written as a duration string such
	// as "15s". Zero means no timeout.
	HTTPTimeout time.Duration `toml:"http_timeout"`

	// DataDir holds the session database.
	DataDir string `toml:"data_dir"`

	// LogFile receives diagnostic output.
	LogFile string `toml:"log_file"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// Load reads configuration. If path is empty the default config file is used
// when it exists; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Config{
		APIURL:   DefaultAPIURL,
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
	}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(DefaultConfigDir(), FileName)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if cfg.AuthURL == "" {
		cfg.AuthURL = cfg.APIURL
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, AppName+".log")
	}

	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	set := func(dst *string, name string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	set(&cfg.APIURL, "TASKDASH_API_URL")
	set(&cfg.AuthURL, "TASKDASH_AUTH_URL")
	set(&cfg.DataDir, "TASKDASH_DATA_DIR")
	set(&cfg.LogFile, "TASKDASH_LOG_FILE")
	set(&cfg.LogLevel, "TASKDASH_LOG_LEVEL")

	if v := strings.TrimSpace(os.Getenv("TASKDASH_HTTP_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid http_timeout %q", v)
		}
		cfg.HTTPTimeout = d
	}
	return nil
}

// Validate checks base URLs and the log level.
func (c Config) Validate() error {
	for name, raw := range map[string]string{"api_url": c.APIURL, "auth_url": c.AuthURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
		}
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative, got %v", c.HTTPTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// DefaultConfigDir uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultDataDir uses XDG_DATA_HOME if set, otherwise $HOME/.local/share.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".local", "share", AppName)
}
