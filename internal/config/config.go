// Package config manages figfiles configuration and its home directory.
// Settings come from a TOML file, then an optional .env file, then the
// process environment, each overriding the previous.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/kilupskalvis/figfiles/internal/store"
	"github.com/pelletier/go-toml/v2"
)

const (
	HomeDir      = ".figfiles"
	ConfigFile   = "config"
	BoltFile     = "figfiles.db"
	SQLiteFile   = "figfiles.sqlite"
	HomeEnv      = "FIGFILES_HOME"
	DefaultAPI   = "https://api.figma.com/v1"
	defaultRetry = 2
)

// Config represents the figfiles configuration
type Config struct {
	// TeamIDs is a comma-separated list of provider team ids.
	TeamIDs             string `toml:"team_ids" env:"FIGFILES_TEAM_IDS"`
	PersonalAccessToken string `toml:"personal_access_token" env:"FIGFILES_PERSONAL_ACCESS_TOKEN"`
	// OAuthToken is only ever read from the environment.
	OAuthToken string `toml:"-" env:"FIGFILES_OAUTH_TOKEN"`
	APIBaseURL string `toml:"api_base_url" env:"FIGFILES_API_BASE_URL"`

	StoreBackend  string `toml:"store_backend" env:"FIGFILES_STORE_BACKEND"`
	RedisAddr     string `toml:"redis_addr,omitempty" env:"FIGFILES_REDIS_ADDR"`
	RedisPassword string `toml:"-" env:"FIGFILES_REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db,omitempty" env:"FIGFILES_REDIS_DB"`

	MaxRetries     int `toml:"max_retries" env:"FIGFILES_MAX_RETRIES"`
	MaxConcurrency int `toml:"max_concurrency,omitempty" env:"FIGFILES_MAX_CONCURRENCY"`

	LogLevel  string `toml:"log_level" env:"FIGFILES_LOG_LEVEL"`
	LogFormat string `toml:"log_format" env:"FIGFILES_LOG_FORMAT"`

	path string // path to the figfiles home directory
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		APIBaseURL:   DefaultAPI,
		StoreBackend: store.BackendBolt,
		MaxRetries:   defaultRetry,
		LogLevel:     "warn",
		LogFormat:    "text",
	}
}

// ResolveHome returns $FIGFILES_HOME or ~/.figfiles.
func ResolveHome() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, HomeDir), nil
}

// Load reads the config file if it exists and applies .env and environment
// overrides. A missing config file is not an error.
func Load() (*Config, error) {
	dir, err := ResolveHome()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom is Load with an explicit home directory.
func LoadFrom(dir string) (*Config, error) {
	cfg := Default()
	cfg.path = dir

	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	if err := os.MkdirAll(c.path, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", c.path, err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(c.path, ConfigFile), data, 0600)
}

// Initialize writes a new config file into dir. It fails if one exists.
func Initialize(dir, teamIDs, personalToken string) (*Config, error) {
	if _, err := os.Stat(filepath.Join(dir, ConfigFile)); err == nil {
		return nil, fmt.Errorf("figfiles is already configured in %s", dir)
	}

	cfg := Default()
	cfg.path = dir
	cfg.TeamIDs = teamIDs
	cfg.PersonalAccessToken = personalToken

	if err := cfg.Save(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the figfiles home directory.
func (c *Config) Path() string {
	return c.path
}

// DatabasePath returns the database file for the configured backend.
func (c *Config) DatabasePath() string {
	if c.StoreBackend == store.BackendSQLite {
		return filepath.Join(c.path, SQLiteFile)
	}
	return filepath.Join(c.path, BoltFile)
}

// StoreOptions returns the options for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:       c.StoreBackend,
		Path:          c.DatabasePath(),
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
	}
}
