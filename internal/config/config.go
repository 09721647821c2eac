package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SubscriptionConfig describes one ICS feed that is imported into its own
// calendar on the refresh schedule.
type SubscriptionConfig struct {
	// URL is the ICS endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is the display name of the calendar the feed lands in.
	Name string `yaml:"name" json:"name"`
	// Color is the palette token for that calendar (default "blue").
	Color string `yaml:"color" json:"color"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API server.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA display timezone (e.g. "America/New_York").
	// The app runs in a single zone; events carry wall-clock times only.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is DEBUG, INFO or ERROR.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// PixelsPerHour and GridStartHour define the vertical geometry of the
	// day columns fed to the layout engine.
	PixelsPerHour float64 `yaml:"pixels_per_hour" json:"pixels_per_hour"`
	GridStartHour float64 `yaml:"grid_start_hour" json:"grid_start_hour"`

	// DefaultView is the view mode the terminal client opens with:
	// "week" or "month".
	DefaultView string `yaml:"default_view" json:"default_view"`

	// SeedDate optionally pins the initial navigation reference date
	// ("YYYY-MM-DD"). Empty means today. Pinning never affects the
	// is-today highlighting, which always tracks the real clock.
	SeedDate string `yaml:"seed_date,omitempty" json:"seed_date,omitempty"`

	// RefreshCron is the cron schedule for re-fetching subscriptions.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Subscriptions is the list of ICS feeds to import.
	Subscriptions []SubscriptionConfig `yaml:"subscriptions" json:"subscriptions"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        "127.0.0.1:8080",
		Timezone:      "America/New_York",
		LogLevel:      "INFO",
		PixelsPerHour: 80,
		GridStartHour: 8,
		DefaultView:   "week",
		RefreshCron:   "*/15 * * * *",
		Subscriptions: []SubscriptionConfig{},
		BasicAuth:     nil,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs from older versions still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.PixelsPerHour <= 0 {
		c.PixelsPerHour = 80
	}
	if c.GridStartHour < 0 || c.GridStartHour >= 24 {
		c.GridStartHour = 8
	}
	switch c.DefaultView {
	case "week", "month":
		// ok
	default:
		c.DefaultView = "week"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.Subscriptions == nil {
		c.Subscriptions = []SubscriptionConfig{}
	}
	for i := range c.Subscriptions {
		if c.Subscriptions[i].Color == "" {
			c.Subscriptions[i].Color = "blue"
		}
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (0600,
// creating the parent directory) and returned; otherwise the YAML is read,
// unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically: marshal to a temp file in the
// target directory, chmod 0600, rename over the destination.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calgrid-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save so call sites holding a *Config
// read naturally.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
