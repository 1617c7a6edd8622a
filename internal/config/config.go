package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultHomepage            = "http://www.ubuntu.com"
	DefaultUserAgent           = "Mozilla/5.0 (X11; Linux x86_64) WebBrowser/1.0"
	DefaultFetchTimeoutSeconds = 15
	DefaultWindowWidth         = 1024
	DefaultWindowHeight        = 768

	BookmarksOrderNewestFirst = "newest_first"
	BookmarksOrderOldestFirst = "oldest_first"

	// EnvPrefix is the prefix of environment overrides, e.g. WEBBROWSER_LOG_LEVEL.
	EnvPrefix = "webbrowser"
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level"`
	LogToFile bool   `json:"log_to_file"`
}

// BrowserConfig controls page loading.
type BrowserConfig struct {
	Homepage            string `json:"homepage"`
	UserAgent           string `json:"user_agent"`
	FetchTimeoutSeconds int    `json:"fetch_timeout_seconds"`
}

// BookmarksConfig controls how the bookmarks panel orders entries.
type BookmarksConfig struct {
	Order string `json:"order"`
}

// UIConfig stores persistent window preferences.
type UIConfig struct {
	WindowWidth   int  `json:"window_width"`
	WindowHeight  int  `json:"window_height"`
	ShowBookmarks bool `json:"show_bookmarks"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Logging   LoggingConfig   `json:"logging"`
	Browser   BrowserConfig   `json:"browser"`
	Bookmarks BookmarksConfig `json:"bookmarks"`
	UI        UIConfig        `json:"ui"`
}

// envOverrides mirrors the subset of AppConfig that may come from the environment.
type envOverrides struct {
	LogLevel            string `envconfig:"LOG_LEVEL"`
	Homepage            string `envconfig:"HOMEPAGE"`
	UserAgent           string `envconfig:"USER_AGENT"`
	FetchTimeoutSeconds int    `envconfig:"FETCH_TIMEOUT_SECONDS"`
	BookmarksOrder      string `envconfig:"BOOKMARKS_ORDER"`
}

func Default() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{
			Level:     "info",
			LogToFile: false,
		},
		Browser: BrowserConfig{
			Homepage:            DefaultHomepage,
			UserAgent:           DefaultUserAgent,
			FetchTimeoutSeconds: DefaultFetchTimeoutSeconds,
		},
		Bookmarks: BookmarksConfig{
			Order: BookmarksOrderNewestFirst,
		},
		UI: UIConfig{
			WindowWidth:   DefaultWindowWidth,
			WindowHeight:  DefaultWindowHeight,
			ShowBookmarks: true,
		},
	}
}

func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved by app runtime and points to user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

// LoadEnvFile exports KEY=VALUE lines from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("load env file %s: %w", path, err)
	}

	return nil
}

// ApplyEnv overlays WEBBROWSER_* environment variables onto c.
func (c *AppConfig) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("read environment overrides: %w", err)
	}
	if v := strings.TrimSpace(env.LogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(env.Homepage); v != "" {
		c.Browser.Homepage = v
	}
	if v := strings.TrimSpace(env.UserAgent); v != "" {
		c.Browser.UserAgent = v
	}
	if env.FetchTimeoutSeconds > 0 {
		c.Browser.FetchTimeoutSeconds = env.FetchTimeoutSeconds
	}
	if v := strings.TrimSpace(env.BookmarksOrder); v != "" {
		c.Bookmarks.Order = v
	}

	return nil
}

func (c *AppConfig) FillMissingDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if strings.TrimSpace(c.Browser.Homepage) == "" {
		c.Browser.Homepage = DefaultHomepage
	}
	if strings.TrimSpace(c.Browser.UserAgent) == "" {
		c.Browser.UserAgent = DefaultUserAgent
	}
	if c.Browser.FetchTimeoutSeconds <= 0 {
		c.Browser.FetchTimeoutSeconds = DefaultFetchTimeoutSeconds
	}
	c.Bookmarks.Order = normalizeBookmarksOrder(c.Bookmarks.Order)
	if c.UI.WindowWidth <= 0 {
		c.UI.WindowWidth = DefaultWindowWidth
	}
	if c.UI.WindowHeight <= 0 {
		c.UI.WindowHeight = DefaultWindowHeight
	}
}

func normalizeBookmarksOrder(order string) string {
	trimmed := strings.ToLower(strings.TrimSpace(order))
	if trimmed == "" {
		return BookmarksOrderNewestFirst
	}

	return trimmed
}

func (c AppConfig) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.Browser.Homepage))
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("homepage must be an absolute url: %q", c.Browser.Homepage)
	}
	if c.Browser.FetchTimeoutSeconds <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	switch c.Bookmarks.Order {
	case BookmarksOrderNewestFirst, BookmarksOrderOldestFirst:
	default:
		return fmt.Errorf("unknown bookmarks order: %s", c.Bookmarks.Order)
	}
	if c.UI.WindowWidth <= 0 || c.UI.WindowHeight <= 0 {
		return errors.New("window size must be positive")
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
