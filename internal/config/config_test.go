package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAppConfigFillMissingDefaults(t *testing.T) {
	cfg := AppConfig{}
	cfg.FillMissingDefaults()

	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Logging.Level)
	}
	if cfg.Browser.Homepage != DefaultHomepage {
		t.Fatalf("expected default homepage %q, got %q", DefaultHomepage, cfg.Browser.Homepage)
	}
	if cfg.Browser.FetchTimeoutSeconds != DefaultFetchTimeoutSeconds {
		t.Fatalf("expected default fetch timeout, got %d", cfg.Browser.FetchTimeoutSeconds)
	}
	if cfg.Bookmarks.Order != BookmarksOrderNewestFirst {
		t.Fatalf("expected default bookmarks order, got %q", cfg.Bookmarks.Order)
	}
	if cfg.UI.WindowWidth != DefaultWindowWidth || cfg.UI.WindowHeight != DefaultWindowHeight {
		t.Fatalf("unexpected default window size %dx%d", cfg.UI.WindowWidth, cfg.UI.WindowHeight)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load missing config: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{
  "logging": {"level": "debug"},
  "bookmarks": {"order": " OLDEST_FIRST "},
  "ui": {"window_width": 800}
}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
	if cfg.Bookmarks.Order != BookmarksOrderOldestFirst {
		t.Fatalf("expected normalized order, got %q", cfg.Bookmarks.Order)
	}
	if cfg.UI.WindowWidth != 800 || cfg.UI.WindowHeight != DefaultWindowHeight {
		t.Fatalf("unexpected window size %dx%d", cfg.UI.WindowWidth, cfg.UI.WindowHeight)
	}
	if !cfg.UI.ShowBookmarks {
		t.Fatalf("expected show_bookmarks default to survive partial ui object")
	}
	if cfg.Browser.Homepage != DefaultHomepage {
		t.Fatalf("expected default homepage, got %q", cfg.Browser.Homepage)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("WEBBROWSER_LOG_LEVEL", "warn")
	t.Setenv("WEBBROWSER_HOMEPAGE", "https://example.org")
	t.Setenv("WEBBROWSER_FETCH_TIMEOUT_SECONDS", "3")
	t.Setenv("WEBBROWSER_BOOKMARKS_ORDER", BookmarksOrderOldestFirst)

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env log level, got %q", cfg.Logging.Level)
	}
	if cfg.Browser.Homepage != "https://example.org" {
		t.Fatalf("expected env homepage, got %q", cfg.Browser.Homepage)
	}
	if cfg.Browser.FetchTimeoutSeconds != 3 {
		t.Fatalf("expected env timeout, got %d", cfg.Browser.FetchTimeoutSeconds)
	}
	if cfg.Bookmarks.Order != BookmarksOrderOldestFirst {
		t.Fatalf("expected env order, got %q", cfg.Bookmarks.Order)
	}
	if cfg.Browser.UserAgent != DefaultUserAgent {
		t.Fatalf("expected unset env var to keep user agent, got %q", cfg.Browser.UserAgent)
	}
}

func TestApplyEnvRejectsMalformedNumber(t *testing.T) {
	t.Setenv("WEBBROWSER_FETCH_TIMEOUT_SECONDS", "soon")

	cfg := Default()
	if err := cfg.ApplyEnv(); err == nil {
		t.Fatalf("expected error for malformed timeout")
	}
}

func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*AppConfig) {}},
		{name: "relative homepage", mutate: func(c *AppConfig) { c.Browser.Homepage = "www.ubuntu.com" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *AppConfig) { c.Browser.FetchTimeoutSeconds = 0 }, wantErr: true},
		{name: "unknown order", mutate: func(c *AppConfig) { c.Bookmarks.Order = "by_title" }, wantErr: true},
		{name: "zero width", mutate: func(c *AppConfig) { c.UI.WindowWidth = 0 }, wantErr: true},
	}

	for _, tc := range tests {
		cfg := Default()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Browser.Homepage = "https://example.com"
	cfg.UI.ShowBookmarks = false

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed, stat err: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if loaded != cfg {
		t.Fatalf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.Bookmarks.Order = "random"
	if err := Save(filepath.Join(t.TempDir(), "config.json"), cfg); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadEnvFileFeedsApplyEnv(t *testing.T) {
	t.Setenv("WEBBROWSER_USER_AGENT", "")
	_ = os.Unsetenv("WEBBROWSER_USER_AGENT")
	t.Setenv("WEBBROWSER_HOMEPAGE", "https://from-process.example")

	path := filepath.Join(t.TempDir(), "webbrowser.env")
	content := "WEBBROWSER_USER_AGENT=EnvFileAgent/2.0\nWEBBROWSER_HOMEPAGE=https://from-file.example\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load env file: %v", err)
	}
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Browser.UserAgent != "EnvFileAgent/2.0" {
		t.Fatalf("expected user agent from env file, got %q", cfg.Browser.UserAgent)
	}
	if cfg.Browser.Homepage != "https://from-process.example" {
		t.Fatalf("expected process env to win over env file, got %q", cfg.Browser.Homepage)
	}
}

func TestLoadEnvFileMissingIsIgnored(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("expected missing env file to be ignored, got %v", err)
	}
}
