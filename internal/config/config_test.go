package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies the default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxConcurrentRequests is 40", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxConcurrentRequests != 40 {
			t.Errorf("expected MaxConcurrentRequests to be 40, got %d", cfg.MaxConcurrentRequests)
		}
	})

	t.Run("default RequestTimeout is 15 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.RequestTimeout != 15*time.Second {
			t.Errorf("expected RequestTimeout to be 15s, got %v", cfg.RequestTimeout)
		}
	})

	t.Run("default UserAgent is Chrome", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(cfg.UserAgent, "Chrome/89") {
			t.Errorf("expected Chrome user agent, got %q", cfg.UserAgent)
		}
	})

	t.Run("default MaxBodySize is 10MB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxBodySize != 10*1024*1024 {
			t.Errorf("expected MaxBodySize to be 10MB, got %d", cfg.MaxBodySize)
		}
	})

	t.Run("headers map is initialized", func(t *testing.T) {
		t.Parallel()
		if cfg.Headers == nil {
			t.Error("expected Headers to be initialized")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.RootURL = "https://example.com"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"valid config", func(*Config) {}, nil},
		{"zero timeout disables it", func(c *Config) { c.RequestTimeout = 0 }, nil},
		{"zero body size selects default", func(c *Config) { c.MaxBodySize = 0 }, nil},
		{"json only", func(c *Config) { c.JSONReport = true }, nil},
		{"markdown only", func(c *Config) { c.MarkdownReport = true }, nil},
		{"empty root", func(c *Config) { c.RootURL = "" }, ErrNoRootURL},
		{"blank root", func(c *Config) { c.RootURL = "   " }, ErrNoRootURL},
		{"zero concurrency", func(c *Config) { c.MaxConcurrentRequests = 0 }, ErrInvalidMaxConcurrentRequests},
		{"negative concurrency", func(c *Config) { c.MaxConcurrentRequests = -1 }, ErrInvalidMaxConcurrentRequests},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, ErrInvalidTimeout},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"json and markdown", func(c *Config) {
			c.JSONReport = true
			c.MarkdownReport = true
		}, ErrConflictingReportFormats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestApplySiteConfig tests applying file settings to a Config.
func TestApplySiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("overrides set fields only", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Headers["X-Keep"] = "kept"

		err := cfg.ApplySiteConfig(SiteConfig{
			UserAgent:             "custom-agent",
			MaxConcurrentRequests: 5,
			RequestTimeout:        "30s",
			Proxy:                 "127.0.0.1:1080",
			Cookie:                "session=abc",
			Headers:               map[string]string{"X-Site": "docs"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.UserAgent != "custom-agent" {
			t.Errorf("expected custom user agent, got %q", cfg.UserAgent)
		}
		if cfg.MaxConcurrentRequests != 5 {
			t.Errorf("expected 5, got %d", cfg.MaxConcurrentRequests)
		}
		if cfg.RequestTimeout != 30*time.Second {
			t.Errorf("expected 30s, got %v", cfg.RequestTimeout)
		}
		if cfg.ProxyAddress != "127.0.0.1:1080" {
			t.Errorf("unexpected proxy %q", cfg.ProxyAddress)
		}
		if cfg.Cookie != "session=abc" {
			t.Errorf("unexpected cookie %q", cfg.Cookie)
		}
		if cfg.Headers["X-Keep"] != "kept" || cfg.Headers["X-Site"] != "docs" {
			t.Errorf("unexpected headers %v", cfg.Headers)
		}
		if cfg.MaxBodySize != DefaultMaxBodySize {
			t.Errorf("expected MaxBodySize untouched, got %d", cfg.MaxBodySize)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		err := cfg.ApplySiteConfig(SiteConfig{RequestTimeout: "soon"})
		if !errors.Is(err, ErrInvalidSiteConfig) {
			t.Errorf("expected ErrInvalidSiteConfig, got %v", err)
		}
	})
}

// TestParseHeader tests header flag parsing.
func TestParseHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		wantName  string
		wantValue string
		wantErr   bool
	}{
		{"Accept-Language: ja", "Accept-Language", "ja", false},
		{"X-Empty:", "X-Empty", "", false},
		{"Authorization: Bearer a:b", "Authorization", "Bearer a:b", false},
		{"no separator", "", "", true},
		{": value", "", "", true},
		{"Bad Name: value", "", "", true},
	}

	for _, tt := range tests {
		name, value, err := ParseHeader(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidHeader) {
				t.Errorf("ParseHeader(%q): expected ErrInvalidHeader, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHeader(%q): unexpected error %v", tt.in, err)
			continue
		}
		if name != tt.wantName || value != tt.wantValue {
			t.Errorf("ParseHeader(%q) = (%q, %q), want (%q, %q)", tt.in, name, value, tt.wantName, tt.wantValue)
		}
	}
}

// TestFileSiteConfig tests merging site settings over defaults.
func TestFileSiteConfig(t *testing.T) {
	t.Parallel()

	file := &File{
		Defaults: SiteConfig{
			UserAgent:             "default-agent",
			MaxConcurrentRequests: 10,
			Headers:               map[string]string{"Authorization": "default-token", "X-Default": "1"},
		},
		Sites: map[string]SiteConfig{
			"example.com": {
				MaxConcurrentRequests: 2,
				Cookie:                "session=xyz",
				Headers:               map[string]string{"Authorization": "site-token"},
			},
		},
	}

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()

		cfg := file.SiteConfig("unknown.com")
		if cfg.UserAgent != "default-agent" || cfg.MaxConcurrentRequests != 10 {
			t.Errorf("expected defaults, got %+v", cfg)
		}
	})

	t.Run("site values override defaults", func(t *testing.T) {
		t.Parallel()

		cfg := file.SiteConfig("example.com")
		if cfg.MaxConcurrentRequests != 2 {
			t.Errorf("expected 2, got %d", cfg.MaxConcurrentRequests)
		}
		if cfg.UserAgent != "default-agent" {
			t.Errorf("expected default user agent, got %q", cfg.UserAgent)
		}
		if cfg.Cookie != "session=xyz" {
			t.Errorf("expected site cookie, got %q", cfg.Cookie)
		}
		if cfg.Headers["Authorization"] != "site-token" || cfg.Headers["X-Default"] != "1" {
			t.Errorf("unexpected merged headers %v", cfg.Headers)
		}
	})

	t.Run("merging does not mutate defaults", func(t *testing.T) {
		t.Parallel()

		_ = file.SiteConfig("example.com")
		if file.Defaults.Headers["Authorization"] != "default-token" {
			t.Errorf("defaults were modified: %v", file.Defaults.Headers)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.sitecrawl")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".sitecrawl")
		content := `defaults:
  userAgent: "sitecrawl-test"
  requestTimeout: "20s"
sites:
  example.com:
    maxConcurrentRequests: 4
    proxy: "127.0.0.1:9050"
    headers:
      Authorization: "Bearer token"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults.UserAgent != "sitecrawl-test" {
			t.Errorf("unexpected default user agent %q", cfg.Defaults.UserAgent)
		}
		if cfg.Defaults.RequestTimeout != "20s" {
			t.Errorf("unexpected default timeout %q", cfg.Defaults.RequestTimeout)
		}

		site, ok := cfg.Sites["example.com"]
		if !ok {
			t.Fatal("expected example.com in sites")
		}
		if site.MaxConcurrentRequests != 4 || site.Proxy != "127.0.0.1:9050" {
			t.Errorf("unexpected site config %+v", site)
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Error("expected Authorization header")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".sitecrawl")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".sitecrawl")
		if err := os.WriteFile(configPath, []byte("defaults:\n  userAgent: x\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGDataDir(); !strings.HasSuffix(dir, AppName) {
		t.Errorf("expected data dir ending in %s, got %q", AppName, dir)
	}
	if dir := XDGConfigDir(); !strings.HasSuffix(dir, AppName) {
		t.Errorf("expected config dir ending in %s, got %q", AppName, dir)
	}
}
