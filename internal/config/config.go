package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/sitecrawl/internal/crawler"
	"github.com/nao1215/sitecrawl/internal/transport"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sitecrawl"

	// DefaultMaxConcurrentRequests bounds the number of in-flight fetches.
	DefaultMaxConcurrentRequests = crawler.DefaultMaxConcurrentRequests

	// DefaultRequestTimeout applies to each request individually.
	DefaultRequestTimeout = crawler.DefaultRequestTimeout

	// DefaultUserAgent is a desktop Chrome user agent.
	DefaultUserAgent = crawler.DefaultUserAgent

	// DefaultMaxBodySize limits how much of each response is read.
	DefaultMaxBodySize = transport.DefaultMaxBodySize
)

// Config holds all configuration options for a crawl.
// It is populated from defaults, the config file and CLI flags, in that
// order of precedence from lowest to highest.
type Config struct {
	// RootURL is the URL the crawl starts from. Its host defines the
	// crawl domain.
	RootURL string

	// MaxConcurrentRequests is the maximum number of in-flight fetches.
	MaxConcurrentRequests int

	// RequestTimeout bounds each request. Zero disables it.
	RequestTimeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Headers are extra request headers.
	Headers map[string]string

	// Cookie is sent with every request when non-empty.
	Cookie string

	// ProxyAddress routes requests through a SOCKS5 proxy when non-empty.
	ProxyAddress string

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// MaxBodySize is the maximum number of body bytes read per response.
	// Zero selects DefaultMaxBodySize.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit config file path, if any.
	ConfigFilePath string

	// SiteConfigs holds the loaded config file, if any.
	SiteConfigs *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// SaveToDB stores the crawl graph in the SQLite database.
	SaveToDB bool

	// DBDir is the database directory. Defaults to XDGDataDir.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxConcurrentRequests: DefaultMaxConcurrentRequests,
		RequestTimeout:        DefaultRequestTimeout,
		UserAgent:             DefaultUserAgent,
		Headers:               make(map[string]string),
		MaxBodySize:           DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for sitecrawl.
// On Linux: ~/.local/share/sitecrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitecrawl.
// On Linux: ~/.config/sitecrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RootURL) == "" {
		return ErrNoRootURL
	}
	if c.MaxConcurrentRequests < 1 {
		return ErrInvalidMaxConcurrentRequests
	}
	if c.RequestTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// ApplySiteConfig overrides fields with the non-zero values of sc.
func (c *Config) ApplySiteConfig(sc SiteConfig) error {
	if sc.UserAgent != "" {
		c.UserAgent = sc.UserAgent
	}
	if sc.MaxConcurrentRequests != 0 {
		c.MaxConcurrentRequests = sc.MaxConcurrentRequests
	}
	if sc.RequestTimeout != "" {
		d, err := time.ParseDuration(sc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("%w: requestTimeout %q: %w", ErrInvalidSiteConfig, sc.RequestTimeout, err)
		}
		c.RequestTimeout = d
	}
	if sc.Proxy != "" {
		c.ProxyAddress = sc.Proxy
	}
	if sc.Cookie != "" {
		c.Cookie = sc.Cookie
	}
	if sc.InsecureSkipVerify {
		c.InsecureSkipVerify = true
	}
	if len(sc.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range sc.Headers {
			c.Headers[k] = v
		}
	}
	return nil
}

// ParseHeader splits a "Name: value" string.
func ParseHeader(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHeader, s)
	}
	return name, strings.TrimSpace(value), nil
}
