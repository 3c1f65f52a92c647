package config

// SiteConfig holds per-site crawl settings from the config file.
type SiteConfig struct {
	// Cookie is sent with every request to the site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxConcurrentRequests overrides the in-flight request bound.
	MaxConcurrentRequests int `yaml:"maxConcurrentRequests,omitempty"`

	// RequestTimeout overrides the per-request timeout, in time.Duration
	// syntax such as "30s".
	RequestTimeout string `yaml:"requestTimeout,omitempty"`

	// Proxy is a SOCKS5 proxy address.
	Proxy string `yaml:"proxy,omitempty"`

	// InsecureSkipVerify disables TLS verification for the site.
	InsecureSkipVerify bool `yaml:"insecureSkipVerify,omitempty"`
}

// File represents the structure of the .sitecrawl configuration file.
type File struct {
	// Sites maps a host (with port, if not the default) to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// SiteConfig returns the settings for host, merged over the defaults.
func (cf *File) SiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if site.MaxConcurrentRequests != 0 {
		result.MaxConcurrentRequests = site.MaxConcurrentRequests
	}
	if site.RequestTimeout != "" {
		result.RequestTimeout = site.RequestTimeout
	}
	if site.Proxy != "" {
		result.Proxy = site.Proxy
	}
	if site.InsecureSkipVerify {
		result.InsecureSkipVerify = true
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}

	return result
}
