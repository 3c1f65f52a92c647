package crawler

import (
	"log/slog"
	"net/url"
	"strings"
)

// Origin returns the scheme://host[:port] part of u, with the scheme and
// host lower-cased.
func Origin(u *url.URL) *url.URL {
	return &url.URL{Scheme: strings.ToLower(u.Scheme), Host: strings.ToLower(u.Host)}
}

// Resolve turns an href found on a page into an absolute URL on the root
// origin.
//
// A path that already starts with the origin is returned unchanged. An
// absolute or protocol-relative URL is returned absolute, with its host
// lower-cased and the origin's scheme filled in when missing. Anything else is appended to the origin
// with exactly one "/" between them.
func Resolve(origin *url.URL, path string) string {
	base := origin.String()
	if strings.HasPrefix(path, base) {
		return path
	}

	if u, err := url.Parse(path); err == nil && u.Host != "" {
		if u.Scheme == "" {
			u.Scheme = origin.Scheme
		}
		u.Host = strings.ToLower(u.Host)
		return u.String()
	}

	baseSlash := strings.HasSuffix(base, "/")
	pathSlash := strings.HasPrefix(path, "/")
	switch {
	case baseSlash && pathSlash:
		return base + path[1:]
	case !baseSlash && !pathSlash:
		return base + "/" + path
	default:
		return base + path
	}
}

// IsInScope reports whether rawURL belongs to the crawl domain.
//
// URLs without a host are in scope, as are URLs whose host equals rootHost
// (case-insensitively, port included). Non-HTTP schemes such as mailto: or
// javascript: are out of scope. A malformed URL is logged and treated as
// out of scope.
func IsInScope(rawURL, rootHost string, logger *slog.Logger) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		if logger != nil {
			logger.Debug("ignoring malformed URL", "url", rawURL, "error", err)
		}
		return false
	}

	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
	default:
		return false
	}

	if u.Host == "" {
		return u.Opaque == ""
	}
	return strings.EqualFold(u.Host, rootHost)
}
