package model

import (
	"net/http"
	"strings"
)

// Page represents one URL of the crawled site.
//
// A Page is created the first time its URL is discovered and is mutated in
// place when its fetch completes. Two Pages never share a URL within a crawl.
type Page struct {
	// URL is the absolute URL of the page. It is the page's identity.
	URL string `json:"url"`

	// Links contains the outbound in-domain links in document order.
	// It is nil until the fetch for this URL completes; after that it is
	// non-nil, and empty for redirects, failures and non-HTML responses.
	Links []*PageLink `json:"-"`

	// RedirectsTo is the Page this URL redirects to.
	// Nil if the response was not a redirect or the target is out of scope.
	RedirectsTo *Page `json:"-"`

	// RedirectURL is the resolved Location of a redirect response.
	// It is set even when the target is outside the root domain.
	RedirectURL string `json:"redirect_url,omitempty"`

	// StatusCode is the HTTP status code of the response.
	// Zero if the transport failed.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the Content-Type header of the response.
	ContentType string `json:"content_type,omitempty"`

	// Error describes a transport or parse failure, if any.
	Error string `json:"error,omitempty"`
}

// NewPage returns an unfetched Page for the given URL.
func NewPage(url string) *Page {
	return &Page{URL: url}
}

// Fetched reports whether the fetch for this page has completed.
func (p *Page) Fetched() bool {
	return p.Links != nil
}

// IsRedirect reports whether the page's response was a redirect.
func (p *Page) IsRedirect() bool {
	return IsRedirectStatus(p.StatusCode)
}

// IsHTML reports whether the page's content type indicates an HTML document.
func (p *Page) IsHTML() bool {
	return IsHTMLContentType(p.ContentType)
}

// Failed reports whether the fetch or the parse of this page failed.
func (p *Page) Failed() bool {
	return p.Error != ""
}

// PageLink represents one outbound anchor on a page.
type PageLink struct {
	// URL is the absolute target URL.
	URL string `json:"url"`

	// Text is the visible anchor text.
	Text string `json:"text"`

	// Page is the target Page. Nil until the target is known.
	// Once set it is never reset.
	Page *Page `json:"-"`
}

// NewPageLink returns an unresolved link.
func NewPageLink(url, text string) *PageLink {
	return &PageLink{URL: url, Text: text}
}

// Resolved reports whether the link's target Page is known.
func (l *PageLink) Resolved() bool {
	return l.Page != nil
}

// IsRedirectStatus reports whether an HTTP status code is a redirect that
// carries a Location header.
func IsRedirectStatus(code int) bool {
	switch code {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// IsHTMLContentType reports whether a Content-Type header value indicates
// an HTML document. Parameters such as charset are ignored.
func IsHTMLContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") ||
		strings.Contains(ct, "application/xhtml+xml")
}
