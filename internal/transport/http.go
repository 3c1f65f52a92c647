package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/sitecrawl/internal/crawler"
)

// DefaultMaxBodySize is the default cap on response bodies (10MB).
const DefaultMaxBodySize int64 = 10 * 1024 * 1024

const defaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// HTTPTransport implements crawler.Transport over net/http.
type HTTPTransport struct {
	client *http.Client

	maxBodySize        int64
	proxyAddress       string
	cookie             string
	insecureSkipVerify bool

	closed atomic.Bool
}

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithMaxBodySize caps how many bytes of each body are read.
// Longer bodies are truncated. Values below 1 are ignored.
func WithMaxBodySize(n int64) Option {
	return func(t *HTTPTransport) {
		if n > 0 {
			t.maxBodySize = n
		}
	}
}

// WithProxy routes every connection through the SOCKS5 proxy at addr.
// An empty addr disables the proxy.
func WithProxy(addr string) Option {
	return func(t *HTTPTransport) {
		t.proxyAddress = addr
	}
}

// WithCookie sends cookie with every request, appended to any Cookie
// header already present.
func WithCookie(cookie string) Option {
	return func(t *HTTPTransport) {
		t.cookie = cookie
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(t *HTTPTransport) {
		t.insecureSkipVerify = skip
	}
}

// New returns an HTTPTransport.
// It fails only if the proxy address is malformed; the proxy itself is not
// contacted until the first request.
func New(opts ...Option) (*HTTPTransport, error) {
	t := &HTTPTransport{
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(t)
	}

	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: t.insecureSkipVerify, //nolint:gosec // opt-in for self-signed staging sites
		},
	}

	if t.proxyAddress != "" {
		addr, err := parseProxyAddress(t.proxyAddress)
		if err != nil {
			return nil, err
		}
		dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		base.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			base.DialContext = cd.DialContext
		} else {
			base.DialContext = func(_ context.Context, network, address string) (net.Conn, error) {
				return dialer.Dial(network, address)
			}
		}
	}

	var rt http.RoundTripper = base
	if t.cookie != "" {
		rt = &cookieTransport{base: base, cookie: t.cookie}
	}

	t.client = &http.Client{
		Transport: rt,
		// Redirects are surfaced to the crawler.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return t, nil
}

// Fetch implements crawler.Transport.
func (t *HTTPTransport) Fetch(ctx context.Context, req *crawler.Request) (*crawler.Response, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", defaultAccept)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return &crawler.Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
		Body:        body,
	}, nil
}

// Close releases idle connections. Fetch fails with ErrClosed afterwards.
func (t *HTTPTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	t.client.CloseIdleConnections()
	return nil
}

// parseProxyAddress accepts "host:port" or "socks5://host:port" and
// returns "host:port".
func parseProxyAddress(raw string) (string, error) {
	addr := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "socks5" && u.Scheme != "socks5h") {
			return "", fmt.Errorf("%w: %q", ErrInvalidProxyAddress, raw)
		}
		addr = u.Host
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidProxyAddress, raw)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return "", fmt.Errorf("%w: %q", ErrInvalidProxyAddress, raw)
	}
	return addr, nil
}

// cookieTransport appends a configured cookie to every request.
type cookieTransport struct {
	base   http.RoundTripper
	cookie string
}

// RoundTrip implements http.RoundTripper.
func (t *cookieTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if existing := clone.Header.Get("Cookie"); existing != "" {
		clone.Header.Set("Cookie", existing+"; "+t.cookie)
	} else {
		clone.Header.Set("Cookie", t.cookie)
	}

	return t.base.RoundTrip(clone)
}
