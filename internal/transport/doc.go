// Package transport provides the net/http based fetcher used by the crawler.
//
// HTTPTransport never follows redirects; redirect responses are returned to
// the crawler so it can record them in the page graph. Requests can be
// routed through a SOCKS5 proxy, and a session cookie configured per site is
// added to every request by a wrapping RoundTripper. Response bodies are
// capped to DefaultMaxBodySize bytes unless configured otherwise.
package transport
