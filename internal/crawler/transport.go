package crawler

import (
	"context"
	"net/http"
)

// Request is a single GET request issued by the crawler.
type Request struct {
	// URL is the absolute URL to fetch.
	URL string

	// Header holds the headers to send, including User-Agent.
	Header http.Header
}

// Response is the completed result of a fetch.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// ContentType is the Content-Type header value.
	ContentType string

	// Header holds all response headers. Location is read from here.
	Header http.Header

	// Body is the response body.
	Body []byte
}

// Transport performs fetches for the crawler.
//
// Fetch must not follow redirects; redirect responses are returned as is.
// Fetch is called concurrently from multiple goroutines and must honor ctx
// for cancellation and per-request timeouts.
type Transport interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
	Close() error
}
