package crawler

import "errors"

var (
	// ErrInvalidRootURL is returned when the root URL is not an absolute
	// http or https URL with a host.
	ErrInvalidRootURL = errors.New("invalid root URL")

	// ErrShutdown is returned when Crawl is called after Shutdown.
	ErrShutdown = errors.New("crawler is shut down")

	// ErrCrawlInProgress is returned when Crawl is called while another
	// crawl is running on the same Crawler.
	ErrCrawlInProgress = errors.New("crawl already in progress")
)
