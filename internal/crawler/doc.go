// Package crawler implements a same-domain web crawl engine.
//
// # Architecture
//
// A Crawler owns a Transport and drives one crawl at a time. Crawl seeds a
// FIFO queue with the root page and runs a controller loop on the calling
// goroutine. The controller dispatches at most MaxConcurrentRequests fetches
// at once, each on its own goroutine. Completed fetches are handed to a
// bounded pool of response handlers which parse the body, scrape links,
// update the page graph and wake the controller.
//
// All shared crawl state (pending count, queue and page store) is guarded by
// a single mutex. The wakeup signal is a buffered channel of capacity one,
// so a signal sent while the controller is not yet waiting is kept.
//
// # Reconciliation
//
// Links and redirects may be discovered before their target page has been
// fetched. The page store keeps reverse indices of every link and redirect
// targeting a URL; when that URL completes, every recorded reference is
// patched to the completed Page. The resulting graph is fully linked however
// the responses interleave.
//
// # Components
//
//   - Resolve / IsInScope: URL resolution against the root origin and the
//     same-host filter
//   - ScrapeLinks: in-scope anchors of a parsed Document
//   - HTMLParser: goquery based Parser with charset detection
//   - Crawler: the controller loop and response handler
//
// # Usage
//
//	c := crawler.New(transport.New(), crawler.WithMaxConcurrentRequests(10))
//	defer c.Shutdown()
//	root, err := c.Crawl(ctx, "https://example.com")
package crawler
