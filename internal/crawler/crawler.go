package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitecrawl/internal/model"
)

const (
	// DefaultMaxConcurrentRequests is the default bound on in-flight fetches.
	DefaultMaxConcurrentRequests = 40

	// DefaultRequestTimeout is the default per-request timeout.
	DefaultRequestTimeout = 15 * time.Second

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/89.0.4389.114 Safari/537.36"
)

// Crawler crawls a single domain starting from a root URL.
//
// Crawl runs a controller loop on the calling goroutine. The controller
// takes pages from a FIFO queue and starts one goroutine per fetch, never
// more than MaxConcurrentRequests at a time. Each completed fetch is handed
// to a separate pool of response handlers, sized by WithHandlerWorkers. The
// handlers update the page graph, enqueue newly discovered URLs and wake
// the controller. The crawl ends when the queue is empty and no fetch is in
// flight.
//
// All crawl state (queue, in-flight counter and page store) is guarded by a
// single mutex held only for bookkeeping, never across a fetch or a parse.
//
// A Crawler runs one crawl at a time and may be reused for sequential
// crawls. After Shutdown the transport is closed and Crawl returns
// ErrShutdown.
type Crawler struct {
	transport Transport
	parser    Parser
	logger    *slog.Logger

	// maxConcurrentRequests is a hard ceiling on in-flight fetches.
	maxConcurrentRequests int

	// requestTimeout bounds each fetch. Zero disables the timeout.
	requestTimeout time.Duration

	userAgent      string
	headers        http.Header
	handlerWorkers int

	mu       sync.Mutex
	running  bool
	shutdown bool
	stats    Stats
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMaxConcurrentRequests sets the maximum number of in-flight fetches.
// Values below 1 are ignored.
func WithMaxConcurrentRequests(n int) Option {
	return func(c *Crawler) {
		if n >= 1 {
			c.maxConcurrentRequests = n
		}
	}
}

// WithRequestTimeout sets the per-request timeout. Zero means no timeout.
// Negative values are ignored.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Crawler) {
		if d >= 0 {
			c.requestTimeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHeaders sets extra headers sent with every request.
// A User-Agent entry here is overridden by WithUserAgent.
func WithHeaders(h http.Header) Option {
	return func(c *Crawler) {
		c.headers = h.Clone()
	}
}

// WithParser replaces the HTML parser.
func WithParser(p Parser) Option {
	return func(c *Crawler) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *Crawler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHandlerWorkers sets how many response handlers may run at once.
// It defaults to GOMAXPROCS and is independent of the request bound.
func WithHandlerWorkers(n int) Option {
	return func(c *Crawler) {
		if n >= 1 {
			c.handlerWorkers = n
		}
	}
}

// New returns a Crawler that fetches through t.
func New(t Transport, opts ...Option) *Crawler {
	c := &Crawler{
		transport:             t,
		parser:                NewHTMLParser(),
		logger:                slog.New(slog.DiscardHandler),
		maxConcurrentRequests: DefaultMaxConcurrentRequests,
		requestTimeout:        DefaultRequestTimeout,
		userAgent:             DefaultUserAgent,
		headers:               make(http.Header),
		handlerWorkers:        runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Stats holds the counters of the last completed crawl.
type Stats struct {
	// Pages is the number of distinct URLs dispatched.
	Pages int

	// Requests is the number of fetches issued.
	Requests int

	// Failures is the number of transport, parse or handler failures.
	Failures int

	// Redirects is the number of redirect responses.
	Redirects int

	// MaxInFlight is the highest number of concurrent fetches observed.
	MaxInFlight int
}

// Stats returns the counters of the last completed crawl.
func (c *Crawler) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Crawl fetches rootURL and every in-domain page reachable from it, and
// returns the root Page of the fully linked graph.
//
// Per-page failures never abort the crawl; they are recorded on the Page.
// If ctx is canceled, outstanding fetches fail, the crawl drains, and the
// partial root is returned together with ctx.Err().
func (c *Crawler) Crawl(ctx context.Context, rootURL string) (*model.Page, error) {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return nil, ErrShutdown
	}
	if c.running {
		c.mu.Unlock()
		return nil, ErrCrawlInProgress
	}
	root, err := parseRootURL(rootURL)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	c.logger.Info("crawling started",
		"root", root.String(),
		"max_concurrent_requests", c.maxConcurrentRequests,
		"request_timeout", c.requestTimeout,
		"handler_workers", c.handlerWorkers,
	)

	r := c.newRun(root)
	page := r.execute(ctx)

	c.mu.Lock()
	c.stats = r.stats
	c.mu.Unlock()

	c.logger.Info("crawling completed",
		"root", root.String(),
		"pages", r.stats.Pages,
		"failures", r.stats.Failures,
	)

	return page, ctx.Err()
}

// Shutdown releases the transport. It is safe to call more than once.
// Crawl returns ErrShutdown afterwards.
func (c *Crawler) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return nil
	}
	c.shutdown = true

	if err := c.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}

func parseRootURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRootURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https: %q", ErrInvalidRootURL, rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host: %q", ErrInvalidRootURL, rawURL)
	}
	// Hosts are case-insensitive; page keys use the lower-case form.
	u.Host = strings.ToLower(u.Host)
	return u, nil
}

// run is the state of a single crawl.
type run struct {
	transport      Transport
	parser         Parser
	logger         *slog.Logger
	maxConcurrent  int
	requestTimeout time.Duration
	header         http.Header

	root   *model.Page
	origin *url.URL

	// mu guards every field below.
	mu      sync.Mutex
	pending int
	queue   []*model.Page
	queued  map[string]bool
	store   *pageStore
	stats   Stats

	// changed wakes the controller. It holds at most one signal so a
	// signal sent before the controller waits is not lost.
	changed chan struct{}

	handlers errgroup.Group
}

func (c *Crawler) newRun(root *url.URL) *run {
	header := c.headers.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set("User-Agent", c.userAgent)

	r := &run{
		transport:      c.transport,
		parser:         c.parser,
		logger:         c.logger,
		maxConcurrent:  c.maxConcurrentRequests,
		requestTimeout: c.requestTimeout,
		header:         header,
		root:           model.NewPage(root.String()),
		origin:         Origin(root),
		queued:         make(map[string]bool),
		store:          newPageStore(),
		changed:        make(chan struct{}, 1),
	}
	r.handlers.SetLimit(c.handlerWorkers)
	return r
}

// execute runs the controller loop until no work remains.
func (r *run) execute(ctx context.Context) *model.Page {
	r.mu.Lock()
	r.enqueue(r.root)
	r.mu.Unlock()
	r.signal()

	for {
		page, ok := r.next()
		if !ok {
			break
		}
		r.dispatch(ctx, page)
	}

	// Every handler has decremented pending; wait for them to return.
	if err := r.handlers.Wait(); err != nil {
		r.logger.Error("response handler failed", "error", err)
	}

	r.mu.Lock()
	r.stats.Pages = r.store.size()
	r.store.clear()
	r.queue = nil
	clear(r.queued)
	r.mu.Unlock()

	return r.root
}

// next blocks until a page may be dispatched and returns it, marked in
// flight. It returns false once the queue is empty and nothing is pending.
func (r *run) next() (*model.Page, bool) {
	r.mu.Lock()
	for len(r.queue) == 0 || r.pending >= r.maxConcurrent {
		if len(r.queue) == 0 && r.pending == 0 {
			r.mu.Unlock()
			return nil, false
		}
		r.mu.Unlock()
		<-r.changed
		r.mu.Lock()
	}

	page := r.queue[0]
	r.queue[0] = nil
	r.queue = r.queue[1:]
	delete(r.queued, page.URL)

	r.store.markInFlight(page.URL)
	r.pending++
	r.stats.Requests++
	r.stats.MaxInFlight = max(r.stats.MaxInFlight, r.pending)
	r.mu.Unlock()

	return page, true
}

// dispatch fetches page asynchronously and hands the result to the
// handler pool.
func (r *run) dispatch(ctx context.Context, page *model.Page) {
	r.logger.Debug("dispatching request", "url", page.URL)

	go func() {
		resp, err := r.fetch(ctx, page.URL)
		r.handlers.Go(func() error {
			r.handle(page, resp, err)
			return nil
		})
	}()
}

func (r *run) fetch(ctx context.Context, pageURL string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.requestTimeout)
		defer cancel()
	}
	return r.transport.Fetch(ctx, &Request{URL: pageURL, Header: r.header.Clone()})
}

// enqueue appends page to the queue. The caller holds mu.
func (r *run) enqueue(page *model.Page) {
	r.queue = append(r.queue, page)
	r.queued[page.URL] = true
}

// discover returns the completed Page for url if there is one. A URL that
// is neither dispatched nor queued is enqueued as a new placeholder.
// The caller holds mu.
func (r *run) discover(url string) *model.Page {
	if r.store.has(url) {
		return r.store.completed(url)
	}
	if !r.queued[url] {
		r.enqueue(model.NewPage(url))
	}
	return nil
}

// signal wakes the controller without blocking.
func (r *run) signal() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}
