package crawler

import (
	"fmt"

	"github.com/nao1215/sitecrawl/internal/model"
)

// handle processes one completed fetch and updates the page graph.
// It always decrements pending and signals the controller, even if it
// panics.
func (r *run) handle(page *model.Page, resp *Response, fetchErr error) {
	locked := false
	done := false

	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		r.logger.Error("response handler panicked", "url", page.URL, "panic", rec)

		if !locked {
			r.mu.Lock()
		}
		if !done {
			if page.Links == nil {
				page.Links = []*model.PageLink{}
			}
			page.Error = fmt.Sprintf("handler panic: %v", rec)
			r.store.put(page)
			r.store.reconcile(page)
			r.stats.Failures++
			r.pending--
		}
		r.mu.Unlock()
		r.signal()
	}()

	links, redirect := r.extract(page, resp, fetchErr)
	page.Links = links

	r.mu.Lock()
	locked = true

	if redirect != "" {
		if target := r.discover(redirect); target != nil {
			page.RedirectsTo = target
		}
		r.store.addRedirectingPage(redirect, page)
	}

	r.store.put(page)

	for _, link := range links {
		if target := r.discover(link.URL); target != nil {
			link.Page = target
		}
		r.store.addReferringLink(link)
	}

	r.store.reconcile(page)

	if page.Failed() {
		r.stats.Failures++
	}
	if page.IsRedirect() {
		r.stats.Redirects++
	}
	r.pending--
	done = true
	r.signal()

	r.mu.Unlock()
	locked = false

	r.logger.Debug("request completed",
		"url", page.URL,
		"status", page.StatusCode,
		"links", len(links),
	)
}

// extract classifies the response and returns the page's outbound links and
// the in-scope redirect target, if any. It runs without the lock and only
// touches page, which no other goroutine reads until it is stored.
func (r *run) extract(page *model.Page, resp *Response, fetchErr error) ([]*model.PageLink, string) {
	noLinks := []*model.PageLink{}

	if fetchErr != nil {
		page.Error = fetchErr.Error()
		r.logger.Warn("request failed", "url", page.URL, "error", fetchErr)
		return noLinks, ""
	}

	page.StatusCode = resp.StatusCode
	page.ContentType = resp.ContentType

	if model.IsRedirectStatus(resp.StatusCode) {
		location := resp.Header.Get("Location")
		if location == "" {
			r.logger.Warn("redirect without Location header", "url", page.URL, "status", resp.StatusCode)
			return noLinks, ""
		}

		target := Resolve(r.origin, location)
		page.RedirectURL = target
		if !IsInScope(target, r.origin.Host, r.logger) {
			r.logger.Debug("redirect leaves the crawl domain", "url", page.URL, "location", target)
			return noLinks, ""
		}
		return noLinks, target
	}

	if !page.IsHTML() {
		return noLinks, ""
	}

	doc, err := r.parser.Parse(resp.Body, resp.ContentType)
	if err != nil {
		page.Error = fmt.Sprintf("parse: %v", err)
		r.logger.Warn("failed to parse page", "url", page.URL, "error", err)
		return noLinks, ""
	}

	return ScrapeLinks(doc, r.origin, r.logger), ""
}
