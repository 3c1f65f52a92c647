package crawler

import "github.com/nao1215/sitecrawl/internal/model"

// pageStore is the page graph of one crawl. It is not safe for concurrent
// use; the caller holds the crawl lock.
type pageStore struct {
	// pages maps a URL to its completed Page. A nil value is a placeholder
	// for a fetch that has been dispatched but not completed.
	pages map[string]*model.Page

	// referringLinks maps a URL to every link that targets it.
	referringLinks map[string][]*model.PageLink

	// redirectingPages maps a URL to every page that redirects to it.
	redirectingPages map[string][]*model.Page
}

func newPageStore() *pageStore {
	return &pageStore{
		pages:            make(map[string]*model.Page),
		referringLinks:   make(map[string][]*model.PageLink),
		redirectingPages: make(map[string][]*model.Page),
	}
}

// has reports whether url has been dispatched.
func (s *pageStore) has(url string) bool {
	_, ok := s.pages[url]
	return ok
}

// completed returns the completed Page for url, or nil.
func (s *pageStore) completed(url string) *model.Page {
	return s.pages[url]
}

func (s *pageStore) markInFlight(url string) {
	if _, ok := s.pages[url]; !ok {
		s.pages[url] = nil
	}
}

func (s *pageStore) put(page *model.Page) {
	s.pages[page.URL] = page
}

func (s *pageStore) addReferringLink(link *model.PageLink) {
	s.referringLinks[link.URL] = append(s.referringLinks[link.URL], link)
}

func (s *pageStore) addRedirectingPage(target string, page *model.Page) {
	s.redirectingPages[target] = append(s.redirectingPages[target], page)
}

// reconcile attaches page to every link and redirect recorded for its URL.
func (s *pageStore) reconcile(page *model.Page) {
	for _, link := range s.referringLinks[page.URL] {
		link.Page = page
	}
	for _, p := range s.redirectingPages[page.URL] {
		p.RedirectsTo = page
	}
}

func (s *pageStore) size() int {
	return len(s.pages)
}

func (s *pageStore) clear() {
	clear(s.pages)
	clear(s.referringLinks)
	clear(s.redirectingPages)
}
