package model

import "time"

// Outcome classifies how the fetch of a page ended.
type Outcome string

const (
	// OutcomeOK is a completed non-redirect fetch.
	OutcomeOK Outcome = "ok"

	// OutcomeRedirect is a redirect response.
	OutcomeRedirect Outcome = "redirect"

	// OutcomeFailed is a transport or parse failure.
	OutcomeFailed Outcome = "failed"

	// OutcomePending is a page that was discovered but never fetched.
	OutcomePending Outcome = "pending"
)

// Report is an acyclic snapshot of a crawled page graph.
// It is built once the crawl has finished and is safe to serialize.
type Report struct {
	// RootURL is the URL the crawl started from.
	RootURL string `json:"root_url"`

	// StartedAt is when the crawl started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl returned.
	FinishedAt time.Time `json:"finished_at"`

	// Summary holds aggregate counts over Pages.
	Summary Summary `json:"summary"`

	// Pages lists every reachable page in breadth-first order from the root.
	Pages []PageRecord `json:"pages"`
}

// Summary holds aggregate counts for a Report.
type Summary struct {
	Pages           int `json:"pages"`
	Fetched         int `json:"fetched"`
	Redirects       int `json:"redirects"`
	Failures        int `json:"failures"`
	Links           int `json:"links"`
	UnresolvedLinks int `json:"unresolved_links"`
}

// PageRecord is the serializable form of a Page.
type PageRecord struct {
	URL         string       `json:"url"`
	Outcome     Outcome      `json:"outcome"`
	StatusCode  int          `json:"status_code,omitempty"`
	ContentType string       `json:"content_type,omitempty"`
	Error       string       `json:"error,omitempty"`
	RedirectURL string       `json:"redirect_url,omitempty"`
	RedirectsTo string       `json:"redirects_to,omitempty"`
	Links       []LinkRecord `json:"links"`
}

// LinkRecord is the serializable form of a PageLink.
type LinkRecord struct {
	URL      string `json:"url"`
	Text     string `json:"text"`
	Resolved bool   `json:"resolved"`
}

// NewReport flattens the graph reachable from root.
func NewReport(root *Page, startedAt, finishedAt time.Time) *Report {
	r := &Report{
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Pages:      make([]PageRecord, 0),
	}
	if root != nil {
		r.RootURL = root.URL
	}

	Walk(root, func(p *Page) bool {
		rec := newPageRecord(p)
		r.Pages = append(r.Pages, rec)

		r.Summary.Pages++
		switch rec.Outcome {
		case OutcomeOK:
			r.Summary.Fetched++
		case OutcomeRedirect:
			r.Summary.Fetched++
			r.Summary.Redirects++
		case OutcomeFailed:
			r.Summary.Fetched++
			r.Summary.Failures++
		case OutcomePending:
		}
		for _, l := range rec.Links {
			r.Summary.Links++
			if !l.Resolved {
				r.Summary.UnresolvedLinks++
			}
		}
		return true
	})

	return r
}

func newPageRecord(p *Page) PageRecord {
	rec := PageRecord{
		URL:         p.URL,
		Outcome:     outcomeOf(p),
		StatusCode:  p.StatusCode,
		ContentType: p.ContentType,
		Error:       p.Error,
		RedirectURL: p.RedirectURL,
		Links:       make([]LinkRecord, 0, len(p.Links)),
	}
	if p.RedirectsTo != nil {
		rec.RedirectsTo = p.RedirectsTo.URL
	}
	for _, l := range p.Links {
		rec.Links = append(rec.Links, LinkRecord{
			URL:      l.URL,
			Text:     l.Text,
			Resolved: l.Page != nil,
		})
	}
	return rec
}

func outcomeOf(p *Page) Outcome {
	switch {
	case !p.Fetched():
		return OutcomePending
	case p.Failed():
		return OutcomeFailed
	case p.IsRedirect():
		return OutcomeRedirect
	default:
		return OutcomeOK
	}
}

// Duration returns how long the crawl took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Page returns the record for the given URL.
func (r *Report) Page(url string) (PageRecord, bool) {
	for _, p := range r.Pages {
		if p.URL == url {
			return p, true
		}
	}
	return PageRecord{}, false
}

// CountByOutcome returns the number of pages per outcome.
func (r *Report) CountByOutcome() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, p := range r.Pages {
		counts[p.Outcome]++
	}
	return counts
}
