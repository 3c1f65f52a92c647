package crawler

import (
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/sitecrawl/internal/model"
)

// ScrapeLinks returns the in-scope links of doc in document order.
//
// Empty and fragment-only hrefs are skipped. Each href is resolved against
// origin, and the anchor text is whitespace-collapsed and NFC-normalized.
func ScrapeLinks(doc Document, origin *url.URL, logger *slog.Logger) []*model.PageLink {
	anchors := doc.Anchors()
	links := make([]*model.PageLink, 0, len(anchors))

	for _, a := range anchors {
		href := strings.TrimSpace(a.Href)
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		if !IsInScope(href, origin.Host, logger) {
			continue
		}
		links = append(links, model.NewPageLink(Resolve(origin, href), anchorText(a.Text)))
	}

	return links
}

func anchorText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
