package crawler

import (
	"bytes"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Anchor is an <a> element with an href attribute.
type Anchor struct {
	// Href is the raw href attribute value.
	Href string

	// Text is the element's text content as found in the document.
	Text string
}

// Document is a parsed page.
type Document interface {
	// Anchors returns every anchor with an href attribute in document order.
	Anchors() []Anchor
}

// Parser turns a response body into a Document.
type Parser interface {
	Parse(body []byte, contentType string) (Document, error)
}

// HTMLParser parses HTML with goquery.
// The body is decoded to UTF-8 using the charset from the Content-Type
// header or, failing that, from the document's meta tags.
type HTMLParser struct{}

// NewHTMLParser returns an HTMLParser.
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

// Parse implements Parser. An empty body is an empty document.
func (p *HTMLParser) Parse(body []byte, contentType string) (Document, error) {
	// charset.NewReader fails with io.EOF on an empty body.
	var r io.Reader = bytes.NewReader(body)
	if len(body) > 0 {
		decoded, err := charset.NewReader(r, contentType)
		if err != nil {
			return nil, fmt.Errorf("failed to decode body: %w", err)
		}
		r = decoded
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &htmlDocument{doc: doc}, nil
}

type htmlDocument struct {
	doc *goquery.Document
}

func (d *htmlDocument) Anchors() []Anchor {
	anchors := make([]Anchor, 0)
	d.doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		anchors = append(anchors, Anchor{Href: href, Text: s.Text()})
	})
	return anchors
}
