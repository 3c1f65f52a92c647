package model

import (
	"net/http"
	"testing"
)

// TestPageFetched tests that Fetched distinguishes nil and empty link lists.
func TestPageFetched(t *testing.T) {
	t.Parallel()

	t.Run("new page is not fetched", func(t *testing.T) {
		t.Parallel()
		if NewPage("https://example.com").Fetched() {
			t.Error("expected new page to be unfetched")
		}
	})

	t.Run("empty link list means fetched", func(t *testing.T) {
		t.Parallel()
		p := NewPage("https://example.com")
		p.Links = []*PageLink{}
		if !p.Fetched() {
			t.Error("expected page with empty links to be fetched")
		}
	})
}

// TestIsRedirectStatus tests redirect status classification.
func TestIsRedirectStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want bool
	}{
		{http.StatusOK, false},
		{http.StatusMovedPermanently, true},
		{http.StatusFound, true},
		{http.StatusSeeOther, true},
		{http.StatusNotModified, false},
		{http.StatusTemporaryRedirect, true},
		{http.StatusPermanentRedirect, true},
		{http.StatusNotFound, false},
		{0, false},
	}

	for _, tt := range tests {
		if got := IsRedirectStatus(tt.code); got != tt.want {
			t.Errorf("IsRedirectStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

// TestIsHTMLContentType tests content type detection.
func TestIsHTMLContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"TEXT/HTML", true},
		{"application/xhtml+xml", true},
		{"application/json", false},
		{"image/png", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsHTMLContentType(tt.contentType); got != tt.want {
			t.Errorf("IsHTMLContentType(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}

// TestPageLinkResolved tests the Resolved helper.
func TestPageLinkResolved(t *testing.T) {
	t.Parallel()

	link := NewPageLink("https://example.com/a", "A")
	if link.Resolved() {
		t.Error("expected new link to be unresolved")
	}
	link.Page = NewPage("https://example.com/a")
	if !link.Resolved() {
		t.Error("expected link with page to be resolved")
	}
}
