package model

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

// TestNewReport tests flattening a crawled graph.
func TestNewReport(t *testing.T) {
	t.Parallel()

	root := NewPage("https://example.com")
	old := NewPage("https://example.com/old")
	target := NewPage("https://example.com/new")
	broken := NewPage("https://example.com/broken")

	root.StatusCode = http.StatusOK
	root.ContentType = "text/html"
	root.Links = []*PageLink{
		{URL: old.URL, Text: "Old", Page: old},
		{URL: broken.URL, Text: "Broken", Page: broken},
		{URL: "https://example.com/never", Text: "Never"},
	}

	old.StatusCode = http.StatusMovedPermanently
	old.RedirectURL = target.URL
	old.RedirectsTo = target
	old.Links = []*PageLink{}

	target.StatusCode = http.StatusOK
	target.Links = []*PageLink{}

	broken.Error = "connection refused"
	broken.Links = []*PageLink{}

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	report := NewReport(root, started, started.Add(2*time.Second))

	t.Run("summary counts", func(t *testing.T) {
		t.Parallel()

		want := Summary{
			Pages:           4,
			Fetched:         4,
			Redirects:       1,
			Failures:        1,
			Links:           3,
			UnresolvedLinks: 1,
		}
		if report.Summary != want {
			t.Errorf("expected %+v, got %+v", want, report.Summary)
		}
	})

	t.Run("root url and duration", func(t *testing.T) {
		t.Parallel()

		if report.RootURL != "https://example.com" {
			t.Errorf("unexpected root url %q", report.RootURL)
		}
		if report.Duration() != 2*time.Second {
			t.Errorf("expected 2s, got %v", report.Duration())
		}
	})

	t.Run("redirect record", func(t *testing.T) {
		t.Parallel()

		rec, ok := report.Page("https://example.com/old")
		if !ok {
			t.Fatal("expected record for /old")
		}
		if rec.Outcome != OutcomeRedirect {
			t.Errorf("expected redirect outcome, got %q", rec.Outcome)
		}
		if rec.RedirectsTo != "https://example.com/new" {
			t.Errorf("expected redirects_to /new, got %q", rec.RedirectsTo)
		}
	})

	t.Run("outcome counts", func(t *testing.T) {
		t.Parallel()

		counts := report.CountByOutcome()
		if counts[OutcomeOK] != 2 || counts[OutcomeRedirect] != 1 || counts[OutcomeFailed] != 1 {
			t.Errorf("unexpected counts: %v", counts)
		}
	})

	t.Run("serializes without cycles", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(report)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		var decoded Report
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if len(decoded.Pages) != 4 {
			t.Errorf("expected 4 pages, got %d", len(decoded.Pages))
		}
	})
}

// TestNewReportNilRoot tests that a nil root yields an empty report.
func TestNewReportNilRoot(t *testing.T) {
	t.Parallel()

	report := NewReport(nil, time.Time{}, time.Time{})
	if report.RootURL != "" || len(report.Pages) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}
