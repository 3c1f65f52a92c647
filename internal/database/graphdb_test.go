package database

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/nao1215/sitecrawl/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *GraphDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// createTestReport builds a report with a redirect, a failure and an
// unresolved link.
func createTestReport(root string, started time.Time) *model.Report {
	page := model.NewPage(root)
	old := model.NewPage(root + "/old")
	target := model.NewPage(root + "/new")
	broken := model.NewPage(root + "/broken")

	page.StatusCode = http.StatusOK
	page.ContentType = "text/html"
	page.Links = []*model.PageLink{
		{URL: old.URL, Text: "Old", Page: old},
		{URL: broken.URL, Text: "Broken", Page: broken},
		{URL: root + "/never", Text: "Never"},
	}

	old.StatusCode = http.StatusFound
	old.RedirectURL = target.URL
	old.RedirectsTo = target
	old.Links = []*model.PageLink{}

	target.StatusCode = http.StatusOK
	target.ContentType = "text/html"
	target.Links = []*model.PageLink{{URL: root, Text: "Home", Page: page}}

	broken.Error = "connection refused"
	broken.Links = []*model.PageLink{}

	return model.NewReport(page, started, started.Add(3*time.Second))
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("missing database without create", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Errorf("expected ErrDatabaseNotFound, got %v", err)
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

// TestSaveAndGetReport tests the round trip of a crawl graph.
func TestSaveAndGetReport(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC)
	want := createTestReport("https://example.com", started)

	runID, err := db.SaveReport(ctx, want)
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run ID")
	}

	got, err := db.GetReport(ctx, runID)
	if err != nil {
		t.Fatalf("failed to get report: %v", err)
	}

	if got.RootURL != want.RootURL {
		t.Errorf("expected root %q, got %q", want.RootURL, got.RootURL)
	}
	if !got.StartedAt.Equal(want.StartedAt) || !got.FinishedAt.Equal(want.FinishedAt) {
		t.Errorf("timestamps changed: got %v..%v, want %v..%v",
			got.StartedAt, got.FinishedAt, want.StartedAt, want.FinishedAt)
	}
	if got.Summary != want.Summary {
		t.Errorf("expected summary %+v, got %+v", want.Summary, got.Summary)
	}
	if !reflect.DeepEqual(got.Pages, want.Pages) {
		t.Errorf("pages differ:\n got  %+v\n want %+v", got.Pages, want.Pages)
	}
}

// TestSaveReportAssignsDistinctRunIDs tests that repeated crawls of the same
// site are stored separately.
func TestSaveReportAssignsDistinctRunIDs(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	first, err := db.SaveReport(ctx, createTestReport("https://example.com", started))
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	second, err := db.SaveReport(ctx, createTestReport("https://example.com", started.Add(time.Hour)))
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if first == second {
		t.Errorf("expected distinct run IDs, got %q twice", first)
	}
}

// TestListCrawls tests crawl history listing.
func TestListCrawls(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	older, err := db.SaveReport(ctx, createTestReport("https://example.com", base))
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	newer, err := db.SaveReport(ctx, createTestReport("https://example.com", base.Add(time.Hour)))
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	other, err := db.SaveReport(ctx, createTestReport("https://other.test", base.Add(30*time.Minute)))
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	t.Run("all roots newest first", func(t *testing.T) {
		t.Parallel()

		records, err := db.ListCrawls(ctx, "")
		if err != nil {
			t.Fatalf("failed to list crawls: %v", err)
		}
		ids := make([]string, 0, len(records))
		for _, r := range records {
			ids = append(ids, r.ID)
		}
		want := []string{newer, other, older}
		if !reflect.DeepEqual(ids, want) {
			t.Errorf("expected %v, got %v", want, ids)
		}
	})

	t.Run("filtered by root", func(t *testing.T) {
		t.Parallel()

		records, err := db.ListCrawls(ctx, "https://other.test")
		if err != nil {
			t.Fatalf("failed to list crawls: %v", err)
		}
		if len(records) != 1 || records[0].ID != other {
			t.Fatalf("expected only %s, got %+v", other, records)
		}
		if records[0].Summary.Pages != 4 || records[0].Summary.Failures != 1 {
			t.Errorf("unexpected summary %+v", records[0].Summary)
		}
	})

	t.Run("unknown root", func(t *testing.T) {
		t.Parallel()

		records, err := db.ListCrawls(ctx, "https://unknown.test")
		if err != nil {
			t.Fatalf("failed to list crawls: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})
}

// TestGetReportNotFound tests lookups of unknown run IDs.
func TestGetReportNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	_, err := db.GetReport(context.Background(), "missing")
	if !errors.Is(err, ErrCrawlNotFound) {
		t.Errorf("expected ErrCrawlNotFound, got %v", err)
	}
}

// TestParseTimestamp tests the accepted timestamp formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"stored format", formatTimestamp(want), want},
		{"rfc3339", "2026-01-02T03:04:05Z", want},
		{"sqlite default", "2026-01-02 03:04:05", want},
		{"garbage", "yesterday", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
