package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitecrawl/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "sitecrawl.db"

// GraphDB stores crawled page graphs in a SQLite database.
//
// Every SaveReport call creates a new crawl run keyed by a random UUID, so
// repeated crawls of the same site are kept side by side. The live page
// graph may contain cycles; GraphDB stores the flattened model.Report
// instead, one row per page and one row per outbound link, in breadth-first
// order.
//
// The database lives in a single file inside the directory passed to Open.
// The connection pool is limited to one connection because SQLite allows a
// single writer.
type GraphDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures GraphDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the GraphDB inside dbDir.
func Open(dbDir string, opts Options) (*GraphDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
		mode = "rw"
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	gdb := &GraphDB{db: db, dbPath: dbPath}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := gdb.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return gdb, nil
}

// Path returns the database file path.
func (g *GraphDB) Path() string {
	return g.dbPath
}

// Close closes the database connection.
func (g *GraphDB) Close() error {
	return g.db.Close()
}

func (g *GraphDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS crawls (
		id TEXT PRIMARY KEY,
		root_url TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		fetched INTEGER NOT NULL DEFAULT 0,
		redirects INTEGER NOT NULL DEFAULT 0,
		failures INTEGER NOT NULL DEFAULT 0,
		links INTEGER NOT NULL DEFAULT 0,
		unresolved_links INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_root ON crawls(root_url);
	CREATE INDEX IF NOT EXISTS idx_crawls_started ON crawls(started_at);

	CREATE TABLE IF NOT EXISTS pages (
		crawl_id TEXT NOT NULL REFERENCES crawls(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		outcome TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		content_type TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		redirect_url TEXT NOT NULL DEFAULT '',
		redirects_to TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (crawl_id, url)
	);

	CREATE TABLE IF NOT EXISTS links (
		crawl_id TEXT NOT NULL,
		page_url TEXT NOT NULL,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		resolved INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (crawl_id, page_url, position),
		FOREIGN KEY (crawl_id, page_url) REFERENCES pages(crawl_id, url) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_links_target ON links(crawl_id, url);
	`

	_, err := g.db.ExecContext(ctx, schema)
	return err
}

// CrawlRecord is the stored metadata of one crawl run.
type CrawlRecord struct {
	// ID is the run ID returned by SaveReport.
	ID         string
	RootURL    string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    model.Summary
}

// SaveReport stores the report as a new crawl run and returns its run ID.
// All rows are written in a single transaction.
func (g *GraphDB) SaveReport(ctx context.Context, report *model.Report) (runID string, err error) {
	runID = uuid.NewString()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	s := report.Summary
	_, err = tx.ExecContext(ctx, `
	INSERT INTO crawls (id, root_url, started_at, finished_at, pages, fetched, redirects, failures, links, unresolved_links)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, report.RootURL,
		formatTimestamp(report.StartedAt), formatTimestamp(report.FinishedAt),
		s.Pages, s.Fetched, s.Redirects, s.Failures, s.Links, s.UnresolvedLinks,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert crawl: %w", err)
	}

	pageStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (crawl_id, position, url, outcome, status_code, content_type, error, redirect_url, redirects_to)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer pageStmt.Close()

	linkStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO links (crawl_id, page_url, position, url, text, resolved)
	VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer linkStmt.Close()

	for i, p := range report.Pages {
		if _, err = pageStmt.ExecContext(ctx,
			runID, i, p.URL, string(p.Outcome), p.StatusCode,
			p.ContentType, p.Error, p.RedirectURL, p.RedirectsTo,
		); err != nil {
			return "", fmt.Errorf("failed to insert page %s: %w", p.URL, err)
		}
		for j, l := range p.Links {
			if _, err = linkStmt.ExecContext(ctx,
				runID, p.URL, j, l.URL, l.Text, l.Resolved,
			); err != nil {
				return "", fmt.Errorf("failed to insert link %s: %w", l.URL, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit crawl: %w", err)
	}
	return runID, nil
}

// ListCrawls returns stored crawl runs, newest first. An empty rootURL
// lists every run.
func (g *GraphDB) ListCrawls(ctx context.Context, rootURL string) ([]CrawlRecord, error) {
	query := `
	SELECT id, root_url, started_at, finished_at, pages, fetched, redirects, failures, links, unresolved_links
	FROM crawls
	WHERE 1=1
	`
	args := make([]any, 0, 1)
	if rootURL != "" {
		query += " AND root_url = ?"
		args = append(args, rootURL)
	}
	query += " ORDER BY started_at DESC, id"

	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawls: %w", err)
	}
	defer rows.Close()

	records := make([]CrawlRecord, 0)
	for rows.Next() {
		rec, err := scanCrawl(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetReport rebuilds the report stored under runID.
func (g *GraphDB) GetReport(ctx context.Context, runID string) (*model.Report, error) {
	row := g.db.QueryRowContext(ctx, `
	SELECT id, root_url, started_at, finished_at, pages, fetched, redirects, failures, links, unresolved_links
	FROM crawls
	WHERE id = ?`, runID)

	rec, err := scanCrawl(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCrawlNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		RootURL:    rec.RootURL,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
		Summary:    rec.Summary,
		Pages:      make([]model.PageRecord, 0, rec.Summary.Pages),
	}

	pages, err := g.db.QueryContext(ctx, `
	SELECT url, outcome, status_code, content_type, error, redirect_url, redirects_to
	FROM pages
	WHERE crawl_id = ?
	ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer pages.Close()

	index := make(map[string]int)
	for pages.Next() {
		var (
			p       model.PageRecord
			outcome string
		)
		if err := pages.Scan(&p.URL, &outcome, &p.StatusCode, &p.ContentType,
			&p.Error, &p.RedirectURL, &p.RedirectsTo); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		p.Outcome = model.Outcome(outcome)
		p.Links = make([]model.LinkRecord, 0)
		index[p.URL] = len(report.Pages)
		report.Pages = append(report.Pages, p)
	}
	if err := pages.Err(); err != nil {
		return nil, err
	}

	links, err := g.db.QueryContext(ctx, `
	SELECT page_url, url, text, resolved
	FROM links
	WHERE crawl_id = ?
	ORDER BY page_url, position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer links.Close()

	for links.Next() {
		var (
			pageURL string
			l       model.LinkRecord
		)
		if err := links.Scan(&pageURL, &l.URL, &l.Text, &l.Resolved); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		if i, ok := index[pageURL]; ok {
			report.Pages[i].Links = append(report.Pages[i].Links, l)
		}
	}
	return report, links.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCrawl(s scanner) (CrawlRecord, error) {
	var (
		rec               CrawlRecord
		started, finished   string
	)
	err := s.Scan(&rec.ID, &rec.RootURL, &started, &finished,
		&rec.Summary.Pages, &rec.Summary.Fetched, &rec.Summary.Redirects,
		&rec.Summary.Failures, &rec.Summary.Links, &rec.Summary.UnresolvedLinks)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("failed to scan crawl: %w", err)
	}
	rec.StartedAt = parseTimestamp(started)
	rec.FinishedAt = parseTimestamp(finished)
	return rec, nil
}

// storedTimestampFormat sorts lexically in chronological order.
const storedTimestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimestampFormat)
}

// timestampFormats contains the timestamp formats accepted when reading.
var timestampFormats = []string{
	storedTimestampFormat,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
