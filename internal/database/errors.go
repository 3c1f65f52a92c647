package database

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when the database file does
	// not exist and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrCrawlNotFound is returned when no crawl has the requested run ID.
	ErrCrawlNotFound = errors.New("crawl not found")
)
