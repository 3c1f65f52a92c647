// Package database stores crawl reports in SQLite.
//
// GraphDB keeps one row per crawl run in the crawls table and flattens the
// page graph of that run into the pages and links tables. Runs are keyed by
// a random UUID. The database is write-mostly: crawls export into it, and
// the history command reads it back for display.
package database
