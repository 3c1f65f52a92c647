// Package model defines the page graph produced by a crawl.
//
// This package contains the following main types:
//   - Page: A crawled (or discovered) URL with its outbound links
//   - PageLink: One anchor on a page, resolved to its target Page once known
//   - Report: An acyclic, serializable snapshot of a crawled graph
//
// The graph reachable from a root Page may contain cycles. Use Walk to
// traverse it; Walk tracks visited URLs so every Page is seen once.
//
// Page and PageLink hold live pointers and are therefore excluded from JSON.
// Report is the form used for report output and database storage.
package model
