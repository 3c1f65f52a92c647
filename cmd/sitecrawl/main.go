// Package main provides the entry point for the sitecrawl CLI.
//
// sitecrawl crawls every page of a single site reachable from a root URL and
// reports the resulting page graph: pages, outbound links and redirects.
//
// Usage:
//
//	sitecrawl crawl <root-url>
//	sitecrawl history [root-url]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
