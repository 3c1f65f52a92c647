// Package config provides configuration structures and utilities for
// sitecrawl: crawl defaults and validation, the optional .sitecrawl YAML
// file with per-site overrides, and XDG directory helpers.
package config
