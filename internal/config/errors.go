package config

import "errors"

// Configuration validation errors returned by Config.Validate and the
// loaders in this package.
var (
	// ErrNoRootURL is returned when no root URL is given.
	ErrNoRootURL = errors.New("no root URL specified")

	// ErrInvalidMaxConcurrentRequests is returned when the request bound is
	// below one.
	ErrInvalidMaxConcurrentRequests = errors.New("invalid max concurrent requests: must be at least 1")

	// ErrInvalidTimeout is returned when the request timeout is negative.
	// Zero disables the timeout.
	ErrInvalidTimeout = errors.New("invalid request timeout: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Zero selects the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidHeader is returned when a header flag is not "Name: value".
	ErrInvalidHeader = errors.New("invalid header: expected \"Name: value\"")

	// ErrInvalidSiteConfig is returned when a site entry in the config file
	// cannot be applied.
	ErrInvalidSiteConfig = errors.New("invalid site configuration")
)
