// Package log provides slog constructors whose output never carries
// credentials.
//
// RedactingHandler wraps any slog.Handler and, before a record reaches it:
//   - masks attributes whose key names a secret (cookie, authorization,
//     token, password and similar)
//   - masks string values that look like secrets (bearer tokens, JWTs,
//     basic auth)
//   - strips userinfo and secret query parameters from URLs found in
//     string and error values
//
// Crawled URLs frequently come from user input or from pages themselves, so
// URL scrubbing applies to every attribute, not only to "url" keys.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Warn("request failed", "url", "https://user:pw@example.com/?token=x")
//	// url=https://example.com/?token=REDACTED
package log
