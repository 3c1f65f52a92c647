package report

import (
	"io"

	"github.com/nao1215/sitecrawl/internal/model"
)

// Writer writes a crawl report to its destination.
//
// Writers consume the flattened model.Report rather than the live page
// graph, so they never have to track visited pages. Pages appear in the
// order of the report, which is breadth-first from the root.
//
// Implementations:
//   - SimpleWriter: plain text listing of pages, links and redirects
//   - JSONWriter: the report as JSON, optionally wrapped with a version
//   - MarkdownWriter: tables, an outcome pie chart and per-page details
//
// Use MultiWriter to send one report to several destinations.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.Report) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every Writer and returns the total bytes
// written. It stops at the first error.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// dateFormat is used for timestamps in text and Markdown reports.
const dateFormat = "2006-01-02 15:04:05 MST"
