package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sitecrawl/internal/model"
)

// SimpleWriter outputs a human-readable listing of the crawl: every page
// in breadth-first order with its outbound links and redirect target.
type SimpleWriter struct {
	baseWriter

	// summaryOnly omits the per-page listing.
	summaryOnly bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithSummaryOnly omits the per-page listing.
func WithSummaryOnly(summaryOnly bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.summaryOnly = summaryOnly
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	if !w.summaryOnly {
		w.writePages(&sb, report)
	}

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	s := report.Summary

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Root URL:   %s\n", report.RootURL)
	fmt.Fprintf(sb, "Started:    %s\n", report.StartedAt.Format(dateFormat))
	fmt.Fprintf(sb, "Duration:   %s\n", report.Duration())
	fmt.Fprintf(sb, "Pages:      %d (%d fetched)\n", s.Pages, s.Fetched)
	fmt.Fprintf(sb, "Links:      %d (%d unresolved)\n", s.Links, s.UnresolvedLinks)
	fmt.Fprintf(sb, "Redirects:  %d\n", s.Redirects)
	fmt.Fprintf(sb, "Failures:   %d\n", s.Failures)
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.Report) {
	for _, p := range report.Pages {
		fmt.Fprintf(sb, "Page %s\n", p.URL)

		switch {
		case p.Outcome == model.OutcomeFailed:
			fmt.Fprintf(sb, "\t[error] %s\n", p.Error)
		case p.Outcome == model.OutcomePending:
			sb.WriteString("\t[not fetched]\n")
		case p.RedirectsTo == "" && p.RedirectURL == "":
			fmt.Fprintf(sb, "\t%d outbound links\n", len(p.Links))
		}

		for _, l := range p.Links {
			fmt.Fprintf(sb, "\t\t%s -> %s\n", l.Text, l.URL)
		}

		switch {
		case p.RedirectsTo != "":
			fmt.Fprintf(sb, "\t[redirect] -> %s\n", p.RedirectsTo)
		case p.RedirectURL != "":
			fmt.Fprintf(sb, "\t[redirect, not followed] -> %s\n", p.RedirectURL)
		}
	}
}
