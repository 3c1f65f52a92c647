package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sitecrawl/internal/model"
)

// maxCellLength bounds the width of URL cells in tables.
const maxCellLength = 80

// MarkdownWriter outputs reports in GitHub flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePages(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root URL", "`" + report.RootURL + "`"},
			{"Started", report.StartedAt.Format(dateFormat)},
			{"Duration", report.Duration().String()},
			{"Pages", strconv.Itoa(report.Summary.Pages)},
			{"Links", strconv.Itoa(report.Summary.Links)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	md.H2("Outcomes")
	md.PlainText("")

	counts := report.CountByOutcome()
	outcomes := []struct {
		outcome model.Outcome
		label   string
	}{
		{model.OutcomeOK, "OK"},
		{model.OutcomeRedirect, "Redirect"},
		{model.OutcomeFailed, "Failed"},
		{model.OutcomePending, "Not fetched"},
	}

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{o.label, strconv.Itoa(counts[o.outcome])})
	}
	md.Table(markdown.TableSet{Header: []string{"Outcome", "Pages"}, Rows: rows})
	md.PlainText("")

	if report.Summary.Pages > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Page Outcomes"),
			piechart.WithShowData(true),
		)
		for _, o := range outcomes {
			if n := counts[o.outcome]; n > 0 {
				chart.LabelAndIntValue(o.label, uint64(n))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case report.Summary.Failures > 0:
		md.Warningf("%d page(s) could not be fetched or parsed.", report.Summary.Failures)
	case report.Summary.UnresolvedLinks > 0:
		md.Note(fmt.Sprintf("%d link(s) point at pages that were never fetched.", report.Summary.UnresolvedLinks))
	default:
		md.Tip("Every discovered page was fetched successfully.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.Report) {
	md.H2("Pages")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.PlainText("No pages crawled.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Pages))
	for _, p := range report.Pages {
		status := "-"
		if p.StatusCode != 0 {
			status = strconv.Itoa(p.StatusCode)
		}
		target := "-"
		switch {
		case p.RedirectsTo != "":
			target = p.RedirectsTo
		case p.RedirectURL != "":
			target = p.RedirectURL
		}
		rows = append(rows, []string{
			truncateString(p.URL, maxCellLength),
			string(p.Outcome),
			status,
			strconv.Itoa(len(p.Links)),
			truncateString(target, maxCellLength),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Outcome", "Status", "Links", "Redirects To"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, p := range report.Pages {
		if len(p.Links) == 0 && p.Error == "" {
			continue
		}
		md.Details(p.URL, pageDetails(p))
	}
	md.PlainText("")
}

func pageDetails(p model.PageRecord) string {
	if p.Error != "" {
		return "Error: " + p.Error
	}
	details := markdown.NewMarkdown(io.Discard)
	items := make([]string, 0, len(p.Links))
	for _, l := range p.Links {
		items = append(items, fmt.Sprintf("%s -> %s", l.Text, l.URL))
	}
	details.BulletList(items...)
	return details.String()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [sitecrawl](https://github.com/nao1215/sitecrawl)*")
}

// truncateString truncates s to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
