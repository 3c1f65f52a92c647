// Package report writes crawl reports.
//
// Writers for three output formats are provided:
//   - SimpleWriter: a breadth-first text listing of pages, links and redirects
//   - JSONWriter: the flattened model.Report as JSON
//   - MarkdownWriter: GitHub flavored Markdown with summary tables and a
//     mermaid pie chart of page outcomes
//
// Writers implement the Writer interface and can be combined with
// MultiWriter.
package report
