package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitecrawl/internal/config"
	"github.com/nao1215/sitecrawl/internal/database"
)

// historyDateFormat is used for the crawl listing.
const historyDateFormat = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [root-url]",
		Short: "List crawls stored in the database",
		Long: `History lists crawls saved with "sitecrawl crawl --db", newest first.

With a root URL, only crawls of that exact root are listed. With --run, the
stored report of a single crawl is printed in the selected format.

Examples:
  # List every stored crawl
  sitecrawl history

  # List crawls of one site
  sitecrawl history https://example.com

  # Print a stored crawl as Markdown
  sitecrawl history --run 7c9e6679-7425-40de-944b-e07fc1f90ae7 -m`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")
	cmd.Flags().String("run", "",
		"Print the stored report of the crawl with this run ID")
	cmd.Flags().BoolP("json", "j", false,
		"Print the stored report as JSON (with --run)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the stored report as Markdown (with --run)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}
	runID, err := flags.GetString("run")
	if err != nil {
		return err
	}
	jsonFormat, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownFormat, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonFormat && markdownFormat {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}

	db, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) && runID == "" {
		printHistory(cmd.OutOrStdout(), firstArg(args), nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if runID != "" {
		rep, err := db.GetReport(ctx, runID)
		if err != nil {
			return err
		}
		_, err = newReportWriter(jsonFormat, markdownFormat, out).Write(rep)
		return err
	}

	rootURL := firstArg(args)
	records, err := db.ListCrawls(ctx, rootURL)
	if err != nil {
		return err
	}
	printHistory(out, rootURL, records)
	return nil
}

// printHistory writes the crawl listing.
func printHistory(out io.Writer, rootURL string, records []database.CrawlRecord) {
	if len(records) == 0 {
		if rootURL != "" {
			fmt.Fprintf(out, "No crawl history found for %s\n", rootURL)
		} else {
			fmt.Fprintln(out, "No crawl history found")
		}
		return
	}

	fmt.Fprintf(out, "Stored crawls (%d):\n\n", len(records))
	fmt.Fprintf(out, "  %-36s  %-19s  %6s  %8s  %s\n", "Run ID", "Started", "Pages", "Failures", "Root URL")
	for _, r := range records {
		fmt.Fprintf(out, "  %-36s  %-19s  %6d  %8d  %s\n",
			r.ID,
			r.StartedAt.Local().Format(historyDateFormat),
			r.Summary.Pages,
			r.Summary.Failures,
			r.RootURL,
		)
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
