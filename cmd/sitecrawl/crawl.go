package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitecrawl/internal/config"
	"github.com/nao1215/sitecrawl/internal/crawler"
	"github.com/nao1215/sitecrawl/internal/database"
	crawllog "github.com/nao1215/sitecrawl/internal/log"
	"github.com/nao1215/sitecrawl/internal/model"
	"github.com/nao1215/sitecrawl/internal/report"
	"github.com/nao1215/sitecrawl/internal/transport"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <root-url>",
		Short: "Crawl a site starting from a root URL",
		Long: `Crawl fetches the root URL and every page on the same host reachable from
it through links and redirects. Each URL is fetched at most once. Response
bodies are parsed for links only when the response is HTML.

Per-page failures such as timeouts or refused connections are recorded in
the report and never stop the crawl.

Examples:
  # Crawl a site and print the page listing
  sitecrawl crawl https://example.com

  # Limit concurrency and write a Markdown report
  sitecrawl crawl -c 4 -m -o report.md https://example.com

  # Send an extra header and store the result for "sitecrawl history"
  sitecrawl crawl -H "Authorization: Bearer token" --db https://example.com

Configuration file (.sitecrawl) example:
  defaults:
    maxConcurrentRequests: 16
  sites:
    example.com:
      cookie: "session=abc123"
      requestTimeout: 30s`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Request behavior
	cmd.Flags().IntP("max-concurrent", "c", config.DefaultMaxConcurrentRequests,
		"Maximum number of requests in flight")
	cmd.Flags().DurationP("timeout", "t", config.DefaultRequestTimeout,
		"Timeout for each request (0 disables)")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().StringArrayP("header", "H", nil,
		`Extra request header as "Name: value" (repeatable)`)
	cmd.Flags().String("cookie", "",
		"Cookie header sent with every request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (host:port or socks5://host:port)")
	cmd.Flags().Bool("insecure", false,
		"Skip TLS certificate verification")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum number of response body bytes read per page")

	// Configuration file
	cmd.Flags().String("config", "",
		"Configuration file path (default: .sitecrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Database flags
	cmd.Flags().Bool("db", false,
		"Store the crawl graph in the local SQLite database")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := crawllog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildCrawlConfig layers defaults, the config file entry for the root
// host, and explicitly set flags, in that order.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.RootURL = strings.TrimSpace(args[0])
	cfg.Verbose = getVerboseFlag(cmd)

	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit --config must exist; otherwise a missing file is fine.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	if err := cfg.ApplySiteConfig(cfg.SiteConfigs.SiteConfig(rootHost(cfg.RootURL))); err != nil {
		return nil, err
	}

	if flags.Changed("max-concurrent") {
		if cfg.MaxConcurrentRequests, err = flags.GetInt("max-concurrent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.RequestTimeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("cookie") {
		if cfg.Cookie, err = flags.GetString("cookie"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("insecure") {
		if cfg.InsecureSkipVerify, err = flags.GetBool("insecure"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-body-size") {
		if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
			return nil, err
		}
	}

	headers, err := flags.GetStringArray("header")
	if err != nil {
		return nil, err
	}
	for _, h := range headers {
		name, value, err := config.ParseHeader(h)
		if err != nil {
			return nil, err
		}
		cfg.Headers[name] = value
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	if cfg.SaveToDB, err = flags.GetBool("db"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	return cfg, nil
}

// rootHost returns the lower-cased host[:port] of rawURL, or "" when it
// does not parse. Invalid roots are rejected later by the crawler.
func rootHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// runCrawl crawls cfg.RootURL and writes the report to out, or to
// cfg.ReportFile when set. Status messages go to errOut.
func runCrawl(ctx context.Context, cfg *config.Config, out, errOut io.Writer, logger *slog.Logger) error {
	tr, err := newTransport(cfg)
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}

	headers := make(http.Header, len(cfg.Headers))
	for name, value := range cfg.Headers {
		headers.Set(name, value)
	}

	c := crawler.New(tr,
		crawler.WithMaxConcurrentRequests(cfg.MaxConcurrentRequests),
		crawler.WithRequestTimeout(cfg.RequestTimeout),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithHeaders(headers),
		crawler.WithLogger(logger),
	)
	defer func() {
		if err := c.Shutdown(); err != nil {
			logger.Error("failed to shut down crawler", "error", err)
		}
	}()

	started := time.Now()
	root, crawlErr := c.Crawl(ctx, cfg.RootURL)
	finished := time.Now()
	if root == nil {
		return fmt.Errorf("crawl failed: %w", crawlErr)
	}
	if crawlErr != nil {
		logger.Warn("crawl interrupted, reporting partial results", "error", crawlErr)
	}

	rep := model.NewReport(root, started, finished)

	if err := outputReport(cfg, rep, out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.SaveToDB {
		// A canceled ctx would abort the insert; the partial graph is still worth keeping.
		runID, err := saveReport(context.WithoutCancel(ctx), cfg.DBDir, rep)
		if err != nil {
			return err
		}
		fmt.Fprintf(errOut, "Saved crawl %s (%d pages)\n", runID, rep.Summary.Pages)
	}

	if crawlErr != nil {
		return fmt.Errorf("crawl interrupted: %w", crawlErr)
	}
	return nil
}

// newTransport builds the HTTP transport from cfg.
func newTransport(cfg *config.Config) (*transport.HTTPTransport, error) {
	opts := []transport.Option{
		transport.WithMaxBodySize(cfg.MaxBodySize),
		transport.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
	}
	if cfg.Cookie != "" {
		opts = append(opts, transport.WithCookie(cfg.Cookie))
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, transport.WithProxy(cfg.ProxyAddress))
	}
	return transport.New(opts...)
}

// outputReport writes rep in the configured format.
func outputReport(cfg *config.Config, rep *model.Report, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	}

	_, err := newReportWriter(cfg.JSONReport, cfg.MarkdownReport, output).Write(rep)
	return err
}

// newReportWriter selects a writer by format flags. Text is the default.
func newReportWriter(jsonFormat, markdownFormat bool, output io.Writer) report.Writer {
	switch {
	case jsonFormat:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case markdownFormat:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output)
	}
}

// saveReport stores rep in the database under dbDir and returns its run ID.
func saveReport(ctx context.Context, dbDir string, rep *model.Report) (string, error) {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runID, err := db.SaveReport(ctx, rep)
	if err != nil {
		return "", fmt.Errorf("failed to save crawl: %w", err)
	}
	return runID, nil
}

// isInterrupted reports whether err came from a canceled crawl.
func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
