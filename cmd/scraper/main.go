package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/erenunal-1/books.toscrape-web-scraper/config"
	"github.com/erenunal-1/books.toscrape-web-scraper/models"
	"github.com/erenunal-1/books.toscrape-web-scraper/pipeline"
	"github.com/erenunal-1/books.toscrape-web-scraper/scraper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var (
		configPath string
		showAll    bool
	)

	cmd := &cobra.Command{
		Use:          "scraper",
		Short:        "Scrape the books.toscrape.com catalog into a Title/Price/Rating table",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			if showAll {
				cfg.PreviewRows = -1
			}

			logger, level := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			slog.SetDefault(logger)
			slog.SetLogLoggerLevel(level.Level())

			if err := cfg.Validate(); err != nil {
				slog.Error("invalid configuration", slog.Any("error", err))
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, cmd.OutOrStdout())
		},
	}

	d := config.DefaultConfig()
	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "Optional YAML config file")
	flags.BoolVar(&showAll, "all", false, "Print every row instead of the first preview rows")
	flags.String("base-url", d.BaseURL, "Base URL of the catalog")
	flags.Int("pages", d.MaxPages, "Upper bound on discovered pages (0 = no bound)")
	flags.Duration("timeout", d.Timeout, "Per-request timeout")
	flags.String("transport", d.Transport, "HTTP transport: colly or resty")
	flags.String("output", d.OutputFile, "Output file path for csv, json, or dual formats")
	flags.String("format", d.OutputFormat, "Output format: table, csv, json, or dual")
	flags.Int("preview", d.PreviewRows, "Rows printed in the console table")
	flags.String("metrics-addr", d.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	flags.Bool("strict-discovery", d.StrictDiscovery, "Abort when the pagination indicator cannot be read")
	flags.BoolP("verbose", "v", d.Verbose, "Enable verbose logging")

	bindFlags(v, flags, map[string]string{
		"base_url":         "base-url",
		"max_pages":        "pages",
		"timeout":          "timeout",
		"transport":        "transport",
		"output_file":      "output",
		"output_format":    "format",
		"preview_rows":     "preview",
		"metrics_addr":     "metrics-addr",
		"strict_discovery": "strict-discovery",
		"verbose":          "verbose",
	})

	return cmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	slog.Info("starting scrape",
		slog.String("base_url", cfg.BaseURL),
		slog.String("transport", cfg.Transport),
		slog.Int("max_pages", cfg.MaxPages),
	)

	metrics := scraper.NewMetrics()
	fetcher, err := scraper.NewFetcher(cfg, metrics)
	if err != nil {
		slog.Error("initialising fetcher", slog.Any("error", err))
		return err
	}

	metricsServer := startMetricsServer(cfg.MetricsAddr, metrics)
	defer stopMetricsServer(metricsServer)

	catalog, report, err := scraper.Run(ctx, fetcher, cfg, metrics)
	if err != nil {
		slog.Error("scraping failed", slog.Any("error", err))
		return err
	}

	preview := pipeline.NewTableWriter(out, cfg.PreviewRows)
	if _, err := pipeline.Export(catalog, preview, cfg.BatchSize); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	if err := preview.Close(); err != nil {
		return err
	}

	var exported map[string]interface{}
	if cfg.OutputFormat != "table" {
		exported, err = exportCatalog(catalog, cfg)
		if err != nil {
			slog.Error("export failed", slog.Any("error", err))
			return err
		}
	}

	printSummary(out, catalog, report, cfg, exported)
	return nil
}

func exportCatalog(catalog *models.Catalog, cfg *config.Config) (map[string]interface{}, error) {
	writer, err := createWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("creating writer: %w", err)
	}

	metrics, err := pipeline.Export(catalog, writer, cfg.BatchSize)
	if err != nil {
		writer.Close()
		return metrics, err
	}
	if err := writer.Validate(); err != nil {
		writer.Close()
		return metrics, fmt.Errorf("output validation failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return metrics, fmt.Errorf("close writer: %w", err)
	}
	return metrics, nil
}

func createWriter(format, filename string) (pipeline.OutputWriter, error) {
	switch format {
	case "json":
		return pipeline.NewJSONWriter(filename)
	case "csv":
		return pipeline.NewCSVWriter(filename)
	case "dual":
		jsonFilename := strings.TrimSuffix(filename, ".csv") + ".jsonl"
		return pipeline.NewDualWriter(filename, jsonFilename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func startMetricsServer(addr string, metrics *scraper.Metrics) *http.Server {
	if addr == "" || metrics == nil {
		return nil
	}
	server := &http.Server{
		Addr:    addr,
		Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return server
}

func stopMetricsServer(server *http.Server) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("error", err))
	}
}

func printSummary(out io.Writer, catalog *models.Catalog, report *models.Report, cfg *config.Config, exported map[string]interface{}) {
	separator := "--------------------------------------------------"
	fmt.Fprintln(out, "\n"+separator)
	fmt.Fprintln(out, "Scrape complete")
	fmt.Fprintf(out, "  Books:         %d\n", catalog.Len())
	fmt.Fprintf(out, "  Pages:         %d of %d visited\n", report.PagesVisited, report.PageCount)
	fmt.Fprintf(out, "  Pages skipped: %v\n", report.PagesSkipped)
	fmt.Fprintf(out, "  Items skipped: %d\n", report.ItemsSkipped)
	fmt.Fprintf(out, "  Requests:      %d\n", report.RequestCount)
	if report.DiscoveryFail {
		fmt.Fprintln(out, "  Discovery:     failed, no pages scraped")
	}
	if report.Cancelled {
		fmt.Fprintln(out, "  Cancelled:     yes")
	}
	if len(report.ErrorsByType) > 0 {
		fmt.Fprintf(out, "  Error types:   %v\n", report.ErrorsByType)
	}
	if valErrors, ok := exported["validation_errors"].(map[string]int); ok && len(valErrors) > 0 {
		fmt.Fprintf(out, "  Validation:    %v\n", valErrors)
	}
	fmt.Fprintf(out, "  Duration:      %v\n", report.EndTime.Sub(report.StartTime).Round(time.Millisecond))
	if exported != nil {
		fmt.Fprintf(out, "  Output file:   %s (%s)\n", cfg.OutputFile, cfg.OutputFormat)
	}
	fmt.Fprintln(out, separator)
}

func newLogger(out io.Writer, verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if f, ok := out.(*os.File); ok && isTerminal(f) {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
