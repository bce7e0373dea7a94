package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/erenunal-1/books.toscrape-web-scraper/config"
	"github.com/erenunal-1/books.toscrape-web-scraper/models"
	"github.com/erenunal-1/books.toscrape-web-scraper/parser"
)

// Extractor walks catalog pages 1..N in order and collects every book that
// extracts cleanly. Failed pages and failed entries are logged and skipped.
type Extractor struct {
	fetcher Fetcher
	cfg     *config.Config
	metrics *Metrics
}

// NewExtractor builds an Extractor for the configured catalog URL template.
func NewExtractor(fetcher Fetcher, cfg *config.Config, metrics *Metrics) *Extractor {
	return &Extractor{fetcher: fetcher, cfg: cfg, metrics: metrics}
}

// Scrape fetches pages sequentially. Each call owns a fresh catalog and report.
// A cancelled context stops the loop before the next page.
func (e *Extractor) Scrape(ctx context.Context, pages models.PageCount) (*models.Catalog, *models.Report) {
	if ctx == nil {
		ctx = context.Background()
	}
	catalog := models.NewCatalog()
	report := models.NewReport(pages)

	for page := 1; page <= int(pages); page++ {
		if ctx.Err() != nil {
			report.Cancelled = true
			slog.Info("scrape cancelled", slog.Int("next_page", page), slog.Int("pages", int(pages)))
			break
		}
		e.scrapePage(ctx, page, catalog, report)
	}

	report.EndTime = time.Now()
	return catalog, report
}

func (e *Extractor) scrapePage(ctx context.Context, page int, catalog *models.Catalog, report *models.Report) {
	target := e.cfg.PageURL(page)
	report.PagesVisited++
	report.RequestCount++

	body, err := e.fetcher.Fetch(ctx, target)
	if err != nil {
		e.skipPage(report, &PageError{Page: page, URL: target, Err: err})
		return
	}

	doc, err := parser.Parse(body)
	if err != nil {
		e.skipPage(report, &PageError{Page: page, URL: target, Err: err})
		return
	}

	items := parser.Items(doc)
	extracted := 0
	for idx, item := range items {
		book, err := parser.ExtractBook(item)
		if err != nil {
			e.skipItem(report, &ItemError{Page: page, Index: idx, Err: err})
			continue
		}
		catalog.Append(book)
		extracted++
		e.metrics.IncItems()
	}

	slog.Debug("page scraped",
		slog.Int("page", page),
		slog.Int("items", len(items)),
		slog.Int("extracted", extracted),
		slog.String("url", target),
	)
}

func (e *Extractor) skipPage(report *models.Report, err *PageError) {
	label := errorTypeLabel(err)
	report.PagesSkipped = append(report.PagesSkipped, err.Page)
	report.ErrorsByType[label]++
	e.metrics.IncPagesSkipped()
	e.metrics.IncError(label)
	slog.Error("error fetching page",
		slog.Int("page", err.Page),
		slog.String("url", err.URL),
		slog.String("category", label),
		slog.Any("error", err.Err),
	)
}

func (e *Extractor) skipItem(report *models.Report, err *ItemError) {
	label := errorTypeLabel(err)
	report.ItemsSkipped++
	report.ErrorsByType[label]++
	e.metrics.IncItemsSkipped()
	e.metrics.IncError(label)
	slog.Warn("error parsing book information",
		slog.Int("page", err.Page),
		slog.Int("item", err.Index),
		slog.String("category", label),
		slog.Any("error", err.Err),
	)
}

// Run discovers the page count and then scrapes every page. The returned
// error is non-nil only for a strict discovery failure.
func Run(ctx context.Context, fetcher Fetcher, cfg *config.Config, metrics *Metrics) (*models.Catalog, *models.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	discoverer := NewDiscoverer(fetcher, cfg, metrics)
	start := time.Now()

	pages, err := discoverer.Discover(ctx)
	if err != nil {
		report := models.NewReport(0)
		report.StartTime = start
		report.EndTime = time.Now()
		report.RequestCount = 1
		report.DiscoveryFail = true
		report.ErrorsByType[errorTypeLabel(err)]++
		return models.NewCatalog(), report, err
	}

	catalog, report := NewExtractor(fetcher, cfg, metrics).Scrape(ctx, pages)
	report.StartTime = start
	report.RequestCount++
	if derr := discoverer.Err(); derr != nil {
		report.DiscoveryFail = true
		report.ErrorsByType[errorTypeLabel(derr)]++
	}
	return catalog, report, nil
}
