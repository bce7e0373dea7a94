package scraper

import (
	"context"
	"log/slog"
	"sync"

	"github.com/erenunal-1/books.toscrape-web-scraper/config"
	"github.com/erenunal-1/books.toscrape-web-scraper/models"
	"github.com/erenunal-1/books.toscrape-web-scraper/parser"
)

// Discoverer reads the total page count from the reference page.
type Discoverer struct {
	fetcher Fetcher
	cfg     *config.Config
	metrics *Metrics

	mu      sync.Mutex
	lastErr error
}

// NewDiscoverer builds a Discoverer for the configured base URL.
func NewDiscoverer(fetcher Fetcher, cfg *config.Config, metrics *Metrics) *Discoverer {
	return &Discoverer{fetcher: fetcher, cfg: cfg, metrics: metrics}
}

// Discover fetches the reference page and returns N from its "Page X of N"
// indicator. Failures are logged and yield zero pages. Only a markup failure
// under StrictDiscovery is returned as an error.
func (d *Discoverer) Discover(ctx context.Context) (models.PageCount, error) {
	d.setErr(nil)
	target := d.cfg.BaseURL

	body, err := d.fetcher.Fetch(ctx, target)
	if err != nil {
		d.fail(&DiscoveryError{Kind: DiscoveryTransport, URL: target, Err: err})
		return 0, nil
	}

	total, err := d.parse(body)
	if err != nil {
		derr := &DiscoveryError{Kind: DiscoveryParse, URL: target, Err: err}
		d.fail(derr)
		if d.cfg.StrictDiscovery {
			return 0, derr
		}
		return 0, nil
	}

	if d.cfg.MaxPages > 0 && total > d.cfg.MaxPages {
		slog.Info("capping discovered pages",
			slog.Int("discovered", total),
			slog.Int("max_pages", d.cfg.MaxPages),
		)
		total = d.cfg.MaxPages
	}

	d.metrics.SetDiscoveredPages(total)
	slog.Debug("discovered page count", slog.Int("pages", total), slog.String("url", target))
	return models.PageCount(total), nil
}

// Err returns the failure recorded by the last Discover call, if any.
func (d *Discoverer) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

func (d *Discoverer) parse(body []byte) (int, error) {
	doc, err := parser.Parse(body)
	if err != nil {
		return 0, err
	}
	return parser.TotalPages(doc)
}

func (d *Discoverer) fail(err *DiscoveryError) {
	d.setErr(err)
	label := errorTypeLabel(err)
	d.metrics.IncError(label)
	d.metrics.SetDiscoveredPages(0)
	slog.Error("error fetching total pages",
		slog.String("url", err.URL),
		slog.String("kind", string(err.Kind)),
		slog.String("category", label),
		slog.Any("error", err.Err),
	)
}

func (d *Discoverer) setErr(err error) {
	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()
}
