package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/erenunal-1/books.toscrape-web-scraper/config"
	"github.com/go-resty/resty/v2"
	"github.com/gocolly/colly/v2"
)

const (
	ctxStart  = "start"
	ctxBody   = "body"
	ctxStatus = "status"
)

// Fetcher retrieves the raw body of a URL. Non-2xx statuses and network
// failures are returned as classified errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// NewFetcher builds the transport selected by cfg.Transport.
func NewFetcher(cfg *config.Config, metrics *Metrics) (Fetcher, error) {
	switch cfg.Transport {
	case "", "colly":
		return NewCollyFetcher(cfg, metrics)
	case "resty":
		return NewRestyFetcher(cfg, metrics), nil
	default:
		return nil, fmt.Errorf("unsupported transport: %s", cfg.Transport)
	}
}

// CollyFetcher issues blocking requests through a synchronous colly collector.
type CollyFetcher struct {
	collector *colly.Collector
	metrics   *Metrics
}

// NewCollyFetcher builds a collector restricted to the configured host.
func NewCollyFetcher(cfg *config.Config, metrics *Metrics) (*CollyFetcher, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	f := &CollyFetcher{collector: collector, metrics: metrics}
	f.configureHandlers()
	return f, nil
}

// WithTransport swaps the round tripper used by the collector.
func (f *CollyFetcher) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

func (f *CollyFetcher) configureHandlers() {
	f.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put(ctxStart, time.Now())
		f.metrics.IncRequest("started")
	})

	f.collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxBody, r.Body)
		if start, ok := r.Ctx.GetAny(ctxStart).(time.Time); ok {
			f.metrics.ObserveDuration(time.Since(start))
		}
		f.metrics.IncRequest("completed")
	})

	f.collector.OnError(func(r *colly.Response, err error) {
		if r == nil || r.Ctx == nil {
			return
		}
		r.Ctx.Put(ctxStatus, r.StatusCode)
		f.metrics.IncRequest("failed")
	})
}

// Fetch performs a single GET and returns the body.
func (f *CollyFetcher) Fetch(ctx context.Context, target string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reqCtx := colly.NewContext()
	if err := f.collector.Request(http.MethodGet, target, nil, reqCtx, nil); err != nil {
		status, _ := reqCtx.GetAny(ctxStatus).(int)
		return nil, classifyError(err, status)
	}

	body, ok := reqCtx.GetAny(ctxBody).([]byte)
	if !ok {
		return nil, fmt.Errorf("no response body for %s", target)
	}
	return body, nil
}

// RestyFetcher issues blocking requests through a resty client.
type RestyFetcher struct {
	client  *resty.Client
	metrics *Metrics
}

// NewRestyFetcher builds a resty client without retries.
func NewRestyFetcher(cfg *config.Config, metrics *Metrics) *RestyFetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return &RestyFetcher{client: client, metrics: metrics}
}

// WithTransport swaps the round tripper used by the client.
func (f *RestyFetcher) WithTransport(rt http.RoundTripper) {
	f.client.SetTransport(rt)
}

// Fetch performs a single GET and returns the body.
func (f *RestyFetcher) Fetch(ctx context.Context, target string) ([]byte, error) {
	f.metrics.IncRequest("started")
	start := time.Now()

	resp, err := f.client.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		f.metrics.IncRequest("failed")
		return nil, classifyError(err, 0)
	}
	f.metrics.ObserveDuration(time.Since(start))

	if !resp.IsSuccess() {
		f.metrics.IncRequest("failed")
		return nil, classifyError(fmt.Errorf("%s", resp.Status()), resp.StatusCode())
	}

	f.metrics.IncRequest("completed")
	return resp.Body(), nil
}
