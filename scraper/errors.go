package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/erenunal-1/books.toscrape-web-scraper/parser"
)

// ErrTimeout indicates a timeout while issuing a request.
type ErrTimeout struct {
	Err error
}

func (e ErrTimeout) Error() string {
	return fmt.Errorf("timeout: %w", e.Err).Error()
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// ErrConnection indicates a network connectivity failure.
type ErrConnection struct {
	Err error
}

func (e ErrConnection) Error() string {
	return fmt.Errorf("connection: %w", e.Err).Error()
}

func (e ErrConnection) Unwrap() error {
	return e.Err
}

// ErrStatus indicates a non-2xx response.
type ErrStatus struct {
	StatusCode int
	Err        error
}

func (e ErrStatus) Error() string {
	return fmt.Errorf("status %d: %w", e.StatusCode, e.Err).Error()
}

func (e ErrStatus) Unwrap() error {
	return e.Err
}

// ErrForbidden indicates a forbidden response (HTTP 403).
type ErrForbidden struct {
	Err error
}

func (e ErrForbidden) Error() string {
	return fmt.Errorf("forbidden: %w", e.Err).Error()
}

func (e ErrForbidden) Unwrap() error {
	return e.Err
}

// ErrNotFound indicates a missing resource (HTTP 404).
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return fmt.Errorf("not_found: %w", e.Err).Error()
}

func (e ErrNotFound) Unwrap() error {
	return e.Err
}

// ErrRateLimited indicates the target rate-limited the request.
type ErrRateLimited struct {
	Err error
}

func (e ErrRateLimited) Error() string {
	return fmt.Errorf("rate_limited: %w", e.Err).Error()
}

func (e ErrRateLimited) Unwrap() error {
	return e.Err
}

// DiscoveryErrorKind separates transport from markup failures during
// page count discovery.
type DiscoveryErrorKind string

const (
	DiscoveryTransport DiscoveryErrorKind = "transport"
	DiscoveryParse     DiscoveryErrorKind = "parse"
)

// DiscoveryError reports why the page count could not be determined.
type DiscoveryError struct {
	Kind DiscoveryErrorKind
	URL  string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover page count (%s) %s: %v", e.Kind, e.URL, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// PageError reports a catalog page that was skipped.
type PageError struct {
	Page int
	URL  string
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d (%s): %v", e.Page, e.URL, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// ItemError reports a catalog entry that was skipped.
type ItemError struct {
	Page  int
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("page %d item %d: %v", e.Page, e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var itemErr *parser.ItemError
	if errors.As(err, &itemErr) {
		return "item_" + string(itemErr.Kind)
	}
	var discovery *DiscoveryError
	if errors.As(err, &discovery) && discovery.Kind == DiscoveryParse {
		return "discovery_parse"
	}
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return "timeout"
	}
	var conn ErrConnection
	if errors.As(err, &conn) {
		return "connection"
	}
	var forbidden ErrForbidden
	if errors.As(err, &forbidden) {
		return "forbidden"
	}
	var notFound ErrNotFound
	if errors.As(err, &notFound) {
		return "not_found"
	}
	var rateLimited ErrRateLimited
	if errors.As(err, &rateLimited) {
		return "rate_limited"
	}
	var status ErrStatus
	if errors.As(err, &status) {
		return "http_status"
	}
	var page *PageError
	if errors.As(err, &page) {
		return "page"
	}
	return "other"
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 && (statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices) {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: ErrStatus{StatusCode: statusCode, Err: wrapped}}
		case http.StatusNotFound:
			return ErrNotFound{Err: ErrStatus{StatusCode: statusCode, Err: wrapped}}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: ErrStatus{StatusCode: statusCode, Err: wrapped}}
		}
		return ErrStatus{StatusCode: statusCode, Err: wrapped}
	}

	return err
}
