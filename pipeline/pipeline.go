// Package pipeline exports a finished catalog to output writers.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/erenunal-1/books.toscrape-web-scraper/models"
	"github.com/erenunal-1/books.toscrape-web-scraper/parser"
)

var (
	// ErrPipelineClosed is returned when Process is called after shutdown.
	ErrPipelineClosed = errors.New("pipeline: closed")
)

// OutputWriter defines the interface for data output.
type OutputWriter interface {
	Write(books []models.Book) error
	Close() error
	Validate() error
}

// Pipeline validates books and hands them to a writer in batches. Order is
// preserved: books reach the writer in the order they were processed.
type Pipeline struct {
	writer    OutputWriter
	batchSize int
	batch     []models.Book

	metrics metrics

	mu     sync.Mutex // guards batch/closed/err
	closed bool
	err    error
}

// NewPipeline builds a pipeline flushing every batchSize books.
func NewPipeline(writer OutputWriter, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &Pipeline{
		writer:    writer,
		batchSize: batchSize,
		batch:     make([]models.Book, 0, batchSize),
		metrics:   newMetrics(),
	}
}

// Process validates books and queues them for writing.
func (p *Pipeline) Process(books ...models.Book) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	if p.closed {
		return ErrPipelineClosed
	}

	for i := range books {
		book := books[i]
		if err := parser.ValidateBook(&book); err != nil {
			p.metrics.addValidation("invalid_record")
			slog.Debug("dropping invalid record", slog.Any("error", err))
			continue
		}
		p.batch = append(p.batch, book)
		p.metrics.incrementProcessed()
		if len(p.batch) >= p.batchSize {
			if err := p.flushLocked(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close flushes pending books and prevents more submissions. The writer
// itself stays open; its owner closes it.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return p.err
	}
	p.closed = true
	if p.err != nil {
		return p.err
	}
	return p.flushLocked()
}

// Err returns the first error encountered during processing.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

func (p *Pipeline) flushLocked() error {
	if len(p.batch) == 0 {
		return nil
	}
	if err := p.writer.Write(p.batch); err != nil {
		p.err = fmt.Errorf("write batch: %w", err)
		p.closed = true
		return p.err
	}
	p.metrics.addBatch()
	p.batch = p.batch[:0]
	return nil
}

// Export streams every book of the catalog through a fresh pipeline.
func Export(catalog *models.Catalog, writer OutputWriter, batchSize int) (map[string]interface{}, error) {
	p := NewPipeline(writer, batchSize)
	if err := p.Process(catalog.Books()...); err != nil {
		return p.GetMetrics(), err
	}
	if err := p.Close(); err != nil {
		return p.GetMetrics(), err
	}
	return p.GetMetrics(), nil
}

type metrics struct {
	mu         sync.Mutex
	processed  int64
	batches    int64
	validation map[string]int
}

func newMetrics() metrics {
	return metrics{
		validation: make(map[string]int),
	}
}

func (m *metrics) incrementProcessed() {
	m.mu.Lock()
	m.processed++
	m.mu.Unlock()
}

func (m *metrics) addBatch() {
	m.mu.Lock()
	m.batches++
	m.mu.Unlock()
}

func (m *metrics) addValidation(kind string) {
	m.mu.Lock()
	m.validation[kind]++
	m.mu.Unlock()
}

func (m *metrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	copyValidation := make(map[string]int, len(m.validation))
	for k, v := range m.validation {
		copyValidation[k] = v
	}

	return map[string]interface{}{
		"processed_books":   m.processed,
		"written_batches":   m.batches,
		"validation_errors": copyValidation,
	}
}
