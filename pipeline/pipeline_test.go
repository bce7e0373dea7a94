package pipeline

import (
	"errors"
	"reflect"
	"strconv"
	"sync"
	"testing"

	"github.com/erenunal-1/books.toscrape-web-scraper/models"
)

type mockWriter struct {
	mu          sync.Mutex
	batches     [][]models.Book
	writeErr    error
	validateErr error
}

func (mw *mockWriter) Write(books []models.Book) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	if mw.writeErr != nil {
		return mw.writeErr
	}
	copyBatch := make([]models.Book, len(books))
	copy(copyBatch, books)
	mw.batches = append(mw.batches, copyBatch)
	return nil
}

func (mw *mockWriter) Close() error {
	return nil
}

func (mw *mockWriter) Validate() error {
	return mw.validateErr
}

func (mw *mockWriter) all() []models.Book {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	var out []models.Book
	for _, batch := range mw.batches {
		out = append(out, batch...)
	}
	return out
}

func (mw *mockWriter) batchSizes() []int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	sizes := make([]int, 0, len(mw.batches))
	for _, batch := range mw.batches {
		sizes = append(sizes, len(batch))
	}
	return sizes
}

func TestPipelineProcessValidation(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer, 64)

	valid := models.Book{Title: "Clean Architecture", Price: 10, Rating: "Two"}
	invalid := models.Book{Title: "", Price: 12, Rating: "Three"}

	if err := p.Process(valid, invalid); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := writer.all(); len(got) != 1 || got[0] != valid {
		t.Fatalf("written = %+v, want [%+v]", got, valid)
	}

	metrics := p.GetMetrics()
	validation, ok := metrics["validation_errors"].(map[string]int)
	if !ok {
		t.Fatalf("expected validation errors map")
	}
	if validation["invalid_record"] != 1 {
		t.Fatalf("expected one invalid_record validation error, got %v", validation)
	}
}

func TestPipelineKeepsDuplicatesAndOrder(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer, 2)

	books := []models.Book{
		{Title: "A", Price: 1, Rating: "One"},
		{Title: "B", Price: 2, Rating: "Two"},
		{Title: "A", Price: 1, Rating: "One"},
	}
	if err := p.Process(books...); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := writer.all(); !reflect.DeepEqual(got, books) {
		t.Fatalf("written = %+v, want %+v", got, books)
	}
}

func TestPipelineBatchFlushThreshold(t *testing.T) {
	writer := &mockWriter{}
	p := NewPipeline(writer, 64)

	for i := 0; i < 65; i++ {
		book := models.Book{Title: "Book " + strconv.Itoa(i), Price: 12, Rating: "Three"}
		if err := p.Process(book); err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	sizes := writer.batchSizes()
	if !reflect.DeepEqual(sizes, []int{64, 1}) {
		t.Fatalf("batch sizes = %v, want [64 1]", sizes)
	}
	if got := p.GetMetrics()["written_batches"].(int64); got != 2 {
		t.Fatalf("written batches = %d, want 2", got)
	}
}

func TestPipelineProcessAfterClose(t *testing.T) {
	p := NewPipeline(&mockWriter{}, 1)
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Process(models.Book{Title: "Late", Price: 1, Rating: "One"}); !errors.Is(err, ErrPipelineClosed) {
		t.Fatalf("expected ErrPipelineClosed, got %v", err)
	}
}

func TestPipelineWriteErrorStopsProcessing(t *testing.T) {
	writeErr := errors.New("disk full")
	p := NewPipeline(&mockWriter{writeErr: writeErr}, 1)

	if err := p.Process(models.Book{Title: "A", Price: 1, Rating: "One"}); !errors.Is(err, writeErr) {
		t.Fatalf("expected write error, got %v", err)
	}
	if err := p.Process(models.Book{Title: "B", Price: 1, Rating: "One"}); !errors.Is(err, writeErr) {
		t.Fatalf("expected sticky write error, got %v", err)
	}
	if err := p.Close(); !errors.Is(err, writeErr) {
		t.Fatalf("expected write error on close, got %v", err)
	}
}

func TestExportCatalog(t *testing.T) {
	catalog := models.NewCatalog()
	catalog.Append(models.Book{Title: "A", Price: 1, Rating: "One"})
	catalog.Append(models.Book{Title: "B", Price: 2, Rating: "Two"})
	writer := &mockWriter{}

	metrics, err := Export(catalog, writer, 10)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !reflect.DeepEqual(writer.all(), catalog.Books()) {
		t.Fatalf("written = %+v, want %+v", writer.all(), catalog.Books())
	}
	if metrics["processed_books"].(int64) != 2 {
		t.Fatalf("processed = %v, want 2", metrics["processed_books"])
	}
}
