package pipeline

import (
	"errors"
	"fmt"

	"github.com/erenunal-1/books.toscrape-web-scraper/models"
)

// DualWriter fans every batch out to a CSV file and a JSONL file.
type DualWriter struct {
	targets []namedWriter
}

type namedWriter struct {
	name string
	OutputWriter
}

// NewDualWriter opens both files; if the second cannot be created the first
// is closed again.
func NewDualWriter(csvFilename, jsonFilename string) (*DualWriter, error) {
	csvWriter, err := NewCSVWriter(csvFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV writer: %w", err)
	}

	jsonWriter, err := NewJSONWriter(jsonFilename)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create JSON writer: %w", err), csvWriter.Close())
	}

	return &DualWriter{targets: []namedWriter{
		{name: "CSV", OutputWriter: csvWriter},
		{name: "JSON", OutputWriter: jsonWriter},
	}}, nil
}

// Write stops at the first target that fails so both files stay aligned.
func (dw *DualWriter) Write(books []models.Book) error {
	for _, target := range dw.targets {
		if err := target.Write(books); err != nil {
			return fmt.Errorf("%s write failed: %w", target.name, err)
		}
	}
	return nil
}

// Close closes every target and joins their errors.
func (dw *DualWriter) Close() error {
	return dw.each("close", OutputWriter.Close)
}

// Validate checks every target and joins their errors.
func (dw *DualWriter) Validate() error {
	return dw.each("validation", OutputWriter.Validate)
}

func (dw *DualWriter) each(op string, fn func(OutputWriter) error) error {
	var errs []error
	for _, target := range dw.targets {
		if err := fn(target.OutputWriter); err != nil {
			errs = append(errs, fmt.Errorf("%s %s failed: %w", target.name, op, err))
		}
	}
	return errors.Join(errs...)
}
