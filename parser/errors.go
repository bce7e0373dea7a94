package parser

import (
	"errors"
	"fmt"
)

// ItemErrorKind tells why a catalog entry could not be extracted.
type ItemErrorKind string

const (
	// KindMissingElement means an element or attribute was absent.
	KindMissingElement ItemErrorKind = "missing_element"
	// KindConversion means a value was present but could not be converted.
	KindConversion ItemErrorKind = "conversion"
)

// ErrMissing is wrapped by every missing element error.
var ErrMissing = errors.New("element not found")

// ItemError reports a failed field extraction for one catalog entry.
type ItemError struct {
	Kind  ItemErrorKind
	Field string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Field, e.Kind, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

func missing(field, what string) error {
	return &ItemError{Kind: KindMissingElement, Field: field, Err: fmt.Errorf("%s: %w", what, ErrMissing)}
}

func conversion(field string, err error) error {
	return &ItemError{Kind: KindConversion, Field: field, Err: err}
}
