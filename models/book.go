// Package models defines data structures for the scraper.
package models

import (
	"strconv"
	"time"
)

// PageCount is the number of catalog pages a run iterates. Zero means
// discovery failed or the catalog is empty.
type PageCount int

// Book is one catalog entry. It is a value type; copies never share state.
type Book struct {
	Title  string  `csv:"title" json:"title"`
	Price  float64 `csv:"price" json:"price"`
	Rating string  `csv:"rating" json:"rating"`
}

// FormatPrice renders the price with two decimals.
func (b Book) FormatPrice() string {
	return strconv.FormatFloat(b.Price, 'f', 2, 64)
}

// Report holds the diagnostics of a single scrape run.
type Report struct {
	StartTime     time.Time
	EndTime       time.Time
	PageCount     PageCount
	PagesVisited  int
	PagesSkipped  []int
	ItemsSkipped  int
	ErrorsByType  map[string]int
	RequestCount  int
	Cancelled     bool
	DiscoveryFail bool
}

// NewReport returns an empty report stamped with the current time.
func NewReport(pages PageCount) *Report {
	return &Report{
		StartTime:    time.Now(),
		PageCount:    pages,
		ErrorsByType: make(map[string]int),
	}
}

// ErrorCount sums every recorded error.
func (r *Report) ErrorCount() int {
	total := 0
	for _, n := range r.ErrorsByType {
		total += n
	}
	return total
}
