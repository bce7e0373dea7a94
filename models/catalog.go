package models

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// TableColumns is the fixed column order of the tabular view.
var TableColumns = []string{"Title", "Price", "Rating"}

// Catalog is the ordered result of one scrape run. It is append-only while
// the run is in progress and read-only afterwards.
type Catalog struct {
	books []Book
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Append adds a fully extracted book to the end of the catalog.
func (c *Catalog) Append(b Book) {
	c.books = append(c.books, b)
}

// Books returns a copy of the collected books in extraction order.
func (c *Catalog) Books() []Book {
	if c == nil {
		return nil
	}
	out := make([]Book, len(c.books))
	copy(out, c.books)
	return out
}

// Len reports how many books were collected.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.books)
}

// Table returns the catalog as rows under TableColumns.
func (c *Catalog) Table() Table {
	t := Table{
		Columns: append([]string(nil), TableColumns...),
		Rows:    make([]TableRow, 0, c.Len()),
	}
	for _, b := range c.Books() {
		t.Rows = append(t.Rows, TableRow{Title: b.Title, Price: b.Price, Rating: b.Rating})
	}
	return t
}

// TableRow is one row of the tabular view.
type TableRow struct {
	Title  string
	Price  float64
	Rating string
}

// Table is a three column view of a catalog.
type Table struct {
	Columns []string
	Rows    []TableRow
}

// Head returns a table with at most n leading rows. A negative n keeps all rows.
func (t Table) Head(n int) Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// Writer builds a go-pretty writer holding the table contents.
func (t Table) Writer() table.Writer {
	w := table.NewWriter()
	header := make(table.Row, 0, len(t.Columns))
	for _, col := range t.Columns {
		header = append(header, col)
	}
	w.AppendHeader(header)
	for _, row := range t.Rows {
		w.AppendRow(table.Row{row.Title, Book{Price: row.Price}.FormatPrice(), row.Rating})
	}
	w.SetStyle(table.StyleRounded)
	return w
}

// String renders the table for the console.
func (t Table) String() string {
	return t.Writer().Render()
}
