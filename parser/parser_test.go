package parser

import (
	"errors"
	"testing"

	"github.com/erenunal-1/books.toscrape-web-scraper/models"
)

func TestValidateBook(t *testing.T) {
	tests := []struct {
		name    string
		book    *models.Book
		wantErr bool
	}{
		{
			name:    "valid book",
			book:    &models.Book{Title: "Test Book", Price: 10, Rating: "Five"},
			wantErr: false,
		},
		{
			name:    "missing title",
			book:    &models.Book{Title: "", Price: 10, Rating: "Five"},
			wantErr: true,
		},
		{
			name:    "negative price",
			book:    &models.Book{Title: "Test Book", Price: -1, Rating: "Five"},
			wantErr: true,
		},
		{
			name:    "missing rating",
			book:    &models.Book{Title: "Test Book", Price: 10, Rating: " "},
			wantErr: true,
		},
		{
			name:    "nil",
			book:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBook(tt.book)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBook() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{name: "pound", input: "£51.77", expected: 51.77},
		{name: "dollar integer", input: "$12", expected: 12.0},
		{name: "with whitespace", input: "  £10.50  ", expected: 10.50},
		{name: "space after symbol", input: "£ 99.99", expected: 99.99},
		{name: "zero", input: "£0.00", expected: 0},
		{name: "no symbol loses first digit", input: "25.99", expected: 5.99},
		{name: "double symbol", input: "Â£51.77", wantErr: true},
		{name: "not a number", input: "£abc", wantErr: true},
		{name: "symbol only", input: "£", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "negative", input: "£-3.00", wantErr: true},
		{name: "infinity", input: "£Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrice(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseTotalPages(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		wantErr  bool
	}{
		{name: "standard", input: "Page 1 of 50", expected: 50},
		{name: "padded", input: "\n   Page 1 of 2\n  ", expected: 2},
		{name: "bare number", input: "7", expected: 7},
		{name: "zero pages", input: "Page 0 of 0", expected: 0},
		{name: "non numeric tail", input: "Page 1 of many", wantErr: true},
		{name: "empty", input: "   ", wantErr: true},
		{name: "negative", input: "Page 1 of -4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTotalPages(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTotalPages(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseTotalPages(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	doc, err := Parse([]byte(`<ul class="pager"><li class="current">Page 1 of 50</li><li class="next"><a href="page-2.html">next</a></li></ul>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := TotalPages(doc)
	if err != nil || got != 50 {
		t.Fatalf("TotalPages = %d, %v; want 50", got, err)
	}

	empty, err := Parse([]byte(`<html><body><p>no pager</p></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := TotalPages(empty); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestExtractBook(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		want     models.Book
		wantKind ItemErrorKind
		field    string
	}{
		{
			name: "complete entry",
			html: `<article class="product_pod"><img alt="A Light in the Attic" src="x.jpg"><p class="star-rating Three"></p><div><p class="price_color">£51.77</p></div></article>`,
			want: models.Book{Title: "A Light in the Attic", Price: 51.77, Rating: "Three"},
		},
		{
			name:     "no image",
			html:     `<article class="product_pod"><p class="star-rating Three"></p><p class="price_color">£51.77</p></article>`,
			wantKind: KindMissingElement,
			field:    "title",
		},
		{
			name:     "image without alt",
			html:     `<article class="product_pod"><img src="x.jpg"><p class="star-rating Three"></p><p class="price_color">£51.77</p></article>`,
			wantKind: KindMissingElement,
			field:    "title",
		},
		{
			name:     "rating without level",
			html:     `<article class="product_pod"><img alt="Book"><p class="star-rating"></p><p class="price_color">£51.77</p></article>`,
			wantKind: KindMissingElement,
			field:    "rating",
		},
		{
			name:     "no rating element",
			html:     `<article class="product_pod"><img alt="Book"><p class="price_color">£51.77</p></article>`,
			wantKind: KindMissingElement,
			field:    "rating",
		},
		{
			name:     "no price element",
			html:     `<article class="product_pod"><img alt="Book"><p class="star-rating One"></p></article>`,
			wantKind: KindMissingElement,
			field:    "price",
		},
		{
			name:     "non numeric price",
			html:     `<article class="product_pod"><img alt="Book"><p class="star-rating One"></p><p class="price_color">£free</p></article>`,
			wantKind: KindConversion,
			field:    "price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte("<html><body>" + tt.html + "</body></html>"))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			items := Items(doc)
			if len(items) != 1 {
				t.Fatalf("items = %d, want 1", len(items))
			}

			got, err := ExtractBook(items[0])
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("ExtractBook error = %v", err)
				}
				if got != tt.want {
					t.Fatalf("ExtractBook = %+v, want %+v", got, tt.want)
				}
				return
			}

			var itemErr *ItemError
			if !errors.As(err, &itemErr) {
				t.Fatalf("expected *ItemError, got %v", err)
			}
			if itemErr.Kind != tt.wantKind || itemErr.Field != tt.field {
				t.Fatalf("error = %s/%s, want %s/%s", itemErr.Kind, itemErr.Field, tt.wantKind, tt.field)
			}
			if got != (models.Book{}) {
				t.Fatalf("partial book returned: %+v", got)
			}
		})
	}
}

func TestItemsDocumentOrder(t *testing.T) {
	doc, err := Parse([]byte(`<section>
<article class="product_pod"><img alt="A"></article>
<div class="product_pod">not an article</div>
<article class="other"><img alt="skip"></article>
<article class="product_pod"><img alt="B"></article>
</section>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	items := Items(doc)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	for i, want := range []string{"A", "B"} {
		img, ok := items[i].Find("img", "")
		if !ok {
			t.Fatalf("item %d has no img", i)
		}
		if alt, _ := img.Attr("alt"); alt != want {
			t.Fatalf("item %d alt = %q, want %q", i, alt, want)
		}
	}
}

func TestRatingToNumeric(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{input: "Zero", expected: 0},
		{input: "One", expected: 1},
		{input: "Two", expected: 2},
		{input: "Three", expected: 3},
		{input: "Four", expected: 4},
		{input: "Five", expected: 5},
		{input: "Invalid", expected: 0},
		{input: "", expected: 0},
		{input: "three", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := RatingToNumeric(tt.input); result != tt.expected {
				t.Errorf("RatingToNumeric(%q) = %d, want %d", tt.input, result, tt.expected)
			}
		})
	}
}
