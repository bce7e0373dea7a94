package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/erenunal-1/books.toscrape-web-scraper/models"
)

// Markup of the catalog pages.
const (
	ItemTag          = "article"
	ItemClass        = "product_pod"
	PaginationTag    = "li"
	PaginationClass  = "current"
	ratingClass      = "star-rating"
	priceClass       = "price_color"
	titleImageTag    = "img"
	titleImageAttr   = "alt"
	ratingPriceTag   = "p"
	ratingTokenIndex = 1
)

// Items returns the catalog entry containers of a page in document order.
func Items(doc *Document) []Node {
	return doc.FindAll(ItemTag, ItemClass)
}

// ExtractBook reads title, rating and price from one catalog entry. The
// book is returned only when all three fields were extracted.
func ExtractBook(item Node) (models.Book, error) {
	img, ok := item.Find(titleImageTag, "")
	if !ok {
		return models.Book{}, missing("title", "img")
	}
	title, ok := img.Attr(titleImageAttr)
	if !ok || strings.TrimSpace(title) == "" {
		return models.Book{}, missing("title", "img alt attribute")
	}

	ratingNode, ok := item.Find(ratingPriceTag, ratingClass)
	if !ok {
		return models.Book{}, missing("rating", "p.star-rating")
	}
	classes, ok := ratingNode.Classes()
	if !ok || len(classes) <= ratingTokenIndex {
		return models.Book{}, missing("rating", "rating class token")
	}

	priceNode, ok := item.Find(ratingPriceTag, priceClass)
	if !ok {
		return models.Book{}, missing("price", "p.price_color")
	}
	priceText, ok := priceNode.Text()
	if !ok {
		return models.Book{}, missing("price", "price text")
	}
	price, err := ParsePrice(priceText)
	if err != nil {
		return models.Book{}, conversion("price", err)
	}

	return models.Book{
		Title:  title,
		Price:  price,
		Rating: classes[ratingTokenIndex],
	}, nil
}

// ParsePrice strips the single leading currency symbol and parses the rest.
func ParsePrice(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("empty price")
	}
	_, size := utf8.DecodeRuneInString(text)
	value, err := strconv.ParseFloat(strings.TrimSpace(text[size:]), 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", text, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, fmt.Errorf("price %q out of range", text)
	}
	return value, nil
}

// ParseTotalPages reads N from a "Page X of N" indicator.
func ParseTotalPages(text string) (int, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty pagination text")
	}
	total, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, fmt.Errorf("pagination text %q: %w", text, err)
	}
	if total < 0 {
		return 0, fmt.Errorf("negative page total in %q", text)
	}
	return total, nil
}

// TotalPages locates the pagination indicator of a page and reads N from it.
func TotalPages(doc *Document) (int, error) {
	current, ok := doc.Find(PaginationTag, PaginationClass)
	if !ok {
		return 0, fmt.Errorf("pagination indicator li.current: %w", ErrMissing)
	}
	text, ok := current.Text()
	if !ok {
		return 0, fmt.Errorf("pagination indicator text: %w", ErrMissing)
	}
	return ParseTotalPages(text)
}

// ValidateBook ensures a book carries every required field.
func ValidateBook(b *models.Book) error {
	if b == nil {
		return fmt.Errorf("book is nil")
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("book missing title")
	}
	if b.Price < 0 || math.IsNaN(b.Price) {
		return fmt.Errorf("book has invalid price for %s", b.Title)
	}
	if strings.TrimSpace(b.Rating) == "" {
		return fmt.Errorf("book missing rating for %s", b.Title)
	}
	return nil
}

// RatingToNumeric converts the textual rating to a numeric scale.
func RatingToNumeric(rating string) int {
	switch strings.TrimSpace(rating) {
	case "Zero":
		return 0
	case "One":
		return 1
	case "Two":
		return 2
	case "Three":
		return 3
	case "Four":
		return 4
	case "Five":
		return 5
	default:
		return 0
	}
}
