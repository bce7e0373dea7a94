package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is a navigable element of a parsed page. Every lookup reports
// whether the element or value was present, so callers can tell an absent
// element apart from a present but malformed one.
type Node struct {
	sel *goquery.Selection
}

// Document is a parsed page.
type Document struct {
	Node
}

// Parse builds a navigable tree from raw HTML.
func Parse(body []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{Node: Node{sel: doc.Selection}}, nil
}

// Find returns the first descendant matching tag and class. An empty class
// matches any element with the tag.
func (n Node) Find(tag, class string) (Node, bool) {
	matches := n.match(tag, class)
	if matches == nil || matches.Length() == 0 {
		return Node{}, false
	}
	return Node{sel: matches.First()}, true
}

// FindAll returns every descendant matching tag and class in document order.
func (n Node) FindAll(tag, class string) []Node {
	matches := n.match(tag, class)
	if matches == nil {
		return nil
	}
	nodes := make([]Node, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, Node{sel: s})
	})
	return nodes
}

// Attr reads an attribute value.
func (n Node) Attr(name string) (string, bool) {
	if n.sel == nil {
		return "", false
	}
	return n.sel.Attr(name)
}

// Text returns the trimmed text content. It reports false when the element
// carries no text at all.
func (n Node) Text() (string, bool) {
	if n.sel == nil {
		return "", false
	}
	text := strings.TrimSpace(n.sel.Text())
	return text, text != ""
}

// Classes returns the class token list in attribute order.
func (n Node) Classes() ([]string, bool) {
	raw, ok := n.Attr("class")
	if !ok {
		return nil, false
	}
	return strings.Fields(raw), true
}

func (n Node) match(tag, class string) *goquery.Selection {
	if n.sel == nil {
		return nil
	}
	found := n.sel.Find(tag)
	if class == "" {
		return found
	}
	return found.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.HasClass(class)
	})
}
