// Package markup adapts goquery documents to the analysis ports.
package markup

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/markuplens/markuplens/internal/port"
	"golang.org/x/net/html"
)

// Parser builds goquery-backed documents.
type Parser struct{}

// NewParser creates a parser for HTML content.
func NewParser() *Parser {
	return &Parser{}
}

// Parse implements port.DocumentParser.
func (p *Parser) Parse(content string) (port.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &document{doc: doc}, nil
}

// document wraps a goquery document behind port.Document.
type document struct {
	doc *goquery.Document
}

// HasDocumentType walks the root's children looking for a doctype node.
func (d *document) HasDocumentType() bool {
	for _, root := range d.doc.Nodes {
		for n := root.FirstChild; n != nil; n = n.NextSibling {
			if n.Type == html.DoctypeNode {
				return true
			}
		}
	}
	return false
}

// Find implements port.Document using goquery's CSS selector engine.
func (d *document) Find(selector string) []port.Node {
	sel := d.doc.Find(selector)
	nodes := make([]port.Node, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, node{sel: s})
	})
	return nodes
}

// Count implements port.Document.
func (d *document) Count(selector string) int {
	return d.doc.Find(selector).Length()
}

// node wraps a single-element goquery selection.
type node struct {
	sel *goquery.Selection
}

func (n node) Tag() string {
	if len(n.sel.Nodes) == 0 {
		return ""
	}
	return n.sel.Nodes[0].Data
}

func (n node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}
