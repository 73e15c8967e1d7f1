package port

// DocumentParser turns raw markup into a queryable Document.
type DocumentParser interface {
	Parse(content string) (Document, error)
}

// Document is a parsed markup tree. Selectors accept plain tag names or
// CSS-style paths such as `head meta[charset]`.
type Document interface {
	// HasDocumentType reports whether the tree retained a doctype node.
	HasDocumentType() bool

	// Find returns every node matching the selector, in document order.
	Find(selector string) []Node

	// Count returns the number of nodes matching the selector.
	Count(selector string) int
}

// Node is a single element inside a parsed Document.
type Node interface {
	// Tag returns the lowercase element name.
	Tag() string

	// Attr returns an attribute value and whether the attribute exists.
	Attr(name string) (string, bool)
}
