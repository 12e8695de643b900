package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document is the host tree the rules engine reads and mutates. It wraps a
// parsed HTML node tree and keeps the engine-side state a browser would own:
// event listeners and the focused element.
//
// A Document is not safe for concurrent use. Every operation is expected to
// run on the single logical thread that dispatches events.
type Document struct {
	root      *html.Node
	listeners map[*html.Node]map[EventType][]registration
	nextID    uint64
	focused   *html.Node
}

// Parse reads an HTML document (or fragment) into a Document.
func Parse(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, errors.New("dom: reader is nil")
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse html: %w", err)
	}
	return newDocument(root), nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// MustParseString panics on parse failure. Intended for tests and fixtures.
func MustParseString(markup string) *Document {
	doc, err := ParseString(markup)
	if err != nil {
		panic(err)
	}
	return doc
}

func newDocument(root *html.Node) *Document {
	return &Document{
		root:      root,
		listeners: make(map[*html.Node]map[EventType][]registration),
	}
}

// Root returns the document node wrapped as an Element.
func (d *Document) Root() Element {
	if d == nil {
		return Element{}
	}
	return Element{doc: d, node: d.root}
}

// Body returns the <body> element, or the root when the tree has none.
func (d *Document) Body() Element {
	root := d.Root()
	if body := root.Query(bodySelector); !body.IsZero() {
		return body
	}
	return root
}

// QueryAll runs sel against the whole document.
func (d *Document) QueryAll(sel Selector) []Element {
	return d.Root().QueryAll(sel)
}

// Query returns the first match of sel in the document.
func (d *Document) Query(sel Selector) Element {
	return d.Root().Query(sel)
}

// Focused returns the element that last received focus.
func (d *Document) Focused() Element {
	if d == nil || d.focused == nil {
		return Element{}
	}
	return Element{doc: d, node: d.focused}
}

// Render writes the current state of the tree as HTML.
func (d *Document) Render(w io.Writer) error {
	if d == nil || d.root == nil {
		return errors.New("dom: document is empty")
	}
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("dom: render html: %w", err)
	}
	return nil
}

// String renders the document, returning an empty string on failure.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

func (d *Document) wrap(n *html.Node) Element {
	if n == nil {
		return Element{}
	}
	return Element{doc: d, node: n}
}

var bodySelector = MustCompile("body")
