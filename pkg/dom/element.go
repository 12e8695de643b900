package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Element is a handle to an element node of a Document. Handles are small
// values and compare equal when they point at the same node, so they can be
// used as map keys. The zero Element is "no element"; every method tolerates it.
type Element struct {
	doc  *Document
	node *html.Node
}

// IsZero reports whether the handle points at nothing.
func (e Element) IsZero() bool {
	return e.node == nil
}

// Document returns the owning document.
func (e Element) Document() *Document {
	return e.doc
}

// Tag returns the lower-case tag name.
func (e Element) Tag() string {
	if e.node == nil || e.node.Type != html.ElementNode {
		return ""
	}
	return e.node.Data
}

// Attr returns the attribute value and whether it is present.
func (e Element) Attr(name string) (string, bool) {
	if e.node == nil {
		return "", false
	}
	key := strings.ToLower(name)
	for _, attr := range e.node.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or fallback when absent.
func (e Element) AttrOr(name, fallback string) string {
	if value, ok := e.Attr(name); ok {
		return value
	}
	return fallback
}

// HasAttr reports whether the attribute is present.
func (e Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr adds or replaces an attribute.
func (e Element) SetAttr(name, value string) {
	if e.node == nil {
		return
	}
	key := strings.ToLower(name)
	for i, attr := range e.node.Attr {
		if attr.Namespace == "" && attr.Key == key {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr deletes an attribute if present.
func (e Element) RemoveAttr(name string) {
	if e.node == nil {
		return
	}
	key := strings.ToLower(name)
	out := e.node.Attr[:0]
	for _, attr := range e.node.Attr {
		if attr.Namespace == "" && attr.Key == key {
			continue
		}
		out = append(out, attr)
	}
	e.node.Attr = out
}

// ID returns the id attribute.
func (e Element) ID() string {
	return e.AttrOr("id", "")
}

// Name returns the name attribute.
func (e Element) Name() string {
	return e.AttrOr("name", "")
}

// Key identifies a control: its name, else its id.
func (e Element) Key() string {
	if name := strings.TrimSpace(e.Name()); name != "" {
		return name
	}
	return strings.TrimSpace(e.ID())
}

// Classes returns the class list.
func (e Element) Classes() []string {
	return strings.Fields(e.AttrOr("class", ""))
}

// HasClass reports whether class is in the class list.
func (e Element) HasClass(class string) bool {
	for _, c := range e.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends class when missing.
func (e Element) AddClass(class string) {
	if e.node == nil || class == "" || e.HasClass(class) {
		return
	}
	e.SetAttr("class", strings.TrimSpace(strings.Join(append(e.Classes(), class), " ")))
}

// RemoveClass drops class from the class list.
func (e Element) RemoveClass(class string) {
	if !e.HasClass(class) {
		return
	}
	classes := e.Classes()
	out := classes[:0]
	for _, c := range classes {
		if c != class {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(out, " "))
}

// Parent returns the parent element (never the document node).
func (e Element) Parent() Element {
	if e.node == nil {
		return Element{}
	}
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return Element{}
	}
	return e.doc.wrap(p)
}

// Children returns the element children in order.
func (e Element) Children() []Element {
	if e.node == nil {
		return nil
	}
	var out []Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// NextElementSibling returns the next sibling that is an element.
func (e Element) NextElementSibling() Element {
	if e.node == nil {
		return Element{}
	}
	for s := e.node.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return e.doc.wrap(s)
		}
	}
	return Element{}
}

// Matches reports whether the element matches sel.
func (e Element) Matches(sel Selector) bool {
	if e.node == nil || sel.IsZero() || e.node.Type != html.ElementNode {
		return false
	}
	return sel.sel.Match(e.node)
}

// Closest returns the nearest inclusive ancestor matching sel.
func (e Element) Closest(sel Selector) Element {
	if sel.IsZero() {
		return Element{}
	}
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && sel.sel.Match(n) {
			return e.doc.wrap(n)
		}
	}
	return Element{}
}

// QueryAll returns the descendants matching sel in document order. The
// element itself is never included.
func (e Element) QueryAll(sel Selector) []Element {
	if e.node == nil || sel.IsZero() {
		return nil
	}
	var out []Element
	for _, n := range sel.sel.MatchAll(e.node) {
		if n == e.node {
			continue
		}
		out = append(out, e.doc.wrap(n))
	}
	return out
}

// Query returns the first descendant matching sel.
func (e Element) Query(sel Selector) Element {
	matches := e.QueryAll(sel)
	if len(matches) == 0 {
		return Element{}
	}
	return matches[0]
}

// Contains reports whether other is e or one of its descendants.
func (e Element) Contains(other Element) bool {
	if e.node == nil || other.node == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// Walk visits every descendant element in document order. Returning false
// from fn stops the walk.
func (e Element) Walk(fn func(Element) bool) {
	if e.node == nil {
		return
	}
	var visit func(*html.Node) bool
	visit = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				if !fn(e.doc.wrap(c)) {
					return false
				}
			}
			if !visit(c) {
				return false
			}
		}
		return true
	}
	visit(e.node)
}

// Text returns the concatenated text content.
func (e Element) Text() string {
	if e.node == nil {
		return ""
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(e.node)
	return b.String()
}

// SetText replaces the children with a single text node.
func (e Element) SetText(text string) {
	if e.node == nil {
		return
	}
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// Focus marks the element as the focused element of its document.
func (e Element) Focus() {
	if e.node == nil || e.doc == nil {
		return
	}
	e.doc.focused = e.node
	e.Dispatch(EventFocus)
}

// Focused reports whether the element currently has focus.
func (e Element) Focused() bool {
	return e.node != nil && e.doc != nil && e.doc.focused == e.node
}

func (e Element) String() string {
	if e.node == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(e.Tag())
	if id := e.ID(); id != "" {
		b.WriteString(" id=\"" + id + "\"")
	}
	if name := e.Name(); name != "" {
		b.WriteString(" name=\"" + name + "\"")
	}
	b.WriteString(">")
	return b.String()
}
