package dom

import "strings"

// Style returns the value of an inline style property, lower-cased.
func (e Element) Style(property string) string {
	for _, decl := range parseStyle(e.AttrOr("style", "")) {
		if decl.property == strings.ToLower(property) {
			return strings.ToLower(decl.value)
		}
	}
	return ""
}

// SetStyle writes an inline style property. An empty value removes it.
func (e Element) SetStyle(property, value string) {
	if e.node == nil {
		return
	}
	property = strings.ToLower(strings.TrimSpace(property))
	value = strings.TrimSpace(value)

	decls := parseStyle(e.AttrOr("style", ""))
	out := decls[:0]
	replaced := false
	for _, decl := range decls {
		if decl.property != property {
			out = append(out, decl)
			continue
		}
		if value != "" && !replaced {
			out = append(out, styleDecl{property: property, value: value})
			replaced = true
		}
	}
	if value != "" && !replaced {
		out = append(out, styleDecl{property: property, value: value})
	}

	if len(out) == 0 {
		e.RemoveAttr("style")
		return
	}
	parts := make([]string, 0, len(out))
	for _, decl := range out {
		parts = append(parts, decl.property+": "+decl.value)
	}
	e.SetAttr("style", strings.Join(parts, "; "))
}

// Displayed reports whether the element itself is shown: its inline display is
// not "none" and it has no hidden attribute. Ancestors are not consulted.
func (e Element) Displayed() bool {
	if e.node == nil {
		return false
	}
	if e.HasAttr("hidden") {
		return false
	}
	return e.Style("display") != "none"
}

// SetDisplayed hides the element with display:none or restores its default
// display.
func (e Element) SetDisplayed(displayed bool) {
	if displayed {
		e.SetStyle("display", "")
		e.RemoveAttr("hidden")
		return
	}
	e.SetStyle("display", "none")
}

// Rendered reports whether the element and all of its ancestors are
// displayed, the closest analogue of a browser laying the element out.
func (e Element) Rendered() bool {
	if e.node == nil {
		return false
	}
	for el := e; !el.IsZero(); el = el.Parent() {
		if !el.Displayed() {
			return false
		}
	}
	return true
}

type styleDecl struct {
	property string
	value    string
}

func parseStyle(raw string) []styleDecl {
	var out []styleDecl
	for _, chunk := range strings.Split(raw, ";") {
		property, value, ok := strings.Cut(chunk, ":")
		if !ok {
			continue
		}
		property = strings.ToLower(strings.TrimSpace(property))
		value = strings.TrimSpace(value)
		if property == "" {
			continue
		}
		out = append(out, styleDecl{property: property, value: value})
	}
	return out
}
