package dom

import "strings"

// IsControl reports whether the element is a form control the engine reads
// values from.
func (e Element) IsControl() bool {
	switch e.Tag() {
	case "input", "select", "textarea":
		return true
	default:
		return false
	}
}

// Type returns the control type: the lower-case input type (default "text"),
// "select" or "textarea". Non-controls return "".
func (e Element) Type() string {
	switch e.Tag() {
	case "input":
		t := strings.ToLower(strings.TrimSpace(e.AttrOr("type", "")))
		if t == "" {
			return "text"
		}
		return t
	case "select", "textarea":
		return e.Tag()
	case "button":
		t := strings.ToLower(strings.TrimSpace(e.AttrOr("type", "")))
		if t == "" {
			return "submit"
		}
		return t
	default:
		return ""
	}
}

// IsRadio reports whether the element is a radio input.
func (e Element) IsRadio() bool { return e.Tag() == "input" && e.Type() == "radio" }

// IsCheckbox reports whether the element is a checkbox input.
func (e Element) IsCheckbox() bool { return e.Tag() == "input" && e.Type() == "checkbox" }

// Value returns the current control value as a browser would report it.
func (e Element) Value() string {
	switch e.Tag() {
	case "textarea":
		return e.Text()
	case "select":
		option := e.selectedOption()
		if option.IsZero() {
			return ""
		}
		return optionValue(option)
	case "input":
		if value, ok := e.Attr("value"); ok {
			return value
		}
		if e.IsRadio() || e.IsCheckbox() {
			return "on"
		}
		return ""
	default:
		return e.AttrOr("value", "")
	}
}

// SetValue writes the control value. It never dispatches events.
func (e Element) SetValue(value string) {
	switch e.Tag() {
	case "textarea":
		e.SetText(value)
	case "select":
		matched := false
		for _, option := range e.Options() {
			if !matched && optionValue(option) == value {
				option.SetAttr("selected", "")
				matched = true
				continue
			}
			option.RemoveAttr("selected")
		}
	default:
		e.SetAttr("value", value)
	}
}

// Options returns the <option> descendants of a select.
func (e Element) Options() []Element {
	if e.Tag() != "select" {
		return nil
	}
	return e.QueryAll(optionSelector)
}

func (e Element) selectedOption() Element {
	options := e.Options()
	for _, option := range options {
		if option.HasAttr("selected") {
			return option
		}
	}
	if len(options) > 0 && !e.HasAttr("multiple") {
		return options[0]
	}
	return Element{}
}

func optionValue(option Element) string {
	if value, ok := option.Attr("value"); ok {
		return value
	}
	return strings.TrimSpace(option.Text())
}

// Checked reports the checked state of a radio or checkbox.
func (e Element) Checked() bool {
	return e.HasAttr("checked")
}

// SetChecked toggles the checked state. Checking a radio unchecks the other
// radios of the same name inside the same form. It never dispatches events.
func (e Element) SetChecked(checked bool) {
	if e.node == nil {
		return
	}
	if !checked {
		e.RemoveAttr("checked")
		return
	}
	if e.IsRadio() {
		for _, other := range RadioGroup(e.FormOwner(), e.Name()) {
			if other != e {
				other.RemoveAttr("checked")
			}
		}
	}
	e.SetAttr("checked", "")
}

// Required reports whether the required attribute is present.
func (e Element) Required() bool {
	return e.HasAttr("required")
}

// SetRequired toggles the required attribute.
func (e Element) SetRequired(required bool) {
	if required {
		e.SetAttr("required", "")
		return
	}
	e.RemoveAttr("required")
}

// Disabled reports whether the disabled attribute is present.
func (e Element) Disabled() bool {
	return e.HasAttr("disabled")
}

// FormOwner returns the closest <form>, or the document root.
func (e Element) FormOwner() Element {
	if form := e.Closest(formSelector); !form.IsZero() {
		return form
	}
	if e.doc == nil {
		return Element{}
	}
	return e.doc.Root()
}

// FindControl returns the first control in scope, in document order, whose
// name or id equals key.
func FindControl(scope Element, key string) Element {
	key = strings.TrimSpace(key)
	if key == "" {
		return Element{}
	}
	var found Element
	scope.Walk(func(el Element) bool {
		if !el.IsControl() {
			return true
		}
		if el.Name() == key || el.ID() == key {
			found = el
			return false
		}
		return true
	})
	return found
}

// Controls returns every control inside scope in document order.
func Controls(scope Element) []Element {
	var out []Element
	scope.Walk(func(el Element) bool {
		if el.IsControl() {
			out = append(out, el)
		}
		return true
	})
	return out
}

// RadioGroup returns the radios named name inside scope in document order.
func RadioGroup(scope Element, name string) []Element {
	if name == "" {
		return nil
	}
	var out []Element
	scope.Walk(func(el Element) bool {
		if el.IsRadio() && el.Name() == name {
			out = append(out, el)
		}
		return true
	})
	return out
}

// CheckedRadio returns the checked radio of the named group, if any.
func CheckedRadio(scope Element, name string) Element {
	for _, radio := range RadioGroup(scope, name) {
		if radio.Checked() {
			return radio
		}
	}
	return Element{}
}

var (
	optionSelector = MustCompile("option")
	formSelector   = MustCompile("form")
)
