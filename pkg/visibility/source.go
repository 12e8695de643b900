package visibility

import (
	"github.com/goliatone/go-formrules/pkg/condition"
	"github.com/goliatone/go-formrules/pkg/dom"
)

// ScopeSource resolves condition triggers against the controls inside scope.
func ScopeSource(scope dom.Element) condition.Source {
	return condition.SourceFunc(func(field string) (string, bool) {
		el := dom.FindControl(scope, field)
		if el.IsZero() {
			return "", false
		}
		return TriggerValue(scope, el), true
	})
}

// TriggerValue returns the value a condition sees for el: the checked radio
// of its group for radios, the value when checked for checkboxes and the raw
// value otherwise.
func TriggerValue(scope dom.Element, el dom.Element) string {
	switch {
	case el.IsRadio():
		checked := dom.CheckedRadio(scope, el.Name())
		if checked.IsZero() {
			return ""
		}
		return checked.Value()
	case el.IsCheckbox():
		if el.Checked() {
			return el.Value()
		}
		return ""
	default:
		return el.Value()
	}
}

// triggerElements returns the distinct elements whose value changes affect
// field, in first-seen order. A radio trigger expands to its whole group.
func triggerElements(scope dom.Element, fields []string) (elements []dom.Element, missing []string) {
	seen := make(map[dom.Element]struct{})
	add := func(el dom.Element) {
		if _, ok := seen[el]; ok {
			return
		}
		seen[el] = struct{}{}
		elements = append(elements, el)
	}

	for _, name := range fields {
		el := dom.FindControl(scope, name)
		if el.IsZero() {
			missing = append(missing, name)
			continue
		}
		if el.IsRadio() && el.Name() != "" {
			for _, radio := range dom.RadioGroup(scope, el.Name()) {
				add(radio)
			}
			continue
		}
		add(el)
	}
	return elements, missing
}
