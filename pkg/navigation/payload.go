package navigation

import (
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/visibility"
)

// Field is one submitted name/value pair.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Payload is the submission handed to the submit hook, sorted by name.
// Repeated names keep their document order.
type Payload []Field

// Values groups the payload by name.
func (p Payload) Values() url.Values {
	out := make(url.Values, len(p))
	for _, field := range p {
		out[field.Name] = append(out[field.Name], field.Value)
	}
	return out
}

// Get returns the first value submitted under name.
func (p Payload) Get(name string) (string, bool) {
	for _, field := range p {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// Encode renders the payload as an urlencoded body.
func (p Payload) Encode() string {
	return p.Values().Encode()
}

// BuildPayload collects the enabled, named controls of root that are not
// hidden-marked. Radios and checkboxes contribute only when checked.
// Hidden inputs carrying extra fields (tokens, versions) are included.
func BuildPayload(root dom.Element, hiddenMarker string) Payload {
	var out Payload
	for _, control := range dom.Controls(root) {
		name := strings.TrimSpace(control.Name())
		if name == "" || control.Disabled() || isButton(control) {
			continue
		}
		if visibility.IsHidden(control, hiddenMarker) {
			continue
		}
		if (control.IsRadio() || control.IsCheckbox()) && !control.Checked() {
			continue
		}
		out = append(out, Field{Name: name, Value: control.Value()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func isButton(control dom.Element) bool {
	if control.Tag() != "input" {
		return false
	}
	switch control.Type() {
	case "submit", "button", "reset", "image", "file":
		return true
	default:
		return false
	}
}
