package validation

import "github.com/goliatone/go-formrules/pkg/dom"

// Invalid describes one failing field or radio group.
type Invalid struct {
	// Field is the failing control; for radio groups, the group's first radio.
	Field   dom.Element `json:"-"`
	Name    string      `json:"field"`
	Step    dom.Element `json:"-"`
	Group   string      `json:"group,omitempty"`
	Message string      `json:"message"`
}

// IsGroup reports whether the entry describes a radio group.
func (i Invalid) IsGroup() bool {
	return i.Group != ""
}

// Result captures the outcome of a validation pass. Invalid lists fields in
// document order followed by radio groups in discovery order.
type Result struct {
	Valid   bool      `json:"valid"`
	Invalid []Invalid `json:"invalid,omitempty"`
}

// Names returns the field or group names of the failures, in order.
func (r Result) Names() []string {
	out := make([]string, 0, len(r.Invalid))
	for _, inv := range r.Invalid {
		out = append(out, inv.Name)
	}
	return out
}

// Merge combines two results, keeping the receiver's entries first.
func (r Result) Merge(other Result) Result {
	merged := Result{Invalid: append(append([]Invalid(nil), r.Invalid...), other.Invalid...)}
	merged.Valid = len(merged.Invalid) == 0
	return merged
}

func newResult(invalid []Invalid) Result {
	return Result{Valid: len(invalid) == 0, Invalid: invalid}
}
