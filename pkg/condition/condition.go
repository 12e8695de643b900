package condition

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedCondition marks a clause without the three
	// field:operator:value parts. The clause is dropped.
	ErrMalformedCondition = errors.New("condition: malformed clause")
	// ErrMissingTrigger marks a condition whose trigger field is absent from
	// the form. The condition evaluates to false.
	ErrMissingTrigger = errors.New("condition: trigger field not found")
	// ErrUnknownOperator marks a condition whose operator keyword is not
	// recognised. The condition evaluates to false.
	ErrUnknownOperator = errors.New("condition: unknown operator")
)

// Condition is one parsed `field:operator:value` clause.
type Condition struct {
	Field    string
	Operator Operator
	Operand  string
	Raw      string
}

func (c Condition) String() string {
	return c.Raw
}

// Parse splits an attribute value into conditions. Clauses are separated by
// `;`; inside a clause only the first two colons are structural and the rest
// belong to the operand. Malformed clauses are dropped and reported through
// the returned error (joined when several are bad) while the valid clauses
// are still returned.
func Parse(attribute string) ([]Condition, error) {
	var (
		out  []Condition
		errs []error
	)
	for _, clause := range strings.Split(attribute, ";") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		parts := strings.Split(clause, ":")
		if len(parts) < 3 {
			errs = append(errs, fmt.Errorf("%w: %q (expected field:operator:value)", ErrMalformedCondition, clause))
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		out = append(out, Condition{
			Field:    parts[0],
			Operator: Operator(strings.ToLower(parts[1])),
			Operand:  strings.Join(parts[2:], ":"),
			Raw:      clause,
		})
	}
	return out, errors.Join(errs...)
}

// Source resolves the current value of a trigger field. ok is false when the
// field does not exist.
type Source interface {
	TriggerValue(field string) (value string, ok bool)
}

// SourceFunc adapts a function into a Source.
type SourceFunc func(field string) (string, bool)

// TriggerValue delegates to the underlying function.
func (fn SourceFunc) TriggerValue(field string) (string, bool) {
	return fn(field)
}

// Values is a static Source backed by a map, handy for previews and tests.
type Values map[string]string

// TriggerValue looks the field up in the map.
func (v Values) TriggerValue(field string) (string, bool) {
	value, ok := v[field]
	return value, ok
}

// Evaluate resolves the trigger through src and applies the operator. A
// missing trigger or an unknown operator yields false together with a
// diagnostic error; neither is fatal to the caller.
func Evaluate(c Condition, src Source) (bool, error) {
	if src == nil {
		return false, fmt.Errorf("%w: %q (no source)", ErrMissingTrigger, c.Field)
	}
	value, ok := src.TriggerValue(c.Field)
	if !ok {
		return false, fmt.Errorf("%w: %q in %q", ErrMissingTrigger, c.Field, c.Raw)
	}
	result, err := Compare(c.Operator, value, c.Operand)
	if err != nil {
		return false, fmt.Errorf("%w (in %q)", err, c.Raw)
	}
	return result, nil
}

// Triggers returns the distinct trigger field names referenced by the
// provided condition sets, in first-seen order.
func Triggers(sets ...[]Condition) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, set := range sets {
		for _, c := range set {
			if _, ok := seen[c.Field]; ok {
				continue
			}
			seen[c.Field] = struct{}{}
			out = append(out, c.Field)
		}
	}
	return out
}
