package condition

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Operator is the lower-cased operator keyword of a condition. Aliases are
// kept as written; Canonical maps them onto the canonical keyword.
type Operator string

const (
	OpEquals       Operator = "equals"
	OpNotEquals    Operator = "notequals"
	OpContains     Operator = "contains"
	OpNotContains  Operator = "notcontains"
	OpStartsWith   Operator = "startswith"
	OpEndsWith     Operator = "endswith"
	OpIsEmpty      Operator = "isempty"
	OpIsNotEmpty   Operator = "isnotempty"
	OpGreaterThan  Operator = "greaterthan"
	OpLessThan     Operator = "lessthan"
	OpGreaterEqual Operator = "greaterequal"
	OpLessEqual    Operator = "lessequal"
	OpIn           Operator = "in"
	OpNotIn        Operator = "notin"
)

var aliases = map[Operator]Operator{
	"eq":       OpEquals,
	"==":       OpEquals,
	"neq":      OpNotEquals,
	"!=":       OpNotEquals,
	"empty":    OpIsEmpty,
	"notempty": OpIsNotEmpty,
	"gt":       OpGreaterThan,
	"lt":       OpLessThan,
	"gte":      OpGreaterEqual,
	"lte":      OpLessEqual,
}

var canonical = map[Operator]struct{}{
	OpEquals: {}, OpNotEquals: {}, OpContains: {}, OpNotContains: {},
	OpStartsWith: {}, OpEndsWith: {}, OpIsEmpty: {}, OpIsNotEmpty: {},
	OpGreaterThan: {}, OpLessThan: {}, OpGreaterEqual: {}, OpLessEqual: {},
	OpIn: {}, OpNotIn: {},
}

// Canonical resolves aliases. ok is false for unknown keywords.
func (op Operator) Canonical() (Operator, bool) {
	key := Operator(strings.ToLower(strings.TrimSpace(string(op))))
	if alias, found := aliases[key]; found {
		return alias, true
	}
	if _, found := canonical[key]; found {
		return key, true
	}
	return key, false
}

// Known reports whether the keyword (or alias) is supported.
func (op Operator) Known() bool {
	_, ok := op.Canonical()
	return ok
}

// Compare applies op to a trigger value and an operand. Text operators work
// on trimmed, lower-cased strings. Ordering operators parse both sides as
// numbers; a side that does not parse becomes NaN and the comparison is false.
func Compare(op Operator, value, operand string) (bool, error) {
	canon, ok := op.Canonical()
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownOperator, string(op))
	}

	got := normalize(value)
	want := normalize(operand)

	switch canon {
	case OpEquals:
		return got == want, nil
	case OpNotEquals:
		return got != want, nil
	case OpContains:
		return strings.Contains(got, want), nil
	case OpNotContains:
		return !strings.Contains(got, want), nil
	case OpStartsWith:
		return strings.HasPrefix(got, want), nil
	case OpEndsWith:
		return strings.HasSuffix(got, want), nil
	case OpIsEmpty:
		return got == "", nil
	case OpIsNotEmpty:
		return got != "", nil
	case OpGreaterThan:
		return parseNumber(value) > parseNumber(operand), nil
	case OpLessThan:
		return parseNumber(value) < parseNumber(operand), nil
	case OpGreaterEqual:
		return parseNumber(value) >= parseNumber(operand), nil
	case OpLessEqual:
		return parseNumber(value) <= parseNumber(operand), nil
	case OpIn:
		return inList(got, operand), nil
	case OpNotIn:
		return !inList(got, operand), nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownOperator, string(op))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func inList(value, list string) bool {
	for _, item := range strings.Split(list, ",") {
		if normalize(item) == value {
			return true
		}
	}
	return false
}

var numberPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// parseNumber reads the leading decimal number of s, ignoring surrounding
// whitespace and trailing garbage ("18 years" is 18). Anything else is NaN.
func parseNumber(s string) float64 {
	trimmed := strings.TrimSpace(s)
	switch trimmed {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	match := numberPrefix.FindString(trimmed)
	if match == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
