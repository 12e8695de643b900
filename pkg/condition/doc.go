// Package condition implements the declarative condition language used by
// `data-show-if` and `data-hide-if`: `;` separated `field:operator:value`
// clauses evaluated against the current form values.
//
// Evaluation never fails hard. Malformed clauses, missing trigger fields and
// unknown operators all degrade to "condition not satisfied" and are reported
// through the sentinel errors so callers can log them.
package condition
