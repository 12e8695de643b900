package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Selector is a compiled CSS selector. The zero value matches nothing.
type Selector struct {
	raw string
	sel cascadia.Selector
}

// Compile parses a CSS selector group such as `[data-form="step"], .step`.
func Compile(raw string) (Selector, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Selector{}, errors.New("dom: selector is empty")
	}
	sel, err := cascadia.Compile(trimmed)
	if err != nil {
		return Selector{}, fmt.Errorf("dom: compile selector %q: %w", trimmed, err)
	}
	return Selector{raw: trimmed, sel: sel}, nil
}

// MustCompile is Compile for package-level selectors known to be valid.
func MustCompile(raw string) Selector {
	sel, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return sel
}

// IsZero reports whether the selector was never compiled.
func (s Selector) IsZero() bool {
	return s.sel == nil
}

func (s Selector) String() string {
	return s.raw
}
