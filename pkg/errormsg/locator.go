package errormsg

import (
	"strings"

	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/dom"
)

// Strategy finds the error node associated with a field.
type Strategy interface {
	Name() string
	Locate(field dom.Element) dom.Element
}

type strategyFunc struct {
	name string
	fn   func(dom.Element) dom.Element
}

func (s strategyFunc) Name() string                         { return s.name }
func (s strategyFunc) Locate(field dom.Element) dom.Element { return s.fn(field) }

// StrategyFunc adapts a function into a named Strategy.
func StrategyFunc(name string, fn func(field dom.Element) dom.Element) Strategy {
	return strategyFunc{name: name, fn: fn}
}

// Locator runs its strategies in order and returns the first hit.
type Locator struct {
	strategies []Strategy
}

// NewLocator builds a Locator. Without explicit strategies it uses the
// declared, structural and proximity strategies, in that order.
func NewLocator(cfg *config.Compiled, strategies ...Strategy) *Locator {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if len(strategies) == 0 {
		strategies = []Strategy{Declared(cfg), Structural(cfg), Proximity(cfg)}
	}
	return &Locator{strategies: strategies}
}

// Locate returns the error node of field and the name of the strategy that
// found it. Both are empty when nothing matches.
func (l *Locator) Locate(field dom.Element) (dom.Element, string) {
	if l == nil || field.IsZero() {
		return dom.Element{}, ""
	}
	for _, strategy := range l.strategies {
		if node := strategy.Locate(field); !node.IsZero() {
			return node, strategy.Name()
		}
	}
	return dom.Element{}, ""
}

// Declared locates nodes explicitly tied to the field through
// aria-describedby or the error-for attribute.
func Declared(cfg *config.Compiled) Strategy {
	return StrategyFunc("declared", func(field dom.Element) dom.Element {
		root := field.FormOwner()
		for _, id := range strings.Fields(field.AttrOr("aria-describedby", "")) {
			if node := elementByID(root, id); !node.IsZero() {
				return node
			}
		}
		key := field.Key()
		if key == "" {
			return dom.Element{}
		}
		var found dom.Element
		root.Walk(func(el dom.Element) bool {
			if value, ok := el.Attr(cfg.Attributes.ErrorFor); ok && strings.TrimSpace(value) == key {
				found = el
				return false
			}
			return true
		})
		return found
	})
}

// Structural looks for an error node inside the field's wrapper containers
// and then among the siblings following those containers. Containers and
// siblings holding controls of another field belong to that field and are
// not searched.
func Structural(cfg *config.Compiled) Strategy {
	return StrategyFunc("structural", func(field dom.Element) dom.Element {
		var containers []dom.Element
		for _, container := range wrappers(cfg, field) {
			if !holdsForeignControl(container, field) {
				containers = append(containers, container)
			}
		}
		for _, container := range containers {
			if node := container.Query(cfg.Match.Error); !node.IsZero() {
				return node
			}
		}
		for _, container := range containers {
			for sib := container.NextElementSibling(); !sib.IsZero(); sib = sib.NextElementSibling() {
				if holdsForeignControl(sib, field) {
					break
				}
				if sib.Matches(cfg.Match.Error) {
					return sib
				}
				if node := sib.Query(cfg.Match.Error); !node.IsZero() {
					return node
				}
			}
		}
		return dom.Element{}
	})
}

// holdsForeignControl reports whether scope is or contains a control other
// than field. Radios sharing the field's group do not count.
func holdsForeignControl(scope, field dom.Element) bool {
	foreign := func(el dom.Element) bool {
		if el == field {
			return false
		}
		return !(field.IsRadio() && el.IsRadio() && el.Name() == field.Name())
	}
	if scope.IsControl() && foreign(scope) {
		return true
	}
	for _, control := range dom.Controls(scope) {
		if foreign(control) {
			return true
		}
	}
	return false
}

// Proximity scans the error nodes that follow the field inside its step, up
// to the configured window, and returns the first whose text reads like a
// required message.
func Proximity(cfg *config.Compiled) Strategy {
	return StrategyFunc("proximity", func(field dom.Element) dom.Element {
		scope := field.Closest(cfg.Match.Step)
		if scope.IsZero() {
			scope = field.FormOwner()
		}
		window := cfg.ProximityWindow
		passed := false
		seen := 0
		var found dom.Element
		scope.Walk(func(el dom.Element) bool {
			if el == field {
				passed = true
				return true
			}
			if !passed || !el.Matches(cfg.Match.Error) {
				return true
			}
			seen++
			if looksRequired(el.Text()) {
				found = el
				return false
			}
			return seen < window
		})
		return found
	})
}

func looksRequired(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "required") || strings.Contains(lower, "select")
}

// wrappers returns the distinct containers of a field, innermost first.
func wrappers(cfg *config.Compiled, field dom.Element) []dom.Element {
	var out []dom.Element
	add := func(el dom.Element) {
		if el.IsZero() || el == field {
			return
		}
		for _, existing := range out {
			if existing == el {
				return
			}
		}
		out = append(out, el)
	}
	add(field.Closest(cfg.Match.FieldWrapper))
	add(field.Closest(cfg.Match.RadioComponent))
	add(field.Parent())
	return out
}

func elementByID(root dom.Element, id string) dom.Element {
	var found dom.Element
	root.Walk(func(el dom.Element) bool {
		if el.ID() == id {
			found = el
			return false
		}
		return true
	})
	return found
}
