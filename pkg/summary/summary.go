// Package summary fills review cards with the answers entered in a form.
//
// A control opts in by carrying the summary name attribute. Its answer is
// written into the targets of every card whose type and number match the
// step container of the control:
//
//	<div data-form="step" data-step-type="contact" data-step-number="2">
//	  <input name="email" data-step-field-name="email">
//	</div>
//	<div data-summary-type="contact" data-summary-number="2">
//	  <span data-summary-field="email"></span>
//	</div>
//
// Cards stay hidden until one of their targets holds an answer.
package summary

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/branch"
	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/visibility"
)

// Entry is one answer as it appears on the cards.
type Entry struct {
	Type   string
	Number string
	Field  string
	Value  string
}

type key struct {
	typ, number, field string
}

// Cards keeps the summary cards of one form in sync with its controls.
type Cards struct {
	root     dom.Element
	cfg      *config.Compiled
	logger   *zap.Logger
	resolver *branch.Resolver

	container dom.Selector
	target    dom.Selector
	detach    []func()
}

// Option configures Cards.
type Option func(*Cards)

// WithConfig overrides the attribute names and selectors.
func WithConfig(cfg *config.Compiled) Option {
	return func(c *Cards) {
		if cfg != nil {
			c.cfg = cfg
		}
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cards) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithResolver shares the branch resolver used by validation.
func WithResolver(resolver *branch.Resolver) Option {
	return func(c *Cards) {
		if resolver != nil {
			c.resolver = resolver
		}
	}
}

// New builds Cards for the form rooted at root and hides every card.
func New(root dom.Element, opts ...Option) (*Cards, error) {
	if root.IsZero() {
		return nil, fmt.Errorf("summary: form root is required")
	}
	c := &Cards{root: root, cfg: config.Defaults(), logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.resolver == nil {
		c.resolver = branch.New(branch.WithConfig(c.cfg), branch.WithLogger(c.logger))
	}

	var err error
	if c.container, err = attrSelector(c.cfg.Attributes.StepType); err != nil {
		return nil, fmt.Errorf("summary: attributes.stepType: %w", err)
	}
	if c.target, err = attrSelector(c.cfg.Attributes.SummaryField); err != nil {
		return nil, fmt.Errorf("summary: attributes.summaryField: %w", err)
	}

	for _, card := range c.cards() {
		card.SetDisplayed(false)
	}
	return c, nil
}

// Attach refreshes the cards after every change or input event inside the
// form. Listeners on the controls themselves run first, so the refresh sees
// the visibility they applied. The returned function detaches the listeners.
func (c *Cards) Attach() func() {
	refresh := func(*dom.Event) { c.Refresh() }
	c.detach = append(c.detach,
		c.root.AddEventListener(dom.EventChange, refresh),
		c.root.AddEventListener(dom.EventInput, refresh),
	)
	return c.Close
}

// Close removes the listeners installed by Attach.
func (c *Cards) Close() {
	for _, fn := range c.detach {
		fn()
	}
	c.detach = nil
}

// Entries returns the current answers in document order. Answers of hidden
// fields and of fields in a branch other than the chosen one are empty.
func (c *Cards) Entries() []Entry {
	var (
		out   []Entry
		index = make(map[key]int)
	)
	for _, el := range dom.Controls(c.root) {
		field := strings.TrimSpace(el.AttrOr(c.cfg.Attributes.SummaryName, ""))
		if field == "" {
			continue
		}
		container := el.Closest(c.container)
		if container.IsZero() || !c.root.Contains(container) {
			c.logger.Debug("summary: field outside every step type container", zap.String("field", field))
			continue
		}
		k := key{
			typ:    strings.TrimSpace(container.AttrOr(c.cfg.Attributes.StepType, "")),
			number: strings.TrimSpace(container.AttrOr(c.cfg.Attributes.StepNumber, "1")),
			field:  field,
		}
		value := ""
		if c.answered(el) {
			value = Answer(c.root, el)
		}
		if idx, ok := index[k]; ok {
			if out[idx].Value == "" {
				out[idx].Value = value
			}
			continue
		}
		index[k] = len(out)
		out = append(out, Entry{Type: k.typ, Number: k.number, Field: k.field, Value: value})
	}
	return out
}

// Refresh writes the current answers into the card targets. Targets with no
// matching field keep their content.
func (c *Cards) Refresh() {
	values := make(map[key]string)
	for _, entry := range c.Entries() {
		values[key{entry.Type, entry.Number, entry.Field}] = entry.Value
	}
	for _, card := range c.cards() {
		typ := strings.TrimSpace(card.AttrOr(c.cfg.Attributes.SummaryType, ""))
		number := strings.TrimSpace(card.AttrOr(c.cfg.Attributes.SummaryNumber, ""))
		for _, target := range card.QueryAll(c.target) {
			field := strings.TrimSpace(target.AttrOr(c.cfg.Attributes.SummaryField, ""))
			if value, ok := values[key{typ, number, field}]; ok {
				target.SetText(value)
			}
		}
	}
}

// Reveal displays the cards holding at least one answer and hides the rest.
func (c *Cards) Reveal() int {
	shown := 0
	for _, card := range c.cards() {
		filled := false
		for _, target := range card.QueryAll(c.target) {
			if strings.TrimSpace(target.Text()) != "" {
				filled = true
				break
			}
		}
		card.SetDisplayed(filled)
		if filled {
			shown++
		}
	}
	c.logger.Debug("summary: cards revealed", zap.Int("shown", shown))
	return shown
}

// Answer returns the text a card shows for el: the checked value of a radio
// group, the value of a checked checkbox ("Yes" when it has none), the label
// of the chosen option of a select past its placeholder, and the raw value
// otherwise.
func Answer(scope, el dom.Element) string {
	switch {
	case el.Tag() == "select":
		for idx, option := range el.Options() {
			if option.HasAttr("selected") {
				if idx == 0 {
					return ""
				}
				return strings.TrimSpace(option.Text())
			}
		}
		return ""
	case el.IsCheckbox():
		if !el.Checked() {
			return ""
		}
		if value := strings.TrimSpace(el.AttrOr("value", "")); value != "" {
			return value
		}
		return "Yes"
	default:
		return strings.TrimSpace(visibility.TriggerValue(scope, el))
	}
}

// answered reports whether the answer of el belongs on the cards: the field
// is not hidden and no other branch of its step has been chosen.
func (c *Cards) answered(el dom.Element) bool {
	if visibility.IsHidden(el, c.cfg.Attributes.Hidden) {
		return false
	}
	step := el.Closest(c.cfg.Match.Step)
	if step.IsZero() || !c.root.Contains(step) {
		step = c.root
	}
	owner := c.resolver.BranchOf(el, step)
	if owner.IsZero() {
		return true
	}
	res := c.resolver.Resolve(step)
	return res.Kind != branch.Active || res.Branch == owner
}

func (c *Cards) cards() []dom.Element {
	return c.root.QueryAll(c.cfg.Match.SummaryCard)
}

func attrSelector(name string) (dom.Selector, error) {
	return dom.Compile("[" + strings.TrimSpace(name) + "]")
}
