package visibility

import (
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/condition"
	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/dom"
)

// State is the visibility bookkeeping of one conditional field.
// ConditionallyHidden is always !Visible.
type State struct {
	Visible             bool
	OriginallyRequired  bool
	ConditionallyHidden bool
}

// MessageHider hides a validation message previously shown for a field.
type MessageHider interface {
	Hide(field dom.Element)
}

// Evaluator decides whether a conditional field should be shown. It is
// satisfied by *Controller and lets callers preview decisions.
type Evaluator interface {
	Evaluate(field dom.Element) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field dom.Element) bool

// Evaluate delegates to the underlying function.
func (fn EvaluatorFunc) Evaluate(field dom.Element) bool {
	return fn(field)
}

type entry struct {
	field     dom.Element
	scope     dom.Element
	container dom.Element
	show      []condition.Condition
	hide      []condition.Condition
	// required holds the controls that carried `required` at setup.
	required []dom.Element
	state    State
	remove   []func()
}

// Controller owns the show/hide state of every conditional field it set up.
type Controller struct {
	cfg      *config.Compiled
	logger   *zap.Logger
	messages MessageHider
	entries  map[dom.Element]*entry
	order    []dom.Element
}

// New constructs a Controller.
func New(opts ...Option) *Controller {
	c := &Controller{
		cfg:     config.Defaults(),
		logger:  zap.NewNop(),
		entries: make(map[dom.Element]*entry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Decide combines evaluated show and hide results: every show condition must
// hold (vacuously true when there are none) and no hide condition may hold.
func Decide(show, hide []bool) bool {
	for _, h := range hide {
		if h {
			return false
		}
	}
	for _, s := range show {
		if !s {
			return false
		}
	}
	return true
}

// SetupAll sets up every element inside scope that declares a show or hide
// condition and returns how many conditional fields were registered.
func (c *Controller) SetupAll(scope dom.Element) int {
	count := 0
	attrs := c.cfg.Attributes
	scope.Walk(func(el dom.Element) bool {
		if el.HasAttr(attrs.ShowIf) || el.HasAttr(attrs.HideIf) {
			if c.Setup(el, scope) {
				count++
			}
		}
		return true
	})
	c.logger.Debug("visibility: setup complete", zap.Int("conditional_fields", count))
	return count
}

// Setup parses the field's conditions, subscribes to its triggers and runs
// the initial evaluation. It returns false when the field declares no usable
// condition, in which case it is left untouched.
func (c *Controller) Setup(field, scope dom.Element) bool {
	if field.IsZero() {
		return false
	}
	attrs := c.cfg.Attributes
	show := c.parse(field, attrs.ShowIf)
	hide := c.parse(field, attrs.HideIf)
	if len(show) == 0 && len(hide) == 0 {
		return false
	}

	// A hidden field has already lost `required`; a repeated setup keeps the
	// controls recorded the first time.
	var required []dom.Element
	if previous, ok := c.entries[field]; ok {
		c.release(previous)
		required = previous.required
	} else {
		c.order = append(c.order, field)
		required = requiredControls(field)
	}

	e := &entry{
		field:     field,
		scope:     scope,
		container: c.container(field),
		show:      show,
		hide:      hide,
		required:  required,
	}
	e.state.OriginallyRequired = len(e.required) > 0
	e.state.Visible = !c.IsHidden(field)
	e.state.ConditionallyHidden = !e.state.Visible
	c.entries[field] = e

	triggers, missing := triggerElements(scope, condition.Triggers(show, hide))
	for _, name := range missing {
		c.logger.Warn("visibility: trigger field not found",
			zap.String("field", field.Key()),
			zap.String("trigger", name),
		)
	}
	for _, trigger := range triggers {
		listener := func(*dom.Event) { c.refresh(e) }
		e.remove = append(e.remove,
			trigger.AddEventListener(dom.EventChange, listener),
			trigger.AddEventListener(dom.EventInput, listener),
		)
	}

	c.refresh(e)
	return true
}

// Evaluate reports whether a set up field should currently be shown. Fields
// without conditions are always shown.
func (c *Controller) Evaluate(field dom.Element) bool {
	e, ok := c.entries[field]
	if !ok {
		return true
	}
	return c.evaluate(e)
}

// Apply shows or hides a set up field. Calling it repeatedly with the same
// decision leaves the tree unchanged.
func (c *Controller) Apply(field dom.Element, show bool) {
	e, ok := c.entries[field]
	if !ok {
		return
	}
	c.apply(e, show)
}

// Refresh re-evaluates and applies the field's conditions.
func (c *Controller) Refresh(field dom.Element) {
	if e, ok := c.entries[field]; ok {
		c.refresh(e)
	}
}

// RefreshAll re-evaluates every registered field in setup order.
func (c *Controller) RefreshAll() {
	for _, field := range c.order {
		c.refresh(c.entries[field])
	}
}

// State returns the bookkeeping of a set up field.
func (c *Controller) State(field dom.Element) (State, bool) {
	e, ok := c.entries[field]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

// Fields returns the conditional fields in setup order.
func (c *Controller) Fields() []dom.Element {
	return append([]dom.Element(nil), c.order...)
}

// IsHidden reports whether field, or an element enclosing it, carries the
// hidden marker. The marker is the only signal validation consults.
func (c *Controller) IsHidden(field dom.Element) bool {
	return IsHidden(field, c.cfg.Attributes.Hidden)
}

// IsHidden reports whether field or one of its ancestors carries the hidden
// marker attribute set to "true".
func IsHidden(field dom.Element, marker string) bool {
	for el := field; !el.IsZero(); el = el.Parent() {
		if value, ok := el.Attr(marker); ok && strings.EqualFold(strings.TrimSpace(value), "true") {
			return true
		}
	}
	return false
}

// Close removes every event listener registered by the controller.
func (c *Controller) Close() {
	for _, field := range c.order {
		c.release(c.entries[field])
	}
}

func (c *Controller) release(e *entry) {
	for _, remove := range e.remove {
		remove()
	}
	e.remove = nil
}

func (c *Controller) parse(field dom.Element, attr string) []condition.Condition {
	raw, ok := field.Attr(attr)
	if !ok {
		return nil
	}
	conds, err := condition.Parse(raw)
	if err != nil {
		c.logger.Warn("visibility: malformed condition",
			zap.String("field", field.Key()),
			zap.String("attribute", attr),
			zap.Error(err),
		)
	}
	return conds
}

func (c *Controller) evaluate(e *entry) bool {
	src := ScopeSource(e.scope)
	results := func(conds []condition.Condition) []bool {
		out := make([]bool, len(conds))
		for i, cond := range conds {
			ok, err := condition.Evaluate(cond, src)
			if err != nil {
				c.logger.Warn("visibility: condition not satisfied",
					zap.String("field", e.field.Key()),
					zap.String("condition", cond.Raw),
					zap.Error(err),
				)
			}
			out[i] = ok
		}
		return out
	}
	return Decide(results(e.show), results(e.hide))
}

func (c *Controller) refresh(e *entry) {
	c.apply(e, c.evaluate(e))
}

func (c *Controller) apply(e *entry, show bool) {
	marker := c.cfg.Attributes.Hidden
	if show {
		e.field.RemoveAttr(marker)
		for _, control := range e.required {
			control.SetRequired(true)
		}
		if !e.container.IsZero() {
			e.container.SetDisplayed(true)
		}
	} else {
		for _, control := range e.required {
			control.SetRequired(false)
		}
		e.field.SetAttr(marker, "true")
		if !strings.EqualFold(strings.TrimSpace(e.field.AttrOr(c.cfg.Attributes.ClearWhenHidden, "")), "false") {
			for _, control := range controlsOf(e.field) {
				clearValue(control)
			}
		}
		if c.messages != nil {
			for _, control := range controlsOf(e.field) {
				c.messages.Hide(control)
			}
		}
		if !e.container.IsZero() {
			e.container.SetDisplayed(false)
		}
	}

	if e.state.Visible != show {
		c.logger.Debug("visibility: field toggled",
			zap.String("field", e.field.Key()),
			zap.Bool("visible", show),
		)
	}
	e.state.Visible = show
	e.state.ConditionallyHidden = !show
}

// container returns the element whose display follows the field: the
// closest field wrapper, else the parent. Non-control elements are their own
// container.
func (c *Controller) container(field dom.Element) dom.Element {
	if !field.IsControl() {
		return field
	}
	if wrapper := field.Closest(c.cfg.Match.FieldWrapper); !wrapper.IsZero() {
		return wrapper
	}
	return field.Parent()
}

func controlsOf(field dom.Element) []dom.Element {
	if field.IsControl() {
		return []dom.Element{field}
	}
	return dom.Controls(field)
}

func requiredControls(field dom.Element) []dom.Element {
	var out []dom.Element
	for _, control := range controlsOf(field) {
		if control.Required() {
			out = append(out, control)
		}
	}
	return out
}

// clearValue resets a control without dispatching events, so hiding a field
// never cascades into further evaluations.
func clearValue(control dom.Element) {
	switch {
	case control.IsRadio(), control.IsCheckbox():
		control.SetChecked(false)
	default:
		control.SetValue("")
	}
}
