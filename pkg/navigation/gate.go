package navigation

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/navigation/expr"
	"github.com/goliatone/go-formrules/pkg/validation"
	"github.com/goliatone/go-formrules/pkg/visibility"
)

// Action is what a trigger element asks the gate to do.
type Action int

const (
	None Action = iota
	Next
	Back
	Submit
)

func (a Action) String() string {
	switch a {
	case Next:
		return "next"
	case Back:
		return "back"
	case Submit:
		return "submit"
	default:
		return "none"
	}
}

// Validator is the part of the validation orchestrator the gate relies on.
type Validator interface {
	ValidateStep(step dom.Element) validation.Result
	ValidateRouting(step dom.Element) validation.Result
	ValidateForm() validation.Result
}

// Transition moves the display from one step to another. from is zero on
// the initial display.
type Transition func(from, to dom.Element, steps []dom.Element)

// DisplayOnly hides every step but to.
func DisplayOnly(_, to dom.Element, steps []dom.Element) {
	for _, step := range steps {
		step.SetDisplayed(step == to)
	}
}

// SubmitFunc receives the payload of a validated submission. Returning an
// error cancels the submission.
type SubmitFunc func(Payload) error

// Outcome reports what handling a trigger did.
type Outcome struct {
	Action    Action
	Proceeded bool
	From      dom.Element
	To        dom.Element
	Skipped   []dom.Element
	Result    validation.Result
	Payload   Payload
	Err       error
}

// ErrNoSteps is returned by step navigation on forms without steps.
var ErrNoSteps = errors.New("navigation: form has no steps")

// Gate decides whether next, back and submit triggers may proceed and
// sequences the steps of a form.
type Gate struct {
	root       dom.Element
	cfg        *config.Compiled
	logger     *zap.Logger
	validator  Validator
	transition Transition
	onSubmit   SubmitFunc
	onChange   func(Outcome)

	steps   []dom.Element
	skip    map[dom.Element]*expr.Expression
	current int
	history []int
	last    Outcome
}

// Option configures a Gate.
type Option func(*Gate)

// WithConfig overrides the markers and selectors.
func WithConfig(cfg *config.Compiled) Option {
	return func(g *Gate) {
		if cfg != nil {
			g.cfg = cfg
		}
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithTransition replaces DisplayOnly.
func WithTransition(transition Transition) Option {
	return func(g *Gate) {
		if transition != nil {
			g.transition = transition
		}
	}
}

// WithSubmit installs the hook that receives validated submissions.
func WithSubmit(fn SubmitFunc) Option {
	return func(g *Gate) {
		g.onSubmit = fn
	}
}

// WithOutcomeHook is called after every handled trigger.
func WithOutcomeHook(fn func(Outcome)) Option {
	return func(g *Gate) {
		g.onChange = fn
	}
}

// NewGate builds a Gate for the form rooted at root. Invalid skip rules are
// reported as errors.
func NewGate(root dom.Element, validator Validator, opts ...Option) (*Gate, error) {
	if root.IsZero() {
		return nil, fmt.Errorf("navigation: form root is required")
	}
	if validator == nil {
		return nil, fmt.Errorf("navigation: validator is required")
	}
	g := &Gate{
		root:       root,
		validator:  validator,
		cfg:        config.Defaults(),
		logger:     zap.NewNop(),
		transition: DisplayOnly,
		skip:       make(map[dom.Element]*expr.Expression),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	g.steps = root.QueryAll(g.cfg.Match.Step)
	g.numberSteps()
	var errs []error
	for idx, step := range g.steps {
		raw, ok := step.Attr(g.cfg.Attributes.SkipIf)
		if !ok {
			continue
		}
		compiled, err := expr.Compile(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("navigation: step %d skip rule %q: %w", idx, raw, err))
			continue
		}
		g.skip[step] = compiled
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return g, nil
}

// Steps returns the steps in document order.
func (g *Gate) Steps() []dom.Element {
	return append([]dom.Element(nil), g.steps...)
}

// Current returns the current step, or the zero Element for forms without
// steps.
func (g *Gate) Current() dom.Element {
	if g.current < 0 || g.current >= len(g.steps) {
		return dom.Element{}
	}
	return g.steps[g.current]
}

// CurrentIndex returns the index of the current step.
func (g *Gate) CurrentIndex() int {
	return g.current
}

// Last returns the outcome of the most recently handled trigger.
func (g *Gate) Last() Outcome {
	return g.last
}

// Start displays the first step whose skip rule does not hold and renders
// the progress of the form.
func (g *Gate) Start() error {
	if len(g.steps) == 0 {
		return ErrNoSteps
	}
	first, _ := g.nextIndex(-1)
	if first < 0 {
		first = 0
	}
	g.current = first
	g.history = nil
	g.transition(dom.Element{}, g.steps[first], g.steps)
	g.renderProgress()
	return nil
}

// Classify maps a trigger element to an Action. The navigation marker wins
// over the element type, so a submit-typed element carrying the next marker
// navigates instead of submitting.
func (g *Gate) Classify(el dom.Element) Action {
	if el.IsZero() {
		return None
	}
	if marker, ok := el.Attr(g.cfg.Attributes.Navigation); ok {
		marker = strings.ToLower(strings.TrimSpace(marker))
		switch {
		case contains(g.cfg.Navigation.Next, marker):
			return Next
		case contains(g.cfg.Navigation.Back, marker):
			return Back
		case contains(g.cfg.Navigation.Submit, marker):
			return Submit
		}
	}
	if (el.Tag() == "button" || el.Tag() == "input") && el.Type() == "submit" {
		return Submit
	}
	return None
}

// Trigger finds the closest trigger element from target up to the form root.
func (g *Gate) Trigger(target dom.Element) (dom.Element, Action) {
	for el := target; !el.IsZero(); el = el.Parent() {
		if action := g.Classify(el); action != None {
			return el, action
		}
		if el == g.root {
			break
		}
	}
	return dom.Element{}, None
}

// Handle runs the action of trigger.
func (g *Gate) Handle(trigger dom.Element) Outcome {
	switch g.Classify(trigger) {
	case Next:
		return g.Next()
	case Back:
		return g.Back()
	case Submit:
		return g.Submit()
	default:
		return Outcome{Action: None}
	}
}

// Attach routes bubbling clicks inside the form root through the gate and
// cancels the default action of navigation triggers and of failed
// submissions. The returned function detaches the listener.
func (g *Gate) Attach() func() {
	return g.root.AddEventListener(dom.EventClick, func(ev *dom.Event) {
		trigger, action := g.Trigger(ev.Target)
		if action == None {
			return
		}
		outcome := g.Handle(trigger)
		if action != Submit || !outcome.Proceeded {
			ev.PreventDefault()
		}
	})
}

// Next validates the current step and its routing choice and, when both
// pass, moves to the next step whose skip rule does not hold.
func (g *Gate) Next() Outcome {
	out := Outcome{Action: Next, From: g.Current()}
	if len(g.steps) == 0 {
		out.Err = ErrNoSteps
		return g.finish(out)
	}

	out.Result = g.validator.ValidateStep(out.From).Merge(g.validator.ValidateRouting(out.From))
	if !out.Result.Valid {
		g.logger.Debug("navigation: next blocked",
			zap.Int("step", g.current),
			zap.Strings("invalid", out.Result.Names()),
		)
		return g.finish(out)
	}

	target, skipped := g.nextIndex(g.current)
	out.Skipped = skipped
	if target < 0 {
		g.logger.Debug("navigation: already on the last step", zap.Int("step", g.current))
		return g.finish(out)
	}

	g.history = append(g.history, g.current)
	g.moveTo(target)
	out.To = g.Current()
	out.Proceeded = true
	return g.finish(out)
}

// Back returns to the previously displayed step without validating.
func (g *Gate) Back() Outcome {
	out := Outcome{Action: Back, From: g.Current()}
	if len(g.history) == 0 {
		return g.finish(out)
	}
	previous := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.moveTo(previous)
	out.To = g.Current()
	out.Proceeded = true
	return g.finish(out)
}

// Submit validates the whole form and, when it passes, hands the payload to
// the submit hook.
func (g *Gate) Submit() Outcome {
	out := Outcome{Action: Submit, From: g.Current()}
	out.Result = g.validator.ValidateForm()
	if !out.Result.Valid {
		g.logger.Debug("navigation: submit blocked", zap.Strings("invalid", out.Result.Names()))
		return g.finish(out)
	}

	out.Payload = BuildPayload(g.root, g.cfg.Attributes.Hidden)
	if g.onSubmit != nil {
		if err := g.onSubmit(out.Payload); err != nil {
			out.Err = fmt.Errorf("navigation: submit hook: %w", err)
			g.logger.Warn("navigation: submit hook failed", zap.Error(err))
			return g.finish(out)
		}
	}
	out.Proceeded = true
	return g.finish(out)
}

// Payload returns the payload the form would submit right now.
func (g *Gate) Payload() Payload {
	return BuildPayload(g.root, g.cfg.Attributes.Hidden)
}

// Skips reports whether the skip rule of step currently holds.
func (g *Gate) Skips(step dom.Element) bool {
	rule, ok := g.skip[step]
	if !ok {
		return false
	}
	skip, err := rule.Eval(g.lookup)
	if err != nil {
		g.logger.Warn("navigation: skip rule failed", zap.String("rule", rule.String()), zap.Error(err))
		return false
	}
	return skip
}

func (g *Gate) nextIndex(from int) (int, []dom.Element) {
	var skipped []dom.Element
	for idx := from + 1; idx < len(g.steps); idx++ {
		if g.Skips(g.steps[idx]) {
			skipped = append(skipped, g.steps[idx])
			continue
		}
		return idx, skipped
	}
	return -1, skipped
}

func (g *Gate) moveTo(idx int) {
	from := g.Current()
	g.current = idx
	g.transition(from, g.steps[idx], g.steps)
	g.renderProgress()
	g.logger.Debug("navigation: moved", zap.Int("step", idx))
}

func (g *Gate) lookup(name string) (string, bool) {
	el := dom.FindControl(g.root, name)
	if el.IsZero() {
		return "", false
	}
	return visibility.TriggerValue(g.root, el), true
}

func (g *Gate) finish(out Outcome) Outcome {
	g.last = out
	if g.onChange != nil {
		g.onChange(out)
	}
	return out
}

func contains(values []string, marker string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), marker) {
			return true
		}
	}
	return false
}
