package validation

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/branch"
	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/errormsg"
	"github.com/goliatone/go-formrules/pkg/radio"
	"github.com/goliatone/go-formrules/pkg/visibility"
)

// Reason explains why a field is skipped by a validation pass.
type Reason string

const (
	ReasonEligible       Reason = ""
	ReasonHidden         Reason = "conditionally hidden"
	ReasonStepHidden     Reason = "step not displayed"
	ReasonRadio          Reason = "validated with its radio group"
	ReasonUndetermined   Reason = "branch undetermined"
	ReasonInactiveBranch Reason = "branch not active"
)

// Orchestrator runs validation passes over a form.
type Orchestrator struct {
	root      dom.Element
	cfg       *config.Compiled
	logger    *zap.Logger
	resolver  *branch.Resolver
	radios    *radio.Registry
	presenter *errormsg.Presenter
	scheduler Scheduler
	subtype   dom.Selector
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConfig overrides the attribute names, selectors and messages.
func WithConfig(cfg *config.Compiled) Option {
	return func(o *Orchestrator) {
		if cfg != nil {
			o.cfg = cfg
		}
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithResolver shares a branch resolver.
func WithResolver(resolver *branch.Resolver) Option {
	return func(o *Orchestrator) {
		o.resolver = resolver
	}
}

// WithPresenter shares the error message presenter.
func WithPresenter(presenter *errormsg.Presenter) Option {
	return func(o *Orchestrator) {
		o.presenter = presenter
	}
}

// WithScheduler sets how the post-validation focus move is delayed.
func WithScheduler(scheduler Scheduler) Option {
	return func(o *Orchestrator) {
		if scheduler != nil {
			o.scheduler = scheduler
		}
	}
}

// NewOrchestrator builds an Orchestrator for the form rooted at root. radios
// must have discovered the form's radio groups.
func NewOrchestrator(root dom.Element, radios *radio.Registry, opts ...Option) (*Orchestrator, error) {
	if root.IsZero() {
		return nil, fmt.Errorf("validation: form root is required")
	}
	if radios == nil {
		return nil, fmt.Errorf("validation: radio registry is required")
	}
	o := &Orchestrator{
		root:      root,
		radios:    radios,
		cfg:       config.Defaults(),
		logger:    zap.NewNop(),
		scheduler: Immediate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.resolver == nil {
		o.resolver = branch.New(branch.WithConfig(o.cfg), branch.WithLogger(o.logger))
	}
	if o.presenter == nil {
		o.presenter = errormsg.NewPresenter(errormsg.WithConfig(o.cfg), errormsg.WithLogger(o.logger))
	}
	sel, err := dom.Compile("[" + o.cfg.Attributes.StepSubtype + "]")
	if err != nil {
		return nil, fmt.Errorf("validation: step subtype attribute: %w", err)
	}
	o.subtype = sel
	return o, nil
}

// Presenter returns the presenter holding the validation error map.
func (o *Orchestrator) Presenter() *errormsg.Presenter {
	return o.presenter
}

// StepOf returns the step containing el, or the form root for elements
// outside every step.
func (o *Orchestrator) StepOf(el dom.Element) dom.Element {
	if step := el.Closest(o.cfg.Match.Step); !step.IsZero() && o.root.Contains(step) {
		return step
	}
	return o.root
}

// StepDisplayed reports whether step is displayed. The form root always is.
func (o *Orchestrator) StepDisplayed(step dom.Element) bool {
	if step.IsZero() || step == o.root {
		return true
	}
	return step.Displayed()
}

// Eligible decides whether field takes part in a validation pass for step.
// A zero step means the field's own step.
func (o *Orchestrator) Eligible(field, step dom.Element) (bool, Reason) {
	if visibility.IsHidden(field, o.cfg.Attributes.Hidden) {
		return false, ReasonHidden
	}
	if step.IsZero() {
		step = o.StepOf(field)
	}
	if !o.StepDisplayed(step) {
		return false, ReasonStepHidden
	}
	if field.IsRadio() {
		return false, ReasonRadio
	}
	return o.branchEligible(field, step)
}

func (o *Orchestrator) branchEligible(el, step dom.Element) (bool, Reason) {
	owner := o.resolver.BranchOf(el, step)
	if owner.IsZero() {
		return true, ReasonEligible
	}
	res := o.resolver.Resolve(step)
	switch {
	case res.Kind == branch.Undetermined:
		return false, ReasonUndetermined
	case res.Kind != branch.Active || res.Branch != owner:
		return false, ReasonInactiveBranch
	}
	return true, ReasonEligible
}

// ValidateField checks a single control and shows or hides its message.
// Hidden-marked fields are always valid.
func (o *Orchestrator) ValidateField(field dom.Element) bool {
	_, ok := o.validateField(field)
	return ok
}

// validateField also returns the message shown for an invalid field.
func (o *Orchestrator) validateField(field dom.Element) (string, bool) {
	if visibility.IsHidden(field, o.cfg.Attributes.Hidden) {
		return "", true
	}
	valid := !o.Required(field) || hasValue(field)
	if valid {
		o.presenter.Hide(field)
		return "", true
	}
	msg := o.presenter.Message(field, o.cfg.Messages.Required)
	o.presenter.Show(field, msg)
	return msg, false
}

// Required reports whether field must carry a value: it has `required`, or
// its subtype list names the current subtype of its step.
func (o *Orchestrator) Required(field dom.Element) bool {
	if field.Required() {
		return true
	}
	raw, ok := field.Attr(o.cfg.Attributes.RequireForSubtypes)
	if !ok {
		return false
	}
	current := o.Subtype(field)
	if current == "" {
		return false
	}
	for _, entry := range strings.Split(raw, ",") {
		if strings.EqualFold(strings.TrimSpace(entry), current) {
			return true
		}
	}
	return false
}

// Subtype returns the current subtype for field: the key of its step's
// active branch, else the closest step subtype attribute.
func (o *Orchestrator) Subtype(field dom.Element) string {
	if res := o.resolver.Resolve(o.StepOf(field)); res.Kind == branch.Active && res.Key != "" {
		return res.Key
	}
	if holder := field.Closest(o.subtype); !holder.IsZero() {
		return strings.TrimSpace(holder.AttrOr(o.cfg.Attributes.StepSubtype, ""))
	}
	return ""
}

// ValidateStep validates the eligible required fields of step and the
// standard required radio groups with a radio inside it. When a group fails,
// its first radio is focused through the scheduler.
func (o *Orchestrator) ValidateStep(step dom.Element) Result {
	if step.IsZero() {
		step = o.root
	}
	var invalid []Invalid
	for _, field := range o.candidates(step) {
		if ok, reason := o.Eligible(field, step); !ok {
			o.logger.Debug("validation: field skipped",
				zap.String("field", field.Key()),
				zap.String("reason", string(reason)),
			)
			continue
		}
		if msg, ok := o.validateField(field); !ok {
			invalid = append(invalid, Invalid{Field: field, Name: field.Key(), Step: step, Message: msg})
		}
	}

	var firstGroup *radio.Group
	for _, group := range o.radios.InStep(step) {
		if !group.StandardRequired || !o.groupEligible(group, step) {
			continue
		}
		if failure, ok := o.validateGroup(group, step, o.cfg.Messages.RadioRequired); !ok {
			invalid = append(invalid, failure)
			if firstGroup == nil {
				firstGroup = group
			}
		}
	}

	if firstGroup != nil && len(firstGroup.Radios) > 0 {
		target := firstGroup.Radios[0]
		o.scheduler.Schedule(o.cfg.FocusDelay, target.Focus)
	}

	result := newResult(invalid)
	o.logPass("step", result)
	return result
}

// ValidateRouting checks that every routing radio group with a radio inside
// step has a selection.
func (o *Orchestrator) ValidateRouting(step dom.Element) Result {
	if step.IsZero() {
		step = o.root
	}
	var invalid []Invalid
	for _, group := range o.radios.InStep(step) {
		if !group.Routing || !o.groupEligible(group, step) {
			continue
		}
		if failure, ok := o.validateGroup(group, step, o.cfg.Messages.Routing); !ok {
			invalid = append(invalid, failure)
		}
	}
	result := newResult(invalid)
	o.logPass("routing", result)
	return result
}

// ValidateForm validates every eligible field across the displayed steps,
// then each standard required radio group exactly once.
func (o *Orchestrator) ValidateForm() Result {
	var invalid []Invalid
	for _, field := range o.candidates(o.root) {
		step := o.StepOf(field)
		if ok, reason := o.Eligible(field, step); !ok {
			o.logger.Debug("validation: field skipped",
				zap.String("field", field.Key()),
				zap.String("reason", string(reason)),
			)
			continue
		}
		if msg, ok := o.validateField(field); !ok {
			invalid = append(invalid, Invalid{Field: field, Name: field.Key(), Step: step, Message: msg})
		}
	}

	for _, group := range o.radios.Groups() {
		if !group.StandardRequired || len(group.Radios) == 0 {
			continue
		}
		step := o.StepOf(group.Radios[0])
		if !o.StepDisplayed(step) || !o.groupEligible(group, dom.Element{}) {
			continue
		}
		if failure, ok := o.validateGroup(group, step, o.cfg.Messages.RadioRequired); !ok {
			invalid = append(invalid, failure)
		}
	}

	result := newResult(invalid)
	o.logPass("form", result)
	return result
}

// candidates returns the required and conditionally required controls in
// scope, in document order.
func (o *Orchestrator) candidates(scope dom.Element) []dom.Element {
	var out []dom.Element
	for _, control := range dom.Controls(scope) {
		if control.Required() || control.HasAttr(o.cfg.Attributes.RequireForSubtypes) {
			out = append(out, control)
		}
	}
	return out
}

// groupEligible reports whether at least one radio of group, inside step
// when step is set, is neither hidden nor inside an inactive branch.
func (o *Orchestrator) groupEligible(group *radio.Group, step dom.Element) bool {
	for _, r := range group.Radios {
		if !step.IsZero() && !step.Contains(r) {
			continue
		}
		if visibility.IsHidden(r, o.cfg.Attributes.Hidden) {
			continue
		}
		if ok, _ := o.branchEligible(r, o.StepOf(r)); ok {
			return true
		}
	}
	return false
}

func (o *Orchestrator) validateGroup(group *radio.Group, step dom.Element, fallback string) (Invalid, bool) {
	first := group.Radios[0]
	if group.HasSelection() {
		o.presenter.Hide(first)
		return Invalid{}, true
	}
	msg := o.presenter.Message(first, fallback)
	o.presenter.Show(first, msg)
	return Invalid{
		Field:   first,
		Name:    group.Name,
		Step:    step,
		Group:   group.Name,
		Message: msg,
	}, false
}

func (o *Orchestrator) logPass(kind string, result Result) {
	o.logger.Debug("validation: pass complete",
		zap.String("pass", kind),
		zap.Bool("valid", result.Valid),
		zap.Strings("invalid", result.Names()),
	)
}

func hasValue(field dom.Element) bool {
	switch {
	case field.IsCheckbox():
		return field.Checked()
	case field.IsRadio():
		return !dom.CheckedRadio(field.FormOwner(), field.Name()).IsZero()
	default:
		return strings.TrimSpace(field.Value()) != ""
	}
}
