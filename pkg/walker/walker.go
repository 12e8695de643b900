package walker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/branch"
	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/engine"
	"github.com/goliatone/go-formrules/pkg/navigation"
	"github.com/goliatone/go-formrules/pkg/validation"
)

var labelSelector = dom.MustCompile("label")

// Walker fills a form step by step through a PromptDriver, the way a user
// would: only the fields currently shown are asked for, and each answer
// dispatches the same events a browser would.
type Walker struct {
	form      *engine.Form
	driver    PromptDriver
	logger    *zap.Logger
	maxRounds int
}

// Option configures a Walker.
type Option func(*Walker)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(w *Walker) {
		if driver != nil {
			w.driver = driver
		}
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Walker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMaxRounds bounds how many navigation decisions a walk may take.
func WithMaxRounds(n int) Option {
	return func(w *Walker) {
		if n > 0 {
			w.maxRounds = n
		}
	}
}

// ErrTooManyRounds is returned when a walk exceeds its round limit.
var ErrTooManyRounds = errors.New("walker: too many rounds")

// New builds a Walker for form.
func New(form *engine.Form, opts ...Option) (*Walker, error) {
	if form == nil {
		return nil, fmt.Errorf("walker: form is required")
	}
	w := &Walker{
		form:      form,
		logger:    zap.NewNop(),
		maxRounds: 100,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if w.driver == nil {
		w.driver = NewSurveyDriver(nil)
	}
	return w, nil
}

// Run walks the form until a submission proceeds. It returns the outcome of
// that submission.
func (w *Walker) Run(ctx context.Context) (navigation.Outcome, error) {
	for round := 0; round < w.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return navigation.Outcome{}, err
		}
		if err := w.Fill(ctx); err != nil {
			return navigation.Outcome{}, err
		}

		action, err := w.chooseAction(ctx)
		if err != nil {
			return navigation.Outcome{}, err
		}
		var out navigation.Outcome
		switch action {
		case navigation.Next:
			out = w.form.Next()
		case navigation.Back:
			out = w.form.Back()
		default:
			out = w.form.Submit()
		}
		if err := w.explain(ctx, out); err != nil {
			return out, err
		}
		if out.Action == navigation.Submit && out.Proceeded {
			return out, nil
		}
	}
	return navigation.Outcome{}, ErrTooManyRounds
}

// Fill asks for every control of the current step that is shown and takes
// part in the active branch. Radio groups are asked once.
func (w *Walker) Fill(ctx context.Context) error {
	scope := w.form.CurrentStep()
	if scope.IsZero() {
		scope = w.form.Root()
	}
	asked := make(map[string]struct{})
	for _, control := range dom.Controls(scope) {
		if !w.askable(control, scope) {
			continue
		}
		if control.IsRadio() {
			if _, ok := asked[control.Name()]; ok {
				continue
			}
			asked[control.Name()] = struct{}{}
		}
		if err := w.ask(ctx, control); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) askable(control, step dom.Element) bool {
	if control.Disabled() || !control.Rendered() || control.Key() == "" {
		return false
	}
	switch control.Type() {
	case "hidden", "submit", "button", "reset", "image", "file":
		return false
	}
	ok, reason := w.form.Validator().Eligible(control, step)
	if ok {
		return true
	}
	if reason != validation.ReasonRadio {
		w.logger.Debug("walker: control skipped",
			zap.String("control", control.Key()),
			zap.String("reason", string(reason)),
		)
		return false
	}
	resolver := w.form.Resolver()
	owner := resolver.BranchOf(control, step)
	if owner.IsZero() {
		return true
	}
	res := resolver.Resolve(step)
	return res.Kind == branch.Active && res.Branch == owner
}

func (w *Walker) ask(ctx context.Context, control dom.Element) error {
	key := control.Key()
	switch {
	case control.IsRadio():
		radios := dom.RadioGroup(w.form.Root(), control.Name())
		options := make([]string, 0, len(radios))
		current := -1
		for idx, r := range radios {
			options = append(options, optionLabel(r))
			if r.Checked() {
				current = idx
			}
		}
		idx, err := w.driver.Select(ctx, SelectConfig{Message: control.Name(), Options: options, DefaultIndex: current})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(radios) {
			return nil
		}
		return w.form.Check(control.Name(), radios[idx].Value())

	case control.IsCheckbox():
		checked, err := w.driver.Confirm(ctx, ConfirmConfig{Message: labelOf(control), Default: control.Checked()})
		if err != nil {
			return err
		}
		if checked == control.Checked() {
			return nil
		}
		if checked {
			return w.form.SetValue(key, control.Value())
		}
		return w.form.SetValue(key, "")

	case control.Tag() == "select":
		opts := control.Options()
		options := make([]string, 0, len(opts))
		current := -1
		for idx, opt := range opts {
			options = append(options, strings.TrimSpace(opt.Text()))
			if opt.AttrOr("value", strings.TrimSpace(opt.Text())) == control.Value() && current < 0 {
				current = idx
			}
		}
		idx, err := w.driver.Select(ctx, SelectConfig{Message: labelOf(control), Options: options, DefaultIndex: current})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(opts) {
			return nil
		}
		return w.form.SetValue(key, opts[idx].AttrOr("value", strings.TrimSpace(opts[idx].Text())))

	default:
		help := ""
		if w.form.Validator().Required(control) {
			help = "required"
		}
		value, err := w.driver.Input(ctx, InputConfig{Message: labelOf(control), Default: control.Value(), Help: help})
		if err != nil {
			return err
		}
		if value == control.Value() {
			return nil
		}
		return w.form.SetValue(key, value)
	}
}

func (w *Walker) chooseAction(ctx context.Context) (navigation.Action, error) {
	gate := w.form.Gate()
	var actions []navigation.Action
	steps := len(gate.Steps())
	if steps > 0 && gate.CurrentIndex() < steps-1 {
		actions = append(actions, navigation.Next)
	}
	if steps > 0 && gate.CurrentIndex() > 0 {
		actions = append(actions, navigation.Back)
	}
	if steps == 0 || gate.CurrentIndex() == steps-1 {
		actions = append(actions, navigation.Submit)
	}
	if len(actions) == 1 {
		return actions[0], nil
	}

	options := make([]string, 0, len(actions))
	for _, action := range actions {
		options = append(options, action.String())
	}
	idx, err := w.driver.Select(ctx, SelectConfig{Message: "Continue with", Options: options})
	if err != nil {
		return navigation.None, err
	}
	if idx < 0 || idx >= len(actions) {
		return actions[0], nil
	}
	return actions[idx], nil
}

func (w *Walker) explain(ctx context.Context, out navigation.Outcome) error {
	switch {
	case out.Err != nil:
		return w.driver.Info(ctx, fmt.Sprintf("%s failed: %v", out.Action, out.Err))
	case !out.Proceeded && len(out.Result.Invalid) > 0:
		lines := []string{fmt.Sprintf("%s blocked:", out.Action)}
		for _, inv := range out.Result.Invalid {
			lines = append(lines, fmt.Sprintf("  %s: %s", inv.Name, inv.Message))
		}
		return w.driver.Info(ctx, strings.Join(lines, "\n"))
	case out.Action == navigation.Submit && out.Proceeded:
		return w.driver.Info(ctx, "submitted "+out.Payload.Encode())
	}
	return nil
}

// labelOf returns the text of the label associated with control, falling
// back to its name.
func labelOf(control dom.Element) string {
	if id := control.ID(); id != "" {
		for _, label := range control.Document().Root().QueryAll(labelSelector) {
			if label.AttrOr("for", "") == id {
				if text := strings.TrimSpace(label.Text()); text != "" {
					return text
				}
			}
		}
	}
	if label := control.Closest(labelSelector); !label.IsZero() {
		if text := strings.TrimSpace(label.Text()); text != "" {
			return text
		}
	}
	return control.Key()
}

func optionLabel(radio dom.Element) string {
	if label := radio.Closest(labelSelector); !label.IsZero() {
		if text := strings.TrimSpace(label.Text()); text != "" {
			return text
		}
	}
	return radio.Value()
}
