package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/branch"
	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/errormsg"
	"github.com/goliatone/go-formrules/pkg/navigation"
	"github.com/goliatone/go-formrules/pkg/radio"
	"github.com/goliatone/go-formrules/pkg/summary"
	"github.com/goliatone/go-formrules/pkg/validation"
	"github.com/goliatone/go-formrules/pkg/visibility"
)

// ErrFieldNotFound is returned by helpers that address a field by name.
var ErrFieldNotFound = errors.New("engine: field not found")

// Form is the per-form context: it owns the radio registry, the visibility
// controller, the validation error map, the navigation gate and the summary
// cards of one form element. Forms are independent of each other.
type Form struct {
	root       dom.Element
	cfg        *config.Compiled
	logger     *zap.Logger
	radios     *radio.Registry
	visibility *visibility.Controller
	resolver   *branch.Resolver
	presenter  *errormsg.Presenter
	validator  *validation.Orchestrator
	gate       *navigation.Gate
	cards      *summary.Cards
	detach     []func()
}

// New wires a Form for root. Initialisation runs radio discovery, then
// visibility setup, then gate and summary attachment and finally the initial
// step display.
func New(root dom.Element, opts ...Option) (*Form, error) {
	if root.IsZero() {
		return nil, fmt.Errorf("engine: form root is required")
	}
	settings := defaultSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	cfg := settings.cfg
	logger := settings.logger.With(zap.String("form", formLabel(root)))

	f := &Form{root: root, cfg: cfg, logger: logger}
	f.radios = radio.NewRegistry(radio.WithConfig(cfg), radio.WithLogger(logger))
	f.resolver = branch.New(branch.WithConfig(cfg), branch.WithLogger(logger))
	f.presenter = errormsg.NewPresenter(errormsg.WithConfig(cfg), errormsg.WithLogger(logger))
	f.visibility = visibility.New(
		visibility.WithConfig(cfg),
		visibility.WithLogger(logger),
		visibility.WithMessageHider(f.presenter),
	)

	validator, err := validation.NewOrchestrator(root, f.radios,
		validation.WithConfig(cfg),
		validation.WithLogger(logger),
		validation.WithResolver(f.resolver),
		validation.WithPresenter(f.presenter),
		validation.WithScheduler(settings.scheduler),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	f.validator = validator

	gateOpts := []navigation.Option{
		navigation.WithConfig(cfg),
		navigation.WithLogger(logger),
		navigation.WithSubmit(settings.onSubmit),
		navigation.WithOutcomeHook(f.outcome(settings.onOutcome)),
	}
	if settings.transition != nil {
		gateOpts = append(gateOpts, navigation.WithTransition(settings.transition))
	}
	gate, err := navigation.NewGate(root, validator, gateOpts...)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	f.gate = gate

	cards, err := summary.New(root,
		summary.WithConfig(cfg),
		summary.WithLogger(logger),
		summary.WithResolver(f.resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	f.cards = cards

	f.radios.Discover(root)
	count := f.visibility.SetupAll(root)
	f.detach = append(f.detach, f.gate.Attach(), f.cards.Attach())
	if err := f.gate.Start(); err != nil && !errors.Is(err, navigation.ErrNoSteps) {
		return nil, fmt.Errorf("engine: %w", err)
	}

	logger.Debug("engine: form attached",
		zap.Int("steps", len(f.gate.Steps())),
		zap.Int("radio_groups", len(f.radios.Groups())),
		zap.Int("conditional_fields", count),
	)
	return f, nil
}

// Attach wires a Form for every form element in doc.
func Attach(doc *dom.Document, opts ...Option) ([]*Form, error) {
	if doc == nil {
		return nil, fmt.Errorf("engine: document is required")
	}
	settings := defaultSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	roots := doc.QueryAll(settings.cfg.Match.Form)
	forms := make([]*Form, 0, len(roots))
	for idx, root := range roots {
		form, err := New(root, opts...)
		if err != nil {
			for _, attached := range forms {
				attached.Close()
			}
			return nil, fmt.Errorf("engine: form %d: %w", idx, err)
		}
		forms = append(forms, form)
	}
	return forms, nil
}

// Close removes every listener the Form installed.
func (f *Form) Close() {
	for _, detach := range f.detach {
		detach()
	}
	f.detach = nil
	f.visibility.Close()
	f.radios.Close()
}

// Root returns the form element.
func (f *Form) Root() dom.Element { return f.root }

// Config returns the compiled configuration in use.
func (f *Form) Config() *config.Compiled { return f.cfg }

// Radios returns the radio group registry.
func (f *Form) Radios() *radio.Registry { return f.radios }

// Visibility returns the visibility controller.
func (f *Form) Visibility() *visibility.Controller { return f.visibility }

// Resolver returns the branch resolver.
func (f *Form) Resolver() *branch.Resolver { return f.resolver }

// Validator returns the validation orchestrator.
func (f *Form) Validator() *validation.Orchestrator { return f.validator }

// Gate returns the navigation gate.
func (f *Form) Gate() *navigation.Gate { return f.gate }

// Cards returns the summary cards.
func (f *Form) Cards() *summary.Cards { return f.cards }

// Errors returns the current validation error map.
func (f *Form) Errors() map[string]string { return f.presenter.Messages() }

// Summary returns the distinct error messages in the order they were shown.
func (f *Form) Summary() []string { return f.presenter.Summary() }

// Label identifies the form in logs and reports: its id, name or tag.
func (f *Form) Label() string { return formLabel(f.root) }

// Field returns the control named or identified by key.
func (f *Form) Field(key string) (dom.Element, error) {
	el := dom.FindControl(f.root, key)
	if el.IsZero() {
		return dom.Element{}, fmt.Errorf("%w: %q", ErrFieldNotFound, key)
	}
	return el, nil
}

// SetValue simulates the user committing value into the field: the value is
// written and a single change event is dispatched.
func (f *Form) SetValue(key, value string) error {
	el, err := f.Field(key)
	if err != nil {
		return err
	}
	if el.IsRadio() {
		return f.Check(key, value)
	}
	if el.IsCheckbox() {
		if value == "" || value == "false" || value == "off" {
			dom.Uncheck(el)
			return nil
		}
		dom.Check(el)
		return nil
	}
	dom.Change(el, value)
	return nil
}

// Type simulates typing into a text control: a single input event.
func (f *Form) Type(key, value string) error {
	el, err := f.Field(key)
	if err != nil {
		return err
	}
	dom.Input(el, value)
	return nil
}

// Check simulates selecting the radio of group name whose value is value,
// or checking the checkbox name when value is empty.
func (f *Form) Check(name, value string) error {
	if value == "" {
		el, err := f.Field(name)
		if err != nil {
			return err
		}
		dom.Check(el)
		return nil
	}
	for _, r := range dom.RadioGroup(f.root, name) {
		if r.Value() == value {
			dom.Check(r)
			return nil
		}
	}
	return fmt.Errorf("%w: radio %q with value %q", ErrFieldNotFound, name, value)
}

// Click simulates a click on el and returns the dispatched event.
func (f *Form) Click(el dom.Element) *dom.Event {
	return dom.Click(el)
}

// Next handles a next trigger on the current step.
func (f *Form) Next() navigation.Outcome { return f.gate.Next() }

// Back handles a back trigger.
func (f *Form) Back() navigation.Outcome { return f.gate.Back() }

// Submit handles a submit trigger.
func (f *Form) Submit() navigation.Outcome { return f.gate.Submit() }

// CurrentStep returns the displayed step, or the zero Element for forms
// without steps.
func (f *Form) CurrentStep() dom.Element { return f.gate.Current() }

// ValidateStep validates the current step (the form root for forms without
// steps).
func (f *Form) ValidateStep() validation.Result {
	step := f.gate.Current()
	if step.IsZero() {
		step = f.root
	}
	return f.validator.ValidateStep(step)
}

// ValidateForm validates every displayed step.
func (f *Form) ValidateForm() validation.Result { return f.validator.ValidateForm() }

// State returns the visibility state of the field named key.
func (f *Form) State(key string) (visibility.State, bool) {
	el := dom.FindControl(f.root, key)
	if el.IsZero() {
		return visibility.State{}, false
	}
	if st, ok := f.visibility.State(el); ok {
		return st, true
	}
	for _, field := range f.visibility.Fields() {
		if field.Contains(el) {
			return f.visibility.State(field)
		}
	}
	return visibility.State{}, false
}

// Resolve returns the branch state of the current step.
func (f *Form) Resolve() branch.Resolution {
	return f.resolver.Resolve(f.CurrentStep())
}

// outcome refreshes the summary cards once a next trigger proceeds, then
// forwards the outcome to hook.
func (f *Form) outcome(hook func(navigation.Outcome)) func(navigation.Outcome) {
	return func(out navigation.Outcome) {
		if out.Action == navigation.Next && out.Proceeded {
			f.cards.Refresh()
			f.cards.Reveal()
		}
		if hook != nil {
			hook(out)
		}
	}
}

func formLabel(root dom.Element) string {
	for _, attr := range []string{"id", "name", "data-name"} {
		if v := root.AttrOr(attr, ""); v != "" {
			return v
		}
	}
	return root.Tag()
}
