package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formrules/pkg/dom"
)

// Attributes lists the attribute names the engine reads and writes.
type Attributes struct {
	ShowIf             string `json:"showIf" yaml:"showIf"`
	HideIf             string `json:"hideIf" yaml:"hideIf"`
	ClearWhenHidden    string `json:"clearWhenHidden" yaml:"clearWhenHidden"`
	RequireForSubtypes string `json:"requireForSubtypes" yaml:"requireForSubtypes"`
	StepSubtype        string `json:"stepSubtype" yaml:"stepSubtype"`
	RoutingKey         string `json:"routingKey" yaml:"routingKey"`
	BranchKey          string `json:"branchKey" yaml:"branchKey"`
	Hidden             string `json:"hidden" yaml:"hidden"`
	Navigation         string `json:"navigation" yaml:"navigation"`
	SkipIf             string `json:"skipIf" yaml:"skipIf"`
	ValidationMessage  string `json:"validationMessage" yaml:"validationMessage"`
	ErrorFor           string `json:"errorFor" yaml:"errorFor"`
	StepNumber         string `json:"stepNumber" yaml:"stepNumber"`
	StepType           string `json:"stepType" yaml:"stepType"`
	SummaryName        string `json:"summaryName" yaml:"summaryName"`
	SummaryType        string `json:"summaryType" yaml:"summaryType"`
	SummaryNumber      string `json:"summaryNumber" yaml:"summaryNumber"`
	SummaryField       string `json:"summaryField" yaml:"summaryField"`
}

// Selectors lists the CSS selectors that locate structural elements.
type Selectors struct {
	Form           string `json:"form" yaml:"form"`
	Step           string `json:"step" yaml:"step"`
	Branch         string `json:"branch" yaml:"branch"`
	FieldWrapper   string `json:"fieldWrapper" yaml:"fieldWrapper"`
	RadioComponent string `json:"radioComponent" yaml:"radioComponent"`
	Error          string `json:"error" yaml:"error"`
	Progress       string `json:"progress" yaml:"progress"`
	StepIndicator  string `json:"stepIndicator" yaml:"stepIndicator"`
	StepCounter    string `json:"stepCounter" yaml:"stepCounter"`
	SummaryCard    string `json:"summaryCard" yaml:"summaryCard"`
}

// Navigation lists the navigation marker values that classify trigger
// elements. Values are compared case-insensitively.
type Navigation struct {
	Next   []string `json:"next" yaml:"next"`
	Back   []string `json:"back" yaml:"back"`
	Submit []string `json:"submit" yaml:"submit"`
}

// Messages holds the fallback error texts.
type Messages struct {
	Required      string `json:"required" yaml:"required"`
	RadioRequired string `json:"radioRequired" yaml:"radioRequired"`
	Routing       string `json:"routing" yaml:"routing"`
}

// Config is the full engine configuration.
type Config struct {
	Attributes Attributes    `json:"attributes" yaml:"attributes"`
	Selectors  Selectors     `json:"selectors" yaml:"selectors"`
	Navigation Navigation    `json:"navigation" yaml:"navigation"`
	Messages   Messages      `json:"messages" yaml:"messages"`
	FocusDelay time.Duration `json:"focusDelay" yaml:"focusDelay"`
	// ProximityWindow bounds how many error nodes after a field the proximity
	// locator inspects.
	ProximityWindow int `json:"proximityWindow" yaml:"proximityWindow"`
}

// Default returns the configuration matching the markup conventions of the
// Webflow style forms the engine was built for.
func Default() Config {
	return Config{
		Attributes: Attributes{
			ShowIf:             "data-show-if",
			HideIf:             "data-hide-if",
			ClearWhenHidden:    "data-clear-when-hidden",
			RequireForSubtypes: "data-require-for-subtypes",
			StepSubtype:        "data-step-subtype",
			RoutingKey:         "data-go-to",
			BranchKey:          "data-answer",
			Hidden:             "data-conditional-hidden",
			Navigation:         "data-form",
			SkipIf:             "data-skip-if",
			ValidationMessage:  "data-validation-message",
			ErrorFor:           "data-error-for",
			StepNumber:         "data-step-number",
			StepType:           "data-step-type",
			SummaryName:        "data-step-field-name",
			SummaryType:        "data-summary-type",
			SummaryNumber:      "data-summary-number",
			SummaryField:       "data-summary-field",
		},
		Selectors: Selectors{
			Form:           "form",
			Step:           `[data-form="step"]`,
			Branch:         ".step_item",
			FieldWrapper:   ".multi-form_field-wrapper, .form_field-wrapper, .field-wrapper",
			RadioComponent: ".radio_field, .w-radio, .radio-component",
			Error:          ".text-size-tiny.error-state, .error-state, .error-message",
			Progress:       "[data-progress], [data-step-progress]",
			StepIndicator:  "[data-step-indicator]",
			StepCounter:    "[data-step-counter]",
			SummaryCard:    "[data-summary-type]",
		},
		Navigation: Navigation{
			Next:   []string{"next-btn"},
			Back:   []string{"back-btn", "prev-btn"},
			Submit: []string{"submit-btn", "submit"},
		},
		Messages: Messages{
			Required:      "This field is required",
			RadioRequired: "Please make a selection to continue",
			Routing:       "Please select an option to continue",
		},
		FocusDelay:      100 * time.Millisecond,
		ProximityWindow: 3,
	}
}

// Matchers holds the compiled selectors.
type Matchers struct {
	Form           dom.Selector
	Step           dom.Selector
	Branch         dom.Selector
	FieldWrapper   dom.Selector
	RadioComponent dom.Selector
	Error          dom.Selector
	Progress       dom.Selector
	StepIndicator  dom.Selector
	StepCounter    dom.Selector
	SummaryCard    dom.Selector
}

// Compiled is a validated configuration ready for use by the engine
// components.
type Compiled struct {
	Config
	Match Matchers
}

// Compile validates cfg and compiles its selectors. Empty fields fall back
// to the defaults so partial configs stay usable.
func (c Config) Compile() (*Compiled, error) {
	cfg := c.withDefaults()

	var (
		match Matchers
		err   error
	)
	targets := []struct {
		name string
		raw  string
		dst  *dom.Selector
	}{
		{"form", cfg.Selectors.Form, &match.Form},
		{"step", cfg.Selectors.Step, &match.Step},
		{"branch", cfg.Selectors.Branch, &match.Branch},
		{"fieldWrapper", cfg.Selectors.FieldWrapper, &match.FieldWrapper},
		{"radioComponent", cfg.Selectors.RadioComponent, &match.RadioComponent},
		{"error", cfg.Selectors.Error, &match.Error},
		{"progress", cfg.Selectors.Progress, &match.Progress},
		{"stepIndicator", cfg.Selectors.StepIndicator, &match.StepIndicator},
		{"stepCounter", cfg.Selectors.StepCounter, &match.StepCounter},
		{"summaryCard", cfg.Selectors.SummaryCard, &match.SummaryCard},
	}
	for _, target := range targets {
		*target.dst, err = dom.Compile(target.raw)
		if err != nil {
			return nil, fmt.Errorf("config: selectors.%s: %w", target.name, err)
		}
	}
	if cfg.FocusDelay < 0 {
		return nil, fmt.Errorf("config: focusDelay must not be negative (got %s)", cfg.FocusDelay)
	}
	if cfg.ProximityWindow < 0 {
		return nil, fmt.Errorf("config: proximityWindow must not be negative (got %d)", cfg.ProximityWindow)
	}
	return &Compiled{Config: cfg, Match: match}, nil
}

var defaultCompiled = func() *Compiled {
	compiled, err := Default().Compile()
	if err != nil {
		panic(err)
	}
	return compiled
}()

// Defaults returns the compiled default configuration. The value is shared;
// callers must not mutate it.
func Defaults() *Compiled {
	return defaultCompiled
}

func (c Config) withDefaults() Config {
	def := Default()
	out := c

	fill := func(dst *string, fallback string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = fallback
		}
	}
	fill(&out.Attributes.ShowIf, def.Attributes.ShowIf)
	fill(&out.Attributes.HideIf, def.Attributes.HideIf)
	fill(&out.Attributes.ClearWhenHidden, def.Attributes.ClearWhenHidden)
	fill(&out.Attributes.RequireForSubtypes, def.Attributes.RequireForSubtypes)
	fill(&out.Attributes.StepSubtype, def.Attributes.StepSubtype)
	fill(&out.Attributes.RoutingKey, def.Attributes.RoutingKey)
	fill(&out.Attributes.BranchKey, def.Attributes.BranchKey)
	fill(&out.Attributes.Hidden, def.Attributes.Hidden)
	fill(&out.Attributes.Navigation, def.Attributes.Navigation)
	fill(&out.Attributes.SkipIf, def.Attributes.SkipIf)
	fill(&out.Attributes.ValidationMessage, def.Attributes.ValidationMessage)
	fill(&out.Attributes.ErrorFor, def.Attributes.ErrorFor)
	fill(&out.Attributes.StepNumber, def.Attributes.StepNumber)
	fill(&out.Attributes.StepType, def.Attributes.StepType)
	fill(&out.Attributes.SummaryName, def.Attributes.SummaryName)
	fill(&out.Attributes.SummaryType, def.Attributes.SummaryType)
	fill(&out.Attributes.SummaryNumber, def.Attributes.SummaryNumber)
	fill(&out.Attributes.SummaryField, def.Attributes.SummaryField)

	fill(&out.Selectors.Form, def.Selectors.Form)
	fill(&out.Selectors.Step, def.Selectors.Step)
	fill(&out.Selectors.Branch, def.Selectors.Branch)
	fill(&out.Selectors.FieldWrapper, def.Selectors.FieldWrapper)
	fill(&out.Selectors.RadioComponent, def.Selectors.RadioComponent)
	fill(&out.Selectors.Error, def.Selectors.Error)
	fill(&out.Selectors.Progress, def.Selectors.Progress)
	fill(&out.Selectors.StepIndicator, def.Selectors.StepIndicator)
	fill(&out.Selectors.StepCounter, def.Selectors.StepCounter)
	fill(&out.Selectors.SummaryCard, def.Selectors.SummaryCard)

	fill(&out.Messages.Required, def.Messages.Required)
	fill(&out.Messages.RadioRequired, def.Messages.RadioRequired)
	fill(&out.Messages.Routing, def.Messages.Routing)

	if out.ProximityWindow == 0 {
		out.ProximityWindow = def.ProximityWindow
	}
	if len(out.Navigation.Next) == 0 {
		out.Navigation.Next = def.Navigation.Next
	}
	if len(out.Navigation.Back) == 0 {
		out.Navigation.Back = def.Navigation.Back
	}
	if len(out.Navigation.Submit) == 0 {
		out.Navigation.Submit = def.Navigation.Submit
	}
	return out
}
