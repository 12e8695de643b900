package formrules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/engine"
	"github.com/goliatone/go-formrules/pkg/navigation"
	"github.com/goliatone/go-formrules/pkg/visibility"
)

// Assignment is one field/value pair of a scenario action.
type Assignment struct {
	Field string
	Value string
}

// Assignments keeps the document order of a YAML mapping so dependent
// fields are set in the order they were written.
type Assignments []Assignment

// UnmarshalYAML decodes a mapping of field names to scalar values.
func (a *Assignments) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of field: value", node.Line)
	}
	out := make(Assignments, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value of %q must be a scalar", value.Line, key.Value)
		}
		out = append(out, Assignment{Field: key.Value, Value: value.Value})
	}
	*a = out
	return nil
}

// Action is one scripted user interaction followed by optional expectations.
type Action struct {
	Set     Assignments  `yaml:"set,omitempty"`
	Type    Assignments  `yaml:"type,omitempty"`
	Check   Assignments  `yaml:"check,omitempty"`
	Uncheck []string     `yaml:"uncheck,omitempty"`
	Click   string       `yaml:"click,omitempty"`
	Do      string       `yaml:"do,omitempty"`
	Expect  *Expectation `yaml:"expect,omitempty"`
}

// Expectation describes the state a form must be in after an action.
type Expectation struct {
	Step      string      `yaml:"step,omitempty"`
	Branch    string      `yaml:"branch,omitempty"`
	Visible   []string    `yaml:"visible,omitempty"`
	Hidden    []string    `yaml:"hidden,omitempty"`
	Required  []string    `yaml:"required,omitempty"`
	Optional  []string    `yaml:"optional,omitempty"`
	Values    Assignments `yaml:"values,omitempty"`
	Errors    *[]string   `yaml:"errors,omitempty"`
	Proceeded *bool       `yaml:"proceeded,omitempty"`
	Invalid   *[]string   `yaml:"invalid,omitempty"`
}

// Scenario is a named sequence of actions against one form.
type Scenario struct {
	Name    string   `yaml:"name"`
	Form    string   `yaml:"form,omitempty"`
	Actions []Action `yaml:"actions"`
}

// ScenarioResult reports the expectations a scenario missed.
type ScenarioResult struct {
	Name     string
	Failures []string
}

// Passed reports whether every expectation held.
func (r ScenarioResult) Passed() bool { return len(r.Failures) == 0 }

// LoadScenarios decodes every YAML document in data as a Scenario.
func LoadScenarios(data []byte, source string) ([]Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []Scenario
	for idx := 0; ; idx++ {
		var sc Scenario
		err := dec.Decode(&sc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("formrules: scenario %d in %s: %w", idx, source, err)
		}
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("%s#%d", source, idx)
		}
		out = append(out, sc)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("formrules: %s holds no scenarios", source)
	}
	return out, nil
}

// LoadScenarioFile reads the scenarios stored at path.
func LoadScenarioFile(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formrules: read %s: %w", path, err)
	}
	return LoadScenarios(data, path)
}

// Run plays the scenario against session. Failed expectations are collected
// in the result; an action that cannot be performed (unknown field, bad
// selector) stops the run with an error.
func (s Scenario) Run(session *Session) (ScenarioResult, error) {
	result := ScenarioResult{Name: s.Name}
	form, err := session.Form(s.Form)
	if err != nil {
		return result, err
	}
	run := &scenarioRun{form: form}
	for idx, action := range s.Actions {
		if err := run.perform(action); err != nil {
			return result, fmt.Errorf("formrules: %s action %d: %w", s.Name, idx+1, err)
		}
		if action.Expect != nil {
			for _, failure := range run.verify(*action.Expect) {
				result.Failures = append(result.Failures, fmt.Sprintf("action %d: %s", idx+1, failure))
			}
		}
	}
	return result, nil
}

type scenarioRun struct {
	form      *engine.Form
	proceeded *bool
	invalid   []string
}

func (r *scenarioRun) perform(a Action) error {
	for _, as := range a.Set {
		if err := r.form.SetValue(as.Field, as.Value); err != nil {
			return err
		}
	}
	for _, as := range a.Type {
		if err := r.form.Type(as.Field, as.Value); err != nil {
			return err
		}
	}
	for _, as := range a.Check {
		if err := r.form.Check(as.Field, as.Value); err != nil {
			return err
		}
	}
	for _, name := range a.Uncheck {
		el, err := r.form.Field(name)
		if err != nil {
			return err
		}
		dom.Uncheck(el)
	}
	if a.Click != "" {
		sel, err := dom.Compile(a.Click)
		if err != nil {
			return err
		}
		target := r.form.Root().Query(sel)
		if target.IsZero() {
			return fmt.Errorf("no element matches %q", a.Click)
		}
		r.form.Click(target)
		if last := r.form.Gate().Last(); last.Action != navigation.None {
			r.record(last)
		}
	}

	switch strings.ToLower(strings.TrimSpace(a.Do)) {
	case "":
	case "next":
		r.record(r.form.Next())
	case "back":
		r.record(r.form.Back())
	case "submit":
		r.record(r.form.Submit())
	case "validate-step":
		r.proceeded = nil
		r.invalid = r.form.ValidateStep().Names()
	case "validate-form":
		r.proceeded = nil
		r.invalid = r.form.ValidateForm().Names()
	default:
		return fmt.Errorf("unknown action %q", a.Do)
	}
	return nil
}

func (r *scenarioRun) record(out navigation.Outcome) {
	proceeded := out.Proceeded
	r.proceeded = &proceeded
	r.invalid = out.Result.Names()
}

func (r *scenarioRun) verify(e Expectation) []string {
	var failures []string
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}
	marker := r.form.Config().Attributes.Hidden

	if e.Step != "" {
		if got := r.form.CurrentStep().ID(); got != e.Step {
			fail("expected step %q, got %q", e.Step, got)
		}
	}
	if e.Branch != "" {
		if got := r.form.Resolve().Kind.String(); got != e.Branch {
			fail("expected branch %q, got %q", e.Branch, got)
		}
	}

	check := func(names []string, want bool, what string, holds func(dom.Element) bool) {
		for _, name := range names {
			el, err := r.form.Field(name)
			if err != nil {
				fail("%v", err)
				continue
			}
			if holds(el) != want {
				fail("expected %s to be %s", name, what)
			}
		}
	}
	hidden := func(el dom.Element) bool { return visibility.IsHidden(el, marker) }
	required := r.form.Validator().Required
	check(e.Visible, false, "visible", hidden)
	check(e.Hidden, true, "hidden", hidden)
	check(e.Required, true, "required", required)
	check(e.Optional, false, "optional", required)

	for _, as := range e.Values {
		el, err := r.form.Field(as.Field)
		if err != nil {
			fail("%v", err)
			continue
		}
		if got := visibility.TriggerValue(r.form.Root(), el); got != as.Value {
			fail("expected %s to hold %q, got %q", as.Field, as.Value, got)
		}
	}

	if e.Errors != nil {
		got := make([]string, 0, len(r.form.Errors()))
		for name := range r.form.Errors() {
			got = append(got, name)
		}
		sort.Strings(got)
		want := append([]string(nil), (*e.Errors)...)
		sort.Strings(want)
		if !slices.Equal(got, want) {
			fail("expected errors %v, got %v", want, got)
		}
	}
	if e.Proceeded != nil {
		switch {
		case r.proceeded == nil:
			fail("expected a navigation outcome, none recorded")
		case *r.proceeded != *e.Proceeded:
			fail("expected proceeded=%v, got %v", *e.Proceeded, *r.proceeded)
		}
	}
	if e.Invalid != nil && !slices.Equal(nonNil(*e.Invalid), nonNil(r.invalid)) {
		fail("expected invalid %v, got %v", *e.Invalid, r.invalid)
	}
	return failures
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
