package formrules

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-formrules/pkg/condition"
	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/navigation/expr"
)

// Severity grades a lint issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one authoring problem found in a form's markup.
type Issue struct {
	Form      string   `json:"form" yaml:"form"`
	Element   string   `json:"element" yaml:"element"`
	Attribute string   `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Severity  Severity `json:"severity" yaml:"severity"`
	Message   string   `json:"message" yaml:"message"`
}

func (i Issue) String() string {
	attr := ""
	if i.Attribute != "" {
		attr = " [" + i.Attribute + "]"
	}
	return fmt.Sprintf("%s: %s %s%s: %s", i.Severity, i.Form, i.Element, attr, i.Message)
}

// Lint checks the rule attributes of every form in doc: condition syntax,
// operators and triggers, skip rules, and routing keys against branches.
// A nil cfg uses the defaults.
func Lint(doc *dom.Document, cfg *config.Compiled) []Issue {
	if cfg == nil {
		cfg = config.Defaults()
	}
	var issues []Issue
	for _, root := range doc.QueryAll(cfg.Match.Form) {
		l := linter{cfg: cfg, root: root, form: label(root)}
		l.conditions()
		l.skipRules()
		l.routing()
		issues = append(issues, l.issues...)
	}
	return issues
}

// LintFile parses the HTML document at path and lints it.
func LintFile(path string, cfg *config.Compiled) ([]Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formrules: read %s: %w", path, err)
	}
	doc, err := dom.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("formrules: parse %s: %w", path, err)
	}
	return Lint(doc, cfg), nil
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

type linter struct {
	cfg    *config.Compiled
	root   dom.Element
	form   string
	issues []Issue
}

func (l *linter) add(el dom.Element, attr string, sev Severity, format string, args ...any) {
	l.issues = append(l.issues, Issue{
		Form:      l.form,
		Element:   el.String(),
		Attribute: attr,
		Severity:  sev,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (l *linter) conditions() {
	attrs := []string{l.cfg.Attributes.ShowIf, l.cfg.Attributes.HideIf}
	l.root.Walk(func(el dom.Element) bool {
		for _, attr := range attrs {
			raw, ok := el.Attr(attr)
			if !ok {
				continue
			}
			conds, err := condition.Parse(raw)
			for _, e := range unjoin(err) {
				l.add(el, attr, SeverityError, "%v", e)
			}
			if err == nil && len(conds) == 0 {
				l.add(el, attr, SeverityWarning, "empty condition")
			}
			for _, cond := range conds {
				if !cond.Operator.Known() {
					l.add(el, attr, SeverityError, "unknown operator %q in %q", cond.Operator, cond.Raw)
				}
				trigger := dom.FindControl(l.root, cond.Field)
				switch {
				case trigger.IsZero():
					l.add(el, attr, SeverityError, "trigger field %q not found", cond.Field)
				case trigger == el:
					l.add(el, attr, SeverityWarning, "field depends on itself through %q", cond.Raw)
				}
			}
		}
		return true
	})
}

func (l *linter) skipRules() {
	attr := l.cfg.Attributes.SkipIf
	for _, step := range l.root.QueryAll(l.cfg.Match.Step) {
		raw, ok := step.Attr(attr)
		if !ok {
			continue
		}
		compiled, err := expr.Compile(raw)
		if err != nil {
			l.add(step, attr, SeverityError, "%v", err)
			continue
		}
		for _, name := range compiled.Identifiers() {
			if dom.FindControl(l.root, name).IsZero() {
				l.add(step, attr, SeverityWarning, "skip rule reads unknown field %q", name)
			}
		}
	}
}

func (l *linter) routing() {
	keyAttr := l.cfg.Attributes.RoutingKey
	branchAttr := l.cfg.Attributes.BranchKey
	for _, step := range l.root.QueryAll(l.cfg.Match.Step) {
		branches := make(map[string]bool)
		for _, b := range step.QueryAll(l.cfg.Match.Branch) {
			branches[strings.TrimSpace(b.AttrOr(branchAttr, ""))] = true
		}

		routed := false
		groups := make(map[string][2]int)
		var order []string
		step.Walk(func(el dom.Element) bool {
			if !el.IsRadio() {
				return true
			}
			counts, seen := groups[el.Name()]
			if !seen {
				order = append(order, el.Name())
			}
			key, ok := el.Attr(keyAttr)
			if !ok {
				counts[1]++
				groups[el.Name()] = counts
				return true
			}
			counts[0]++
			groups[el.Name()] = counts
			routed = true
			if key = strings.TrimSpace(key); key == "" || !branches[key] {
				l.add(el, keyAttr, SeverityWarning, "routing key %q matches no branch in its step", key)
			}
			return true
		})

		for _, name := range order {
			if counts := groups[name]; counts[0] > 0 && counts[1] > 0 {
				l.add(step, keyAttr, SeverityWarning, "radio group %q mixes routing and plain radios", name)
			}
		}
		if len(branches) > 0 && !routed {
			l.add(step, "", SeverityWarning, "step has branches but no routing radio; the displayed branch is used")
		}
	}
}

func unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

func label(root dom.Element) string {
	for _, attr := range []string{"id", "name", "data-name"} {
		if v := strings.TrimSpace(root.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return root.Tag()
}
