package report

import (
	"errors"
	"io"
	"sort"

	"github.com/goliatone/go-formrules/pkg/engine"
	"github.com/goliatone/go-formrules/pkg/navigation"
	"github.com/goliatone/go-formrules/pkg/validation"
)

// Step describes one step of the form.
type Step struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Displayed bool   `json:"displayed"`
	Skipped   bool   `json:"skipped"`
}

// Field describes the visibility state of a conditional field.
type Field struct {
	Name               string `json:"name"`
	Visible            bool   `json:"visible"`
	OriginallyRequired bool   `json:"originally_required"`
	Required           bool   `json:"required"`
}

// Message is one entry of the validation error map.
type Message struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Outcome summarises a navigation decision.
type Outcome struct {
	Action    string   `json:"action"`
	Proceeded bool     `json:"proceeded"`
	From      string   `json:"from,omitempty"`
	To        string   `json:"to,omitempty"`
	Skipped   []string `json:"skipped,omitempty"`
	Invalid   []string `json:"invalid,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Snapshot is the report data captured from a form.
type Snapshot struct {
	Form       string             `json:"form"`
	StepNumber int                `json:"step_number,omitempty"`
	StepCount  int                `json:"step_count"`
	Step       string             `json:"step,omitempty"`
	Branch     string             `json:"branch"`
	BranchKey  string             `json:"branch_key,omitempty"`
	Steps      []Step             `json:"steps"`
	Fields     []Field            `json:"fields"`
	Errors     []Message          `json:"errors"`
	Summary    []string           `json:"summary"`
	Outcome    *Outcome           `json:"outcome,omitempty"`
	Payload    navigation.Payload `json:"payload,omitempty"`
}

// Capture records the state of form. The last handled navigation trigger is
// included when there is one.
func Capture(form *engine.Form) Snapshot {
	snap := Snapshot{
		Form:    form.Label(),
		Summary: form.Summary(),
	}

	gate := form.Gate()
	current := form.CurrentStep()
	for idx, step := range gate.Steps() {
		snap.Steps = append(snap.Steps, Step{
			Index:     idx + 1,
			ID:        step.ID(),
			Displayed: step.Displayed(),
			Skipped:   gate.Skips(step),
		})
		if step == current {
			snap.StepNumber = idx + 1
			snap.Step = step.ID()
		}
	}
	snap.StepCount = len(snap.Steps)

	res := form.Resolve()
	snap.Branch = res.Kind.String()
	snap.BranchKey = res.Key

	ctrl := form.Visibility()
	for _, field := range ctrl.Fields() {
		st, _ := ctrl.State(field)
		snap.Fields = append(snap.Fields, Field{
			Name:               field.Key(),
			Visible:            st.Visible,
			OriginallyRequired: st.OriginallyRequired,
			Required:           field.Required(),
		})
	}

	for name, msg := range form.Errors() {
		snap.Errors = append(snap.Errors, Message{Field: name, Message: msg})
	}
	sort.Slice(snap.Errors, func(i, j int) bool {
		return snap.Errors[i].Field < snap.Errors[j].Field
	})

	if last := gate.Last(); last.Action != navigation.None {
		snap.Outcome = outcomeOf(last)
		snap.Payload = last.Payload
	}
	return snap
}

func outcomeOf(o navigation.Outcome) *Outcome {
	out := &Outcome{
		Action:    o.Action.String(),
		Proceeded: o.Proceeded,
		From:      o.From.ID(),
		To:        o.To.ID(),
		Invalid:   o.Result.Names(),
	}
	for _, step := range o.Skipped {
		out.Skipped = append(out.Skipped, step.ID())
	}
	if o.Err != nil && !errors.Is(o.Err, navigation.ErrNoSteps) {
		out.Error = o.Err.Error()
	}
	return out
}

// Result is the report data for a standalone validation pass.
type Result struct {
	Form    string    `json:"form"`
	Valid   bool      `json:"valid"`
	Invalid []Message `json:"invalid"`
}

// FromResult converts a validation result.
func FromResult(form string, res validation.Result) Result {
	out := Result{Form: form, Valid: res.Valid}
	for _, inv := range res.Invalid {
		out.Invalid = append(out.Invalid, Message{Field: inv.Name, Message: inv.Message})
	}
	return out
}

// Write renders the "form" template for every form to w.
func Write(w io.Writer, eng *Engine, forms ...*engine.Form) error {
	for _, form := range forms {
		if _, err := eng.Render("form", Capture(form), w); err != nil {
			return err
		}
	}
	return nil
}
