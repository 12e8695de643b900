package validation_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/radio"
	"github.com/goliatone/go-formrules/pkg/validation"
	"github.com/goliatone/go-formrules/pkg/visibility"
)

type fixture struct {
	doc   *dom.Document
	form  dom.Element
	orch  *validation.Orchestrator
	steps []dom.Element
}

func newFixture(t *testing.T, markup string, opts ...validation.Option) fixture {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form := doc.Query(dom.MustCompile("form"))
	reg := radio.NewRegistry()
	reg.Discover(form)
	visibility.New().SetupAll(form)

	orch, err := validation.NewOrchestrator(form, reg, opts...)
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}
	return fixture{
		doc:   doc,
		form:  form,
		orch:  orch,
		steps: form.QueryAll(dom.MustCompile(`[data-form="step"]`)),
	}
}

const branchForm = `<form>
<div data-form="step" id="s1">
  <input name="name" required>
  <input type="radio" name="route" value="a" data-go-to="A">
  <input type="radio" name="route" value="b" data-go-to="B">
  <div class="step_item" data-answer="A"><input name="a_field" required></div>
  <div class="step_item" data-answer="B"><input name="b_field" required></div>
</div>
<div data-form="step" id="s2" style="display:none">
  <input name="later" required>
</div>
</form>`

func TestBranchScenario(t *testing.T) {
	fx := newFixture(t, branchForm)
	step := fx.steps[0]

	res := fx.orch.ValidateStep(step)
	if diff := cmp.Diff([]string{"name"}, res.Names()); diff != "" {
		t.Fatalf("undetermined branch must skip both branches (-want +got):\n%s", diff)
	}

	dom.Check(dom.RadioGroup(step, "route")[0])
	res = fx.orch.ValidateStep(step)
	if diff := cmp.Diff([]string{"name", "a_field"}, res.Names()); diff != "" {
		t.Fatalf("only branch A fields must be validated (-want +got):\n%s", diff)
	}

	ok, reason := fx.orch.Eligible(dom.FindControl(step, "b_field"), step)
	if ok || reason != validation.ReasonInactiveBranch {
		t.Fatalf("b_field: got %v %q", ok, reason)
	}
}

func TestRoutingValidation(t *testing.T) {
	fx := newFixture(t, branchForm)
	step := fx.steps[0]

	res := fx.orch.ValidateRouting(step)
	if res.Valid || len(res.Invalid) != 1 || res.Invalid[0].Group != "route" {
		t.Fatalf("expected route group failure, got %+v", res)
	}
	if res.Invalid[0].Message != "Please select an option to continue" {
		t.Fatalf("unexpected routing message %q", res.Invalid[0].Message)
	}

	dom.Check(dom.RadioGroup(step, "route")[1])
	if res := fx.orch.ValidateRouting(step); !res.Valid {
		t.Fatalf("routing should pass once a branch is chosen: %+v", res)
	}
}

func TestValidateFormSkipsHiddenSteps(t *testing.T) {
	fx := newFixture(t, branchForm)
	res := fx.orch.ValidateForm()
	for _, name := range res.Names() {
		if name == "later" {
			t.Fatalf("fields of undisplayed steps must never be reported")
		}
	}

	fx.steps[1].SetDisplayed(true)
	res = fx.orch.ValidateForm()
	if diff := cmp.Diff([]string{"name", "later"}, res.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestStandardRequiredGroupReportedOnce(t *testing.T) {
	markup := `<form>
<div data-form="step">
  <div class="field-wrapper">
    <input type="radio" name="plan" value="basic" required>
    <input type="radio" name="plan" value="pro" required>
  </div>
  <input name="email" value="a@b.co" required>
</div>
</form>`
	var focused []string
	scheduler := validation.SchedulerFunc(func(delay time.Duration, fn func()) {
		if delay != 100*time.Millisecond {
			t.Errorf("unexpected focus delay %s", delay)
		}
		fn()
		focused = append(focused, "run")
	})
	fx := newFixture(t, markup, validation.WithScheduler(scheduler))

	res := fx.orch.ValidateForm()
	if len(res.Invalid) != 1 || res.Invalid[0].Group != "plan" {
		t.Fatalf("expected exactly one plan failure, got %+v", res.Invalid)
	}
	if res.Invalid[0].Message != "Please make a selection to continue" {
		t.Fatalf("unexpected radio message %q", res.Invalid[0].Message)
	}

	res = fx.orch.ValidateStep(fx.steps[0])
	if len(res.Invalid) != 1 {
		t.Fatalf("step pass should report the group once, got %+v", res.Invalid)
	}
	first := dom.RadioGroup(fx.form, "plan")[0]
	if !first.Focused() || len(focused) != 1 {
		t.Fatalf("first radio of the failing group should be focused")
	}

	dom.Check(first)
	if res := fx.orch.ValidateForm(); !res.Valid {
		t.Fatalf("expected valid form, got %+v", res.Invalid)
	}
}

func TestHiddenFieldsAreAlwaysValid(t *testing.T) {
	markup := `<form>
  <select name="state"><option value="California" selected>California</option></select>
  <div class="field-wrapper"><input name="F" required data-hide-if="state:equals:California"></div>
  <div data-conditional-hidden="true"><input type="radio" name="ghost" required></div>
</form>`
	fx := newFixture(t, markup)
	f := dom.FindControl(fx.form, "F")

	f.SetValue("")
	if !fx.orch.ValidateField(f) {
		t.Fatalf("hidden-marked field must validate")
	}
	ok, reason := fx.orch.Eligible(f, dom.Element{})
	if ok || reason != validation.ReasonHidden {
		t.Fatalf("got %v %q", ok, reason)
	}
	if res := fx.orch.ValidateForm(); !res.Valid {
		t.Fatalf("form with only hidden requirements should be valid: %+v", res.Invalid)
	}
}

func TestRequireForSubtypes(t *testing.T) {
	markup := `<form>
<div data-form="step" data-step-subtype="Business">
  <input name="company" data-require-for-subtypes="business, nonprofit">
  <input name="ssn" data-require-for-subtypes="individual">
</div>
<div data-form="step" id="routed">
  <input type="radio" name="kind" value="i" data-go-to="individual" checked>
  <div class="step_item" data-answer="individual">
    <input name="dob" data-require-for-subtypes="Individual">
  </div>
</div>
</form>`
	fx := newFixture(t, markup)

	res := fx.orch.ValidateStep(fx.steps[0])
	if diff := cmp.Diff([]string{"company"}, res.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	routed := fx.steps[1]
	if got := fx.orch.Subtype(dom.FindControl(routed, "dob")); got != "individual" {
		t.Fatalf("subtype should come from the active branch, got %q", got)
	}
	res = fx.orch.ValidateStep(routed)
	if diff := cmp.Diff([]string{"dob"}, res.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateFieldShowsAndHidesMessage(t *testing.T) {
	markup := `<form>
  <div class="field-wrapper">
    <input type="checkbox" name="terms" required>
    <div class="error-state" style="display:none">You must accept</div>
  </div>
  <input name="fieldless">
</form>`
	fx := newFixture(t, markup)
	terms := dom.FindControl(fx.form, "terms")
	node := fx.form.Query(dom.MustCompile(".error-state"))

	if fx.orch.ValidateField(terms) {
		t.Fatalf("unchecked required checkbox must fail")
	}
	if !node.Displayed() {
		t.Fatalf("error node should be displayed")
	}
	if got := fx.orch.Presenter().Messages()["terms"]; got != "You must accept" {
		t.Fatalf("unexpected message %q", got)
	}

	terms.SetChecked(true)
	if !fx.orch.ValidateField(terms) || node.Displayed() {
		t.Fatalf("checked checkbox must pass and hide the message")
	}
	if !fx.orch.ValidateField(dom.FindControl(fx.form, "fieldless")) {
		t.Fatalf("optional fields are valid")
	}
}

func TestNewOrchestratorRequiresCollaborators(t *testing.T) {
	if _, err := validation.NewOrchestrator(dom.Element{}, radio.NewRegistry()); err == nil {
		t.Fatalf("expected error for missing root")
	}
	doc := dom.MustParseString(`<form></form>`)
	if _, err := validation.NewOrchestrator(doc.Body(), nil); err == nil {
		t.Fatalf("expected error for missing registry")
	}
}

func TestResultMerge(t *testing.T) {
	a := validation.Result{Valid: true}
	b := validation.Result{Invalid: []validation.Invalid{{Name: "x"}}}
	merged := a.Merge(b)
	if merged.Valid || len(merged.Invalid) != 1 {
		t.Fatalf("unexpected merge %+v", merged)
	}
	if !a.Merge(validation.Result{Valid: true}).Valid {
		t.Fatalf("merging valid results stays valid")
	}
}

func TestSameNameControlsKeepTheirOwnMessages(t *testing.T) {
	fx := newFixture(t, `<form>
  <div class="field-wrapper">
    <input type="checkbox" name="consent" value="terms" required>
    <div class="error-state" style="display:none">Accept the terms</div>
  </div>
  <div class="field-wrapper">
    <input type="checkbox" name="consent" value="privacy" required>
    <div class="error-state" style="display:none">Accept the privacy policy</div>
  </div>
</form>`)

	res := fx.orch.ValidateForm()
	var got []string
	for _, inv := range res.Invalid {
		got = append(got, inv.Name+": "+inv.Message)
	}
	want := []string{
		"consent: Accept the terms",
		"consent: Accept the privacy policy",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}
