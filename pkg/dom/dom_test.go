package dom_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrules/pkg/dom"
)

const sampleForm = `<form id="signup">
  <div data-form="step" id="s1">
    <div class="field-wrapper">
      <input name="email" id="email" value=" a@b.co " required>
    </div>
    <select name="state">
      <option value="">Pick one</option>
      <option value="California">California</option>
      <option>Nevada</option>
    </select>
    <textarea name="notes">hello</textarea>
    <input type="radio" name="plan" value="basic">
    <input type="radio" name="plan" value="pro" checked>
    <input type="checkbox" name="terms">
  </div>
  <div data-form="step" id="s2" style="display: none; color: red"></div>
</form>`

func TestControlValues(t *testing.T) {
	doc, err := dom.ParseString(sampleForm)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form := doc.Body()

	email := dom.FindControl(form, "email")
	if email.IsZero() {
		t.Fatalf("email not found")
	}
	if email.Value() != " a@b.co " || !email.Required() {
		t.Fatalf("email: value %q required %v", email.Value(), email.Required())
	}

	state := dom.FindControl(form, "state")
	if got := state.Value(); got != "" {
		t.Fatalf("first option is selected by default, got %q", got)
	}
	state.SetValue("Nevada")
	if got := state.Value(); got != "Nevada" {
		t.Fatalf("option text is used when value is absent, got %q", got)
	}
	state.SetValue("California")
	if got := state.Value(); got != "California" {
		t.Fatalf("state = %q", got)
	}

	notes := dom.FindControl(form, "notes")
	if got := notes.Value(); got != "hello" {
		t.Fatalf("notes = %q", got)
	}
	notes.SetValue("")
	if got := notes.Value(); got != "" {
		t.Fatalf("notes after clear = %q", got)
	}

	terms := dom.FindControl(form, "terms")
	if !terms.IsCheckbox() || terms.Value() != "on" || terms.Checked() {
		t.Fatalf("terms: checkbox=%v value=%q checked=%v", terms.IsCheckbox(), terms.Value(), terms.Checked())
	}
}

func TestSetCheckedUnchecksSiblings(t *testing.T) {
	doc := dom.MustParseString(sampleForm)
	form := doc.Body()

	radios := dom.RadioGroup(form, "plan")
	if len(radios) != 2 {
		t.Fatalf("expected 2 radios, got %d", len(radios))
	}
	if got := dom.CheckedRadio(form, "plan").Value(); got != "pro" {
		t.Fatalf("checked = %q", got)
	}

	radios[0].SetChecked(true)
	if !radios[0].Checked() || radios[1].Checked() {
		t.Fatalf("checking basic must uncheck pro")
	}
	if got := dom.CheckedRadio(form, "plan").Value(); got != "basic" {
		t.Fatalf("checked = %q", got)
	}
}

func TestDisplayAndRendered(t *testing.T) {
	doc := dom.MustParseString(sampleForm)
	steps := doc.QueryAll(dom.MustCompile(`[data-form="step"]`))
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}

	if !steps[0].Displayed() || steps[1].Displayed() {
		t.Fatalf("only the first step starts displayed")
	}
	if got := steps[1].Style("color"); got != "red" {
		t.Fatalf("color = %q", got)
	}

	steps[1].SetDisplayed(true)
	if !steps[1].Displayed() {
		t.Fatalf("step 2 should be displayed")
	}
	if got := steps[1].AttrOr("style", ""); got != "color: red" {
		t.Fatalf("style = %q", got)
	}

	email := dom.FindControl(doc.Body(), "email")
	if !email.Rendered() {
		t.Fatalf("email should be rendered")
	}
	steps[0].SetDisplayed(false)
	if !email.Displayed() || email.Rendered() {
		t.Fatalf("a hidden ancestor stops rendering but not the field's own display")
	}
}

func TestEventsBubbleAndUnsubscribe(t *testing.T) {
	doc := dom.MustParseString(sampleForm)
	form := doc.Query(dom.MustCompile("form"))
	email := dom.FindControl(form, "email")

	var seen []string
	remove := email.AddEventListener(dom.EventChange, func(ev *dom.Event) {
		seen = append(seen, "field:"+ev.Target.Value())
	})
	form.AddEventListener(dom.EventChange, func(ev *dom.Event) {
		seen = append(seen, "form:"+ev.Current.ID())
		ev.PreventDefault()
	})

	ev := dom.Change(email, "x@y.z")
	if !ev.DefaultPrevented() {
		t.Fatalf("the form listener prevented the default")
	}
	if diff := cmp.Diff([]string{"field:x@y.z", "form:signup"}, seen); diff != "" {
		t.Fatalf("dispatch order mismatch (-want +got):\n%s", diff)
	}

	remove()
	seen = nil
	dom.Input(email, "typing")
	dom.Change(email, "z")
	if diff := cmp.Diff([]string{"form:signup"}, seen); diff != "" {
		t.Fatalf("after remove (-want +got):\n%s", diff)
	}
	if n := email.ListenerCount(dom.EventChange); n != 0 {
		t.Fatalf("listeners left: %d", n)
	}
}

func TestClosestContainsAndRender(t *testing.T) {
	doc := dom.MustParseString(sampleForm)
	email := dom.FindControl(doc.Body(), "email")

	if email.Closest(dom.MustCompile(".field-wrapper")).IsZero() {
		t.Fatalf("wrapper not found")
	}
	step := email.Closest(dom.MustCompile(`[data-form="step"]`))
	if step.ID() != "s1" {
		t.Fatalf("step = %q", step.ID())
	}
	if !step.Contains(email) || email.Contains(step) {
		t.Fatalf("containment is one way")
	}

	email.SetRequired(false)
	email.AddClass("is-invalid")
	out := doc.String()
	if !strings.Contains(out, `class="is-invalid"`) {
		t.Fatalf("class missing from %s", out)
	}
	if strings.Contains(out, `required=""`) {
		t.Fatalf("required should be gone from %s", out)
	}
}

func TestCompileRejectsBadSelector(t *testing.T) {
	for _, sel := range []string{"[data-form=", "  "} {
		if _, err := dom.Compile(sel); err == nil {
			t.Errorf("Compile(%q) should fail", sel)
		}
	}
}

func TestFocus(t *testing.T) {
	doc := dom.MustParseString(sampleForm)
	radio := dom.RadioGroup(doc.Body(), "plan")[0]
	radio.Focus()
	if !radio.Focused() || doc.Focused() != radio {
		t.Fatalf("radio should hold focus")
	}
}
