package errormsg_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/errormsg"
)

const messagesForm = `<form>
<div data-form="step">
  <input name="email" aria-describedby="email-help email-err">
  <p id="email-err" class="error-state" style="display:none">Email is required</p>

  <div class="field-wrapper">
    <input name="phone">
    <div class="text-size-tiny error-state" style="display:none">Phone is required</div>
  </div>

  <div class="field-wrapper"><input name="city"></div>
  <div class="error-state" style="display:none">City required</div>

  <input name="zip">
  <span data-error-for="zip" style="display:none">Zip?</span>

  <div class="radio-group">
    <div class="radio-component">
      <input type="radio" name="plan" value="a">
    </div>
  </div>
  <label>Pick</label>
  <div class="error-state">Something else</div>
  <div class="error-state" style="display:none">Please select a plan</div>
</div>
</form>`

func TestLocatorStrategies(t *testing.T) {
	doc := dom.MustParseString(messagesForm)
	body := doc.Body()
	loc := errormsg.NewLocator(config.Defaults())

	tests := []struct {
		field    string
		strategy string
		text     string
	}{
		{"email", "declared", "Email is required"},
		{"zip", "declared", "Zip?"},
		{"phone", "structural", "Phone is required"},
		{"city", "structural", "City required"},
		{"plan", "proximity", "Please select a plan"},
	}
	for _, tt := range tests {
		node, strategy := loc.Locate(dom.FindControl(body, tt.field))
		if strategy != tt.strategy {
			t.Errorf("%s: strategy = %q, want %q", tt.field, strategy, tt.strategy)
			continue
		}
		if node.Text() != tt.text {
			t.Errorf("%s: text = %q, want %q", tt.field, node.Text(), tt.text)
		}
	}
}

func TestLocatorCustomStrategies(t *testing.T) {
	doc := dom.MustParseString(messagesForm)
	never := errormsg.StrategyFunc("never", func(dom.Element) dom.Element { return dom.Element{} })
	loc := errormsg.NewLocator(config.Defaults(), never)

	node, strategy := loc.Locate(dom.FindControl(doc.Body(), "email"))
	if !node.IsZero() || strategy != "" {
		t.Fatalf("expected no match, got %q", strategy)
	}
}

func TestPresenterShowHide(t *testing.T) {
	doc := dom.MustParseString(messagesForm)
	body := doc.Body()
	p := errormsg.NewPresenter()

	phone := dom.FindControl(body, "phone")
	node := doc.Query(dom.MustCompile(".text-size-tiny"))

	p.Show(phone, p.Message(phone, "fallback"))
	if !node.Displayed() {
		t.Fatalf("error node should be displayed")
	}
	if phone.AttrOr("aria-invalid", "") != "true" {
		t.Fatalf("field should be marked aria-invalid")
	}
	if diff := cmp.Diff(map[string]string{"phone": "Phone is required"}, p.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}

	p.Hide(phone)
	if node.Displayed() {
		t.Fatalf("error node should be hidden again")
	}
	if phone.HasAttr("aria-invalid") {
		t.Fatalf("aria-invalid should be removed")
	}
	if len(p.Messages()) != 0 {
		t.Fatalf("messages should be empty")
	}
}

func TestPresenterCustomMessageIsSanitised(t *testing.T) {
	doc := dom.MustParseString(`<form>
  <div class="field-wrapper" data-validation-message="Pick &lt;b&gt;one&lt;/b&gt; plan">
    <input type="radio" name="plan" value="a">
    <div class="error-state" style="display:none">Required</div>
  </div>
  <div><input name="plain"></div>
</form>`)
	body := doc.Body()
	p := errormsg.NewPresenter()

	plan := dom.FindControl(body, "plan")
	msg := p.Message(plan, "unused")
	if msg != "Pick one plan" {
		t.Fatalf("unexpected message %q", msg)
	}
	p.Show(plan, msg)
	if got := doc.Query(dom.MustCompile(".error-state")).Text(); got != "Pick one plan" {
		t.Fatalf("node text = %q", got)
	}

	plain := dom.FindControl(body, "plain")
	if got := p.Message(plain, " Default text "); got != "Default text" {
		t.Fatalf("expected fallback, got %q", got)
	}
	p.Show(plain, "Default text")
	p.Show(dom.FindControl(body, "plain"), "Default text")

	if diff := cmp.Diff([]string{"Pick one plan", "Default text"}, p.Summary()); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	p.Clear(body)
	if len(p.Messages()) != 0 || p.Summary() != nil {
		t.Fatalf("clear should drop every message")
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"":                                   "",
		"  plain  ":                          "plain",
		"<script>alert(1)</script>Required":  "Required",
		"Fish &amp; chips\n  are   required": "Fish & chips are required",
	}
	for in, want := range tests {
		if got := errormsg.Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStructuralIgnoresOtherFieldsNodes(t *testing.T) {
	doc := dom.MustParseString(`<form>
<div data-form="step">
  <input name="email" required>
  <div class="field-wrapper">
    <input name="tax">
    <div class="error-message" style="display:none">Enter your tax ID</div>
  </div>
</div>
</form>`)
	body := doc.Body()
	loc := errormsg.NewLocator(config.Defaults())

	node, strategy := loc.Locate(dom.FindControl(body, "email"))
	if !node.IsZero() {
		t.Fatalf("email should not borrow the tax node (strategy %q)", strategy)
	}

	p := errormsg.NewPresenter()
	email := dom.FindControl(body, "email")
	if got := p.Message(email, "This field is required"); got != "This field is required" {
		t.Fatalf("unexpected message %q", got)
	}

	node, strategy = loc.Locate(dom.FindControl(body, "tax"))
	if strategy != "structural" || node.Text() != "Enter your tax ID" {
		t.Fatalf("tax: strategy %q text %q", strategy, node.Text())
	}
}
