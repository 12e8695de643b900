package summary_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/summary"
)

const application = `<form id="apply">
<div data-form="step" data-step-type="contact" id="s1">
  <div class="field-wrapper" id="name-wrapper"><input name="full_name" data-step-field-name="name"></div>
  <select name="country" data-step-field-name="country">
    <option value="">Choose a country</option>
    <option value="us">United States</option>
  </select>
  <input type="checkbox" name="news" data-step-field-name="newsletter">
  <input type="radio" name="route" value="solo" data-go-to="solo" data-step-field-name="route">
  <input type="radio" name="route" value="team" data-go-to="team" data-step-field-name="route">
  <div class="step_item" data-answer="solo"><input name="nick" data-step-field-name="nick"></div>
  <div class="step_item" data-answer="team"><input name="team" data-step-field-name="team"></div>
  <input name="notes">
</div>
<div data-form="step" data-step-type="review" data-step-number="2" id="s2">
  <div data-summary-type="contact" data-summary-number="1" id="card">
    <span data-summary-field="name" id="t-name"></span>
    <span data-summary-field="country" id="t-country"></span>
    <span data-summary-field="newsletter" id="t-newsletter"></span>
    <span data-summary-field="route" id="t-route"></span>
    <span data-summary-field="nick" id="t-nick"></span>
    <span data-summary-field="team" id="t-team"></span>
    <span data-summary-field="phone" id="t-phone">n/a</span>
  </div>
  <div data-summary-type="contact" data-summary-number="3" id="other">
    <span data-summary-field="name" id="t-other"></span>
  </div>
</div>
</form>`

func setup(t *testing.T) (*dom.Document, *summary.Cards) {
	t.Helper()
	doc := dom.MustParseString(application)
	cards, err := summary.New(doc.Query(dom.MustCompile("form")))
	if err != nil {
		t.Fatalf("new cards: %v", err)
	}
	t.Cleanup(cards.Attach())
	return doc, cards
}

func byID(doc *dom.Document, id string) dom.Element {
	return doc.Query(dom.MustCompile("#" + id))
}

func field(doc *dom.Document, name string) dom.Element {
	return dom.FindControl(doc.Body(), name)
}

func texts(doc *dom.Document, ids ...string) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = byID(doc, id).Text()
	}
	return out
}

func TestCardsStartHidden(t *testing.T) {
	doc, _ := setup(t)
	for _, id := range []string{"card", "other"} {
		if byID(doc, id).Displayed() {
			t.Fatalf("card %s should start hidden", id)
		}
	}
}

func TestAnswersFillMatchingCards(t *testing.T) {
	doc, cards := setup(t)

	dom.Change(field(doc, "full_name"), "Ada Lovelace")
	dom.Change(field(doc, "country"), "us")
	dom.Check(field(doc, "news"))
	dom.Input(field(doc, "nick"), "ada")
	dom.Check(dom.RadioGroup(doc.Body(), "route")[1])
	dom.Input(field(doc, "team"), "Analytical")

	want := []summary.Entry{
		{Type: "contact", Number: "1", Field: "name", Value: "Ada Lovelace"},
		{Type: "contact", Number: "1", Field: "country", Value: "United States"},
		{Type: "contact", Number: "1", Field: "newsletter", Value: "Yes"},
		{Type: "contact", Number: "1", Field: "route", Value: "team"},
		{Type: "contact", Number: "1", Field: "nick", Value: ""},
		{Type: "contact", Number: "1", Field: "team", Value: "Analytical"},
	}
	if diff := cmp.Diff(want, cards.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	got := texts(doc, "t-name", "t-country", "t-newsletter", "t-route", "t-nick", "t-team", "t-phone", "t-other")
	wantTexts := map[string]string{
		"t-name":       "Ada Lovelace",
		"t-country":    "United States",
		"t-newsletter": "Yes",
		"t-route":      "team",
		"t-nick":       "", // the solo branch was not chosen
		"t-team":       "Analytical",
		"t-phone":      "n/a",
		"t-other":      "",
	}
	if diff := cmp.Diff(wantTexts, got); diff != "" {
		t.Fatalf("card text mismatch (-want +got):\n%s", diff)
	}

	if shown := cards.Reveal(); shown != 1 {
		t.Fatalf("Reveal() = %d, want 1", shown)
	}
	if !byID(doc, "card").Displayed() || byID(doc, "other").Displayed() {
		t.Fatalf("only the filled card is displayed")
	}
}

func TestHiddenFieldsDropOut(t *testing.T) {
	doc, cards := setup(t)

	dom.Change(field(doc, "full_name"), "Ada")
	cards.Reveal()
	if !byID(doc, "card").Displayed() {
		t.Fatalf("card with an answer should be displayed")
	}

	byID(doc, "name-wrapper").SetAttr("data-conditional-hidden", "true")
	cards.Refresh()
	if got := byID(doc, "t-name").Text(); got != "" {
		t.Fatalf("hidden field still summarised as %q", got)
	}

	// The static phone target keeps the card filled.
	byID(doc, "t-phone").SetText("")
	if shown := cards.Reveal(); shown != 0 {
		t.Fatalf("Reveal() = %d, want 0", shown)
	}
	if byID(doc, "card").Displayed() {
		t.Fatalf("emptied card should be hidden again")
	}
}

func TestCloseStopsUpdates(t *testing.T) {
	doc := dom.MustParseString(application)
	cards, err := summary.New(doc.Query(dom.MustCompile("form")))
	if err != nil {
		t.Fatalf("new cards: %v", err)
	}
	detach := cards.Attach()
	detach()

	dom.Change(field(doc, "full_name"), "Ada")
	if got := byID(doc, "t-name").Text(); got != "" {
		t.Fatalf("detached cards were updated to %q", got)
	}
	cards.Refresh()
	if got := byID(doc, "t-name").Text(); got != "Ada" {
		t.Fatalf("explicit refresh wrote %q", got)
	}
}

func TestAnswer(t *testing.T) {
	doc := dom.MustParseString(`<form>
<select id="placeholder"><option value="">Pick</option><option value="a">A</option></select>
<select id="picked"><option value="">Pick</option><option value="a" selected> Option A </option></select>
<input type="checkbox" id="valued" value="weekly" checked>
<input type="checkbox" id="unchecked" value="weekly">
<textarea id="notes">  some notes </textarea>
<input type="radio" name="size" id="small" value="s">
<input type="radio" name="size" id="large" value="l" checked>
</form>`)
	scope := doc.Query(dom.MustCompile("form"))

	got := map[string]string{}
	for _, id := range []string{"placeholder", "picked", "valued", "unchecked", "notes", "small"} {
		got[id] = summary.Answer(scope, byID(doc, id))
	}
	want := map[string]string{
		"placeholder": "",
		"picked":      "Option A",
		"valued":      "weekly",
		"unchecked":   "",
		"notes":       "some notes",
		"small":       "l",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRequiresRoot(t *testing.T) {
	if _, err := summary.New(dom.Element{}); err == nil {
		t.Fatalf("expected an error for a zero root")
	}
}
