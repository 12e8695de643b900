package branch_test

import (
	"testing"

	"github.com/goliatone/go-formrules/pkg/branch"
	"github.com/goliatone/go-formrules/pkg/dom"
)

const routedStep = `<form>
<div data-form="step" id="step">
  <label><input type="radio" name="route" value="a" data-go-to="A"> A</label>
  <label><input type="radio" name="route" value="b" data-go-to="B"> B</label>
  <div class="step_item" data-answer="A"><input name="a1" required></div>
  <div class="step_item" data-answer="B"><input name="b1" required></div>
  <input name="common">
</div>
</form>`

var stepSel = dom.MustCompile("#step")

func TestResolveRouted(t *testing.T) {
	doc := dom.MustParseString(routedStep)
	step := doc.Query(stepSel)
	r := branch.New()

	res := r.Resolve(step)
	if res.Kind != branch.Undetermined || !res.Branch.IsZero() {
		t.Fatalf("nothing checked: got %v with branch %v", res.Kind, res.Branch)
	}

	dom.Check(dom.RadioGroup(step, "route")[0])
	res = r.Resolve(step)
	if res.Kind != branch.Active {
		t.Fatalf("kind = %v, want active", res.Kind)
	}
	if res.Key != "A" || res.Fallback {
		t.Fatalf("key = %q fallback = %v", res.Key, res.Fallback)
	}
	if got := res.Branch.AttrOr("data-answer", ""); got != "A" {
		t.Fatalf("branch answer = %q", got)
	}
}

func TestResolveRoutedIgnoresVisibilityHeuristic(t *testing.T) {
	doc := dom.MustParseString(routedStep)
	step := doc.Query(stepSel)
	r := branch.New()

	branches := r.Branches(step)
	if len(branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(branches))
	}
	branches[0].SetDisplayed(false)

	dom.Check(dom.RadioGroup(step, "route")[0])
	res := r.Resolve(step)
	if res.Kind != branch.Active || res.Branch != branches[0] {
		t.Fatalf("a routed choice wins even when its branch is not rendered, got %v %v", res.Kind, res.Branch)
	}
}

func TestResolveNoBranches(t *testing.T) {
	doc := dom.MustParseString(`<div data-form="step" id="step"><input name="x"></div>`)
	if got := branch.New().Resolve(doc.Query(stepSel)).Kind; got != branch.None {
		t.Fatalf("kind = %v, want none", got)
	}
}

func TestResolveFallbackWithoutRoutingRadios(t *testing.T) {
	doc := dom.MustParseString(`<div data-form="step" id="step">
  <div class="step_item" data-answer="X" style="display:none"><input name="x"></div>
  <div class="step_item" data-answer="Y"><input name="y"></div>
</div>`)
	step := doc.Query(stepSel)
	r := branch.New()

	res := r.Resolve(step)
	if res.Kind != branch.Active || !res.Fallback || res.Key != "Y" {
		t.Fatalf("fallback: got %+v", res)
	}

	r.Branches(step)[1].SetDisplayed(false)
	if got := r.Resolve(step).Kind; got != branch.Undetermined {
		t.Fatalf("no visible branch: kind = %v", got)
	}
}

func TestResolveUnknownRoutingKey(t *testing.T) {
	doc := dom.MustParseString(`<div data-form="step" id="step">
  <input type="radio" name="route" data-go-to="C" checked>
  <div class="step_item" data-answer="A"></div>
</div>`)
	if got := branch.New().Resolve(doc.Query(stepSel)).Kind; got != branch.Undetermined {
		t.Fatalf("kind = %v, want undetermined", got)
	}
}

func TestBranchOf(t *testing.T) {
	doc := dom.MustParseString(routedStep)
	step := doc.Query(stepSel)
	r := branch.New()

	if got := r.BranchOf(dom.FindControl(step, "a1"), step).AttrOr("data-answer", ""); got != "A" {
		t.Fatalf("a1 branch = %q", got)
	}
	if !r.BranchOf(dom.FindControl(step, "common"), step).IsZero() {
		t.Fatalf("common sits outside every branch")
	}
}

func TestKindString(t *testing.T) {
	tests := map[branch.Kind]string{
		branch.Active:       "active",
		branch.Undetermined: "undetermined",
		branch.None:         "none",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
