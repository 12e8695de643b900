package report_test

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/engine"
	"github.com/goliatone/go-formrules/pkg/report"
	"github.com/goliatone/go-formrules/pkg/validation"
)

const routedForm = `<form id="routing">
<div data-form="step" id="s1">
  <select name="state"><option value="">-</option><option>California</option></select>
  <input name="zip" required data-hide-if="state:equals:California">
  <input type="radio" name="route" value="a" data-go-to="A">
  <div class="step_item" data-answer="A"><input name="a_field"></div>
  <button data-form="next-btn" id="next">Next</button>
</div>
<div data-form="step" id="s2"><input name="final"></div>
</form>`

func attach(t *testing.T) (*dom.Document, *engine.Form) {
	t.Helper()
	doc := dom.MustParseString(routedForm)
	forms, err := engine.Attach(doc)
	require.NoError(t, err)
	t.Cleanup(forms[0].Close)
	return doc, forms[0]
}

func TestCaptureBlockedNext(t *testing.T) {
	doc, form := attach(t)
	dom.Click(doc.Query(dom.MustCompile("#next")))

	snap := report.Capture(form)
	assert.Equal(t, "routing", snap.Form)
	assert.Equal(t, 1, snap.StepNumber)
	assert.Equal(t, 2, snap.StepCount)
	assert.Equal(t, "undetermined", snap.Branch)
	require.Len(t, snap.Fields, 1)
	assert.Equal(t, report.Field{Name: "zip", Visible: true, OriginallyRequired: true, Required: true}, snap.Fields[0])
	require.NotNil(t, snap.Outcome)
	assert.Equal(t, "next", snap.Outcome.Action)
	assert.False(t, snap.Outcome.Proceeded)
	assert.Equal(t, []string{"zip", "route"}, snap.Outcome.Invalid)
	assert.Equal(t, []report.Message{
		{Field: "route", Message: "Please select an option to continue"},
		{Field: "zip", Message: "This field is required"},
	}, snap.Errors)
}

func TestRenderFormTemplate(t *testing.T) {
	doc, form := attach(t)
	require.NoError(t, form.SetValue("state", "California"))
	require.NoError(t, form.Check("route", "a"))
	dom.Click(doc.Query(dom.MustCompile("#next")))

	eng, err := report.New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, eng, form))
	out := buf.String()

	assert.Contains(t, out, "form routing\n")
	assert.Contains(t, out, "step: 2/2 (s2)\n")
	assert.Contains(t, out, "field zip: hidden, not required\n")
	assert.Contains(t, out, "errors: none\n")
	assert.Contains(t, out, "last action: next proceeded to s2\n")
}

func TestRenderResult(t *testing.T) {
	eng, err := report.New()
	require.NoError(t, err)

	res := validation.Result{Invalid: []validation.Invalid{
		{Name: "email", Message: "This field is required"},
		{Name: "plan", Group: "plan", Message: "Please make a selection to continue"},
	}}
	out, err := eng.Render("result", report.FromResult("signup", res))
	require.NoError(t, err)
	assert.Equal(t, "form signup: invalid\n  email: This field is required\n  plan: Please make a selection to continue\n\n", out)
}

func TestCustomTemplatesAndGlobals(t *testing.T) {
	files := fstest.MapFS{
		"short.txt": &fstest.MapFile{Data: []byte(`{{ product }}: {{ form }} {{ valid|status }}`)},
	}
	eng, err := report.New(
		report.WithFS(files),
		report.WithExtension("txt"),
		report.WithGlobalData(map[string]any{"product": "formrules"}),
	)
	require.NoError(t, err)

	out, err := eng.Render("short", report.Result{Form: "a", Valid: true})
	require.NoError(t, err)
	assert.Equal(t, "formrules: a yes", out)

	out, err = eng.RenderString(`{{ form|trim }}`, map[string]any{"form": "  b "})
	require.NoError(t, err)
	assert.Equal(t, "b", out)

	_, err = eng.Render("missing", nil)
	assert.Error(t, err)
}
