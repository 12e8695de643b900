package walker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/engine"
	"github.com/goliatone/go-formrules/pkg/navigation"
	"github.com/goliatone/go-formrules/pkg/walker"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool
	prompts   []string
	infos     []string
	inputPos  int
	selectPos int
	confPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg walker.InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg walker.ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confPos]
	s.confPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg walker.SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

const signup = `<form id="signup">
<div data-form="step" id="s1">
  <label for="name">Your name</label><input id="name" name="name" required>
  <label><input type="radio" name="route" value="a" data-go-to="A"> Personal</label>
  <label><input type="radio" name="route" value="b" data-go-to="B"> Business</label>
  <div class="step_item" data-answer="A"><input name="nickname"></div>
  <div class="step_item" data-answer="B"><input name="company" required></div>
  <input type="hidden" name="token" value="t1">
</div>
<div data-form="step" id="s2">
  <select name="size"><option value="">Pick</option><option value="s">Small</option></select>
  <input type="checkbox" name="terms" value="yes" required>
</div>
</form>`

func newForm(t *testing.T, markup string) *engine.Form {
	t.Helper()
	forms, err := engine.Attach(dom.MustParseString(markup))
	require.NoError(t, err)
	t.Cleanup(forms[0].Close)
	return forms[0]
}

func TestRunWalksBranchesToSubmission(t *testing.T) {
	form := newForm(t, signup)
	driver := &stubDriver{
		inputs:    []string{"", "ACME", "Ada", "ACME"},
		selectIdx: []int{1, 1, 1, 1},
		confirm:   []bool{true},
	}
	w, err := walker.New(form, walker.WithPromptDriver(driver))
	require.NoError(t, err)

	out, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, navigation.Submit, out.Action)
	assert.True(t, out.Proceeded, "expected a proceeding submission")

	assert.Equal(t, []string{
		"Your name", "route", "company",
		"Your name", "route", "company",
		"size", "terms", "Continue with",
	}, driver.prompts)
	assert.Equal(t, []string{
		"next blocked:\n  name: This field is required",
		"submitted company=ACME&name=Ada&nickname=&route=b&size=s&terms=yes&token=t1",
	}, driver.infos)
}

func TestRunStopsOnDriverError(t *testing.T) {
	form := newForm(t, signup)
	w, err := walker.New(form, walker.WithPromptDriver(&stubDriver{}))
	require.NoError(t, err)

	_, err = w.Run(context.Background())
	assert.Error(t, err, "the unscripted prompt fails the walk")
}

func TestRunHonoursMaxRounds(t *testing.T) {
	form := newForm(t, `<form><input name="email" required></form>`)
	driver := &stubDriver{inputs: []string{"", "", ""}}
	w, err := walker.New(form, walker.WithPromptDriver(driver), walker.WithMaxRounds(2))
	require.NoError(t, err)

	_, err = w.Run(context.Background())
	assert.ErrorIs(t, err, walker.ErrTooManyRounds)
	assert.Len(t, driver.infos, 2, "each blocked submission is explained")
}

func TestNewRequiresForm(t *testing.T) {
	_, err := walker.New(nil)
	assert.Error(t, err)
}
