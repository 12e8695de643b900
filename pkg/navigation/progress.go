package navigation

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-formrules/pkg/dom"
)

// Progress locates the current step within the form.
type Progress struct {
	Index int
	Total int
}

// Percent is the share of steps reached, the current one included.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Index+1) / float64(p.Total) * 100
}

// Counter renders the position as "2 of 3".
func (p Progress) Counter() string {
	if p.Total == 0 {
		return ""
	}
	return fmt.Sprintf("%d of %d", p.Index+1, p.Total)
}

// Progress returns the position of the current step.
func (g *Gate) Progress() Progress {
	return Progress{Index: g.current, Total: len(g.steps)}
}

// numberSteps writes the one-based position into steps that carry no
// explicit number.
func (g *Gate) numberSteps() {
	attr := g.cfg.Attributes.StepNumber
	for idx, step := range g.steps {
		if !step.HasAttr(attr) {
			step.SetAttr(attr, strconv.Itoa(idx+1))
		}
	}
}

// StepNumber returns the number of step, falling back to its position.
func (g *Gate) StepNumber(step dom.Element) string {
	if n, ok := step.Attr(g.cfg.Attributes.StepNumber); ok && n != "" {
		return n
	}
	for idx, candidate := range g.steps {
		if candidate == step {
			return strconv.Itoa(idx + 1)
		}
	}
	return ""
}

// renderProgress updates progress bars, step indicators and counters inside
// the form root. Indicators are matched to steps by position.
func (g *Gate) renderProgress() {
	p := g.Progress()
	pct := strconv.FormatFloat(p.Percent(), 'f', -1, 64)
	for _, bar := range g.root.QueryAll(g.cfg.Match.Progress) {
		bar.SetStyle("width", pct+"%")
		bar.SetAttr("aria-valuenow", pct)
	}
	for idx, indicator := range g.root.QueryAll(g.cfg.Match.StepIndicator) {
		toggleClass(indicator, "active", idx == p.Index)
		toggleClass(indicator, "completed", idx < p.Index)
	}
	counter := p.Counter()
	for _, el := range g.root.QueryAll(g.cfg.Match.StepCounter) {
		el.SetText(counter)
	}
}

func toggleClass(el dom.Element, class string, on bool) {
	if on {
		el.AddClass(class)
		return
	}
	el.RemoveClass(class)
}
