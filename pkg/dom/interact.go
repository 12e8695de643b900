package dom

// The helpers below simulate a user interaction: they mutate the control and
// dispatch exactly one event, so each interaction produces at most one
// evaluation in listeners registered for that event.

// Input types value into a text control and dispatches EventInput.
func Input(el Element, value string) *Event {
	el.SetValue(value)
	return el.Dispatch(EventInput)
}

// Change commits value and dispatches EventChange.
func Change(el Element, value string) *Event {
	el.SetValue(value)
	return el.Dispatch(EventChange)
}

// Check checks a radio or checkbox and dispatches EventChange.
func Check(el Element) *Event {
	el.SetChecked(true)
	return el.Dispatch(EventChange)
}

// Uncheck unchecks a checkbox and dispatches EventChange.
func Uncheck(el Element) *Event {
	el.SetChecked(false)
	return el.Dispatch(EventChange)
}

// Click dispatches EventClick. Callers inspect DefaultPrevented on the
// returned event to learn whether the default action was cancelled.
func Click(el Element) *Event {
	return el.Dispatch(EventClick)
}
