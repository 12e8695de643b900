package dom

// EventType names an event dispatched through the host tree.
type EventType string

const (
	// EventInput fires while a text value is being edited.
	EventInput EventType = "input"
	// EventChange fires when a value is committed (select, radio, checkbox,
	// text on blur).
	EventChange EventType = "change"
	// EventClick fires for activation of buttons and links.
	EventClick EventType = "click"
	// EventFocus fires when an element receives focus.
	EventFocus EventType = "focus"
)

// Event is passed to listeners. Events bubble from the target to the root.
type Event struct {
	Type    EventType
	Target  Element
	Current Element

	defaultPrevented bool
	stopped          bool
}

// PreventDefault cancels the default action (form submission, navigation).
func (ev *Event) PreventDefault() {
	ev.defaultPrevented = true
}

// DefaultPrevented reports whether a listener cancelled the default action.
func (ev *Event) DefaultPrevented() bool {
	return ev.defaultPrevented
}

// StopPropagation keeps the event from reaching further ancestors.
func (ev *Event) StopPropagation() {
	ev.stopped = true
}

// Listener handles a dispatched event.
type Listener func(*Event)

type registration struct {
	id uint64
	fn Listener
}

// AddEventListener registers fn for events of type t reaching the element
// (targeted at it or bubbling from a descendant). The returned function
// removes the registration.
func (e Element) AddEventListener(t EventType, fn Listener) func() {
	if e.node == nil || e.doc == nil || fn == nil {
		return func() {}
	}
	d := e.doc
	d.nextID++
	id := d.nextID

	byType := d.listeners[e.node]
	if byType == nil {
		byType = make(map[EventType][]registration)
		d.listeners[e.node] = byType
	}
	byType[t] = append(byType[t], registration{id: id, fn: fn})

	node := e.node
	return func() {
		regs := d.listeners[node][t]
		for i, reg := range regs {
			if reg.id == id {
				d.listeners[node][t] = append(regs[:i:i], regs[i+1:]...)
				return
			}
		}
	}
}

// Dispatch fires an event of type t at the element and bubbles it up the
// ancestor chain. Listeners run synchronously in registration order.
func (e Element) Dispatch(t EventType) *Event {
	ev := &Event{Type: t, Target: e}
	if e.node == nil || e.doc == nil {
		return ev
	}
	for n := e.node; n != nil; n = n.Parent {
		regs := e.doc.listeners[n][t]
		if len(regs) == 0 {
			continue
		}
		ev.Current = e.doc.wrap(n)
		snapshot := append([]registration(nil), regs...)
		for _, reg := range snapshot {
			reg.fn(ev)
		}
		if ev.stopped {
			break
		}
	}
	ev.Current = Element{}
	return ev
}

// ListenerCount reports how many listeners of type t are registered directly
// on the element.
func (e Element) ListenerCount(t EventType) int {
	if e.node == nil || e.doc == nil {
		return 0
	}
	return len(e.doc.listeners[e.node][t])
}
