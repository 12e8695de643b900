package radio

import (
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/dom"
)

// Group is a set of radios sharing a name.
type Group struct {
	Name   string
	Radios []dom.Element
	// StandardRequired groups must have a selection. Routing groups are never
	// standard required; they are validated through branch selection.
	StandardRequired bool
	Routing          bool
	// Interacted flips on the first change event of any radio in the group.
	// It is informational and does not gate validation.
	Interacted bool
}

// Selected returns the checked radio, if any.
func (g *Group) Selected() dom.Element {
	for _, radio := range g.Radios {
		if radio.Checked() {
			return radio
		}
	}
	return dom.Element{}
}

// HasSelection reports whether a radio of the group is checked.
func (g *Group) HasSelection() bool {
	return !g.Selected().IsZero()
}

// Registry groups the radios of a form by name.
type Registry struct {
	cfg    *config.Compiled
	logger *zap.Logger
	groups map[string]*Group
	order  []string
	remove []func()
}

// Option configures a Registry.
type Option func(*Registry)

// WithConfig overrides the attribute names.
func WithConfig(cfg *config.Compiled) Option {
	return func(r *Registry) {
		if cfg != nil {
			r.cfg = cfg
		}
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry constructs an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		cfg:    config.Defaults(),
		logger: zap.NewNop(),
		groups: make(map[string]*Group),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Discover registers every named radio inside scope, grouped by name in
// document order, and subscribes to their change events. Calling Discover
// again replaces the previous registration.
func (r *Registry) Discover(scope dom.Element) {
	r.Close()
	r.groups = make(map[string]*Group)
	r.order = nil

	scope.Walk(func(el dom.Element) bool {
		if !el.IsRadio() {
			return true
		}
		name := strings.TrimSpace(el.Name())
		if name == "" {
			return true
		}
		group, ok := r.groups[name]
		if !ok {
			group = &Group{Name: name}
			r.groups[name] = group
			r.order = append(r.order, name)
		}
		group.Radios = append(group.Radios, el)
		return true
	})

	for _, name := range r.order {
		group := r.groups[name]
		r.classify(group)
		for _, radio := range group.Radios {
			g := group
			r.remove = append(r.remove, radio.AddEventListener(dom.EventChange, func(*dom.Event) {
				if !g.Interacted {
					g.Interacted = true
					r.logger.Debug("radio: group interacted", zap.String("group", g.Name))
				}
			}))
		}
	}

	r.logger.Debug("radio: discovery complete", zap.Int("groups", len(r.order)))
}

// Group returns the named group.
func (r *Registry) Group(name string) (*Group, bool) {
	group, ok := r.groups[name]
	return group, ok
}

// Groups returns every group in discovery order.
func (r *Registry) Groups() []*Group {
	out := make([]*Group, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.groups[name])
	}
	return out
}

// InStep returns the groups with at least one radio inside step.
func (r *Registry) InStep(step dom.Element) []*Group {
	var out []*Group
	for _, group := range r.Groups() {
		for _, radio := range group.Radios {
			if step.Contains(radio) {
				out = append(out, group)
				break
			}
		}
	}
	return out
}

// Close removes the change listeners installed by Discover.
func (r *Registry) Close() {
	for _, remove := range r.remove {
		remove()
	}
	r.remove = nil
}

func (r *Registry) classify(group *Group) {
	routingKey := r.cfg.Attributes.RoutingKey
	required := false
	for _, radio := range group.Radios {
		if radio.HasAttr(routingKey) {
			group.Routing = true
		}
		if radio.Required() || strings.EqualFold(strings.TrimSpace(radio.AttrOr("aria-required", "")), "true") {
			required = true
		}
	}
	group.StandardRequired = required && !group.Routing
}
