package branch

import (
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/dom"
)

// Kind classifies a Resolution.
type Kind int

const (
	// None means the step has no branches; every field validates normally.
	None Kind = iota
	// Active means one branch is selected.
	Active
	// Undetermined means branches exist but no routing choice selects one.
	// Fields inside any branch must be skipped.
	Undetermined
)

func (k Kind) String() string {
	switch k {
	case Active:
		return "active"
	case Undetermined:
		return "undetermined"
	default:
		return "none"
	}
}

// Resolution is the branch state of a step.
type Resolution struct {
	Kind   Kind
	Branch dom.Element
	Key    string
	// Fallback is true when Branch was picked by the visibility heuristic
	// because the step has no routing radio at all.
	Fallback bool
}

// Resolver determines the active branch of a step.
type Resolver struct {
	cfg    *config.Compiled
	logger *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConfig overrides the attribute names and selectors.
func WithConfig(cfg *config.Compiled) Option {
	return func(r *Resolver) {
		if cfg != nil {
			r.cfg = cfg
		}
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New constructs a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{cfg: config.Defaults(), logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Branches returns the branch containers of step in document order.
func (r *Resolver) Branches(step dom.Element) []dom.Element {
	return step.QueryAll(r.cfg.Match.Branch)
}

// Resolve determines the branch state of step. A checked routing radio whose
// key names a branch of the step is authoritative. The visibility fallback
// only applies when the step contains no routing radio.
func (r *Resolver) Resolve(step dom.Element) Resolution {
	if step.IsZero() {
		return Resolution{Kind: None}
	}
	branches := r.Branches(step)
	routingKey := r.cfg.Attributes.RoutingKey

	hasRouting := false
	var checkedKeys []string
	step.Walk(func(el dom.Element) bool {
		if !el.IsRadio() || !el.HasAttr(routingKey) {
			return true
		}
		hasRouting = true
		if el.Checked() {
			checkedKeys = append(checkedKeys, strings.TrimSpace(el.AttrOr(routingKey, "")))
		}
		return true
	})

	for _, key := range checkedKeys {
		if key == "" {
			continue
		}
		if branch := r.find(branches, key); !branch.IsZero() {
			return Resolution{Kind: Active, Branch: branch, Key: key}
		}
		r.logger.Debug("branch: routing key matches no branch",
			zap.String("key", key),
			zap.String("step", step.String()),
		)
	}

	if len(branches) == 0 {
		return Resolution{Kind: None}
	}

	if !hasRouting {
		for _, branch := range branches {
			if branch.Rendered() {
				return Resolution{
					Kind:     Active,
					Branch:   branch,
					Key:      strings.TrimSpace(branch.AttrOr(r.cfg.Attributes.BranchKey, "")),
					Fallback: true,
				}
			}
		}
	}
	return Resolution{Kind: Undetermined}
}

// BranchOf returns the closest branch container of field inside step, or the
// zero Element when the field sits outside every branch.
func (r *Resolver) BranchOf(field, step dom.Element) dom.Element {
	branch := field.Closest(r.cfg.Match.Branch)
	if branch.IsZero() {
		return dom.Element{}
	}
	if !step.IsZero() && (!step.Contains(branch) || branch == step) {
		return dom.Element{}
	}
	return branch
}

func (r *Resolver) find(branches []dom.Element, key string) dom.Element {
	attr := r.cfg.Attributes.BranchKey
	for _, branch := range branches {
		if strings.TrimSpace(branch.AttrOr(attr, "")) == key {
			return branch
		}
	}
	return dom.Element{}
}
