package errormsg

import (
	"html"
	"maps"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/dom"
)

// Presenter shows and hides field error messages and keeps the per-form map
// of current validation errors.
type Presenter struct {
	cfg      *config.Compiled
	logger   *zap.Logger
	locator  *Locator
	messages map[string]string
	nodes    map[string]dom.Element
	order    []string
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithConfig overrides the attribute names, selectors and default texts.
func WithConfig(cfg *config.Compiled) Option {
	return func(p *Presenter) {
		if cfg != nil {
			p.cfg = cfg
		}
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Presenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLocator replaces the default strategy list.
func WithLocator(locator *Locator) Option {
	return func(p *Presenter) {
		p.locator = locator
	}
}

// NewPresenter constructs a Presenter.
func NewPresenter(opts ...Option) *Presenter {
	p := &Presenter{
		cfg:      config.Defaults(),
		logger:   zap.NewNop(),
		messages: make(map[string]string),
		nodes:    make(map[string]dom.Element),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.locator == nil {
		p.locator = NewLocator(p.cfg)
	}
	return p
}

// Message resolves the text to display for field: the author's validation
// message on the field or its wrapper, else the located node's text, else
// fallback.
func (p *Presenter) Message(field dom.Element, fallback string) string {
	attr := p.cfg.Attributes.ValidationMessage
	candidates := append([]dom.Element{field}, wrappers(p.cfg, field)...)
	for _, el := range candidates {
		if raw, ok := el.Attr(attr); ok {
			if msg := Sanitize(raw); msg != "" {
				return msg
			}
		}
	}
	if node, _ := p.locator.Locate(field); !node.IsZero() {
		if msg := Sanitize(node.Text()); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(fallback)
}

// Show displays msg for field and records it.
func (p *Presenter) Show(field dom.Element, msg string) {
	key := field.Key()
	if key == "" {
		return
	}
	msg = strings.TrimSpace(msg)
	field.SetAttr("aria-invalid", "true")

	node, strategy := p.locator.Locate(field)
	if !node.IsZero() {
		if msg != "" && strings.TrimSpace(node.Text()) != msg {
			node.SetText(msg)
		}
		node.SetDisplayed(true)
		p.nodes[key] = node
	} else {
		p.logger.Debug("errormsg: no error node located", zap.String("field", key))
	}

	if _, exists := p.messages[key]; !exists {
		p.order = append(p.order, key)
	}
	p.messages[key] = msg
	p.logger.Debug("errormsg: shown",
		zap.String("field", key),
		zap.String("strategy", strategy),
		zap.String("message", msg),
	)
}

// Hide removes the message of field. Only nodes displayed through Show are
// hidden, and a node stays visible while another shown field shares it.
func (p *Presenter) Hide(field dom.Element) {
	key := field.Key()
	if key == "" {
		return
	}
	field.RemoveAttr("aria-invalid")

	node := p.nodes[key]
	delete(p.nodes, key)
	if _, shown := p.messages[key]; shown {
		delete(p.messages, key)
		p.order = removeKey(p.order, key)
	}

	if node.IsZero() {
		return
	}
	for _, other := range p.nodes {
		if other == node {
			return
		}
	}
	node.SetDisplayed(false)
}

// Messages returns a copy of the current field to message map.
func (p *Presenter) Messages() map[string]string {
	return maps.Clone(p.messages)
}

// Summary returns the distinct messages in the order they were shown.
func (p *Presenter) Summary() []string {
	ordered := make([]string, 0, len(p.order))
	for _, key := range p.order {
		ordered = append(ordered, p.messages[key])
	}
	return normalizeMessages(ordered)
}

// Clear hides every recorded message.
func (p *Presenter) Clear(scope dom.Element) {
	for _, key := range append([]string(nil), p.order...) {
		if field := dom.FindControl(scope, key); !field.IsZero() {
			p.Hide(field)
			continue
		}
		delete(p.messages, key)
		delete(p.nodes, key)
		p.order = removeKey(p.order, key)
	}
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Sanitize strips markup from author supplied message text.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	cleaned := html.UnescapeString(policy.Sanitize(trimmed))
	return strings.Join(strings.Fields(cleaned), " ")
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func removeKey(keys []string, key string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}
