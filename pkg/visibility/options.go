package visibility

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/config"
)

// Option configures a Controller.
type Option func(*Controller)

// WithConfig overrides the attribute names and selectors.
func WithConfig(cfg *config.Compiled) Option {
	return func(c *Controller) {
		if cfg != nil {
			c.cfg = cfg
		}
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMessageHider hides validation messages of fields when they are hidden.
func WithMessageHider(hider MessageHider) Option {
	return func(c *Controller) {
		c.messages = hider
	}
}
