package engine

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/navigation"
	"github.com/goliatone/go-formrules/pkg/validation"
)

type settings struct {
	cfg        *config.Compiled
	logger     *zap.Logger
	scheduler  validation.Scheduler
	transition navigation.Transition
	onSubmit   navigation.SubmitFunc
	onOutcome  func(navigation.Outcome)
}

func defaultSettings() settings {
	return settings{
		cfg:       config.Defaults(),
		logger:    zap.NewNop(),
		scheduler: validation.Immediate,
	}
}

// Option configures a Form.
type Option func(*settings)

// WithConfig sets the compiled configuration shared by every component.
func WithConfig(cfg *config.Compiled) Option {
	return func(s *settings) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger routes diagnostics of every component to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScheduler sets how the post-validation focus move is delayed.
func WithScheduler(scheduler validation.Scheduler) Option {
	return func(s *settings) {
		if scheduler != nil {
			s.scheduler = scheduler
		}
	}
}

// WithTransition replaces the default step transition.
func WithTransition(transition navigation.Transition) Option {
	return func(s *settings) {
		s.transition = transition
	}
}

// WithSubmit installs the hook receiving validated submissions.
func WithSubmit(fn navigation.SubmitFunc) Option {
	return func(s *settings) {
		s.onSubmit = fn
	}
}

// WithOutcomeHook is called after every handled navigation trigger.
func WithOutcomeHook(fn func(navigation.Outcome)) Option {
	return func(s *settings) {
		s.onOutcome = fn
	}
}
