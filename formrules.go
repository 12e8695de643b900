// Package formrules runs the rules of multi-step HTML forms outside a
// browser: conditional visibility, branch routing, step validation and
// navigation. Open parses a document and attaches a form context to each
// form; scenarios and Lint build on that for checks in CI.
package formrules

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/config"
	"github.com/goliatone/go-formrules/pkg/dom"
	"github.com/goliatone/go-formrules/pkg/engine"
	"github.com/goliatone/go-formrules/pkg/navigation"
	"github.com/goliatone/go-formrules/pkg/validation"
)

// Option configures every form context of a Session.
type Option = engine.Option

// Form aliases engine.Form for callers using the root package only.
type Form = engine.Form

// WithConfig applies a compiled configuration to every form.
func WithConfig(cfg *config.Compiled) Option { return engine.WithConfig(cfg) }

// WithLogger routes diagnostics of every component to logger.
func WithLogger(logger *zap.Logger) Option { return engine.WithLogger(logger) }

// WithScheduler sets how the post-validation focus move is delayed.
func WithScheduler(scheduler validation.Scheduler) Option { return engine.WithScheduler(scheduler) }

// WithSubmit installs the hook receiving validated submissions.
func WithSubmit(fn navigation.SubmitFunc) Option { return engine.WithSubmit(fn) }

// Session is a parsed document with a form context attached to each of its
// form elements.
type Session struct {
	Document *dom.Document
	Forms    []*engine.Form
}

// Open parses an HTML document from r and attaches every form in it.
func Open(r io.Reader, opts ...Option) (*Session, error) {
	doc, err := dom.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("formrules: %w", err)
	}
	forms, err := engine.Attach(doc, opts...)
	if err != nil {
		return nil, fmt.Errorf("formrules: %w", err)
	}
	return &Session{Document: doc, Forms: forms}, nil
}

// OpenString is Open for in-memory markup.
func OpenString(markup string, opts ...Option) (*Session, error) {
	return Open(strings.NewReader(markup), opts...)
}

// OpenFile is Open for the HTML file at path.
func OpenFile(path string, opts ...Option) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formrules: read %s: %w", path, err)
	}
	return Open(bytes.NewReader(data), opts...)
}

// Form returns the form whose id, name or tag equals key. An empty key
// selects the first form.
func (s *Session) Form(key string) (*engine.Form, error) {
	if len(s.Forms) == 0 {
		return nil, fmt.Errorf("formrules: document has no forms")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return s.Forms[0], nil
	}
	for _, form := range s.Forms {
		if form.Label() == key {
			return form, nil
		}
	}
	return nil, fmt.Errorf("formrules: form %q not found", key)
}

// Render writes the current state of the document as HTML.
func (s *Session) Render(w io.Writer) error {
	return s.Document.Render(w)
}

// Close detaches every form.
func (s *Session) Close() {
	for _, form := range s.Forms {
		form.Close()
	}
}
