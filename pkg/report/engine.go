package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// Templates returns the built-in report templates.
func Templates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	baseDir    string
	templates  fs.FS
	extension  string
	globalData map[string]any
}

// WithBaseDir loads templates from a directory on disk. It takes precedence
// over the built-in templates.
func WithBaseDir(dir string) Option {
	return func(s *settings) {
		s.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from files instead of the built-in set.
func WithFS(files fs.FS) Option {
	return func(s *settings) {
		if files != nil {
			s.templates = files
		}
	}
}

// WithExtension overrides the template extension (".tpl").
func WithExtension(ext string) Option {
	return func(s *settings) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		s.extension = trimmed
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(s *settings) {
		if len(data) == 0 {
			return
		}
		if s.globalData == nil {
			s.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			s.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// Engine renders report data through a pongo2 template set.
type Engine struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	ext       string
}

// New builds an Engine. Without WithBaseDir or WithFS the built-in templates
// are used.
func New(opts ...Option) (*Engine, error) {
	cfg := &settings{extension: ".tpl"}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("report: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	if len(loaders) == 0 {
		loaders = append(loaders, pongo2.NewFSLoader(Templates()))
	}

	engine := &Engine{
		set:       pongo2.NewSet("formrules", loaders...),
		templates: make(map[string]*pongo2.Template),
		ext:       cfg.extension,
	}
	registerDefaultFilters()

	if len(cfg.globalData) > 0 {
		globals, err := toContext(cfg.globalData)
		if err != nil {
			return nil, fmt.Errorf("report: apply global data: %w", err)
		}
		if engine.set.Globals == nil {
			engine.set.Globals = make(pongo2.Context)
		}
		engine.set.Globals.Update(globals)
	}
	return engine, nil
}

// Render executes the named template with data and writes the result to
// every writer in out.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("report: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}
	tmpl, err := e.template(path)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, path, data, out)
}

// RenderString executes an inline template.
func (e *Engine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("report: engine is nil")
	}
	tmpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("report: parse template string: %w", err)
	}
	return e.execute(tmpl, "inline", data, out)
}

func (e *Engine) execute(tmpl *pongo2.Template, name string, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("report: convert data: %w", err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("report: execute template %q: %w", name, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

// toContext turns data into a pongo2 context through its JSON form, so
// templates address values by their json tags. Numbers stay json.Number to
// print without a fractional part.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	out := map[string]any{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("data must encode to an object: %w", err)
	}
	return pongo2.Context(out), nil
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("status") {
		_ = pongo2.RegisterFilter("status", filterStatus)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterStatus renders a boolean as the words given in param, "yes,no" by
// default.
func filterStatus(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	yes, no := "yes", "no"
	if param != nil && param.String() != "" {
		parts := strings.SplitN(param.String(), ",", 2)
		yes = parts[0]
		if len(parts) == 2 {
			no = parts[1]
		}
	}
	if in.IsTrue() {
		return pongo2.AsValue(yes), nil
	}
	return pongo2.AsValue(no), nil
}
