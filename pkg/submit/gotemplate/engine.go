// Package gotemplate is the default DocumentRenderer: a pongo2-backed
// template engine compatible with the github.com/goliatone/go-template
// contract. Act bundles carry their document template as inline text; the
// engine can also load named templates from a directory or fs.FS for
// deployments that keep templates beside their bundles.
package gotemplate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-actform/pkg/submit"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	globalData map[string]any
}

// WithBaseDir loads named templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) { cfg.baseDir = strings.TrimSpace(dir) }
}

// WithFS loads named templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) { cfg.templates = files }
}

// WithExtension overrides the default ".tpl" template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobalData seeds context values available to every template, such as
// the office letterhead or the tenant's locale settings.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithGoTemplateOptions accepts go-template engine options for compatibility
// with callers configuring the shared engine contract; currently a no-op.
func WithGoTemplateOptions(_ ...gotemplatepkg.Option) Option {
	return func(*config) {}
}

// Engine renders act document templates. Safe for concurrent use.
type Engine struct {
	mu          sync.RWMutex
	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
}

var _ submit.DocumentRenderer = (*Engine)(nil)

// New constructs an Engine. Unlike the file-serving engines this one accepts
// zero loaders: inline bundle templates need no filesystem.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".tpl"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	if len(loaders) == 0 {
		// pongo2.NewSet panics without at least one loader; inline-only
		// engines fall back to the working-directory loader that pongo2's
		// own DefaultSet uses.
		loaders = append(loaders, pongo2.MustNewLocalFileSystemLoader(""))
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("actform", loaders...),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
	}
	if len(cfg.globalData) > 0 {
		engine.templateSet.Globals = pongo2.Context(cfg.globalData)
	}
	return engine, nil
}

// RenderDocument implements submit.DocumentRenderer. Template text containing
// pongo2 markers renders inline; anything else is treated as a template name
// resolved through the configured loaders.
func (e *Engine) RenderDocument(ctx context.Context, templateText string, data map[string]any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e == nil || e.templateSet == nil {
		return nil, errors.New("gotemplate: engine is nil")
	}

	var (
		tmpl *pongo2.Template
		err  error
	)
	if isTemplateContent(templateText) {
		tmpl, err = e.templateSet.FromString(templateText)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: parse template: %w", err)
		}
	} else {
		tmpl, err = e.getTemplate(templateText)
		if err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(pongo2.Context(data), &buf)
	e.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("gotemplate: execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Engine) getTemplate(name string) (*pongo2.Template, error) {
	path := name
	if !strings.HasSuffix(path, e.tplExt) {
		path += e.tplExt
	}

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
	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}
