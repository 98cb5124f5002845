package html

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// engine is a pongo2 template set with a per-path template cache.
type engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
}

func newEngine(files fs.FS, ext string) (*engine, error) {
	if files == nil {
		return nil, errors.New("html: template fs is required")
	}
	if ext == "" {
		ext = ".tpl"
	}
	return &engine{
		templateSet: pongo2.NewSet("signup", pongo2.NewFSLoader(files)),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      ext,
	}, nil
}

func (e *engine) render(name string, data any) ([]byte, error) {
	templatePath := name
	if !strings.HasSuffix(templatePath, e.tplExt) {
		templatePath += e.tplExt
	}

	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return nil, err
	}

	viewContext, err := convertToContext(data)
	if err != nil {
		return nil, fmt.Errorf("html: convert data: %w", err)
	}

	var buf bytes.Buffer

	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	e.mu.RUnlock()

	if err != nil {
		return nil, fmt.Errorf("html: execute template %q: %w", templatePath, err)
	}
	return buf.Bytes(), nil
}

func (e *engine) getTemplate(path string) (*pongo2.Template, error) {
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
		return nil, fmt.Errorf("html: load template %q: %w", path, err)
	}

	e.templates[path] = tmpl
	return tmpl, nil
}

// convertToContext round-trips data through JSON so templates address fields
// by their json names.
func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return pongo2.Context(out), nil
}
