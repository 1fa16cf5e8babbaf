package notifx

import (
	"bytes"
	"html/template"
	"sync"
)

// TemplateRegistry holds parsed html/template bodies keyed by name. It is
// safe for concurrent registration and rendering.
type TemplateRegistry struct {
	mu  sync.RWMutex
	set map[string]*template.Template
}

func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{set: make(map[string]*template.Template)}
}

// Register parses src and stores it under name, replacing any previous
// template with the same name.
func (r *TemplateRegistry) Register(name, src string) error {
	tmpl, err := template.New(name).Parse(src)
	if err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.set[name] = tmpl
	return nil
}

// Render executes the named template against data.
func (r *TemplateRegistry) Render(name string, data any) (string, error) {
	r.mu.RLock()
	tmpl, ok := r.set[name]
	r.mu.RUnlock()
	if !ok {
		return "", notifxErrors.New(ErrTemplateNotFound).WithDetail("template", name)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
	}
	return body.String(), nil
}
