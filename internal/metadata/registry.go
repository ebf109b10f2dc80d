package metadata

import (
	"sort"
	"sync"
)

type Registry struct {
	mu    sync.RWMutex
	forms map[string]*Form
}

func NewRegistry() *Registry {
	return &Registry{
		forms: make(map[string]*Form),
	}
}

// GetForm returns the form with the given id, or nil.
func (r *Registry) GetForm(id string) *Form {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.forms[id]
}

// AllForms returns all registered forms sorted by id.
func (r *Registry) AllForms() []*Form {
	r.mu.RLock()
	defer r.mu.RUnlock()
	forms := make([]*Form, 0, len(r.forms))
	for _, f := range r.forms {
		forms = append(forms, f)
	}
	sort.Slice(forms, func(i, j int) bool { return forms[i].ID < forms[j].ID })
	return forms
}

// Load replaces all forms in the registry.
func (r *Registry) Load(forms []*Form) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.forms = make(map[string]*Form, len(forms))
	for _, f := range forms {
		r.forms[f.ID] = f
	}
}
