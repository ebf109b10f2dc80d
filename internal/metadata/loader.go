package metadata

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFormFile reads a single form definition. The format is picked by
// extension: .yaml/.yml are YAML, anything else is JSON.
func LoadFormFile(path string) (*Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form %s: %w", path, err)
	}
	form, err := ParseForm(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse form %s: %w", path, err)
	}
	return form, nil
}

// ParseForm decodes and validates a form definition.
func ParseForm(data []byte, ext string) (*Form, error) {
	var form Form
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &form); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &form); err != nil {
			return nil, err
		}
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return &form, nil
}

// LoadDir reads every form definition in dir and replaces the registry
// contents. Invalid documents are skipped with a warning.
func LoadDir(dir string, reg *Registry) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read forms dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var forms []*Form
	seen := make(map[string]string)
	for _, name := range names {
		path := filepath.Join(dir, name)
		form, err := LoadFormFile(path)
		if err != nil {
			log.Printf("WARN: skipping form file %s: %v", name, err)
			continue
		}
		if prev, ok := seen[form.ID]; ok {
			log.Printf("WARN: skipping form file %s: id %s already loaded from %s", name, form.ID, prev)
			continue
		}
		seen[form.ID] = name
		forms = append(forms, form)
	}

	reg.Load(forms)
	log.Printf("Loaded %d forms into registry", len(forms))
	return nil
}
