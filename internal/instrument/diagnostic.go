package instrument

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
)

// Diagnostic is a non-fatal condition reported by a component, such as a
// field type the classifier could not resolve.
type Diagnostic struct {
	Component string
	Message   string
	Fields    map[string]any
}

func (d Diagnostic) String() string {
	if len(d.Fields) == 0 {
		return fmt.Sprintf("%s: %s", d.Component, d.Message)
	}
	keys := make([]string, 0, len(d.Fields))
	for k := range d.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, d.Fields[k])
	}
	return fmt.Sprintf("%s: %s (%s)", d.Component, d.Message, strings.Join(parts, " "))
}

// Reporter is the sink for diagnostics. Components take one at construction
// instead of logging directly.
type Reporter interface {
	Report(d Diagnostic)
}

// LogReporter writes diagnostics through the standard logger.
type LogReporter struct{}

func (LogReporter) Report(d Diagnostic) {
	log.Printf("WARN: %s", d)
}

// Collector keeps diagnostics in memory. Safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
