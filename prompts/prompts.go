package prompts

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Kind orders templates inside an assembled prompt.
type Kind string

const (
	KindSystem      Kind = "system"
	KindContext     Kind = "context"
	KindInstruction Kind = "instruction"
)

var kindOrder = map[Kind]int{
	KindSystem:      0,
	KindContext:     1,
	KindInstruction: 2,
}

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

type Template struct {
	Name    string
	Kind    Kind
	Text    string
	Enabled bool
}

// Vars returns the distinct placeholder names in registration order.
func (t Template) Vars() []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(t.Text, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
	}
	return out
}

type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
	order     []string
}

func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

func (r *Registry) Register(t Template) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return
	}
	if _, ok := kindOrder[t.Kind]; !ok {
		t.Kind = KindContext
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.templates[t.Name] = &t
}

func (r *Registry) Get(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	if !ok {
		return Template{}, false
	}
	return *t, true
}

func (r *Registry) All() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(r.templates))
	for _, name := range r.order {
		out = append(out, *r.templates[name])
	}
	return out
}

func (r *Registry) SetEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[name]
	if !ok {
		return false
	}
	t.Enabled = enabled
	return true
}

// Render substitutes vars into the named template. Missing vars render as
// empty strings.
func (r *Registry) Render(name string, vars map[string]string) (string, bool) {
	t, ok := r.Get(name)
	if !ok {
		return "", false
	}
	return substitute(t.Text, vars), true
}

// Inject assembles enabled templates around the base prompt: system blocks
// first, then context, then the base, then instruction blocks. Registration
// order breaks ties within a kind.
func (r *Registry) Inject(base string, vars map[string]string) string {
	all := r.All()
	enabled := make([]Template, 0, len(all))
	for _, t := range all {
		if t.Enabled {
			enabled = append(enabled, t)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return kindOrder[enabled[i].Kind] < kindOrder[enabled[j].Kind]
	})

	var parts []string
	for _, t := range enabled {
		if t.Kind == KindInstruction {
			continue
		}
		parts = append(parts, substitute(t.Text, vars))
	}
	if strings.TrimSpace(base) != "" {
		parts = append(parts, base)
	}
	for _, t := range enabled {
		if t.Kind != KindInstruction {
			continue
		}
		parts = append(parts, substitute(t.Text, vars))
	}
	return strings.Join(parts, "\n\n")
}

func substitute(text string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		return vars[name]
	})
}

// RegisterDefaults installs the stock templates used to build the LLM
// fallback prompt.
func RegisterDefaults(r *Registry) {
	r.Register(Template{
		Name:    "identity",
		Kind:    KindSystem,
		Text:    "You are {{agent_name}}, a personal assistant agent. You have access to a persistent memory, shell skills and tools.",
		Enabled: true,
	})
	r.Register(Template{
		Name:    "memory_context",
		Kind:    KindContext,
		Text:    "Relevant memory:\n{{memory}}",
		Enabled: true,
	})
	r.Register(Template{
		Name:    "response_style",
		Kind:    KindInstruction,
		Text:    "Answer concisely in plain text. If you cannot help, say so directly.",
		Enabled: true,
	})
}
