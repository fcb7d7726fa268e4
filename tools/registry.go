package tools

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds the tools available to one agent. The binary builds it
// once at startup from the tools.* config keys; it is read-only after
// that, so lookups need no locking.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds tool under its own name, replacing any earlier tool
// with the same name.
func (r *Registry) Register(tool Tool) {
	r.tools[tool.Name()] = tool
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns every tool sorted by name, keeping prompt output and the
// `evai tools` listing stable across runs.
func (r *Registry) All() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (r *Registry) ToolNames() string {
	all := r.All()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.Name()
	}
	return strings.Join(names, ", ")
}

// FormatToolDescriptions renders the markdown tool catalog embedded in
// the planning prompt, one section per tool with its JSON schema.
func (r *Registry) FormatToolDescriptions() string {
	all := r.All()
	var b strings.Builder
	for _, t := range all {
		fmt.Fprintf(&b, "### %s\n%s\nParameters:\n```json\n%s\n```\n\n", t.Name(), t.Description(), t.ParameterSchema())
	}
	return b.String()
}
