package skills

import (
	"sort"
	"strings"
	"sync"
)

// Skill is a named shell command the agent can run on request.
type Skill struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Command     string   `yaml:"command"`
	Aliases     []string `yaml:"aliases"`
	Hidden      bool     `yaml:"hidden"`
	Enabled     bool     `yaml:"enabled"`
}

type Registry struct {
	mu      sync.RWMutex
	skills  map[string]*Skill
	aliases map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		skills:  make(map[string]*Skill),
		aliases: make(map[string]string),
	}
}

// Register adds a skill. Re-registering an existing name is a no-op so
// builtins win over pack entries loaded later.
func (r *Registry) Register(s Skill) bool {
	name := normalizeName(s.Name)
	if name == "" || s.Command == "" {
		return false
	}
	s.Name = name
	s.Category = strings.TrimSpace(s.Category)
	if s.Category == "" {
		s.Category = "general"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.skills[name]; exists {
		return false
	}
	r.skills[name] = &s
	for _, alias := range s.Aliases {
		alias = normalizeName(alias)
		if alias == "" || alias == name {
			continue
		}
		if _, taken := r.aliases[alias]; taken {
			continue
		}
		r.aliases[alias] = name
	}
	return true
}

// Get resolves a skill by name or alias.
func (r *Registry) Get(name string) (Skill, bool) {
	name = normalizeName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	s, ok := r.skills[name]
	if !ok {
		return Skill{}, false
	}
	return *s, true
}

// All returns visible skills sorted by category then name.
func (r *Registry) All() []Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Skill, 0, len(r.skills))
	for _, s := range r.skills {
		if s.Hidden {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	for _, s := range r.skills {
		if s.Hidden {
			continue
		}
		seen[s.Category] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.skills)
}

func (r *Registry) SetEnabled(name string, enabled bool) bool {
	name = normalizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	s, ok := r.skills[name]
	if !ok {
		return false
	}
	s.Enabled = enabled
	return true
}

// Match finds the enabled skill whose name or alias prefixes the input and
// returns the remaining argument text. Longer names win over shorter ones.
func (r *Registry) Match(input string) (Skill, string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(input))
	if lowered == "" {
		return Skill{}, "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best    *Skill
		bestLen int
	)
	try := func(token string, s *Skill) {
		if !s.Enabled || len(token) <= bestLen {
			return
		}
		if lowered == token || strings.HasPrefix(lowered, token+" ") {
			best = s
			bestLen = len(token)
		}
	}
	for name, s := range r.skills {
		try(name, s)
	}
	for alias, target := range r.aliases {
		if s, ok := r.skills[target]; ok {
			try(alias, s)
		}
	}
	if best == nil {
		return Skill{}, "", false
	}
	rest := strings.TrimSpace(lowered[bestLen:])
	return *best, rest, true
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
