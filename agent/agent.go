package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Evansxm/ev-ai-core/llm"
	"github.com/Evansxm/ev-ai-core/memory"
	"github.com/Evansxm/ev-ai-core/proactive"
	"github.com/Evansxm/ev-ai-core/prompts"
	"github.com/Evansxm/ev-ai-core/skills"
	"github.com/Evansxm/ev-ai-core/tools"
)

var ErrEmptyInput = errors.New("empty input")

// SkillRunner executes a skill's fixed command line. The binary wires a
// shell-backed runner with the shell_exec limits.
type SkillRunner interface {
	Run(ctx context.Context, command, rest string) (string, error)
}

// Agent routes free-form input to built-in verbs, skills, tools and an
// optional LLM fallback.
type Agent struct {
	Name      string
	Version   string
	Memory    *memory.Store
	Journal   *memory.Journal
	Tools     *tools.Registry
	Skills    *skills.Registry
	Runner    SkillRunner
	Prompts   *prompts.Registry
	Proactive *proactive.Engine
	LLM       llm.Client
	Model     string
	Logger    *slog.Logger
	Started   time.Time
}

func New(name, version string) *Agent {
	if name == "" {
		name = "ev-ai"
	}
	return &Agent{
		Name:    name,
		Version: version,
		Logger:  slog.Default(),
		Started: time.Now(),
	}
}

// Execute dispatches one input line and returns the response text.
func (a *Agent) Execute(ctx context.Context, input, source string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyInput, a.usage())
	}

	response, err := a.dispatch(ctx, input)
	a.journal(input, response, err, source)
	if err == nil && a.Proactive != nil {
		a.Proactive.AnalyzeAndFire(ctx, input)
	}
	return response, err
}

func (a *Agent) dispatch(ctx context.Context, input string) (string, error) {
	verb, rest := splitVerb(input)

	switch verb {
	case "status":
		return a.Status(ctx), nil
	case "help":
		return a.usage(), nil
	case "capabilities":
		return a.Capabilities(), nil
	case "tools":
		return a.listTools(), nil
	case "skills":
		return a.listSkills(), nil
	case "memory", "recall":
		return a.recallMemory(ctx, rest)
	case "remember":
		return a.rememberMemory(ctx, rest)
	case "search":
		return a.searchMemory(ctx, rest)
	case "forget":
		return a.forgetMemory(ctx, rest)
	case "tool":
		return a.runTool(ctx, rest)
	}

	if a.Skills != nil && a.Runner != nil {
		if skill, skillRest, ok := a.Skills.Match(input); ok {
			a.Logger.Info("agent_skill_run", "skill", skill.Name)
			return a.Runner.Run(ctx, skill.Command, skillRest)
		}
	}

	return a.llmFallback(ctx, input)
}

func (a *Agent) journal(input, response string, err error, source string) {
	if a.Journal == nil {
		return
	}
	out := response
	if err != nil {
		out = "error: " + err.Error()
	}
	if _, jerr := a.Journal.Record(input, out, source); jerr != nil {
		a.Logger.Warn("agent_journal_write_failed", "error", jerr)
	}
}

func (a *Agent) recallMemory(ctx context.Context, key string) (string, error) {
	if a.Memory == nil {
		return "", fmt.Errorf("memory store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("usage: memory <key>")
	}
	rec, err := a.Memory.Recall(ctx, key)
	if errors.Is(err, memory.ErrNotFound) {
		return fmt.Sprintf("no memory for %q", key), nil
	}
	if err != nil {
		return "", err
	}
	return rec.Value, nil
}

func (a *Agent) rememberMemory(ctx context.Context, rest string) (string, error) {
	if a.Memory == nil {
		return "", fmt.Errorf("memory store is not configured")
	}
	key, value := splitVerb(rest)
	if key == "" || value == "" {
		return "", fmt.Errorf("usage: remember <key> <value>")
	}
	rec, err := a.Memory.Remember(ctx, key, value, "", 0)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("remembered %q", rec.Key), nil
}

func (a *Agent) searchMemory(ctx context.Context, term string) (string, error) {
	if a.Memory == nil {
		return "", fmt.Errorf("memory store is not configured")
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return "", fmt.Errorf("usage: search <term>")
	}
	matches, err := a.Memory.Search(ctx, term, 0)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return fmt.Sprintf("no memories match %q", term), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d match(es):\n", len(matches))
	for _, rec := range matches {
		fmt.Fprintf(&b, "- %s [%s/%d]: %s\n", rec.Key, rec.Category, rec.Importance, rec.Value)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (a *Agent) forgetMemory(ctx context.Context, key string) (string, error) {
	if a.Memory == nil {
		return "", fmt.Errorf("memory store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("usage: forget <key>")
	}
	existed, err := a.Memory.Forget(ctx, key)
	if err != nil {
		return "", err
	}
	if !existed {
		return fmt.Sprintf("no memory for %q", key), nil
	}
	return fmt.Sprintf("forgot %q", key), nil
}

func (a *Agent) runTool(ctx context.Context, rest string) (string, error) {
	if a.Tools == nil {
		return "", fmt.Errorf("tool registry is not configured")
	}
	name, paramStr := splitVerb(rest)
	if name == "" {
		return "", fmt.Errorf("usage: tool <name> [key=value ...]")
	}
	tool, ok := a.Tools.Get(name)
	if !ok {
		return "", fmt.Errorf("unknown tool %q (known: %s)", name, a.Tools.ToolNames())
	}
	params := parseParams(paramStr)
	a.Logger.Info("agent_tool_run", "tool", name)
	return tool.Execute(ctx, params)
}

func (a *Agent) llmFallback(ctx context.Context, input string) (string, error) {
	if a.LLM == nil {
		return fmt.Sprintf("no handler for %q\n\n%s", input, a.Capabilities()), nil
	}

	prompt := input
	if a.Prompts != nil {
		prompt = a.Prompts.Inject(input, a.promptVars(ctx))
	}

	res, err := a.LLM.Chat(ctx, llm.Request{
		Model:    a.Model,
		Messages: []llm.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("llm fallback: %w", err)
	}
	return res.Text, nil
}

func (a *Agent) promptVars(ctx context.Context) map[string]string {
	vars := map[string]string{
		"agent_name": a.Name,
		"version":    a.Version,
	}
	if a.Memory != nil {
		if records, err := a.Memory.Search(ctx, "", 5); err == nil && len(records) > 0 {
			var b strings.Builder
			for _, rec := range records {
				fmt.Fprintf(&b, "%s: %s\n", rec.Key, rec.Value)
			}
			vars["memory_context"] = strings.TrimRight(b.String(), "\n")
		}
	}
	return vars
}

// Status reports runtime health as a human-readable block.
func (a *Agent) Status(ctx context.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s v%s\n", a.Name, a.Version)
	fmt.Fprintf(&b, "uptime: %s\n", time.Since(a.Started).Round(time.Second))
	if a.Memory != nil {
		if n, err := a.Memory.Len(ctx); err == nil {
			fmt.Fprintf(&b, "memories: %d\n", n)
		}
	}
	if a.Tools != nil {
		fmt.Fprintf(&b, "tools: %d\n", len(a.Tools.All()))
	}
	if a.Skills != nil {
		fmt.Fprintf(&b, "skills: %d\n", a.Skills.Len())
	}
	if a.LLM != nil {
		fmt.Fprintf(&b, "llm: %s\n", a.Model)
	} else {
		b.WriteString("llm: not configured\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Capabilities enumerates everything the agent can route to.
func (a *Agent) Capabilities() string {
	var b strings.Builder
	b.WriteString("built-ins: status, help, capabilities, tools, skills, memory, remember, search, recall, forget, tool\n")
	if a.Tools != nil {
		names := make([]string, 0)
		for _, t := range a.Tools.All() {
			names = append(names, t.Name())
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "tools: %s\n", strings.Join(names, ", "))
	}
	if a.Skills != nil {
		names := make([]string, 0)
		for _, s := range a.Skills.All() {
			if s.Hidden {
				continue
			}
			names = append(names, s.Name)
		}
		fmt.Fprintf(&b, "skills: %s\n", strings.Join(names, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *Agent) usage() string {
	return "commands: status | help | capabilities | tools | skills | " +
		"memory <key> | remember <key> <value> | search <term> | forget <key> | " +
		"tool <name> [key=value ...] | <skill name> | free text"
}

func (a *Agent) listTools() string {
	if a.Tools == nil || len(a.Tools.All()) == 0 {
		return "no tools registered"
	}
	return a.Tools.FormatToolDescriptions()
}

func (a *Agent) listSkills() string {
	if a.Skills == nil || a.Skills.Len() == 0 {
		return "no skills registered"
	}
	var b strings.Builder
	for _, s := range a.Skills.All() {
		if s.Hidden {
			continue
		}
		state := ""
		if !s.Enabled {
			state = " (disabled)"
		}
		fmt.Fprintf(&b, "- %s [%s]%s: %s\n", s.Name, s.Category, state, s.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func splitVerb(input string) (string, string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ""
	}
	i := strings.IndexAny(input, " \t")
	if i < 0 {
		return strings.ToLower(input), ""
	}
	return strings.ToLower(input[:i]), strings.TrimSpace(input[i:])
}

var paramRe = regexp.MustCompile(`(\w+)=("[^"]*"|'[^']*'|\S+)`)

// parseParams turns `k=v path="/tmp/a b"` style text into a params map.
func parseParams(s string) map[string]any {
	params := make(map[string]any)
	for _, m := range paramRe.FindAllStringSubmatch(s, -1) {
		key, val := m[1], m[2]
		if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
			val = val[1 : len(val)-1]
		}
		params[key] = val
	}
	return params
}
