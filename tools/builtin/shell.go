package builtin

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ShellExecTool runs an arbitrary command through bash with a timeout,
// bounded output and token/path deny lists. It backs the shared skill
// runner as well, so every shell invocation goes through the same limits.
type ShellExecTool struct {
	Enabled        bool
	DefaultTimeout time.Duration
	MaxOutputBytes int
	BaseDirs       []string
	DenyPaths      []string
	DenyTokens     []string
}

func NewShellExecTool(enabled bool, defaultTimeout time.Duration, maxOutputBytes int, baseDirs ...string) *ShellExecTool {
	if defaultTimeout <= 0 {
		defaultTimeout = 30 * time.Second
	}
	if maxOutputBytes <= 0 {
		maxOutputBytes = 256 * 1024
	}
	return &ShellExecTool{
		Enabled:        enabled,
		DefaultTimeout: defaultTimeout,
		MaxOutputBytes: maxOutputBytes,
		BaseDirs:       normalizeBaseDirs(baseDirs),
	}
}

func (t *ShellExecTool) Name() string { return "shell_exec" }

func (t *ShellExecTool) Description() string {
	return "Runs a shell command and returns stdout/stderr with the exit code. Disabled by default for safety."
}

func (t *ShellExecTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cmd": map[string]any{
				"type":        "string",
				"description": "Shell command to execute.",
			},
			"cwd": map[string]any{
				"type":        "string",
				"description": "Optional working directory.",
			},
			"timeout_seconds": map[string]any{
				"type":        "number",
				"description": "Optional timeout override in seconds.",
			},
		},
		"required": []string{"cmd"},
	})
}

func (t *ShellExecTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	if !t.Enabled {
		return "", fmt.Errorf("shell_exec tool is disabled (enable via config: tools.shell_exec.enabled=true)")
	}
	return t.run(ctx, params)
}

func (t *ShellExecTool) run(ctx context.Context, params map[string]any) (string, error) {
	cmdStr := stringParam(params, "cmd")
	if cmdStr == "" {
		return "", fmt.Errorf("missing required param: cmd")
	}
	if offending, ok := commandDeniedTokens(cmdStr, t.DenyTokens); ok {
		return "", fmt.Errorf("command references denied token %q", offending)
	}
	if offending, ok := commandDeniedPaths(cmdStr, t.DenyPaths); ok {
		return "", fmt.Errorf("command references denied path %q (configure via tools.shell_exec.deny_paths)", offending)
	}

	cwd := stringParam(params, "cwd")
	if cwd != "" {
		resolved, ok := resolveConfined(cwd, t.BaseDirs)
		if !ok {
			return "", fmt.Errorf("cwd %q is outside the allowed base dirs", cwd)
		}
		cwd = resolved
	}

	timeout := t.DefaultTimeout
	if v, ok := params["timeout_seconds"]; ok {
		if secs, ok := asFloat64(v); ok && secs > 0 {
			timeout = time.Duration(secs * float64(time.Second))
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-lc", cmdStr)
	if cwd != "" {
		cmd.Dir = cwd
	}

	var stdout, stderr limitedBuffer
	stdout.Limit = t.MaxOutputBytes
	stderr.Limit = t.MaxOutputBytes
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		} else if runCtx.Err() != nil {
			return "", fmt.Errorf("shell_exec timed out after %s", timeout)
		} else {
			return "", err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "exit_code: %d\n", exitCode)
	fmt.Fprintf(&b, "stdout_truncated: %t\n", stdout.Truncated)
	fmt.Fprintf(&b, "stderr_truncated: %t\n", stderr.Truncated)
	b.WriteString("stdout:\n")
	b.WriteString(string(bytes.ToValidUTF8(stdout.Bytes(), []byte("\n[non-utf8 output]\n"))))
	b.WriteString("\n\nstderr:\n")
	b.WriteString(string(bytes.ToValidUTF8(stderr.Bytes(), []byte("\n[non-utf8 output]\n"))))

	if exitCode != 0 {
		return b.String(), fmt.Errorf("shell_exec exited with code %d", exitCode)
	}
	return b.String(), nil
}

// Run executes a fixed command line on behalf of a skill, reusing the
// tool's limits. The rest argument is appended as extra argv text.
// Skill commands are fixed strings from the registry, not model output;
// they bypass the Enabled gate that guards free-form shell_exec.
func (t *ShellExecTool) Run(ctx context.Context, command, rest string) (string, error) {
	command = strings.TrimSpace(command)
	if rest = strings.TrimSpace(rest); rest != "" {
		command = command + " " + rest
	}
	return t.run(ctx, map[string]any{"cmd": command})
}

func commandDeniedPaths(cmdStr string, denyPaths []string) (string, bool) {
	cmdStr = strings.TrimSpace(cmdStr)
	if cmdStr == "" || len(denyPaths) == 0 {
		return "", false
	}
	for _, p := range denyPaths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if containsTokenBoundary(cmdStr, p) {
			return p, true
		}
		if i := strings.LastIndex(p, "/"); i != -1 && i+1 < len(p) {
			base := p[i+1:]
			if base != "" && containsTokenBoundary(cmdStr, base) {
				return base, true
			}
		}
	}
	return "", false
}

func commandDeniedTokens(cmdStr string, denyTokens []string) (string, bool) {
	cmdStr = strings.TrimSpace(cmdStr)
	if cmdStr == "" || len(denyTokens) == 0 {
		return "", false
	}
	for _, tok := range denyTokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if containsTokenBoundary(strings.ToLower(cmdStr), strings.ToLower(tok)) {
			return tok, true
		}
	}
	return "", false
}

func containsTokenBoundary(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(haystack[start:], needle)
		if i < 0 {
			return false
		}
		i += start
		if tokenBoundaryAt(haystack, i, len(needle)) {
			return true
		}
		start = i + 1
	}
}

func tokenBoundaryAt(s string, start, n int) bool {
	beforeOK := start == 0 || isShellBoundaryByte(s[start-1])
	afterIdx := start + n
	afterOK := afterIdx >= len(s) || isShellBoundaryByte(s[afterIdx])
	return beforeOK && afterOK
}

func isShellBoundaryByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	case '"', '\'', '`':
		return true
	case ';', '|', '&', '(', ')', '{', '}', '[', ']':
		return true
	case '<', '>', '=', ':', ',', '?', '#':
		return true
	case '/':
		return true
	default:
		return false
	}
}

type limitedBuffer struct {
	Limit     int
	Truncated bool
	buf       bytes.Buffer
}

func (w *limitedBuffer) Write(p []byte) (int, error) {
	if w.Limit <= 0 {
		return w.buf.Write(p)
	}
	remaining := w.Limit - w.buf.Len()
	if remaining <= 0 {
		w.Truncated = true
		return len(p), nil
	}
	if len(p) <= remaining {
		return w.buf.Write(p)
	}
	_, _ = w.buf.Write(p[:remaining])
	w.Truncated = true
	return len(p), nil
}

func (w *limitedBuffer) Bytes() []byte {
	return w.buf.Bytes()
}
