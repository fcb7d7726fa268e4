package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const findFilesMaxMatches = 200

type ListDirTool struct {
	BaseDirs []string
}

func NewListDirTool(baseDirs ...string) *ListDirTool {
	return &ListDirTool{BaseDirs: normalizeBaseDirs(baseDirs)}
}

func (t *ListDirTool) Name() string { return "list_dir" }

func (t *ListDirTool) Description() string {
	return "Lists a directory's entries with type and size."
}

func (t *ListDirTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Directory to list.",
			},
		},
		"required": []string{"path"},
	})
}

func (t *ListDirTool) Execute(_ context.Context, params map[string]any) (string, error) {
	path := stringParam(params, "path")
	if path == "" {
		return "", fmt.Errorf("missing required param: path")
	}
	resolved, ok := resolveConfined(path, t.BaseDirs)
	if !ok {
		return "", fmt.Errorf("refusing to list outside the allowed base dirs: %q", path)
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "path: %s\nentries: %d\n", resolved, len(entries))
	for _, entry := range entries {
		kind := "file"
		size := int64(0)
		if entry.IsDir() {
			kind = "dir"
		} else if info, err := entry.Info(); err == nil {
			size = info.Size()
		}
		fmt.Fprintf(&b, "%s\t%s\t%d\n", kind, entry.Name(), size)
	}
	return b.String(), nil
}

type FindFilesTool struct {
	BaseDirs []string
}

func NewFindFilesTool(baseDirs ...string) *FindFilesTool {
	return &FindFilesTool{BaseDirs: normalizeBaseDirs(baseDirs)}
}

func (t *FindFilesTool) Name() string { return "find_files" }

func (t *FindFilesTool) Description() string {
	return "Finds files matching a glob pattern (for example: notes/*.md)."
}

func (t *FindFilesTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{
				"type":        "string",
				"description": "Glob pattern to match.",
			},
		},
		"required": []string{"pattern"},
	})
}

func (t *FindFilesTool) Execute(_ context.Context, params map[string]any) (string, error) {
	pattern := stringParam(params, "pattern")
	if pattern == "" {
		return "", fmt.Errorf("missing required param: pattern")
	}
	resolved, ok := resolveConfined(pattern, t.BaseDirs)
	if !ok {
		return "", fmt.Errorf("refusing to search outside the allowed base dirs: %q", pattern)
	}
	matches, err := filepath.Glob(resolved)
	if err != nil {
		return "", fmt.Errorf("invalid glob pattern: %w", err)
	}
	truncated := false
	if len(matches) > findFilesMaxMatches {
		matches = matches[:findFilesMaxMatches]
		truncated = true
	}
	var b strings.Builder
	fmt.Fprintf(&b, "pattern: %s\nmatches: %d\ntruncated: %t\n", pattern, len(matches), truncated)
	for _, m := range matches {
		b.WriteString(m)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
