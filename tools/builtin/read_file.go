package builtin

import (
	"context"
	"fmt"
	"os"
)

type ReadFileTool struct {
	MaxBytes  int64
	DenyPaths []string
	BaseDirs  []string
}

func NewReadFileTool(maxBytes int64, denyPaths []string, baseDirs ...string) *ReadFileTool {
	return &ReadFileTool{
		MaxBytes:  maxBytes,
		DenyPaths: denyPaths,
		BaseDirs:  normalizeBaseDirs(baseDirs),
	}
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Reads a local text file from disk and returns its content (truncated to a maximum size)."
}

func (t *ReadFileTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "File path to read.",
			},
		},
		"required": []string{"path"},
	})
}

func (t *ReadFileTool) Execute(_ context.Context, params map[string]any) (string, error) {
	path := stringParam(params, "path")
	if path == "" {
		return "", fmt.Errorf("missing required param: path")
	}
	resolved, ok := resolveConfined(path, t.BaseDirs)
	if !ok {
		return "", fmt.Errorf("refusing to read outside the allowed base dirs: %q", path)
	}
	if offending, denied := denyPath(resolved, t.DenyPaths); denied {
		return "", fmt.Errorf("read_file denied for path %q (matched %q)", resolved, offending)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", err
	}
	if t.MaxBytes > 0 && int64(len(data)) > t.MaxBytes {
		data = data[:t.MaxBytes]
	}
	return string(data), nil
}
