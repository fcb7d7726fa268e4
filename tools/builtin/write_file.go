package builtin

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Evansxm/ev-ai-core/internal/fsstore"
)

type WriteFileTool struct {
	Enabled   bool
	MaxBytes  int64
	DenyPaths []string
	BaseDirs  []string
}

func NewWriteFileTool(enabled bool, maxBytes int64, denyPaths []string, baseDirs ...string) *WriteFileTool {
	if maxBytes <= 0 {
		maxBytes = 512 * 1024
	}
	return &WriteFileTool{
		Enabled:   enabled,
		MaxBytes:  maxBytes,
		DenyPaths: denyPaths,
		BaseDirs:  normalizeBaseDirs(baseDirs),
	}
}

func (t *WriteFileTool) Name() string { return "write_file" }

func (t *WriteFileTool) Description() string {
	return "Writes text content to a local file atomically, creating parent directories as needed."
}

func (t *WriteFileTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "File path to write.",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Content to write.",
			},
		},
		"required": []string{"path", "content"},
	})
}

func (t *WriteFileTool) Execute(_ context.Context, params map[string]any) (string, error) {
	if !t.Enabled {
		return "", fmt.Errorf("write_file tool is disabled (enable via config: tools.write_file.enabled=true)")
	}
	path := stringParam(params, "path")
	if path == "" {
		return "", fmt.Errorf("missing required param: path")
	}
	content, ok := params["content"].(string)
	if !ok {
		return "", fmt.Errorf("missing required param: content")
	}
	if t.MaxBytes > 0 && int64(len(content)) > t.MaxBytes {
		return "", fmt.Errorf("content exceeds max size of %d bytes", t.MaxBytes)
	}

	resolved, inBase := resolveConfined(path, t.BaseDirs)
	if !inBase {
		return "", fmt.Errorf("refusing to write outside the allowed base dirs: %q", path)
	}
	if offending, denied := denyPath(resolved, t.DenyPaths); denied {
		return "", fmt.Errorf("write_file denied for path %q (matched %q)", resolved, offending)
	}

	if err := fsstore.WriteTextAtomic(resolved, content, fsstore.FileOptions{
		FilePerm: 0o644,
		DirPerm:  0o755,
	}); err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(content), filepath.Clean(resolved)), nil
}
