package builtin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFileTool_Execute(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o600); err != nil {
		t.Fatal(err)
	}

	tool := NewReadFileTool(1024, nil, dir)
	out, err := tool.Execute(context.Background(), map[string]any{"path": path})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "hello world" {
		t.Fatalf("got %q, want %q", out, "hello world")
	}
}

func TestReadFileTool_Execute_Truncates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 100)), 0o600); err != nil {
		t.Fatal(err)
	}

	tool := NewReadFileTool(10, nil, dir)
	out, err := tool.Execute(context.Background(), map[string]any{"path": path})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out) != 10 {
		t.Fatalf("expected 10 bytes, got %d", len(out))
	}
}

func TestReadFileTool_Execute_DeniedPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secrets.env")
	if err := os.WriteFile(path, []byte("TOKEN=x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tool := NewReadFileTool(1024, []string{"secrets.env"}, dir)
	_, err := tool.Execute(context.Background(), map[string]any{"path": path})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "denied") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadFileTool_Execute_OutsideBaseDirs(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	path := filepath.Join(other, "note.txt")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tool := NewReadFileTool(1024, nil, dir)
	_, err := tool.Execute(context.Background(), map[string]any{"path": path})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "outside the allowed base dirs") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteFileTool_Execute(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "out.txt")

	tool := NewWriteFileTool(true, 1024, nil, dir)
	out, err := tool.Execute(context.Background(), map[string]any{
		"path":    path,
		"content": "payload",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "wrote 7 bytes") {
		t.Fatalf("unexpected output: %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Fatalf("got %q, want %q", string(data), "payload")
	}
}

func TestWriteFileTool_Execute_Disabled(t *testing.T) {
	tool := NewWriteFileTool(false, 1024, nil)
	_, err := tool.Execute(context.Background(), map[string]any{
		"path":    "/tmp/x.txt",
		"content": "x",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteFileTool_Execute_TooLarge(t *testing.T) {
	dir := t.TempDir()
	tool := NewWriteFileTool(true, 4, nil, dir)
	_, err := tool.Execute(context.Background(), map[string]any{
		"path":    filepath.Join(dir, "x.txt"),
		"content": "too big",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "exceeds max size") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListDirTool_Execute(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("abc"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o700); err != nil {
		t.Fatal(err)
	}

	tool := NewListDirTool(dir)
	out, err := tool.Execute(context.Background(), map[string]any{"path": dir})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "entries: 2") {
		t.Fatalf("expected 2 entries, got %q", out)
	}
	if !strings.Contains(out, "file\ta.txt\t3") {
		t.Fatalf("expected file entry, got %q", out)
	}
	if !strings.Contains(out, "dir\tsub\t0") {
		t.Fatalf("expected dir entry, got %q", out)
	}
}

func TestFindFilesTool_Execute(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.md", "b.md", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	tool := NewFindFilesTool(dir)
	out, err := tool.Execute(context.Background(), map[string]any{
		"pattern": filepath.Join(dir, "*.md"),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "matches: 2") {
		t.Fatalf("expected 2 matches, got %q", out)
	}
	if strings.Contains(out, "c.txt") {
		t.Fatalf("did not expect c.txt in %q", out)
	}
}
