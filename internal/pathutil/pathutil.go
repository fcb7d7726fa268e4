package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultStateDir = "~/.ev-ai"

func ExpandHomePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return path
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func ResolveStateDir(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = defaultStateDir
	}
	return filepath.Clean(ExpandHomePath(raw))
}

func ResolveStateChildDir(stateRaw, childRaw, fallbackChild string) string {
	child := strings.TrimSpace(childRaw)
	if child == "" {
		child = fallbackChild
	}
	if filepath.IsAbs(child) || strings.HasPrefix(child, "~") {
		return filepath.Clean(ExpandHomePath(child))
	}
	return filepath.Join(ResolveStateDir(stateRaw), child)
}

func ResolveStateFile(stateRaw, filename string) string {
	return filepath.Join(ResolveStateDir(stateRaw), filename)
}
