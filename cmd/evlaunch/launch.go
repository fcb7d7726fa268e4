package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultEnvName = "ev"

// resolveDir returns the absolute directory holding the launcher binary,
// with symlinks resolved.
func resolveDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	real, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}
	return filepath.Dir(real), nil
}

func envName() string {
	if v := strings.TrimSpace(os.Getenv("EVLAUNCH_ENV")); v != "" {
		return v
	}
	return defaultEnvName
}

// parseEnvFile reads KEY=VALUE lines. Blank lines and #-comments are
// skipped; a missing file yields an empty map.
func parseEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	out := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// buildEnv activates the named environment on top of base: binDir (when
// non-empty) is prepended to PATH, EVAI_ENV is set to name, and extra
// entries override anything already present. Nothing else is touched.
func buildEnv(base []string, binDir, name string, extra map[string]string) []string {
	skip := map[string]bool{"EVAI_ENV": true}
	for k := range extra {
		skip[k] = true
	}

	out := make([]string, 0, len(base)+len(extra)+1)
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if skip[key] {
			continue
		}
		if key == "PATH" && binDir != "" {
			_, value, _ := strings.Cut(kv, "=")
			out = append(out, "PATH="+binDir+string(os.PathListSeparator)+value)
			continue
		}
		out = append(out, kv)
	}
	if binDir != "" && !containsKey(base, "PATH") {
		out = append(out, "PATH="+binDir)
	}
	out = append(out, "EVAI_ENV="+name)
	for k, v := range extra {
		out = append(out, k+"="+v)
	}
	return out
}

func containsKey(env []string, key string) bool {
	for _, kv := range env {
		k, _, _ := strings.Cut(kv, "=")
		if k == key {
			return true
		}
	}
	return false
}

// buildArgv forwards the caller's arguments unchanged after the target.
func buildArgv(target string, args []string) []string {
	return append([]string{target}, args...)
}
