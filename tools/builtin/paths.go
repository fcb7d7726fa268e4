package builtin

import (
	"path/filepath"
	"strings"

	"github.com/Evansxm/ev-ai-core/internal/pathutil"
)

func normalizeBaseDirs(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		out = append(out, filepath.Clean(pathutil.ExpandHomePath(d)))
	}
	return out
}

// resolveConfined expands a path and, when base dirs are configured,
// requires the result to stay inside one of them.
func resolveConfined(raw string, baseDirs []string) (string, bool) {
	abs, err := filepath.Abs(pathutil.ExpandHomePath(strings.TrimSpace(raw)))
	if err != nil {
		return "", false
	}
	if len(baseDirs) == 0 {
		return abs, true
	}
	for _, base := range baseDirs {
		baseAbs, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		if isWithinDir(baseAbs, abs) {
			return abs, true
		}
	}
	return abs, false
}

func isWithinDir(base, candidate string) bool {
	rel, err := filepath.Rel(base, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func denyPath(path string, denyPaths []string) (string, bool) {
	if len(denyPaths) == 0 {
		return "", false
	}
	p := filepath.ToSlash(filepath.Clean(strings.TrimSpace(path)))
	base := filepath.Base(p)

	for _, d := range denyPaths {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		dClean := filepath.ToSlash(filepath.Clean(d))

		// A bare basename denies any file with that basename.
		if !strings.Contains(dClean, "/") {
			if base == dClean {
				return d, true
			}
			continue
		}
		if p == dClean || strings.HasSuffix(p, "/"+dClean) {
			return d, true
		}
		if b := filepath.Base(dClean); b != "" && base == b {
			return d, true
		}
	}
	return "", false
}
