package integrity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Evansxm/ev-ai-core/internal/fsstore"
)

// Seal hashes every entry in include (DefaultPaths when empty) under root,
// computes the self-digest and writes a sealed v1 manifest atomically.
func Seal(root, manifestPath string, include []string) (Manifest, error) {
	if len(include) == 0 {
		include = DefaultPaths
	}
	files := make(map[string]string, len(include))
	for _, entry := range include {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		full := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(entry, "/")))
		if _, err := os.Stat(full); err != nil {
			return Manifest{}, fmt.Errorf("integrity: seal %s: %w", entry, err)
		}
		digest, err := HashPath(root, entry)
		if err != nil {
			return Manifest{}, fmt.Errorf("integrity: seal %s: %w", entry, err)
		}
		files[entry] = digest
	}

	m := newSealedManifest(files, time.Now())
	digest, err := selfDigest(m)
	if err != nil {
		return Manifest{}, err
	}
	m.Digest = digest

	if err := fsstore.WriteJSONAtomic(manifestPath, m, fsstore.FileOptions{FilePerm: 0o644, DirPerm: 0o755}); err != nil {
		return Manifest{}, err
	}
	return m, nil
}
