package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jsoncanonicalizer "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// HashFile returns the lowercase sha256 hex digest of a file's content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("integrity: hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashDir digests a directory tree: sha256 over "relpath\nfilehash\n" lines
// for every regular file, walked in sorted order. Hidden files and
// directories are skipped.
func HashDir(root string) (string, error) {
	files, err := collectFiles(root)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, rel := range files {
		fileHash, err := HashFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\n%s\n", rel, fileHash)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashPath hashes a manifest entry: entries with a trailing slash are
// directory digests, everything else a plain file digest.
func HashPath(root, entry string) (string, error) {
	full := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(entry, "/")))
	if strings.HasSuffix(entry, "/") {
		return HashDir(full)
	}
	info, err := os.Stat(full)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return HashDir(full)
	}
	return HashFile(full)
}

func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// selfDigest computes the sha256 of the manifest's RFC 8785 canonical JSON
// with the digest field blanked.
func selfDigest(m Manifest) (string, error) {
	m.Digest = ""
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("integrity: encode manifest: %w", err)
	}
	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("integrity: canonicalize manifest: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
