package integrity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	ManifestFilename = "INTEGRITY.json"
	AlgorithmSHA256  = "sha256"
)

var (
	ErrManifestMissing = errors.New("integrity: manifest missing")
	ErrManifestInvalid = errors.New("integrity: manifest invalid")
	ErrVerifyFailed    = errors.New("integrity: verification failed")
)

var hexDigestRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Manifest maps repository paths to sha256 content digests. Version 0 is the
// legacy flat path-to-hash object; version 1 adds metadata and a self-digest
// over the RFC 8785 canonical form.
type Manifest struct {
	Version     int               `json:"version"`
	Algorithm   string            `json:"algorithm,omitempty"`
	GeneratedAt string            `json:"generated_at,omitempty"`
	Files       map[string]string `json:"files"`
	Digest      string            `json:"digest,omitempty"`
}

// DefaultPaths are the core trees a fresh seal covers.
var DefaultPaths = []string{
	"cmd/evai/",
	"memory/",
	"mcp/",
	"tools/",
	"skills/",
	"server/",
	"prompts/",
	"proactive/",
}

// Load reads a manifest, accepting both forms. A flat JSON object whose
// values are all strings is decoded as the legacy version 0 shape.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Manifest{}, fmt.Errorf("%w: %s", ErrManifestMissing, path)
		}
		return Manifest{}, fmt.Errorf("integrity: read %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (Manifest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}

	if _, hasVersion := raw["version"]; hasVersion {
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return Manifest{}, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
		}
		if m.Version != 1 {
			return Manifest{}, fmt.Errorf("%w: unsupported version %d", ErrManifestInvalid, m.Version)
		}
		if m.Algorithm != AlgorithmSHA256 {
			return Manifest{}, fmt.Errorf("%w: unsupported algorithm %q", ErrManifestInvalid, m.Algorithm)
		}
		if m.Files == nil {
			m.Files = map[string]string{}
		}
		return m, nil
	}

	// Legacy flat form: every value must be a string.
	files := make(map[string]string, len(raw))
	for path, val := range raw {
		var digest string
		if err := json.Unmarshal(val, &digest); err != nil {
			return Manifest{}, fmt.Errorf("%w: entry %q is not a string", ErrManifestInvalid, path)
		}
		files[path] = digest
	}
	return Manifest{Version: 0, Files: files}, nil
}

// Sealed reports whether the manifest carries a self-digest.
func (m Manifest) Sealed() bool {
	return m.Version >= 1 && m.Digest != ""
}

// Paths returns the manifest's file paths, sorted.
func (m Manifest) Paths() []string {
	out := make([]string, 0, len(m.Files))
	for p := range m.Files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// IsPlaceholder reports whether a digest value cannot be a real sha256 hex
// digest. The shipped legacy manifest carries the literal "xxx" everywhere.
func IsPlaceholder(digest string) bool {
	return !hexDigestRe.MatchString(strings.TrimSpace(digest))
}

func newSealedManifest(files map[string]string, now time.Time) Manifest {
	return Manifest{
		Version:     1,
		Algorithm:   AlgorithmSHA256,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Files:       files,
	}
}
