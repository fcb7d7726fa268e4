package integrity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type FindingStatus string

const (
	StatusOK       FindingStatus = "ok"
	StatusUnsealed FindingStatus = "Unsealed"
	StatusMissing  FindingStatus = "Missing"
	StatusTampered FindingStatus = "TAMPERED"
)

// Finding is the verification result for one manifest entry.
type Finding struct {
	Path   string
	Status FindingStatus
	Detail string
}

func (f Finding) String() string {
	if f.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", f.Status, f.Path, f.Detail)
	}
	return fmt.Sprintf("%s: %s", f.Status, f.Path)
}

// Report is the outcome of verifying one manifest against a tree.
type Report struct {
	Findings []Finding
}

// Failures returns the non-ok findings.
func (r Report) Failures() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Status != StatusOK {
			out = append(out, f)
		}
	}
	return out
}

// OK reports whether verification passed with zero failures.
func (r Report) OK() bool { return len(r.Failures()) == 0 }

// VerifyFile loads the manifest at path and verifies it against root. A
// missing manifest is itself a failure.
func VerifyFile(root, path string) (Report, error) {
	m, err := Load(path)
	if err != nil {
		return Report{}, err
	}
	return Verify(root, m)
}

// Verify checks every manifest entry. Sealed manifests first have their
// self-digest recomputed; a mismatch yields a single TAMPERED finding for
// the manifest itself and skips the per-entry walk.
func Verify(root string, m Manifest) (Report, error) {
	if m.Sealed() {
		want, err := selfDigest(m)
		if err != nil {
			return Report{}, err
		}
		if want != m.Digest {
			return Report{Findings: []Finding{{
				Path:   ManifestFilename,
				Status: StatusTampered,
				Detail: "manifest self-digest mismatch",
			}}}, nil
		}
	}

	var report Report
	for _, entry := range m.Paths() {
		report.Findings = append(report.Findings, verifyEntry(root, entry, m.Files[entry]))
	}
	return report, nil
}

func verifyEntry(root, entry, expected string) Finding {
	if IsPlaceholder(expected) {
		return Finding{Path: entry, Status: StatusUnsealed, Detail: fmt.Sprintf("value %q is not a sha256 digest", expected)}
	}
	full := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(entry, "/")))
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Finding{Path: entry, Status: StatusMissing}
		}
		return Finding{Path: entry, Status: StatusMissing, Detail: err.Error()}
	}
	actual, err := HashPath(root, entry)
	if err != nil {
		return Finding{Path: entry, Status: StatusTampered, Detail: err.Error()}
	}
	if actual != expected {
		return Finding{Path: entry, Status: StatusTampered}
	}
	return Finding{Path: entry, Status: StatusOK}
}
