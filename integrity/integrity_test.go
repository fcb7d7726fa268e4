package integrity

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestParseLegacyManifest(t *testing.T) {
	t.Parallel()
	data := `{"cmd/evai/": "cf2efc4080fb2556aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "memory/": "xxx"}`
	m, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if m.Version != 0 {
		t.Fatalf("Parse() version = %d, want 0", m.Version)
	}
	if m.Sealed() {
		t.Fatalf("Parse() legacy manifest reports sealed")
	}
	if len(m.Files) != 2 {
		t.Fatalf("Parse() files = %d, want 2", len(m.Files))
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		data string
	}{
		{"not_json", "nope"},
		{"non_string_value", `{"a/": 7}`},
		{"bad_version", `{"version": 2, "algorithm": "sha256", "files": {}}`},
		{"bad_algorithm", `{"version": 1, "algorithm": "md5", "files": {}}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tc.data)); !errors.Is(err, ErrManifestInvalid) {
				t.Fatalf("Parse(%s) error = %v, want ErrManifestInvalid", tc.name, err)
			}
		})
	}
}

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()
	cases := []struct {
		digest string
		want   bool
	}{
		{"xxx", true},
		{"", true},
		{strings.Repeat("a", 63), true},
		{strings.Repeat("A", 64), true},
		{strings.Repeat("a", 64), false},
		{"cf2efc4080fb2556" + strings.Repeat("0", 48), false},
	}
	for _, tc := range cases {
		if got := IsPlaceholder(tc.digest); got != tc.want {
			t.Fatalf("IsPlaceholder(%q) = %t, want %t", tc.digest, got, tc.want)
		}
	}
}

func TestSealVerifyRoundTrip(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "pkg/a.go", "package a\n")
	writeFile(t, root, "pkg/sub/b.go", "package sub\n")
	writeFile(t, root, "main.go", "package main\n")

	manifestPath := filepath.Join(root, ManifestFilename)
	m, err := Seal(root, manifestPath, []string{"pkg/", "main.go"})
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if !m.Sealed() {
		t.Fatalf("Seal() produced unsealed manifest")
	}

	report, err := VerifyFile(root, manifestPath)
	if err != nil {
		t.Fatalf("VerifyFile() error = %v", err)
	}
	if !report.OK() {
		t.Fatalf("VerifyFile() failures = %v", report.Failures())
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "pkg/a.go", "package a\n")
	manifestPath := filepath.Join(root, ManifestFilename)
	if _, err := Seal(root, manifestPath, []string{"pkg/"}); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	writeFile(t, root, "pkg/a.go", "package a // edited\n")

	report, err := VerifyFile(root, manifestPath)
	if err != nil {
		t.Fatalf("VerifyFile() error = %v", err)
	}
	failures := report.Failures()
	if len(failures) != 1 || failures[0].Status != StatusTampered || failures[0].Path != "pkg/" {
		t.Fatalf("VerifyFile() failures = %v, want one TAMPERED pkg/", failures)
	}
}

func TestVerifyDetectsManifestTampering(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	manifestPath := filepath.Join(root, ManifestFilename)
	m, err := Seal(root, manifestPath, []string{"main.go"})
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	// Change a hash without re-computing the self-digest.
	m.Files["main.go"] = strings.Repeat("0", 64)
	report, err := Verify(root, m)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	failures := report.Failures()
	if len(failures) != 1 || failures[0].Path != ManifestFilename || failures[0].Status != StatusTampered {
		t.Fatalf("Verify() failures = %v, want TAMPERED INTEGRITY.json", failures)
	}
}

func TestVerifyMissingAndUnsealed(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "present.go", "package p\n")
	digest, err := HashFile(filepath.Join(root, "present.go"))
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}

	m := Manifest{Version: 0, Files: map[string]string{
		"present.go": digest,
		"absent.go":  strings.Repeat("a", 64),
		"stub.go":    "xxx",
	}}
	report, err := Verify(root, m)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	byPath := map[string]FindingStatus{}
	for _, f := range report.Findings {
		byPath[f.Path] = f.Status
	}
	if byPath["present.go"] != StatusOK {
		t.Fatalf("present.go status = %s", byPath["present.go"])
	}
	if byPath["absent.go"] != StatusMissing {
		t.Fatalf("absent.go status = %s", byPath["absent.go"])
	}
	if byPath["stub.go"] != StatusUnsealed {
		t.Fatalf("stub.go status = %s", byPath["stub.go"])
	}
	if report.OK() {
		t.Fatalf("Verify() OK = true, want false")
	}
}

func TestLoadMissingManifest(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), ManifestFilename))
	if !errors.Is(err, ErrManifestMissing) {
		t.Fatalf("Load() error = %v, want ErrManifestMissing", err)
	}
}

func TestHashDirDeterministicAndHiddenSkipped(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "d/a.txt", "A")
	writeFile(t, root, "d/b.txt", "B")
	writeFile(t, root, "d/.hidden", "H")

	first, err := HashDir(filepath.Join(root, "d"))
	if err != nil {
		t.Fatalf("HashDir() error = %v", err)
	}
	second, err := HashDir(filepath.Join(root, "d"))
	if err != nil {
		t.Fatalf("HashDir() second error = %v", err)
	}
	if first != second {
		t.Fatalf("HashDir() not deterministic: %s != %s", first, second)
	}

	writeFile(t, root, "d/.hidden", "changed")
	third, err := HashDir(filepath.Join(root, "d"))
	if err != nil {
		t.Fatalf("HashDir() third error = %v", err)
	}
	if third != first {
		t.Fatalf("HashDir() changed when only a hidden file changed")
	}
}
