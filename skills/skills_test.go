package skills

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegisterAndGet(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	ok := r.Register(Skill{Name: "Disk  Usage", Command: "df -h", Aliases: []string{"DF"}, Enabled: true})
	if !ok {
		t.Fatalf("Register() = false, want true")
	}

	s, found := r.Get("disk usage")
	if !found {
		t.Fatalf("Get(disk usage) not found")
	}
	if s.Category != "general" {
		t.Fatalf("Get() category = %q, want general", s.Category)
	}

	if _, found := r.Get("df"); !found {
		t.Fatalf("Get(df) alias not resolved")
	}
}

func TestRegisterCollisionKeepsFirst(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register(Skill{Name: "git status", Command: "git status", Enabled: true})
	if r.Register(Skill{Name: "git status", Command: "rm -rf /", Enabled: true}) {
		t.Fatalf("Register() collision = true, want false")
	}
	s, _ := r.Get("git status")
	if s.Command != "git status" {
		t.Fatalf("collision overwrote command: %q", s.Command)
	}
}

func TestMatchLongestName(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register(Skill{Name: "git", Command: "git", Enabled: true})
	r.Register(Skill{Name: "git status", Command: "git status", Enabled: true})

	s, rest, ok := r.Match("Git Status")
	if !ok {
		t.Fatalf("Match() not found")
	}
	if s.Name != "git status" {
		t.Fatalf("Match() = %q, want git status", s.Name)
	}
	if rest != "" {
		t.Fatalf("Match() rest = %q, want empty", rest)
	}
}

func TestMatchRestAndDisabled(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register(Skill{Name: "docker ps", Command: "docker ps", Enabled: true})

	_, rest, ok := r.Match("docker ps --all containers")
	if !ok {
		t.Fatalf("Match() not found")
	}
	if rest != "--all containers" {
		t.Fatalf("Match() rest = %q", rest)
	}

	if !r.SetEnabled("docker ps", false) {
		t.Fatalf("SetEnabled() = false, want true")
	}
	if _, _, ok := r.Match("docker ps"); ok {
		t.Fatalf("Match() found disabled skill")
	}

	// Word-boundary only: "docker psx" must not match "docker ps".
	r.SetEnabled("docker ps", true)
	if _, _, ok := r.Match("docker psx"); ok {
		t.Fatalf("Match() matched across word boundary")
	}
}

func TestRegisterBuiltins(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	RegisterBuiltins(r)
	if r.Len() == 0 {
		t.Fatalf("RegisterBuiltins() registered nothing")
	}
	if _, found := r.Get("disk usage"); !found {
		t.Fatalf("builtin disk usage missing")
	}
	cats := r.Categories()
	if len(cats) < 3 {
		t.Fatalf("Categories() = %v, want at least sys/vc/utils", cats)
	}
}

func TestLoadPacks(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	pack := `skills:
  - name: hello world
    description: Say hello
    category: utils
    command: echo hello
    enabled: true
  - name: ""
    command: echo skipped
  - name: no command
    command: ""
`
	if err := os.WriteFile(filepath.Join(dir, "pack.yaml"), []byte(pack), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	r := NewRegistry()
	if err := LoadPacks(r, dir, nil); err != nil {
		t.Fatalf("LoadPacks() error = %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("LoadPacks() registered %d skills, want 1", r.Len())
	}
	if _, found := r.Get("hello world"); !found {
		t.Fatalf("pack skill missing")
	}
}

func TestLoadPacksMissingDir(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	if err := LoadPacks(r, filepath.Join(t.TempDir(), "absent"), nil); err != nil {
		t.Fatalf("LoadPacks(absent) error = %v", err)
	}
}
