package skills

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type packFile struct {
	Skills []Skill `yaml:"skills"`
}

// LoadPacks reads every *.yaml / *.yml file under dir and registers its
// skills. Invalid entries are skipped with a warn log; name collisions keep
// the earlier registration (builtins load first).
func LoadPacks(r *Registry, dir string, logger *slog.Logger) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("skills: read pack dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := loadPackFile(r, path, logger); err != nil {
			if logger != nil {
				logger.Warn("skill_pack_load_failed", "path", path, "error", err.Error())
			}
		}
	}
	return nil
}

func loadPackFile(r *Registry, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var pack packFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for i, s := range pack.Skills {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Command) == "" {
			if logger != nil {
				logger.Warn("skill_pack_entry_skipped", "path", path, "index", i, "reason", "missing name or command")
			}
			continue
		}
		if !r.Register(s) {
			if logger != nil {
				logger.Debug("skill_pack_entry_collision", "path", path, "name", s.Name)
			}
		}
	}
	return nil
}
