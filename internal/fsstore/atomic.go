package fsstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates path (and parents) with perm, defaulting to the
// private state-tree mode.
func EnsureDir(path string, perm os.FileMode) error {
	dir, err := cleanPath(path)
	if err != nil {
		return err
	}
	if perm == 0 {
		perm = defaultDirPerm
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("fsstore mkdir %s: %w", dir, err)
	}
	return nil
}

// writeFileAtomic stages content in a sibling temp file, then renames it
// over path. Readers never observe a half-written state file.
func writeFileAtomic(path string, content []byte, opts FileOptions) error {
	target, err := cleanPath(path)
	if err != nil {
		return err
	}
	opts = opts.withDefaults()

	dir := filepath.Dir(target)
	if err := EnsureDir(dir, opts.DirPerm); err != nil {
		return err
	}

	staged, err := os.CreateTemp(dir, filepath.Base(target)+".tmp.*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrAtomicWriteFailed, target, err)
	}
	stagedPath := staged.Name()
	defer func() {
		_ = staged.Close()
		_ = os.Remove(stagedPath)
	}()

	if _, err := staged.Write(content); err != nil {
		return fmt.Errorf("%w: write temp for %s: %v", ErrAtomicWriteFailed, target, err)
	}
	if err := staged.Sync(); err != nil {
		return fmt.Errorf("%w: sync temp for %s: %v", ErrAtomicWriteFailed, target, err)
	}
	if err := staged.Chmod(opts.FilePerm); err != nil {
		return fmt.Errorf("%w: chmod temp for %s: %v", ErrAtomicWriteFailed, target, err)
	}
	if err := staged.Close(); err != nil {
		return fmt.Errorf("%w: close temp for %s: %v", ErrAtomicWriteFailed, target, err)
	}
	if err := os.Rename(stagedPath, target); err != nil {
		return fmt.Errorf("%w: rename temp for %s: %v", ErrAtomicWriteFailed, target, err)
	}

	// Directory sync is best effort; the rename already landed.
	if dirFD, err := os.Open(dir); err == nil {
		_ = dirFD.Sync()
		_ = dirFD.Close()
	}
	return nil
}
