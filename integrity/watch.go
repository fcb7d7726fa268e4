package integrity

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 2 * time.Second

// Watch re-verifies the manifest whenever a manifest'd path changes.
// Filesystem events are debounced so one editor save triggers one pass.
// Blocks until ctx is cancelled.
func Watch(ctx context.Context, root, manifestPath string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	m, err := Load(manifestPath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(manifestPath); err != nil {
		return err
	}
	for _, entry := range m.Paths() {
		full := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(entry, "/")))
		if err := addTree(watcher, full); err != nil {
			logger.Warn("integrity_watch_add_failed", "path", full, "error", err.Error())
		}
	}
	logger.Info("integrity_watch_start", "root", root, "entries", len(m.Files))

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need to join the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addTree(watcher, event.Name)
				}
			}
			schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("integrity_watch_error", "error", err.Error())
		case <-fire:
			report, err := VerifyFile(root, manifestPath)
			if err != nil {
				logger.Warn("integrity_reverify_failed", "error", err.Error())
				continue
			}
			if report.OK() {
				logger.Info("integrity_reverify_ok", "entries", len(report.Findings))
				continue
			}
			for _, f := range report.Failures() {
				logger.Warn("integrity_finding", "path", f.Path, "status", string(f.Status), "detail", f.Detail)
			}
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
