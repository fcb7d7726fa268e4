package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Evansxm/ev-ai-core/internal/fsstore"
)

const DefaultSearchLimit = 10

// Store is a categorized key-value memory persisted as a single JSON file.
// Every mutation rewrites the file atomically under a lock, so concurrent
// processes (daemon + CLI) see consistent state.
type Store struct {
	path     string
	lockPath string
	now      func() time.Time
}

type storeFile struct {
	Version int                `json:"version"`
	Records map[string]*Record `json:"records"`
}

func NewStore(dir string, lockRoot string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("memory: missing store dir")
	}
	if strings.TrimSpace(lockRoot) == "" {
		lockRoot = filepath.Join(dir, ".fslocks")
	}
	lockPath, err := fsstore.BuildLockPath(lockRoot, "memory.store")
	if err != nil {
		return nil, err
	}
	return &Store{
		path:     filepath.Join(dir, "store.json"),
		lockPath: lockPath,
		now:      time.Now,
	}, nil
}

// Remember upserts a record. CreatedAt and AccessCount survive updates.
func (s *Store) Remember(ctx context.Context, key, value, category string, importance int) (Record, error) {
	key, err := validateKey(key)
	if err != nil {
		return Record{}, err
	}
	var out Record
	err = s.mutate(ctx, func(f *storeFile) error {
		now := s.now().UTC()
		rec, ok := f.Records[key]
		if !ok {
			rec = &Record{Key: key, CreatedAt: now}
			f.Records[key] = rec
		}
		rec.Value = value
		rec.Category = normalizeCategory(category)
		rec.Importance = clampImportance(importance)
		rec.UpdatedAt = now
		out = *rec
		return nil
	})
	return out, err
}

// Recall returns a record by key and bumps its access count.
func (s *Store) Recall(ctx context.Context, key string) (Record, error) {
	key, err := validateKey(key)
	if err != nil {
		return Record{}, err
	}
	var out Record
	err = s.mutate(ctx, func(f *storeFile) error {
		rec, ok := f.Records[key]
		if !ok {
			return fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		rec.AccessCount++
		out = *rec
		return nil
	})
	return out, err
}

// Peek reads a record without touching the access count.
func (s *Store) Peek(ctx context.Context, key string) (Record, error) {
	key, err := validateKey(key)
	if err != nil {
		return Record{}, err
	}
	f, err := s.load()
	if err != nil {
		return Record{}, err
	}
	rec, ok := f.Records[key]
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return *rec, nil
}

// Search matches term as a substring of key or value, ordered by importance
// desc, then access count desc, then key.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(term)
	matches := make([]Record, 0, len(f.Records))
	for _, rec := range f.Records {
		if term != "" &&
			!strings.Contains(strings.ToLower(rec.Key), term) &&
			!strings.Contains(strings.ToLower(rec.Value), term) {
			continue
		}
		matches = append(matches, *rec)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Importance != matches[j].Importance {
			return matches[i].Importance > matches[j].Importance
		}
		if matches[i].AccessCount != matches[j].AccessCount {
			return matches[i].AccessCount > matches[j].AccessCount
		}
		return matches[i].Key < matches[j].Key
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// ByCategory returns all records in a category, sorted by key.
func (s *Store) ByCategory(ctx context.Context, category string) ([]Record, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(f.Records))
	for _, rec := range f.Records {
		if category != "" && rec.Category != category {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Forget deletes a key, reporting whether it existed.
func (s *Store) Forget(ctx context.Context, key string) (bool, error) {
	key, err := validateKey(key)
	if err != nil {
		return false, err
	}
	existed := false
	err = s.mutate(ctx, func(f *storeFile) error {
		_, existed = f.Records[key]
		delete(f.Records, key)
		return nil
	})
	return existed, err
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(f.Records))
	for k := range f.Records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Len(ctx context.Context) (int, error) {
	f, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(f.Records), nil
}

// Categories returns the distinct category names present, sorted.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, rec := range f.Records {
		seen[rec.Category] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// Export returns every record sorted by key.
func (s *Store) Export(ctx context.Context) ([]Record, error) {
	return s.ByCategory(ctx, "")
}

func (s *Store) load() (*storeFile, error) {
	f := &storeFile{Version: 1, Records: map[string]*Record{}}
	ok, err := fsstore.ReadJSON(s.path, f)
	if err != nil {
		return nil, err
	}
	if !ok || f.Records == nil {
		f.Records = map[string]*Record{}
	}
	return f, nil
}

func (s *Store) mutate(ctx context.Context, fn func(*storeFile) error) error {
	return fsstore.WithLock(ctx, s.lockPath, func() error {
		f, err := s.load()
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
		return fsstore.WriteJSONAtomic(s.path, f, fsstore.FileOptions{})
	})
}

func validateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if utf8.RuneCountInString(key) > maxKeyRunes {
		return "", fmt.Errorf("%w: key longer than %d runes", ErrInvalidKey, maxKeyRunes)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: key contains control character", ErrInvalidKey)
		}
	}
	return key, nil
}
