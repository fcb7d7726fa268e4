package auditlog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Evansxm/ev-ai-core/internal/fsstore"
)

// Event is one audited agent execution triggered from an external channel.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Channel   string    `json:"channel"`
	Sender    string    `json:"sender,omitempty"`
	Command   string    `json:"command"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
}

type JSONLSink struct {
	path     string
	lockPath string
	writer   *fsstore.JSONLWriter

	mu sync.Mutex
}

func NewJSONLSink(path string, rotateMaxBytes int64, lockRoot string) (*JSONLSink, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("missing jsonl path")
	}
	if strings.TrimSpace(lockRoot) == "" {
		lockRoot = filepath.Join(filepath.Dir(path), ".fslocks")
	}
	lockPath, err := fsstore.BuildLockPath(lockRoot, "audit.channel_jsonl")
	if err != nil {
		return nil, err
	}
	writer, err := fsstore.NewJSONLWriter(path, fsstore.JSONLOptions{
		RotateMaxBytes: rotateMaxBytes,
		FlushEachWrite: true,
	})
	if err != nil {
		return nil, err
	}
	return &JSONLSink{
		path:     path,
		lockPath: lockPath,
		writer:   writer,
	}, nil
}

func (s *JSONLSink) Emit(ctx context.Context, e Event) error {
	if s == nil || s.writer == nil {
		return nil
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return fsstore.WithLock(ctx, s.lockPath, func() error {
		return s.writer.AppendJSON(e)
	})
}

func (s *JSONLSink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer == nil {
		return nil
	}
	err := s.writer.Close()
	s.writer = nil
	return err
}
