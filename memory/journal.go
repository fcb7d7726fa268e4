package memory

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Evansxm/ev-ai-core/internal/fsstore"
	"github.com/google/uuid"
)

// Journal appends one Interaction per agent execution to a JSONL file.
type Journal struct {
	path   string
	writer *fsstore.JSONLWriter
}

func NewJournal(dir string, rotateMaxBytes int64) (*Journal, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("memory: missing journal dir")
	}
	path := filepath.Join(dir, "interactions.jsonl")
	writer, err := fsstore.NewJSONLWriter(path, fsstore.JSONLOptions{
		RotateMaxBytes: rotateMaxBytes,
		FlushEachWrite: true,
	})
	if err != nil {
		return nil, err
	}
	return &Journal{path: path, writer: writer}, nil
}

func (j *Journal) Record(input, response, source string) (Interaction, error) {
	entry := Interaction{
		ID:        uuid.NewString(),
		Input:     input,
		Response:  response,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
	if j == nil || j.writer == nil {
		return entry, nil
	}
	if err := j.writer.AppendJSON(entry); err != nil {
		return Interaction{}, err
	}
	return entry, nil
}

// Tail returns the last n interactions, oldest first. Lines that fail to
// decode are skipped.
func (j *Journal) Tail(n int) ([]Interaction, error) {
	if j == nil || n <= 0 {
		return nil, nil
	}
	file, err := os.Open(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var out []Interaction
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry Interaction
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		out = append(out, entry)
		if len(out) > n {
			out = out[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *Journal) Close() error {
	if j == nil || j.writer == nil {
		return nil
	}
	return j.writer.Close()
}
