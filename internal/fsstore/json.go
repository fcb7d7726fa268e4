package fsstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ReadJSON decodes the state file at path into out. A missing or empty
// file reports exists=false with no error, so callers can start from a
// zero value on first run.
func ReadJSON(path string, out any) (bool, error) {
	target, err := cleanPath(path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read json %s: %w", target, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", ErrDecodeFailed, target, err)
	}
	return true, nil
}

// WriteJSONAtomic writes v as indented JSON with a trailing newline, so
// state files stay diffable and editor-friendly.
func WriteJSONAtomic(path string, v any, opts FileOptions) error {
	target, err := cleanPath(path)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrEncodeFailed, target, err)
	}
	data = append(data, '\n')
	return writeFileAtomic(target, data, opts)
}
