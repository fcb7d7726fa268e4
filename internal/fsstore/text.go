package fsstore

import (
	"errors"
	"fmt"
	"os"
)

// ReadText returns the file's content, reporting exists=false when the
// path is absent.
func ReadText(path string) (string, bool, error) {
	target, err := cleanPath(path)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read text %s: %w", target, err)
	}
	return string(data), true, nil
}

// WriteTextAtomic is the plain-text twin of WriteJSONAtomic; the
// write_file tool uses it so tool output lands all-or-nothing.
func WriteTextAtomic(path string, content string, opts FileOptions) error {
	target, err := cleanPath(path)
	if err != nil {
		return err
	}
	return writeFileAtomic(target, []byte(content), opts)
}
