// Package fsstore is the persistence layer for the ~/.ev-ai state tree.
// Everything the agent keeps on disk goes through it: memories and the
// interaction journal, skill packs, audit trails and the integrity
// manifest. Writes are atomic (temp file + rename), append streams are
// size-rotated JSONL, and cross-process exclusion uses lock files under
// the state tree's locks/ directory.
package fsstore

import (
	"errors"
	"os"
)

var (
	ErrInvalidPath       = errors.New("fsstore: invalid path")
	ErrLockTimeout       = errors.New("fsstore: lock timeout")
	ErrLockUnavailable   = errors.New("fsstore: lock unavailable")
	ErrEncodeFailed      = errors.New("fsstore: encode failed")
	ErrDecodeFailed      = errors.New("fsstore: decode failed")
	ErrAtomicWriteFailed = errors.New("fsstore: atomic write failed")
)

// State files default to owner-only permissions; memories and audit
// trails are private data.
const (
	defaultDirPerm        = 0o700
	defaultFilePerm       = 0o600
	defaultRotateMaxBytes = 100 * 1024 * 1024
)

type FileOptions struct {
	DirPerm  os.FileMode
	FilePerm os.FileMode
}

type JSONLOptions struct {
	DirPerm        os.FileMode
	FilePerm       os.FileMode
	RotateMaxBytes int64
	FlushEachWrite bool
	SyncEachWrite  bool
}

func (o FileOptions) withDefaults() FileOptions {
	if o.DirPerm == 0 {
		o.DirPerm = defaultDirPerm
	}
	if o.FilePerm == 0 {
		o.FilePerm = defaultFilePerm
	}
	return o
}

func (o JSONLOptions) withDefaults() JSONLOptions {
	if o.DirPerm == 0 {
		o.DirPerm = defaultDirPerm
	}
	if o.FilePerm == 0 {
		o.FilePerm = defaultFilePerm
	}
	if o.RotateMaxBytes <= 0 {
		o.RotateMaxBytes = defaultRotateMaxBytes
	}
	if !o.FlushEachWrite && !o.SyncEachWrite {
		// Journal readers (Tail, audit review) expect to see entries
		// promptly, so flush per append unless told otherwise.
		o.FlushEachWrite = true
	}
	return o
}
