//go:build windows

package fsstore

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Windows has no flock; O_EXCL creation of the lock file stands in, with
// the file removed on release.
func withLockFile(ctx context.Context, lockPath string, fn func() error) error {
	file, err := acquireExclusiveFile(ctx, lockPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
		_ = os.Remove(lockPath)
	}()

	writeLockOwnerInfo(file, lockPath)
	return fn()
}

func acquireExclusiveFile(ctx context.Context, lockPath string) (*os.File, error) {
	for {
		file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, defaultFilePerm)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: open %s: %v", ErrLockUnavailable, lockPath, err)
		}
		if waitErr := waitForLockRetry(ctx, lockPath); waitErr != nil {
			return nil, waitErr
		}
	}
}
