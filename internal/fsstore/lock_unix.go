//go:build !windows

package fsstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// withLockFile takes a non-blocking flock and polls on contention, so a
// cancelled ctx can always break the wait.
func withLockFile(ctx context.Context, lockPath string, fn func() error) error {
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, defaultFilePerm)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrLockUnavailable, lockPath, err)
	}
	defer file.Close()

	fd := int(file.Fd())
	if err := acquireFlock(ctx, fd, lockPath); err != nil {
		return err
	}
	defer func() {
		_ = unix.Flock(fd, unix.LOCK_UN)
	}()

	writeLockOwnerInfo(file, lockPath)
	return fn()
}

func acquireFlock(ctx context.Context, fd int, lockPath string) error {
	for {
		err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EWOULDBLOCK), errors.Is(err, unix.EAGAIN):
			if waitErr := waitForLockRetry(ctx, lockPath); waitErr != nil {
				return waitErr
			}
		default:
			return fmt.Errorf("%w: flock %s: %v", ErrLockUnavailable, lockPath, err)
		}
	}
}
