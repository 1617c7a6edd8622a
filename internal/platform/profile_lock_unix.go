//go:build unix

package platform

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

type unixProfileLock struct {
	file *os.File
}

func acquireProfileLock(lockPath string) (ProfileLock, error) {
	// #nosec G304 -- lockPath is built from the application profile directory.
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open profile lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		if isUnixLockContention(err) {
			return nil, ErrProfileInUse
		}

		return nil, fmt.Errorf("acquire profile file lock: %w", err)
	}

	return &unixProfileLock{file: file}, nil
}

func (l *unixProfileLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	fd := int(l.file.Fd())
	unlockErr := syscall.Flock(fd, syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil && !errors.Is(unlockErr, syscall.EBADF) {
		return fmt.Errorf("unlock profile file lock: %w", unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close profile lock file: %w", closeErr)
	}

	return nil
}

func isUnixLockContention(err error) bool {
	return errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN)
}
