//go:build windows

package platform

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

type windowsProfileLock struct {
	file *os.File
}

func acquireProfileLock(lockPath string) (ProfileLock, error) {
	// #nosec G304 -- lockPath is built from the application profile directory.
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open profile lock file: %w", err)
	}

	overlapped := new(windows.Overlapped)
	err = windows.LockFileEx(
		windows.Handle(file.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		1,
		0,
		overlapped,
	)
	if err != nil {
		_ = file.Close()
		if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
			return nil, ErrProfileInUse
		}

		return nil, fmt.Errorf("acquire profile file lock: %w", err)
	}

	return &windowsProfileLock{file: file}, nil
}

func (l *windowsProfileLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	unlockErr := windows.UnlockFileEx(windows.Handle(l.file.Fd()), 0, 1, 0, new(windows.Overlapped))
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil {
		return fmt.Errorf("unlock profile file lock: %w", unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close profile lock file: %w", closeErr)
	}

	return nil
}
