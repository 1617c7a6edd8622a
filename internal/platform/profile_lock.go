// Package platform holds OS-specific helpers used by the runtime.
package platform

import (
	"errors"
	"path/filepath"
)

const profileLockFilename = "profile.lock"

// ErrProfileInUse indicates another process already owns the profile directory.
var ErrProfileInUse = errors.New("profile is in use by another process")

// ErrProfileLockUnsupported indicates the current platform has no lock backend implementation.
var ErrProfileLockUnsupported = errors.New("profile lock unsupported")

// ProfileLock represents an acquired profile directory lock.
type ProfileLock interface {
	Release() error
}

// AcquireProfileLock takes an exclusive lock on profileDir. It fails fast with
// ErrProfileInUse when another process holds it.
func AcquireProfileLock(profileDir string) (ProfileLock, error) {
	return acquireProfileLock(ProfileLockPath(profileDir))
}

func ProfileLockPath(profileDir string) string {
	return filepath.Join(profileDir, profileLockFilename)
}
