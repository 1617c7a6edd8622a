//go:build !unix && !windows

package platform

import (
	"fmt"
	"runtime"
)

func acquireProfileLock(_ string) (ProfileLock, error) {
	return nil, fmt.Errorf("%w on %s", ErrProfileLockUnsupported, runtime.GOOS)
}
