// Package lockfile provides a non-blocking advisory lock around a
// directory. The contract is try-acquire, skip-on-contention: callers
// that cannot get the lock move on instead of waiting.
package lockfile

import (
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/arthur-debert/prepenv/pkg/errors"
)

// LockFileName is the marker file created inside the locked directory
const LockFileName = ".prepenv.lock"

// Lock is an advisory lock scoped to a directory
type Lock struct {
	fl *flock.Flock
}

// ForDirectory creates a lock guarding the given directory.
func ForDirectory(dir string) *Lock {
	return &Lock{fl: flock.New(filepath.Join(dir, LockFileName))}
}

// TryAcquire attempts to take the lock without blocking. It returns
// false when another process holds the lock; that is not an error.
func (l *Lock) TryAcquire() (bool, error) {
	locked, err := l.fl.TryLock()
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrLockAccess, "cannot acquire lock at %s", l.fl.Path())
	}
	return locked, nil
}

// Release drops the lock. Safe to call when the lock was never taken.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}

// Path returns the lock file's location.
func (l *Lock) Path() string {
	return l.fl.Path()
}
