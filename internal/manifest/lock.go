package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the advisory lock file kept in a target directory.
const LockFileName = ".preprocessor.lock"

// ErrLocked is returned when another run already holds the target directory.
var ErrLocked = errors.New("target directory is locked by another run")

// Lock is an exclusive hold on a target directory.
type Lock struct {
	lock *flock.Flock
}

// Acquire takes the target directory lock without blocking, creating dir
// when needed.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create target directory: %w", err)
	}
	path := filepath.Join(dir, LockFileName)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &Lock{lock: fl}, nil
}

// Release unlocks the target directory. The lock file itself is left in
// place so concurrent openers never race on its creation.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
