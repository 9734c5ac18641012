package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryInterval is how often a busy lock is retried until the deadline
const lockRetryInterval = 25 * time.Millisecond

// ErrLocked is returned when another writer holds the container
var ErrLocked = &KVError{"container is locked by another process"}

// FileLock guards a container against a second writer
type FileLock interface {
	TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)
	TryRLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)
	Unlock() error
	Path() string
}

// LockPath returns the lock file used for a container path
func LockPath(containerPath string) string {
	return containerPath + ".lock"
}

// acquireLock takes an exclusive lock for writers and a shared one for
// readers, giving up after timeout
func acquireLock(ctx context.Context, containerPath string, shared bool, timeout time.Duration) (FileLock, error) {
	lock := flock.New(LockPath(containerPath))

	var ok bool
	var err error
	if timeout <= 0 {
		if shared {
			ok, err = lock.TryRLock()
		} else {
			ok, err = lock.TryLock()
		}
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", lock.Path(), err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
		}
		return lock, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if shared {
		ok, err = lock.TryRLockContext(ctx, lockRetryInterval)
	} else {
		ok, err = lock.TryLockContext(ctx, lockRetryInterval)
	}
	if err != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("lock %s: %w", lock.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}
	return lock, nil
}
