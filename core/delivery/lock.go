package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// Locker runs fn inside an exclusive section. The section is released on
// every exit path of fn, including panics.
type Locker interface {
	WithLock(ctx context.Context, fn func() error) error
}

// NopLocker runs fn without locking. Suitable when a single process owns the log.
type NopLocker struct{}

func (NopLocker) WithLock(_ context.Context, fn func() error) error { return fn() }

// FileLock serialises check-then-append across processes with an advisory file lock.
type FileLock struct {
	fl         *flock.Flock
	retryDelay time.Duration
}

// NewFileLock returns a lock backed by path. The file is created if missing.
func NewFileLock(path string) (*FileLock, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &FileLock{fl: flock.New(path), retryDelay: 50 * time.Millisecond}, nil
}

// WithLock blocks until the lock is acquired or ctx is done.
func (l *FileLock) WithLock(ctx context.Context, fn func() error) error {
	locked, err := l.fl.TryLockContext(ctx, l.retryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", l.fl.Path(), err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", l.fl.Path())
	}
	defer func() { _ = l.fl.Unlock() }()
	return fn()
}
