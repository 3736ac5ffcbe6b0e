package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockSuffix names the sidecar lock file guarding an index file.
const LockSuffix = ".lock"

// FileLock provides cross-process locking of an index file using gofrs/flock.
// Writers take it exclusively; readers share it, so a reader never observes
// a file while another rlzap process is replacing it.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewFileLock creates a lock for the index file at path.
// The lock file is <path>.lock.
func NewFileLock(path string) *FileLock {
	lockPath := path + LockSuffix
	return &FileLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Lock acquires an exclusive lock, blocking until it is available.
func (l *FileLock) Lock() error {
	if err := l.ensureDir(); err != nil {
		return err
	}
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.locked = true
	return nil
}

// RLock acquires a shared lock, blocking while a writer holds the lock.
func (l *FileLock) RLock() error {
	if err := l.ensureDir(); err != nil {
		return err
	}
	if err := l.flock.RLock(); err != nil {
		return fmt.Errorf("failed to acquire shared lock: %w", err)
	}
	l.locked = true
	return nil
}

// Unlock releases the lock.
// It's safe to call Unlock multiple times or on an unlocked FileLock.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

func (l *FileLock) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	return nil
}
