// Package filelock serializes writes to findr's shared files, so a
// history export in one findr process cannot interleave with another
// process writing the same path.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockPath returns the lock file guarding target. Locks live beside the
// file they guard so every process agrees on the lock location.
func lockPath(target string) string {
	return target + ".lock"
}

// WithLock runs fn while holding an exclusive lock guarding target,
// blocking until the lock is available.
func WithLock(target string, fn func() error) error {
	lk := flock.New(lockPath(target))
	if err := lk.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", lockPath(target), err)
	}
	defer lk.Unlock()
	return fn()
}

// WriteLocked atomically replaces target with data while holding the
// target's lock. The write goes through a temp file in the target's
// directory so a rename, never a partial write, publishes the content.
func WriteLocked(target string, data []byte) error {
	return WithLock(target, func() error {
		return writeAtomic(target, data)
	})
}

func writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	// After a successful rename the temp file is gone and the remove is a
	// no-op; on any failure it cleans up the debris.
	defer os.Remove(tmp.Name())

	_, werr := tmp.Write(data)
	if werr == nil {
		werr = tmp.Sync()
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("write %s: %w", tmp.Name(), werr)
	}

	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("publish %s: %w", target, err)
	}
	return nil
}
