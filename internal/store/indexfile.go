// Package store reads and writes rlzap index files. Writes are atomic renames
// and every access holds a sidecar flock, so concurrent rlzap processes never
// see a partially written index.
package store

import (
	"os"

	"github.com/google/renameio"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/lcp"
)

// Save atomically replaces the file at path with data under an exclusive lock.
// Readers holding the shared lock see either the old or the new content.
func Save(path string, data []byte) error {
	lock := NewFileLock(path)
	if err := lock.Lock(); err != nil {
		return errors.IOError("lock "+path, err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fileError(path, err)
	}
	return nil
}

// Open reads the file at path under a shared lock.
func Open(path string) ([]byte, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fileError(path, err)
	}

	lock := NewFileLock(path)
	if err := lock.RLock(); err != nil {
		return nil, errors.IOError("lock "+path, err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError(path, err)
	}
	return data, nil
}

// WriteIndex dumps idx with codec and saves it to path.
// It returns the number of bytes written.
func WriteIndex(path string, idx *lcp.Index, codec lcp.Codec) (int, error) {
	data, err := lcp.Dump(idx, lcp.WithCodec(codec))
	if err != nil {
		return 0, err
	}
	if err := Save(path, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// ReadIndex opens and decodes the index file at path. When ref is non-nil it
// is bound before the index is returned.
func ReadIndex(path string, ref *lcp.Reference) (*lcp.Index, error) {
	data, err := Open(path)
	if err != nil {
		return nil, err
	}
	idx, err := lcp.Load(data)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return nil, e.WithDetail("path", path)
		}
		return nil, err
	}
	if ref != nil {
		if err := idx.SetSource(ref); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func fileError(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return errors.New(errors.ErrCodeFileNotFound, "file not found: "+path, err)
	case os.IsPermission(err):
		return errors.New(errors.ErrCodeFilePermission, "permission denied: "+path, err)
	}
	return errors.IOError(path, err)
}
