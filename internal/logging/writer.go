package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jameslz/rlzap/internal/errors"
)

// RotatingWriter is an io.Writer over a log file that is rotated by size.
//
// When a write would take a non-empty file past the limit, the file is
// shifted to path.1, older generations move up by one, and path.<maxFiles>
// is dropped. A single write larger than the limit still goes to one file.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu         sync.Mutex
	file       *os.File
	size       int64
	syncWrites bool
}

// NewRotatingWriter opens path for appending, creating its directory.
// maxSizeMB is the rotation threshold and maxFiles the number of rotated
// generations kept. Every write is synced until SetImmediateSync(false).
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.IOError("create log directory "+filepath.Dir(path), err)
	}
	w := &RotatingWriter{
		path:       path,
		maxSize:    int64(maxSizeMB) << 20,
		maxFiles:   maxFiles,
		syncWrites: true,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetImmediateSync turns the per-write fsync on or off.
// Long builds at debug level can disable it to reduce fsync pressure.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncWrites = enabled
}

// Write implements io.Writer. A failed rotation is reported on stderr and
// the write goes to the current file.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size > 0 && w.size+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}
	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err == nil && w.syncWrites {
		_ = w.file.Sync()
	}
	return n, err
}

// Sync flushes the current file.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

// Close closes the current file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.IOError("open log file "+w.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return errors.IOError("stat log file "+w.path, err)
	}
	w.file = f
	w.size = info.Size()
	return nil
}

// generation names the n-th rotated file.
func (w *RotatingWriter) generation(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}

func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return errors.IOError("close log file "+w.path, err)
	}
	w.file = nil

	if w.maxFiles < 1 {
		_ = os.Remove(w.path)
		return w.open()
	}

	_ = os.Remove(w.generation(w.maxFiles))
	for n := w.maxFiles - 1; n >= 1; n-- {
		if _, err := os.Stat(w.generation(n)); err == nil {
			_ = os.Rename(w.generation(n), w.generation(n+1))
		}
	}
	if err := os.Rename(w.path, w.generation(1)); err != nil {
		return errors.IOError("rotate log file "+w.path, err)
	}
	return w.open()
}
