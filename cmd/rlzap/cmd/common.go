package cmd

import (
	"strconv"
	"time"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/internal/seqio"
	"github.com/jameslz/rlzap/internal/store"
	"github.com/jameslz/rlzap/pkg/lcp"
)

// inputFormat returns the sequence format from the flag value, falling back
// to the configured one.
func (a *app) inputFormat(flag string) (seqio.Format, error) {
	if flag == "" {
		flag = a.cfg.Input.Format
	}
	return seqio.ParseFormat(flag)
}

// loadReference reads a reference sequence file.
func (a *app) loadReference(path string, f seqio.Format) (*lcp.Reference, error) {
	syms, err := seqio.ReadFile(path, f)
	if err != nil {
		return nil, err
	}
	return lcp.NewReference(syms), nil
}

// openIndex reads the index file at path and binds it to the reference at
// refPath.
func (a *app) openIndex(path, refPath string, f seqio.Format) (*lcp.Index, error) {
	ref, err := a.loadReference(refPath, f)
	if err != nil {
		return nil, err
	}
	return store.ReadIndex(path, ref)
}

// openCached wraps openIndex with the configured block cache.
func (a *app) openCached(path, refPath string, f seqio.Format) (*lcp.CachedIndex, error) {
	idx, err := a.openIndex(path, refPath, f)
	if err != nil {
		return nil, err
	}
	return lcp.NewCachedIndex(idx, a.cfg.Query.BlockSize, a.cfg.Query.CacheBlocks)
}

// query runs fn and records it under op.
func (a *app) query(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	a.metrics.RecordQuery(op, time.Since(start), err)
	return err
}

// parsePosition parses a non-negative decimal position argument.
func parsePosition(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidInput, "%s must be a non-negative integer, got %q", name, s)
	}
	return n, nil
}
