package lcp

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/alphabet"
)

// Default block cache geometry.
const (
	DefaultBlockSize   = 4096
	DefaultCacheBlocks = 256
)

// CachedIndex serves At and Range from an LRU cache of decoded fixed-size
// blocks of an Index. Results and errors are those of the wrapped index: a
// block that cannot be decoded, such as one touching a copy phrase of an
// unbound index, is bypassed and the query goes to the index directly.
// It is safe for concurrent use.
type CachedIndex struct {
	idx       *Index
	blockSize int
	cache     *lru.Cache[int, []alphabet.Symbol]
}

// NewCachedIndex wraps idx with a cache of up to cacheBlocks blocks of
// blockSize symbols.
func NewCachedIndex(idx *Index, blockSize, cacheBlocks int) (*CachedIndex, error) {
	if idx == nil {
		return nil, errors.ValidationError("index is nil", nil)
	}
	if blockSize <= 0 || cacheBlocks <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidInput,
			"block size %d and cache blocks %d must be positive", blockSize, cacheBlocks)
	}
	cache, err := lru.New[int, []alphabet.Symbol](cacheBlocks)
	if err != nil {
		return nil, errors.InternalError("create block cache", err)
	}
	return &CachedIndex{idx: idx, blockSize: blockSize, cache: cache}, nil
}

// Index returns the wrapped index.
func (c *CachedIndex) Index() *Index {
	return c.idx
}

// Size returns the wrapped index size.
func (c *CachedIndex) Size() int {
	return c.idx.Size()
}

// CachedBlocks returns the number of blocks currently cached.
func (c *CachedIndex) CachedBlocks() int {
	return c.cache.Len()
}

// At returns the symbol at pos.
func (c *CachedIndex) At(pos int) (alphabet.Symbol, error) {
	if pos < 0 || pos >= c.idx.Size() {
		return c.idx.At(pos)
	}
	blk, err := c.block(pos / c.blockSize)
	if err != nil {
		return c.idx.At(pos)
	}
	return blk[pos%c.blockSize], nil
}

// Range returns the symbols in [start, end).
func (c *CachedIndex) Range(start, end int) ([]alphabet.Symbol, error) {
	if err := c.idx.checkRange(start, end); err != nil {
		return nil, err
	}
	return c.AppendRange(make([]alphabet.Symbol, 0, end-start), start, end)
}

// AppendRange appends the symbols in [start, end) to dst.
func (c *CachedIndex) AppendRange(dst []alphabet.Symbol, start, end int) ([]alphabet.Symbol, error) {
	if err := c.idx.checkRange(start, end); err != nil {
		return dst, err
	}
	n := len(dst)
	for pos := start; pos < end; {
		b := pos / c.blockSize
		blk, err := c.block(b)
		if err != nil {
			return c.idx.AppendRange(dst[:n], start, end)
		}
		lo := pos - b*c.blockSize
		hi := min(len(blk), end-b*c.blockSize)
		dst = append(dst, blk[lo:hi]...)
		pos += hi - lo
	}
	return dst, nil
}

func (c *CachedIndex) block(b int) ([]alphabet.Symbol, error) {
	if blk, ok := c.cache.Get(b); ok {
		return blk, nil
	}
	start := b * c.blockSize
	end := min(start+c.blockSize, c.idx.Size())
	blk, err := c.idx.Range(start, end)
	if err != nil {
		return nil, err
	}
	c.cache.Add(b, blk)
	return blk, nil
}
