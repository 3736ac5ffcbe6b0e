package lcp

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/jameslz/rlzap/internal/errors"
)

// Codec selects how the literal store is encoded in a dump.
type Codec uint8

const (
	// CodecNone stores literals as raw little-endian uint32.
	CodecNone Codec = 0
	// CodecSnappy compresses the literal store with snappy.
	CodecSnappy Codec = 1
	// CodecZstd compresses the literal store with zstd.
	CodecZstd Codec = 2
)

// ParseCodec maps "none", "snappy" or "zstd" to a Codec.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "raw", "":
		return CodecNone, nil
	case "snappy":
		return CodecSnappy, nil
	case "zstd":
		return CodecZstd, nil
	}
	return 0, errors.Newf(errors.ErrCodeInvalidInput, "unknown codec %q", s).
		WithSuggestion("Use one of: none, snappy, zstd")
}

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecSnappy:
		return "snappy"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// maxPrealloc caps the buffer reserved from an untrusted decoded length.
const maxPrealloc = 1 << 24

func (c Codec) valid() bool {
	return c <= CodecZstd
}

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

// zstdCodec returns process-wide encoder and decoder. Both are safe for
// concurrent EncodeAll/DecodeAll.
func zstdCodec() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEnc, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdErr != nil {
			return
		}
		zstdDec, zstdErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return zstdEnc, zstdDec, zstdErr
}

// An empty store encodes to an empty payload under every codec.
func (c Codec) encode(raw []byte) ([]byte, error) {
	if len(raw) == 0 && c.valid() {
		return raw, nil
	}
	switch c {
	case CodecNone:
		return raw, nil
	case CodecSnappy:
		return snappy.Encode(nil, raw), nil
	case CodecZstd:
		enc, _, err := zstdCodec()
		if err != nil {
			return nil, errors.InternalError("zstd encoder unavailable", err)
		}
		return enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
	}
	return nil, errors.Newf(errors.ErrCodeInvalidInput, "unknown codec %d", uint8(c))
}

// decode expands payload, which must hold exactly want bytes once decoded.
func (c Codec) decode(payload []byte, want int) ([]byte, error) {
	if len(payload) == 0 && want == 0 && c.valid() {
		return payload, nil
	}
	var (
		raw []byte
		err error
	)
	switch c {
	case CodecNone:
		raw = payload
	case CodecSnappy:
		n, derr := snappy.DecodedLen(payload)
		if derr != nil {
			return nil, errors.FormatError("corrupt snappy literal payload", derr)
		}
		if n != want {
			return nil, errors.FormatError(fmt.Sprintf("literal payload decodes to %d bytes, want %d", n, want), nil)
		}
		raw, err = snappy.Decode(make([]byte, n), payload)
	case CodecZstd:
		_, dec, zerr := zstdCodec()
		if zerr != nil {
			return nil, errors.InternalError("zstd decoder unavailable", zerr)
		}
		var h zstd.Header
		if h.Decode(payload) == nil && h.HasFCS && h.FrameContentSize != uint64(want) {
			return nil, errors.FormatError(fmt.Sprintf("literal payload decodes to %d bytes, want %d", h.FrameContentSize, want), nil)
		}
		raw, err = dec.DecodeAll(payload, make([]byte, 0, min(want, maxPrealloc)))
	default:
		return nil, errors.FormatError(fmt.Sprintf("unknown codec %d", uint8(c)), nil)
	}
	if err != nil {
		return nil, errors.FormatError("corrupt "+c.String()+" literal payload", err)
	}
	if len(raw) != want {
		return nil, errors.FormatError(fmt.Sprintf("literal payload decodes to %d bytes, want %d", len(raw), want), nil)
	}
	return raw, nil
}
