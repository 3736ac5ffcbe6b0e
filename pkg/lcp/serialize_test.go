package lcp

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/alphabet"
	"github.com/jameslz/rlzap/pkg/matcher"
)

func TestDumpLoad_RoundTrip(t *testing.T) {
	ref, target := lcpPair(21, 3000, 2500)
	idx := buildGreedy(t, ref, target)

	for _, codec := range []Codec{CodecNone, CodecSnappy, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			// Given: a dump of a built index
			data, err := Dump(idx, WithCodec(codec))
			require.NoError(t, err)

			// When: loading and binding a reference with equal content
			restored, err := Load(data)
			require.NoError(t, err)
			assert.False(t, restored.Bound())
			require.NoError(t, restored.SetSource(NewReference(append([]alphabet.Symbol(nil), ref...))))

			// Then: the restored index answers every query identically
			assert.Equal(t, idx.Size(), restored.Size())
			assert.Equal(t, idx.Stats(), restored.Stats())
			assert.Equal(t, idx.ReferenceExtent(), restored.ReferenceExtent())
			for p := range target {
				v, err := restored.At(p)
				require.NoError(t, err)
				require.Equal(t, target[p], v)
			}
			all, err := restored.Range(0, restored.Size())
			require.NoError(t, err)
			assert.Equal(t, target, all)
		})
	}
}

func TestDumpLoad_EmptyIndex(t *testing.T) {
	idx := buildFromMatches(t, nil, nil, nil)
	data, err := Dump(idx, WithCodec(CodecZstd))
	require.NoError(t, err)

	restored, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, 0, restored.Size())
	out, err := restored.Range(0, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLoad_LiteralPhrasesNeedNoReference(t *testing.T) {
	idx := buildFromMatches(t, syms("abcXYfghZZ"), syms("abcdefghij"),
		[]matcher.Match{{TargetPos: 0, RefPos: 0, Length: 3}})
	data, err := idx.MarshalBinary()
	require.NoError(t, err)

	var restored Index
	require.NoError(t, restored.UnmarshalBinary(data))

	got, err := restored.Range(3, 10)
	require.NoError(t, err)
	assert.Equal(t, syms("XYfghZZ"), got)

	_, err = restored.Range(0, 4)
	assert.ErrorIs(t, err, errors.ErrUnboundReference)
}

func TestLoad_RejectsForeignReference(t *testing.T) {
	idx := buildFromMatches(t, syms("aaaa"), syms("aaaa"),
		[]matcher.Match{{TargetPos: 0, RefPos: 0, Length: 4}})
	data, err := Dump(idx)
	require.NoError(t, err)
	restored, err := Load(data)
	require.NoError(t, err)

	assert.ErrorIs(t, restored.SetSource(NewReference(syms("aaab"))), errors.ErrReferenceMismatch)
	assert.ErrorIs(t, restored.SetSource(NewReference(syms("aa"))), errors.ErrReferenceTooShort)
	assert.False(t, restored.Bound())
}

// reseal recomputes the checksum after a deliberate edit.
func reseal(data []byte) []byte {
	body := data[:len(data)-trailerSize]
	binary.LittleEndian.PutUint64(data[len(body):], xxhash.Sum64(body))
	return data
}

// sealedLiteralDump assembles a checksummed dump whose single literal phrase
// claims size symbols, followed by payload.
func sealedLiteralDump(codec Codec, size uint64, payload []byte) []byte {
	buf := append([]byte(nil), magic[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, FormatVersion)
	buf = append(buf, byte(codec), 0)
	for _, v := range []uint64{size, 1, size, 0, 0} {
		buf = binary.LittleEndian.AppendUint64(buf, v)
	}
	buf = append(buf, byte(KindLiteral))
	for _, v := range []uint64{0, size, 0, uint64(len(payload))} {
		buf = binary.LittleEndian.AppendUint64(buf, v)
	}
	buf = append(buf, payload...)
	return binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf))
}

func TestLoad_MalformedInput(t *testing.T) {
	idx := buildFromMatches(t, syms("abcXYfghZZ"), syms("abcdefghij"),
		[]matcher.Match{{TargetPos: 0, RefPos: 0, Length: 3}, {TargetPos: 5, RefPos: 5, Length: 3}})
	good, err := Dump(idx, WithCodec(CodecSnappy))
	require.NoError(t, err)

	edit := func(f func(b []byte) []byte) []byte {
		b := append([]byte(nil), good...)
		return f(b)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated", good[:len(good)-3]},
		{"bad magic", edit(func(b []byte) []byte { b[0] = 'X'; return reseal(b) })},
		{"unknown version", edit(func(b []byte) []byte {
			binary.LittleEndian.PutUint16(b[4:], 99)
			return reseal(b)
		})},
		{"flipped payload bit", edit(func(b []byte) []byte { b[len(b)-trailerSize-1] ^= 0x40; return b })},
		{"unknown codec", edit(func(b []byte) []byte { b[6] = 9; return reseal(b) })},
		{"reserved byte set", edit(func(b []byte) []byte { b[7] = 1; return reseal(b) })},
		{"size mismatch", edit(func(b []byte) []byte {
			binary.LittleEndian.PutUint64(b[8:], 11)
			return reseal(b)
		})},
		{"huge phrase count", edit(func(b []byte) []byte {
			binary.LittleEndian.PutUint64(b[16:], 1<<40)
			return reseal(b)
		})},
		{"wrong extent", edit(func(b []byte) []byte {
			binary.LittleEndian.PutUint64(b[32:], 3)
			return reseal(b)
		})},
		{"gap between phrases", edit(func(b []byte) []byte {
			// start of the second entry
			binary.LittleEndian.PutUint64(b[headerSize+entrySize+1:], 4)
			return reseal(b)
		})},
		{"unknown phrase kind", edit(func(b []byte) []byte { b[headerSize] = 7; return reseal(b) })},
		{"trailing bytes", reseal(append(append([]byte(nil), good...), make([]byte, 4)...))},
		{"literal count overflows", sealedLiteralDump(CodecNone, 1<<62, nil)},
		{"literal count larger than payload", sealedLiteralDump(CodecNone, 1<<20, make([]byte, 8))},
		{"zstd frame shorter than literal count", sealedLiteralDump(CodecZstd, 1<<40, zstdFrame(t, 8))},
		{"snappy payload shorter than literal count", sealedLiteralDump(CodecSnappy, 1<<40, make([]byte, 3))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidFormat)
		})
	}
}

func zstdFrame(t *testing.T, n int) []byte {
	t.Helper()
	enc, _, err := zstdCodec()
	require.NoError(t, err)
	return enc.EncodeAll(make([]byte, n), nil)
}

func TestCodecDecode_ZstdBoundsPreallocation(t *testing.T) {
	// Given: a valid zstd frame holding 64 bytes
	frame := zstdFrame(t, 64)

	// When: decoding it against a far larger expected length
	_, err := CodecZstd.decode(frame, math.MaxInt/2)

	// Then: the mismatch is a format error, not an allocation failure
	assert.ErrorIs(t, err, errors.ErrInvalidFormat)

	// And: the exact length still decodes
	raw, err := CodecZstd.decode(frame, 64)
	require.NoError(t, err)
	assert.Len(t, raw, 64)
}

func TestParseCodec(t *testing.T) {
	tests := []struct {
		in      string
		want    Codec
		wantErr bool
	}{
		{"none", CodecNone, false},
		{"", CodecNone, false},
		{"Snappy", CodecSnappy, false},
		{" zstd ", CodecZstd, false},
		{"gzip", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCodec(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDump_UnknownCodec(t *testing.T) {
	idx := buildFromMatches(t, syms("ab"), nil, nil)
	_, err := Dump(idx, WithCodec(Codec(42)))
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
