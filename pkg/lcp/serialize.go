package lcp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/alphabet"
)

// FormatVersion is the serialized layout written by Dump.
const FormatVersion uint16 = 1

var magic = [4]byte{'R', 'L', 'Z', 'I'}

const (
	headerSize   = 4 + 2 + 1 + 1 + 5*8
	entrySize    = 1 + 3*8
	trailerSize  = 8
	minDumpSize  = headerSize + 8 + trailerSize
	symbolBytes  = 4
	maxDumpCount = math.MaxInt / entrySize
)

type dumpOptions struct {
	codec Codec
}

// DumpOption configures Dump.
type DumpOption func(*dumpOptions)

// WithCodec sets the literal payload codec. The default is CodecNone.
func WithCodec(c Codec) DumpOption {
	return func(o *dumpOptions) {
		o.codec = c
	}
}

// Dump encodes the index into a self-contained byte buffer.
//
// The reference is not included. When the index is bound, its fingerprint
// is recorded so that Load followed by SetSource only accepts the same
// reference content.
func Dump(x *Index, opts ...DumpOption) ([]byte, error) {
	o := dumpOptions{codec: CodecNone}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.codec.valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidInput, "unknown codec %d", uint8(o.codec))
	}

	raw := make([]byte, 0, len(x.literals)*symbolBytes)
	for _, s := range x.literals {
		raw = binary.LittleEndian.AppendUint32(raw, uint32(s))
	}
	payload, err := o.codec.encode(raw)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, headerSize+len(x.phrases)*entrySize+8+len(payload)+trailerSize)
	buf = append(buf, magic[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, FormatVersion)
	buf = append(buf, byte(o.codec), 0)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(x.size))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(x.phrases)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(x.literals)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(x.extent))
	buf = binary.LittleEndian.AppendUint64(buf, x.refSum)
	for _, p := range x.phrases {
		buf = append(buf, byte(p.Kind))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(p.Start))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(p.Length))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(p.Offset))
	}
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(payload)))
	buf = append(buf, payload...)
	buf = binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf))
	return buf, nil
}

// Load decodes a buffer written by Dump.
//
// The returned index is unbound: queries touching copy phrases fail with
// ErrCodeUnboundReference until SetSource is called. Any malformed, truncated
// or corrupted input fails with ErrCodeInvalidFormat.
func Load(data []byte) (*Index, error) {
	if len(data) < minDumpSize {
		return nil, formatErr("buffer of %d bytes is shorter than the minimum %d", len(data), minDumpSize)
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return nil, formatErr("bad magic %q", data[:4])
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != FormatVersion {
		return nil, formatErr("unsupported format version %d", v).
			WithDetail("supported", fmt.Sprint(FormatVersion))
	}
	body := data[:len(data)-trailerSize]
	if sum := binary.LittleEndian.Uint64(data[len(body):]); sum != xxhash.Sum64(body) {
		return nil, formatErr("checksum mismatch")
	}

	codec := Codec(data[6])
	if !codec.valid() {
		return nil, formatErr("unknown codec %d", data[6])
	}
	if data[7] != 0 {
		return nil, formatErr("reserved header byte is %d", data[7])
	}

	r := reader{buf: body, off: 8}
	size, nPhrases, nLiterals, extent := r.u64(), r.u64(), r.u64(), r.u64()
	refSum := r.u64()
	if size > math.MaxInt || extent > math.MaxInt {
		return nil, formatErr("size %d or extent %d overflows", size, extent)
	}
	if nPhrases > maxDumpCount || int(nPhrases)*entrySize > len(body)-r.off-8 {
		return nil, formatErr("%d phrase entries do not fit in the buffer", nPhrases)
	}
	if nLiterals > size {
		return nil, formatErr("%d literal symbols exceed size %d", nLiterals, size)
	}
	if nLiterals > math.MaxInt/symbolBytes {
		return nil, formatErr("%d literal symbols overflow the store", nLiterals)
	}

	phrases, err := readPhrases(&r, int(nPhrases), int(size), int(nLiterals))
	if err != nil {
		return nil, err
	}

	payloadLen := r.u64()
	if payloadLen != uint64(len(body)-r.off) {
		return nil, formatErr("payload length %d, %d bytes remain", payloadLen, len(body)-r.off)
	}
	raw, err := codec.decode(body[r.off:], int(nLiterals)*symbolBytes)
	if err != nil {
		return nil, err
	}
	literals := make([]alphabet.Symbol, nLiterals)
	for i := range literals {
		literals[i] = alphabet.Symbol(binary.LittleEndian.Uint32(raw[i*symbolBytes:]))
	}

	idx := newIndex(int(size), phrases, literals)
	if idx.extent != int(extent) {
		return nil, formatErr("recorded reference extent %d, phrases need %d", extent, idx.extent)
	}
	idx.refSum = refSum
	return idx, nil
}

// readPhrases decodes the phrase entries and checks they partition [0, size)
// with contiguous literal offsets.
func readPhrases(r *reader, n, size, nLiterals int) ([]Phrase, error) {
	phrases := make([]Phrase, n)
	pos, lit := 0, 0
	for i := range phrases {
		kind := PhraseKind(r.u8())
		start, length, offset := r.u64(), r.u64(), r.u64()
		switch {
		case kind != KindLiteral && kind != KindCopy:
			return nil, formatErr("phrase %d has unknown kind %d", i, kind)
		case start != uint64(pos):
			return nil, formatErr("phrase %d starts at %d, want %d", i, start, pos)
		case length == 0 || length > uint64(size-pos):
			return nil, formatErr("phrase %d has invalid length %d", i, length)
		case kind == KindLiteral && offset != uint64(lit):
			return nil, formatErr("literal phrase %d has offset %d, want %d", i, offset, lit)
		case kind == KindCopy && offset > math.MaxInt-length:
			return nil, formatErr("copy phrase %d reference range overflows", i)
		}
		phrases[i] = Phrase{Kind: kind, Start: pos, Length: int(length), Offset: int(offset)}
		pos += int(length)
		if kind == KindLiteral {
			lit += int(length)
		}
	}
	if pos != size {
		return nil, formatErr("phrases cover %d positions, size is %d", pos, size)
	}
	if lit != nLiterals {
		return nil, formatErr("literal phrases cover %d symbols, store has %d", lit, nLiterals)
	}
	return phrases, nil
}

// MarshalBinary implements encoding.BinaryMarshaler with CodecNone.
func (x *Index) MarshalBinary() ([]byte, error) {
	return Dump(x)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The index is left
// unbound.
func (x *Index) UnmarshalBinary(data []byte) error {
	idx, err := Load(data)
	if err != nil {
		return err
	}
	*x = *idx
	return nil
}

func formatErr(format string, args ...any) *errors.Error {
	return errors.FormatError(fmt.Sprintf(format, args...), nil)
}

// reader walks a buffer whose length was checked by the caller.
type reader struct {
	buf []byte
	off int
}

func (r *reader) u8() uint8 {
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *reader) u64() uint64 {
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v
}
