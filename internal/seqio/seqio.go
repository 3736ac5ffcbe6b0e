// Package seqio reads and writes integer sequences for the rlzap CLI.
//
// Two encodings are supported: text, one unsigned decimal per
// whitespace-separated token, and binary, packed little-endian uint32.
package seqio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/renameio"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/alphabet"
)

// Format is a sequence file encoding.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatText   Format = "text"
	FormatBinary Format = "binary"
)

// binaryExts select FormatBinary under FormatAuto.
var binaryExts = map[string]bool{".u32": true, ".bin": true}

// ParseFormat parses "auto", "text" or "binary".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatText, FormatBinary:
		return f, nil
	case "":
		return FormatAuto, nil
	}
	return "", errors.Newf(errors.ErrCodeInvalidInput, "unknown sequence format %q", s).
		WithSuggestion("Use one of: auto, text, binary")
}

// Resolve returns f, or the format implied by path's extension when f is
// FormatAuto.
func Resolve(f Format, path string) Format {
	if f != FormatAuto && f != "" {
		return f
	}
	if binaryExts[strings.ToLower(filepath.Ext(path))] {
		return FormatBinary
	}
	return FormatText
}

// Read decodes a whole sequence from r. f must not be FormatAuto.
func Read(r io.Reader, f Format) ([]alphabet.Symbol, error) {
	switch f {
	case FormatText:
		return readText(r)
	case FormatBinary:
		return readBinary(r)
	}
	return nil, errors.Newf(errors.ErrCodeInvalidInput, "cannot read format %q", f)
}

func readText(r io.Reader) ([]alphabet.Symbol, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	var out []alphabet.Symbol
	for sc.Scan() {
		v, err := strconv.ParseUint(sc.Text(), 10, 32)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInputParse,
				fmt.Sprintf("token %d: %q is not a uint32", len(out)+1, sc.Text()), err)
		}
		out = append(out, alphabet.Symbol(v))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.IOError("read sequence", err)
	}
	return out, nil
}

func readBinary(r io.Reader) ([]alphabet.Symbol, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.IOError("read sequence", err)
	}
	if len(data)%4 != 0 {
		return nil, errors.Newf(errors.ErrCodeInputParse,
			"binary sequence of %d bytes is not a multiple of 4", len(data))
	}
	out := make([]alphabet.Symbol, len(data)/4)
	for i := range out {
		out[i] = alphabet.Symbol(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

// ReadFile reads the sequence stored at path.
func ReadFile(path string, f Format) ([]alphabet.Symbol, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer file.Close()

	syms, err := Read(bufio.NewReader(file), Resolve(f, path))
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return nil, e.WithDetail("path", path)
		}
		return nil, err
	}
	return syms, nil
}

// Write encodes syms to w. Text output has one value per line.
func Write(w io.Writer, syms []alphabet.Symbol, f Format) error {
	bw := bufio.NewWriter(w)
	switch f {
	case FormatText:
		buf := make([]byte, 0, 16)
		for _, s := range syms {
			buf = strconv.AppendUint(buf[:0], uint64(s), 10)
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return errors.IOError("write sequence", err)
			}
		}
	case FormatBinary:
		var buf [4]byte
		for _, s := range syms {
			binary.LittleEndian.PutUint32(buf[:], uint32(s))
			if _, err := bw.Write(buf[:]); err != nil {
				return errors.IOError("write sequence", err)
			}
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidInput, "cannot write format %q", f)
	}
	if err := bw.Flush(); err != nil {
		return errors.IOError("write sequence", err)
	}
	return nil
}

// WriteFile atomically replaces path with the encoded sequence.
func WriteFile(path string, syms []alphabet.Symbol, f Format) error {
	f = Resolve(f, path)
	pending, err := renameio.TempFile(filepath.Dir(path), path)
	if err != nil {
		return openError(path, err)
	}
	defer pending.Cleanup()

	if err := Write(pending, syms, f); err != nil {
		return err
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return errors.IOError("replace "+path, err)
	}
	return nil
}

func openError(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return errors.New(errors.ErrCodeFileNotFound, "file not found: "+path, err)
	case os.IsPermission(err):
		return errors.New(errors.ErrCodeFilePermission, "permission denied: "+path, err)
	}
	return errors.IOError("open "+path, err)
}
