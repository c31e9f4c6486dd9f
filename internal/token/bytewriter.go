package token

import (
	"encoding/binary"
	"errors"
	"math"
)

var ErrStringTooLong = errors.New("string exceeds uint16 length prefix")

// ByteWriter accumulates the little-endian wire form of a token.
// Pure in-memory buffer, no I/O.
type ByteWriter struct {
	buf []byte
}

func (w *ByteWriter) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *ByteWriter) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteString appends the UTF-8 bytes of s prefixed with their byte length
// as uint16. Strings longer than 65535 bytes cannot be represented on the
// wire and are a programmer error.
func (w *ByteWriter) WriteString(s string) error {
	if len(s) > math.MaxUint16 {
		return ErrStringTooLong
	}
	w.WriteUint16(uint16(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// WriteBytes appends b as-is, without a length prefix.
func (w *ByteWriter) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *ByteWriter) Bytes() []byte { return w.buf }
