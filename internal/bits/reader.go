// Package bits provides bit-granular access to an io.Reader.
package bits

import (
	"io"

	"github.com/icza/bitio"
)

// Reader provides bit-granular reading of an io.Reader, most significant bit
// first.
//
// The underlying reader should implement io.ByteReader; the source is then
// consumed one byte at a time, which lets callers tap consumed bytes for
// checksumming without read-ahead.
type Reader struct {
	br *bitio.Reader
}

// NewReader returns a new Reader for bit-granular reading of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bitio.NewReader(r)}
}

// Read reads and returns the next n bits, most significant bit first, zero
// extended to uint64; n must not exceed 64. Reads fail with an error if the
// underlying reader is exhausted mid-field; bits are never zero padded.
func (br *Reader) Read(n uint) (x uint64, err error) {
	return br.br.ReadBits(uint8(n))
}

// Align skips bits up to the next byte boundary and returns the number of
// bits skipped.
func (br *Reader) Align() uint {
	return uint(br.br.Align())
}
