package frame

import (
	"io"

	"github.com/mewpkg/hashutil"
	"github.com/mewpkg/hashutil/crc16"
	"github.com/mewpkg/hashutil/crc8"
)

// crcReader taps every byte read from the underlying reader into two running
// checksums: a CRC-16 covering the entire frame and a CRC-8 covering the
// frame header, which is disabled once the header has been consumed. Both are
// accumulated incrementally as bytes are consumed, so no frame buffering is
// required.
//
// crcReader implements io.ByteReader so that bit readers on top of it consume
// the source one byte at a time, keeping the checksums exact.
type crcReader struct {
	r io.Reader
	// Byte-granular view of r; nil if r does not implement io.ByteReader.
	br io.ByteReader
	// CRC-16 hash of all bytes read (polynomial 0x8005).
	crc16 hashutil.Hash16
	// CRC-8 hash of the header bytes read (polynomial 0x07).
	crc8 hashutil.Hash8
	// Accumulate CRC-8; disabled after the frame header.
	doCRC8 bool
	buf    [1]byte
}

func newCRCReader(r io.Reader) *crcReader {
	cr := &crcReader{
		r:      r,
		crc16:  crc16.NewIBM(),
		crc8:   crc8.NewATM(),
		doCRC8: true,
	}
	if br, ok := r.(io.ByteReader); ok {
		cr.br = br
	}
	return cr
}

func (cr *crcReader) Read(p []byte) (n int, err error) {
	n, err = cr.r.Read(p)
	if n > 0 {
		cr.crc16.Write(p[:n])
		if cr.doCRC8 {
			cr.crc8.Write(p[:n])
		}
	}
	return n, err
}

func (cr *crcReader) ReadByte() (b byte, err error) {
	if cr.br != nil {
		b, err = cr.br.ReadByte()
	} else {
		_, err = io.ReadFull(cr.r, cr.buf[:])
		b = cr.buf[0]
	}
	if err != nil {
		return 0, err
	}
	cr.buf[0] = b
	cr.crc16.Write(cr.buf[:])
	if cr.doCRC8 {
		cr.crc8.Write(cr.buf[:])
	}
	return b, nil
}

// disableCRC8 stops CRC-8 accumulation; the frame header portion covered by
// the checksum has been consumed.
func (cr *crcReader) disableCRC8() {
	cr.doCRC8 = false
}

// sum8 returns the running CRC-8 of the header bytes read so far.
func (cr *crcReader) sum8() uint8 {
	return cr.crc8.Sum8()
}

// sum16 returns the running CRC-16 of the frame bytes read so far.
func (cr *crcReader) sum16() uint16 {
	return cr.crc16.Sum16()
}
