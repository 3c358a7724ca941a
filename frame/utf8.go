package frame

import (
	"fmt"

	"github.com/mewpkg/flac/internal/bits"
)

// decodeUTF8Int reads and decodes the "UTF-8" coded frame or sample number of
// a frame header. The encoding borrows the variable-length layout of UTF-8 and
// extends it to hold integers of up to 36 bits, at 1 to 7 bytes:
//
//	0xxxxxxx                                                     (7 bits)
//	110xxxxx 10xxxxxx                                            (11 bits)
//	1110xxxx 10xxxxxx 10xxxxxx                                   (16 bits)
//	11110xxx 10xxxxxx 10xxxxxx 10xxxxxx                          (21 bits)
//	111110xx 10xxxxxx 10xxxxxx 10xxxxxx 10xxxxxx                 (26 bits)
//	1111110x 10xxxxxx 10xxxxxx 10xxxxxx 10xxxxxx 10xxxxxx        (31 bits)
//	11111110 10xxxxxx 10xxxxxx 10xxxxxx 10xxxxxx 10xxxxxx 10xxxxxx (36 bits)
func decodeUTF8Int(br *bits.Reader) (uint64, error) {
	c0, err := br.Read(8)
	if err != nil {
		return 0, unexpected(err)
	}

	// n specifies the number of continuation bytes, and x holds the bits of
	// the leading byte.
	var n uint
	var x uint64
	switch {
	case c0&0x80 == 0x00:
		// 0xxxxxxx: single byte value.
		return c0, nil
	case c0&0xE0 == 0xC0:
		// 110xxxxx: 1 continuation byte.
		n = 1
		x = c0 & 0x1F
	case c0&0xF0 == 0xE0:
		// 1110xxxx: 2 continuation bytes.
		n = 2
		x = c0 & 0x0F
	case c0&0xF8 == 0xF0:
		// 11110xxx: 3 continuation bytes.
		n = 3
		x = c0 & 0x07
	case c0&0xFC == 0xF8:
		// 111110xx: 4 continuation bytes.
		n = 4
		x = c0 & 0x03
	case c0&0xFE == 0xFC:
		// 1111110x: 5 continuation bytes.
		n = 5
		x = c0 & 0x01
	case c0 == 0xFE:
		// 11111110: 6 continuation bytes.
		n = 6
		x = 0
	default:
		return 0, fmt.Errorf("frame.decodeUTF8Int: invalid leading byte (0x%02X)", c0)
	}

	// Each continuation byte stores 6 bits: 10xxxxxx.
	for i := uint(0); i < n; i++ {
		c, err := br.Read(8)
		if err != nil {
			return 0, unexpected(err)
		}
		if c&0xC0 != 0x80 {
			return 0, fmt.Errorf("frame.decodeUTF8Int: invalid continuation byte (0x%02X)", c)
		}
		x = x<<6 | c&0x3F
	}
	return x, nil
}
