package frame

import (
	"bytes"
	"testing"

	"github.com/icza/mighty"
	"github.com/mewpkg/flac/internal/bits"
)

// encodeUTF8Int encodes x using the "UTF-8" style variable-length encoding of
// frame headers.
func encodeUTF8Int(x uint64) []byte {
	switch {
	case x < 1<<7:
		return []byte{byte(x)}
	case x < 1<<11:
		return []byte{
			0xC0 | byte(x>>6),
			0x80 | byte(x&0x3F),
		}
	case x < 1<<16:
		return []byte{
			0xE0 | byte(x>>12),
			0x80 | byte(x>>6&0x3F),
			0x80 | byte(x&0x3F),
		}
	case x < 1<<21:
		return []byte{
			0xF0 | byte(x>>18),
			0x80 | byte(x>>12&0x3F),
			0x80 | byte(x>>6&0x3F),
			0x80 | byte(x&0x3F),
		}
	case x < 1<<26:
		return []byte{
			0xF8 | byte(x>>24),
			0x80 | byte(x>>18&0x3F),
			0x80 | byte(x>>12&0x3F),
			0x80 | byte(x>>6&0x3F),
			0x80 | byte(x&0x3F),
		}
	case x < 1<<31:
		return []byte{
			0xFC | byte(x>>30),
			0x80 | byte(x>>24&0x3F),
			0x80 | byte(x>>18&0x3F),
			0x80 | byte(x>>12&0x3F),
			0x80 | byte(x>>6&0x3F),
			0x80 | byte(x&0x3F),
		}
	default:
		return []byte{
			0xFE,
			0x80 | byte(x>>30&0x3F),
			0x80 | byte(x>>24&0x3F),
			0x80 | byte(x>>18&0x3F),
			0x80 | byte(x>>12&0x3F),
			0x80 | byte(x>>6&0x3F),
			0x80 | byte(x&0x3F),
		}
	}
}

func TestDecodeUTF8Int(t *testing.T) {
	eq := mighty.Eq(t)
	golden := []uint64{
		0,
		1,
		127,
		128,
		2047,
		2048,
		65535,
		65536,
		1<<21 - 1,
		1 << 21,
		1<<26 - 1,
		1 << 26,
		1<<31 - 1,
		1 << 31,
		1<<36 - 1,
	}
	for _, want := range golden {
		br := bits.NewReader(bytes.NewReader(encodeUTF8Int(want)))
		got, err := decodeUTF8Int(br)
		eq(want, got, err)
	}
}

func TestDecodeUTF8IntInvalid(t *testing.T) {
	eq := mighty.Eq(t)
	golden := [][]byte{
		// Leading byte with the continuation prefix.
		{0x80},
		// Continuation byte without the continuation prefix.
		{0xC2, 0x00},
		{0xE0, 0x80, 0xFF},
	}
	for _, g := range golden {
		br := bits.NewReader(bytes.NewReader(g))
		_, err := decodeUTF8Int(br)
		eq(true, err != nil)
	}
}
