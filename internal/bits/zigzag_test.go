package bits_test

import (
	"testing"

	"github.com/icza/mighty"
	"github.com/mewpkg/flac/internal/bits"
)

func TestDecodeZigZag(t *testing.T) {
	eq := mighty.Eq(t)
	golden := []struct {
		x    uint32
		want int32
	}{
		{x: 0, want: 0},
		{x: 1, want: -1},
		{x: 2, want: 1},
		{x: 3, want: -2},
		{x: 4, want: 2},
		{x: 5, want: -3},
		{x: 6, want: 3},
		{x: 4294967294, want: 2147483647},
		{x: 4294967295, want: -2147483648},
	}
	for _, g := range golden {
		eq(g.want, bits.DecodeZigZag(g.x))
		// Encoding is the inverse of decoding.
		eq(g.x, bits.EncodeZigZag(g.want))
	}
}
