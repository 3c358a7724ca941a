package bits_test

import (
	"testing"

	"github.com/icza/mighty"
	"github.com/mewpkg/flac/internal/bits"
)

func TestIntN(t *testing.T) {
	eq := mighty.Eq(t)
	golden := []struct {
		x    uint64
		n    uint
		want int64
	}{
		{x: 0x0, n: 3, want: 0},
		{x: 0x1, n: 3, want: 1},
		{x: 0x2, n: 3, want: 2},
		{x: 0x3, n: 3, want: 3},
		{x: 0x4, n: 3, want: -4},
		{x: 0x5, n: 3, want: -3},
		{x: 0x6, n: 3, want: -2},
		{x: 0x7, n: 3, want: -1},
		{x: 0x0000, n: 16, want: 0},
		{x: 0x7FFF, n: 16, want: 32767},
		{x: 0x8000, n: 16, want: -32768},
		{x: 0xFFFF, n: 16, want: -1},
		{x: 0x1FFFF, n: 17, want: -1},
		{x: 0x10000, n: 17, want: -65536},
	}
	for _, g := range golden {
		eq(g.want, bits.IntN(g.x, g.n))
	}
}
