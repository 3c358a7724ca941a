package bits

import (
	"errors"

	"github.com/icza/bitio"
)

// maxUnaryLen bounds the number of leading zero bits accepted by ReadUnary.
// Legal Rice quotients stay far below this; longer runs indicate a malformed
// or adversarial stream.
const maxUnaryLen = 1 << 20

// ErrUnaryOutOfRange is returned by ReadUnary when the run of leading zero
// bits exceeds maxUnaryLen.
var ErrUnaryOutOfRange = errors.New("bits: unary coded integer out of range")

// ReadUnary decodes and returns an unary coded integer, whose value is
// represented by the number of leading zeros before a one.
//
// Examples of unary coded binary on the left and decoded decimal on the right:
//
//	1       => 0
//	01      => 1
//	001     => 2
//	0001    => 3
//	00001   => 4
//	000001  => 5
//	0000001 => 6
func (br *Reader) ReadUnary() (x uint64, err error) {
	for {
		bit, err := br.br.ReadBool()
		if err != nil {
			return 0, err
		}
		if bit {
			break
		}
		x++
		if x > maxUnaryLen {
			return 0, ErrUnaryOutOfRange
		}
	}
	return x, nil
}

// WriteUnary encodes x as an unary coded integer, whose value is represented
// by the number of leading zeros before a one.
//
// Examples of decoded decimal on the left and unary coded binary on the right:
//
//	0 => 1
//	1 => 01
//	2 => 001
//	3 => 0001
func WriteUnary(bw *bitio.Writer, x uint64) error {
	for ; x >= 8; x -= 8 {
		if err := bw.WriteByte(0x0); err != nil {
			return err
		}
	}
	return bw.WriteBits(1, uint8(x+1))
}
