package frame

import (
	"bytes"
	"testing"

	"github.com/icza/bitio"
	"github.com/icza/mighty"
	"github.com/mewpkg/flac/internal/bits"
)

// newTestFrame returns a Frame which decodes subframes from the given raw
// data, without frame header or checksum concerns.
func newTestFrame(data []byte, blockSize uint16) *Frame {
	return &Frame{
		Header: Header{BlockSize: blockSize},
		br:     bits.NewReader(bytes.NewReader(data)),
	}
}

func TestDecodeConstant(t *testing.T) {
	eq := mighty.Eq(t)
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	// Subframe header: zero padding, constant prediction, no wasted bits.
	eq(nil, bw.WriteBits(0x0, 1))
	eq(nil, bw.WriteBits(0x00, 6))
	eq(nil, bw.WriteBits(0x0, 1))
	// 8-bit constant sample value -10.
	eq(nil, bw.WriteBits(0xF6, 8))
	eq(nil, bw.Close())

	frame := newTestFrame(buf.Bytes(), 4)
	subframe, err := frame.parseSubframe(8, nil)
	eq(nil, err)
	eq(PredConstant, subframe.Pred)
	eq(uint(0), subframe.Wasted)
	want := []int32{-10, -10, -10, -10}
	eq(len(want), len(subframe.Samples))
	for i := range want {
		eq(want[i], subframe.Samples[i])
	}
}

func TestDecodeConstantWasted(t *testing.T) {
	eq := mighty.Eq(t)
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	// Subframe header: zero padding, constant prediction, 2 wasted bits
	// (flag, then unary coded 2-1 = 1).
	eq(nil, bw.WriteBits(0x0, 1))
	eq(nil, bw.WriteBits(0x00, 6))
	eq(nil, bw.WriteBits(0x1, 1))
	eq(nil, bw.WriteBits(0x1, 2)) // 01
	// The constant value is stored at 8-2 = 6 bits; decoded samples are
	// shifted back up.
	eq(nil, bw.WriteBits(0x03, 6))
	eq(nil, bw.Close())

	frame := newTestFrame(buf.Bytes(), 3)
	subframe, err := frame.parseSubframe(8, nil)
	eq(nil, err)
	eq(uint(2), subframe.Wasted)
	for _, sample := range subframe.Samples {
		eq(int32(3<<2), sample)
	}
}

func TestDecodeVerbatim(t *testing.T) {
	eq := mighty.Eq(t)
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	// Subframe header: zero padding, verbatim prediction, no wasted bits.
	eq(nil, bw.WriteBits(0x0, 1))
	eq(nil, bw.WriteBits(0x01, 6))
	eq(nil, bw.WriteBits(0x0, 1))
	// Unencoded 8-bit samples 1, -2, 127.
	eq(nil, bw.WriteBits(0x01, 8))
	eq(nil, bw.WriteBits(0xFE, 8))
	eq(nil, bw.WriteBits(0x7F, 8))
	eq(nil, bw.Close())

	frame := newTestFrame(buf.Bytes(), 3)
	subframe, err := frame.parseSubframe(8, nil)
	eq(nil, err)
	eq(PredVerbatim, subframe.Pred)
	want := []int32{1, -2, 127}
	eq(len(want), len(subframe.Samples))
	for i := range want {
		eq(want[i], subframe.Samples[i])
	}
}

func TestDecodeFixedOrder0(t *testing.T) {
	eq := mighty.Eq(t)
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	// Subframe header: zero padding, fixed prediction of order 0, no wasted
	// bits.
	eq(nil, bw.WriteBits(0x0, 1))
	eq(nil, bw.WriteBits(0x08, 6))
	eq(nil, bw.WriteBits(0x0, 1))
	// Residual coding: 4-bit Rice method, partition order 0, Rice parameter
	// k=2.
	eq(nil, bw.WriteBits(0x0, 2))
	eq(nil, bw.WriteBits(0x0, 4))
	eq(nil, bw.WriteBits(0x2, 4))
	// An order 0 predictor predicts silence; the residuals are the samples.
	// Residuals 1, -1, 2, 0 ZigZag fold to 2, 1, 4, 0.
	eq(nil, bw.WriteBits(0x1, 1)) // q=0
	eq(nil, bw.WriteBits(0x2, 2)) // r=10
	eq(nil, bw.WriteBits(0x1, 1)) // q=0
	eq(nil, bw.WriteBits(0x1, 2)) // r=01
	eq(nil, bw.WriteBits(0x1, 2)) // q=1: 01
	eq(nil, bw.WriteBits(0x0, 2)) // r=00
	eq(nil, bw.WriteBits(0x1, 1)) // q=0
	eq(nil, bw.WriteBits(0x0, 2)) // r=00
	eq(nil, bw.Close())

	frame := newTestFrame(buf.Bytes(), 4)
	subframe, err := frame.parseSubframe(8, nil)
	eq(nil, err)
	eq(PredFixed, subframe.Pred)
	eq(0, subframe.Order)
	eq(0, subframe.Rice.PartOrder)
	eq(uint(2), subframe.Rice.Partitions[0].Param)
	want := []int32{1, -1, 2, 0}
	eq(len(want), len(subframe.Samples))
	for i := range want {
		eq(want[i], subframe.Samples[i])
	}
}

func TestDecodeFIR(t *testing.T) {
	eq := mighty.Eq(t)
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	// Subframe header: zero padding, FIR prediction of order 1, no wasted
	// bits.
	eq(nil, bw.WriteBits(0x0, 1))
	eq(nil, bw.WriteBits(0x20, 6))
	eq(nil, bw.WriteBits(0x0, 1))
	// 8-bit warm-up sample 5.
	eq(nil, bw.WriteBits(0x05, 8))
	// Coefficient precision 4 bits (stored as 3), shift 1, single coefficient
	// 2; each sample is predicted as (2*previous)>>1 = previous.
	eq(nil, bw.WriteBits(0x3, 4))
	eq(nil, bw.WriteBits(0x01, 5))
	eq(nil, bw.WriteBits(0x2, 4))
	// Residual coding: 4-bit Rice method, partition order 0, Rice parameter
	// k=0. Residuals 1, 2, 3 ZigZag fold to 2, 4, 6, stored unary coded.
	eq(nil, bw.WriteBits(0x0, 2))
	eq(nil, bw.WriteBits(0x0, 4))
	eq(nil, bw.WriteBits(0x0, 4))
	eq(nil, bw.WriteBits(0x1, 3)) // 001
	eq(nil, bw.WriteBits(0x1, 5)) // 00001
	eq(nil, bw.WriteBits(0x1, 7)) // 0000001
	eq(nil, bw.Close())

	frame := newTestFrame(buf.Bytes(), 4)
	subframe, err := frame.parseSubframe(8, nil)
	eq(nil, err)
	eq(PredFIR, subframe.Pred)
	eq(1, subframe.Order)
	eq(uint(4), subframe.CoeffPrec)
	eq(int32(1), subframe.CoeffShift)
	eq(int32(2), subframe.Coeffs[0])
	want := []int32{5, 6, 8, 11}
	eq(len(want), len(subframe.Samples))
	for i := range want {
		eq(want[i], subframe.Samples[i])
	}
}

func TestDecodeRiceEscape(t *testing.T) {
	eq := mighty.Eq(t)
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	// Subframe header: zero padding, fixed prediction of order 0, no wasted
	// bits.
	eq(nil, bw.WriteBits(0x0, 1))
	eq(nil, bw.WriteBits(0x08, 6))
	eq(nil, bw.WriteBits(0x0, 1))
	// Residual coding: 4-bit Rice method, partition order 1; 2 partitions of
	// 2 samples each.
	eq(nil, bw.WriteBits(0x0, 2))
	eq(nil, bw.WriteBits(0x1, 4))
	// Partition 0 escapes Rice coding with a raw sample size of 3 bits;
	// residuals -3 and 2 in two's complement.
	eq(nil, bw.WriteBits(0xF, 4))
	eq(nil, bw.WriteBits(0x03, 5))
	eq(nil, bw.WriteBits(0x5, 3)) // 101 = -3
	eq(nil, bw.WriteBits(0x2, 3)) // 010 = 2
	// Partition 1 uses Rice parameter k=0 with zero residuals.
	eq(nil, bw.WriteBits(0x0, 4))
	eq(nil, bw.WriteBits(0x1, 1))
	eq(nil, bw.WriteBits(0x1, 1))
	eq(nil, bw.Close())

	frame := newTestFrame(buf.Bytes(), 4)
	subframe, err := frame.parseSubframe(8, nil)
	eq(nil, err)
	eq(1, subframe.Rice.PartOrder)
	eq(uint(3), subframe.Rice.Partitions[0].EscapedBitsPerSample)
	eq(uint(0), subframe.Rice.Partitions[1].Param)
	want := []int32{-3, 2, 0, 0}
	eq(len(want), len(subframe.Samples))
	for i := range want {
		eq(want[i], subframe.Samples[i])
	}
}

func TestDecodeRicePartInvalid(t *testing.T) {
	eq := mighty.Eq(t)
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	// Subframe header: zero padding, fixed prediction of order 0, no wasted
	// bits.
	eq(nil, bw.WriteBits(0x0, 1))
	eq(nil, bw.WriteBits(0x08, 6))
	eq(nil, bw.WriteBits(0x0, 1))
	// Residual coding: 4-bit Rice method, partition order 1; but a block size
	// of 5 samples does not split evenly into 2 partitions.
	eq(nil, bw.WriteBits(0x0, 2))
	eq(nil, bw.WriteBits(0x1, 4))
	eq(nil, bw.Close())

	frame := newTestFrame(buf.Bytes(), 5)
	_, err := frame.parseSubframe(8, nil)
	eq(true, err != nil)
}
