package frame

import (
	"errors"
	"fmt"

	"github.com/mewpkg/flac/internal/bits"
)

// A Subframe contains the decoded audio samples of one channel of an audio
// frame.
//
// ref: https://www.xiph.org/flac/format.html#subframe
type Subframe struct {
	// Subframe header.
	SubHeader
	// Decoded audio samples. The samples of the side channel of inter-channel
	// decorrelated frames use one extra bit, thus int32 holds every legal
	// sample, including 26-bit side samples of 25-bit streams.
	Samples []int32
	// Number of audio samples in the subframe.
	NSamples int
	// Rice residual coding state of the subframe; nil for constant and
	// verbatim subframes.
	Rice *RiceSubframe
}

// A SubHeader specifies the prediction method and order of a subframe, and the
// number of wasted bits-per-sample of its unencoded source.
//
// ref: https://www.xiph.org/flac/format.html#subframe_header
type SubHeader struct {
	// Specifies the prediction method used to encode the audio samples of the
	// subframe.
	Pred Pred
	// Prediction order used by fixed and FIR linear prediction decoding.
	Order int
	// Wasted bits-per-sample; the source samples all had this many trailing
	// zero bits, which were stripped before encoding and are restored after
	// decoding.
	Wasted uint
	// Precision in bits of the FIR linear prediction coefficients.
	CoeffPrec uint
	// Predictor coefficient shift needed in bits, used by FIR linear
	// prediction.
	CoeffShift int32
	// FIR linear prediction coefficients.
	Coeffs []int32
}

// Pred specifies the prediction method used to encode the audio samples of a
// subframe.
type Pred uint8

// Prediction methods.
const (
	// PredConstant specifies that the subframe contains a constant sound. The
	// audio samples are encoded using run-length encoding.
	PredConstant Pred = iota
	// PredVerbatim specifies that the subframe contains unencoded audio
	// samples.
	PredVerbatim
	// PredFixed specifies that the subframe is encoded using a fixed linear
	// predictor of order 0 to 4, using a hard-coded set of polynomial
	// coefficients.
	PredFixed
	// PredFIR specifies that the subframe is encoded using a custom FIR linear
	// predictor, whose coefficients are stored in the subframe header.
	PredFIR
)

// RiceSubframe holds the partitioned Rice coding parameters of the residuals
// of a subframe.
type RiceSubframe struct {
	// Partition order used by the Rice coding method; the residuals are split
	// into 2^PartOrder partitions.
	PartOrder int
	// Rice coding parameter of each partition.
	Partitions []RicePartition
}

// RicePartition holds the Rice coding parameter of one partition of residuals.
type RicePartition struct {
	// Rice parameter, deciding how many bits each residual stores in its
	// binary remainder.
	Param uint
	// Escaped residual sample size in bits-per-sample; non-zero if the
	// partition escapes Rice coding and stores its residuals unencoded at this
	// fixed width.
	EscapedBitsPerSample uint
}

// parseSubframe reads and parses the header and the audio samples of a
// subframe of the given bits-per-sample. It decodes into the backing storage
// of scratch, growing it if needed.
func (frame *Frame) parseSubframe(bps uint, scratch []int32) (subframe *Subframe, err error) {
	subframe = &Subframe{
		Samples:  scratch[:0],
		NSamples: int(frame.BlockSize),
	}
	if err := subframe.parseHeader(frame.br); err != nil {
		return subframe, err
	}
	if subframe.Wasted >= bps {
		return subframe, fmt.Errorf("frame.Frame.parseSubframe: %d wasted bits-per-sample exhausts %d bits-per-sample", subframe.Wasted, bps)
	}
	// Wasted bits-per-sample are stripped from the sample size during decoding
	// and shifted back in afterwards.
	bps -= subframe.Wasted
	if subframe.Order > subframe.NSamples {
		return subframe, fmt.Errorf("frame.Frame.parseSubframe: prediction order (%d) exceeds block size (%d)", subframe.Order, subframe.NSamples)
	}

	switch subframe.Pred {
	case PredConstant:
		err = subframe.decodeConstant(frame.br, bps)
	case PredVerbatim:
		err = subframe.decodeVerbatim(frame.br, bps)
	case PredFixed:
		err = subframe.decodeFixed(frame.br, bps)
	case PredFIR:
		err = subframe.decodeFIR(frame.br, bps)
	}
	if err != nil {
		return subframe, err
	}

	if subframe.Wasted > 0 {
		for i, sample := range subframe.Samples {
			subframe.Samples[i] = sample << subframe.Wasted
		}
	}
	return subframe, nil
}

// parseHeader reads and parses the header of a subframe.
//
// Subframe header format (pseudo code):
//
//	type SUBFRAME_HEADER struct {
//	   _          uint1 // zero padding
//	   type       uint6
//	   // 0: no wasted bits-per-sample in source subblock, k = 0.
//	   // 1: k wasted bits-per-sample in source subblock, k-1 follows, unary
//	   // coded; e.g. k=3 => 001 follows, k=7 => 0000001 follows.
//	   wasted_bit uint1+k
//	}
//
// ref: https://www.xiph.org/flac/format.html#subframe_header
func (subframe *Subframe) parseHeader(br *bits.Reader) error {
	// 1 bit: zero padding.
	x, err := br.Read(1)
	if err != nil {
		return unexpected(err)
	}
	if x != 0 {
		return errors.New("frame.Subframe.parseHeader: non-zero padding")
	}

	// 6 bits: subframe type.
	//    000000: constant.
	//    000001: verbatim.
	//    00001x: reserved.
	//    0001xx: reserved.
	//    001xxx: fixed; xxx=order, order > 4 reserved.
	//    01xxxx: reserved.
	//    1xxxxx: FIR linear prediction; xxxxx=order-1.
	x, err = br.Read(6)
	if err != nil {
		return unexpected(err)
	}
	switch {
	case x == 0x00:
		subframe.Pred = PredConstant
	case x == 0x01:
		subframe.Pred = PredVerbatim
	case 0x08 <= x && x <= 0x0C:
		subframe.Pred = PredFixed
		subframe.Order = int(x & 0x07)
	case 0x20 <= x:
		subframe.Pred = PredFIR
		subframe.Order = int(x&0x1F) + 1
	default:
		return fmt.Errorf("frame.Subframe.parseHeader: reserved subframe type bit pattern (%06b)", x)
	}

	// 1 bit: wasted bits-per-sample flag; if set, the count follows, stored as
	// unary coded (count - 1).
	x, err = br.Read(1)
	if err != nil {
		return unexpected(err)
	}
	subframe.Wasted = 0
	if x != 0 {
		x, err = br.ReadUnary()
		if err != nil {
			return unexpected(err)
		}
		subframe.Wasted = uint(x) + 1
	}
	return nil
}

// decodeConstant reads the constant sample value, which is repeated for each
// sample of the subframe.
//
// ref: https://www.xiph.org/flac/format.html#subframe_constant
func (subframe *Subframe) decodeConstant(br *bits.Reader, bps uint) error {
	x, err := br.Read(bps)
	if err != nil {
		return unexpected(err)
	}
	sample := int32(bits.IntN(x, bps))
	for i := 0; i < subframe.NSamples; i++ {
		subframe.Samples = append(subframe.Samples, sample)
	}
	return nil
}

// decodeVerbatim reads the unencoded audio samples of the subframe.
//
// ref: https://www.xiph.org/flac/format.html#subframe_verbatim
func (subframe *Subframe) decodeVerbatim(br *bits.Reader, bps uint) error {
	for i := 0; i < subframe.NSamples; i++ {
		x, err := br.Read(bps)
		if err != nil {
			return unexpected(err)
		}
		subframe.Samples = append(subframe.Samples, int32(bits.IntN(x, bps)))
	}
	return nil
}

// readWarmup reads the order unencoded warm-up samples which seed the linear
// predictor of the subframe.
func (subframe *Subframe) readWarmup(br *bits.Reader, bps uint) error {
	for i := 0; i < subframe.Order; i++ {
		x, err := br.Read(bps)
		if err != nil {
			return unexpected(err)
		}
		subframe.Samples = append(subframe.Samples, int32(bits.IntN(x, bps)))
	}
	return nil
}

// fixedCoeffs maps from prediction order to the polynomial coefficients of the
// fixed linear predictors.
var fixedCoeffs = [...][]int32{
	1: {1},
	2: {2, -1},
	3: {3, -3, 1},
	4: {4, -6, 4, -1},
}

// decodeFixed decodes the audio samples of a subframe encoded with a fixed
// linear predictor: order warm-up samples followed by the Rice coded residuals
// of the prediction.
//
// ref: https://www.xiph.org/flac/format.html#subframe_fixed
func (subframe *Subframe) decodeFixed(br *bits.Reader, bps uint) error {
	if err := subframe.readWarmup(br, bps); err != nil {
		return err
	}
	if err := subframe.decodeResiduals(br); err != nil {
		return err
	}
	if subframe.Order == 0 {
		// An order 0 fixed predictor predicts zero for every sample; the
		// residuals are the samples.
		return nil
	}
	return subframe.predict(fixedCoeffs[subframe.Order], 0)
}

// decodeFIR decodes the audio samples of a subframe encoded with a custom FIR
// linear predictor: order warm-up samples, the quantized predictor
// coefficients, and the Rice coded residuals of the prediction.
//
// ref: https://www.xiph.org/flac/format.html#subframe_lpc
func (subframe *Subframe) decodeFIR(br *bits.Reader, bps uint) error {
	if err := subframe.readWarmup(br, bps); err != nil {
		return err
	}

	// 4 bits: (coefficient precision in bits) - 1; 1111 is invalid.
	x, err := br.Read(4)
	if err != nil {
		return unexpected(err)
	}
	if x == 0xF {
		return errors.New("frame.Subframe.decodeFIR: invalid coefficient precision bit pattern (1111)")
	}
	subframe.CoeffPrec = uint(x) + 1

	// 5 bits: predictor coefficient shift needed in bits, signed two's
	// complement.
	x, err = br.Read(5)
	if err != nil {
		return unexpected(err)
	}
	subframe.CoeffShift = int32(bits.IntN(x, 5))
	if subframe.CoeffShift < 0 {
		return fmt.Errorf("frame.Subframe.decodeFIR: negative predictor coefficient shift (%d)", subframe.CoeffShift)
	}

	// Order coefficients, each stored at the coefficient precision, signed
	// two's complement.
	subframe.Coeffs = subframe.Coeffs[:0]
	for i := 0; i < subframe.Order; i++ {
		x, err = br.Read(subframe.CoeffPrec)
		if err != nil {
			return unexpected(err)
		}
		subframe.Coeffs = append(subframe.Coeffs, int32(bits.IntN(x, subframe.CoeffPrec)))
	}

	if err := subframe.decodeResiduals(br); err != nil {
		return err
	}
	return subframe.predict(subframe.Coeffs, uint(subframe.CoeffShift))
}

// decodeResiduals decodes the encoded residuals (prediction errors) of the
// subframe.
//
// ref: https://www.xiph.org/flac/format.html#residual
func (subframe *Subframe) decodeResiduals(br *bits.Reader) error {
	// 2 bits: residual coding method.
	x, err := br.Read(2)
	if err != nil {
		return unexpected(err)
	}
	// The 4-bit Rice coding method (0) uses 4-bit Rice parameters, and the
	// 5-bit Rice coding method (1) uses 5-bit Rice parameters.
	switch x {
	case 0x0:
		return subframe.decodeRicePart(br, 4)
	case 0x1:
		return subframe.decodeRicePart(br, 5)
	default:
		return fmt.Errorf("frame.Subframe.decodeResiduals: reserved residual coding method bit pattern (%02b)", x)
	}
}

// decodeRicePart decodes the partitioned Rice coded residuals of the subframe,
// using Rice parameters of the given size in bits.
//
// ref: https://www.xiph.org/flac/format.html#partitioned_rice
// ref: https://www.xiph.org/flac/format.html#partitioned_rice2
func (subframe *Subframe) decodeRicePart(br *bits.Reader, paramSize uint) error {
	// 4 bits: partition order.
	x, err := br.Read(4)
	if err != nil {
		return unexpected(err)
	}
	partOrder := int(x)
	rice := &RiceSubframe{
		PartOrder: partOrder,
	}
	subframe.Rice = rice

	// The residuals are split into 2^partOrder partitions of equal size, where
	// the first partition is short the warm-up samples.
	nparts := 1 << partOrder
	partSampleCount := subframe.NSamples >> partOrder
	if partOrder > 0 && subframe.NSamples%nparts != 0 {
		return fmt.Errorf("frame.Subframe.decodeRicePart: block size (%d) not evenly divisible by 2^partition order (%d)", subframe.NSamples, nparts)
	}
	if partSampleCount == 0 {
		return fmt.Errorf("frame.Subframe.decodeRicePart: partition order (%d) too large for block size (%d)", partOrder, subframe.NSamples)
	}
	if subframe.Order > partSampleCount {
		return fmt.Errorf("frame.Subframe.decodeRicePart: prediction order (%d) exceeds first partition sample count (%d)", subframe.Order, partSampleCount)
	}

	rice.Partitions = make([]RicePartition, nparts)
	escapeParam := uint64(1<<paramSize) - 1
	for i := 0; i < nparts; i++ {
		partition := &rice.Partitions[i]
		nsamples := partSampleCount
		if i == 0 {
			// The warm-up samples take the place of the first residuals of the
			// first partition.
			nsamples -= subframe.Order
		}

		// (4 or 5) bits: Rice parameter; all bits set escapes Rice coding, and
		// the partition stores its residuals unencoded at a fixed sample size.
		x, err := br.Read(paramSize)
		if err != nil {
			return unexpected(err)
		}
		if x == escapeParam {
			// 5 bits: escaped residual sample size in bits-per-sample.
			x, err = br.Read(5)
			if err != nil {
				return unexpected(err)
			}
			partition.EscapedBitsPerSample = uint(x)
			if x == 0 {
				// A zero sample size implies a partition of silence.
				for j := 0; j < nsamples; j++ {
					subframe.Samples = append(subframe.Samples, 0)
				}
				continue
			}
			for j := 0; j < nsamples; j++ {
				x, err = br.Read(partition.EscapedBitsPerSample)
				if err != nil {
					return unexpected(err)
				}
				subframe.Samples = append(subframe.Samples, int32(bits.IntN(x, partition.EscapedBitsPerSample)))
			}
			continue
		}
		partition.Param = uint(x)

		for j := 0; j < nsamples; j++ {
			if err := subframe.decodeRiceResidual(br, partition.Param); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeRiceResidual decodes a Rice encoded residual (prediction error) with
// the Rice parameter k: a unary coded quotient followed by a k-bit binary
// remainder, folded to unsigned by ZigZag encoding.
func (subframe *Subframe) decodeRiceResidual(br *bits.Reader, k uint) error {
	high, err := br.ReadUnary()
	if err != nil {
		return unexpected(err)
	}
	low, err := br.Read(k)
	if err != nil {
		return unexpected(err)
	}
	folded := uint32(high<<k | low)
	residual := bits.DecodeZigZag(folded)
	subframe.Samples = append(subframe.Samples, residual)
	return nil
}

// predict reconstructs each audio sample after the warm-up samples as a linear
// combination of its predecessors, scaled down by shift:
//
//	sample = residual + (coeffs . predecessors)>>shift
//
// The residuals are stored in Samples by decodeResiduals; prediction rewrites
// them in place.
func (subframe *Subframe) predict(coeffs []int32, shift uint) error {
	for i := subframe.Order; i < subframe.NSamples; i++ {
		// The accumulation is done in 64 bits; predictors of high precision
		// coefficients overflow 32-bit intermediates on legal streams.
		var sum int64
		for j, c := range coeffs {
			sum += int64(c) * int64(subframe.Samples[i-1-j])
		}
		subframe.Samples[i] += int32(sum >> shift)
	}
	return nil
}
