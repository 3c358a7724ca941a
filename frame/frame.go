// Package frame implements access to FLAC audio frames.
//
// A FLAC encoder divides the audio stream into blocks, each holding unencoded
// audio samples from all channels in a short period of time. The channels of
// stereo audio are often correlated; using inter-channel decorrelation it is
// possible to store only one of the channels and the difference between them,
// or the average of the channels and their difference:
//
//	mid = (left + right)/2
//	side = left - right
//
// Each block is encoded using one prediction method per channel and stored in
// a frame, one subframe per channel. Decoding a frame reverses prediction and
// decorrelation, yielding the original samples bit-exactly.
//
// ref: https://www.xiph.org/flac/format.html#frame
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/mewpkg/flac/internal/bits"
)

var (
	// ErrInvalidSync is returned when a frame header does not begin with the
	// 14-bit frame sync code. It commonly indicates stream desynchronization
	// after a prior decode failure; recovery, if desired, is an explicit
	// operation left to the caller.
	ErrInvalidSync = errors.New("frame: invalid sync code")
	// ErrCRCMismatch is returned when the transmitted CRC-8 of a frame header
	// or CRC-16 of a frame does not match the checksum of the bytes read.
	ErrCRCMismatch = errors.New("frame: checksum mismatch")
)

// A Frame contains the header and subframes of an audio frame. It holds the
// decoded samples from a block (a part) of the audio stream, each subframe
// holding the samples from one of its channels.
type Frame struct {
	// Audio frame header.
	Header
	// One subframe per channel, containing decoded audio samples.
	Subframes []*Subframe
	// Underlying reader of the frame, bypassing the checksum tap.
	r io.Reader
	// Checksum tap; all header and subframe bytes pass through it.
	cr *crcReader
	// Bit reader of the frame contents.
	br *bits.Reader
}

// New creates a new Frame for accessing the audio samples of r. It reads and
// parses an audio frame header. Call Frame.Parse to read and parse the audio
// samples of its subframes.
//
// New fails with io.EOF if r is exhausted at a frame boundary, and with
// ErrInvalidSync if the data at the current position does not begin with a
// frame sync code.
func New(r io.Reader) (frame *Frame, err error) {
	cr := newCRCReader(r)
	frame = &Frame{r: r, cr: cr, br: bits.NewReader(cr)}
	if err := frame.parseHeader(); err != nil {
		return nil, err
	}
	return frame, nil
}

// Parse reads and parses the header and audio samples of a frame.
func Parse(r io.Reader) (frame *Frame, err error) {
	if frame, err = New(r); err != nil {
		return nil, err
	}
	if err := frame.Parse(); err != nil {
		return nil, err
	}
	return frame, nil
}

// Parse reads and parses the audio samples of each subframe of the frame. If
// the samples are inter-channel decorrelated between the subframes, it
// correlates them, and it verifies the CRC-16 of the frame.
func (frame *Frame) Parse() error {
	_, err := frame.ParseBuffer(nil)
	return err
}

// ParseBuffer is like Parse, but decodes into buf, one sample slice per
// channel, reusing its backing storage. It returns the possibly grown buffer
// on every path, including errors, so the caller may reclaim the storage and
// lend it to the next frame. The samples of the frame alias the returned
// buffer and remain valid only until its next reuse.
func (frame *Frame) ParseBuffer(buf [][]int32) ([][]int32, error) {
	nchannels := frame.Channels.Count()
	for len(buf) < nchannels {
		buf = append(buf, nil)
	}
	frame.Subframes = make([]*Subframe, nchannels)
	for channel := 0; channel < nchannels; channel++ {
		// The side channel of an inter-channel decorrelated frame carries one
		// extra bit per sample.
		bps := uint(frame.BitsPerSample)
		switch frame.Channels {
		case ChannelsSideRight:
			// channel 0 is the side channel.
			if channel == 0 {
				bps++
			}
		case ChannelsLeftSide, ChannelsMidSide:
			// channel 1 is the side channel.
			if channel == 1 {
				bps++
			}
		}
		subframe, err := frame.parseSubframe(bps, buf[channel])
		buf[channel] = subframe.Samples
		if err != nil {
			return buf, err
		}
		frame.Subframes[channel] = subframe
	}

	// Inter-channel correlation of subframe samples.
	frame.correlate()

	// 2 bytes: CRC-16 checksum of the entire frame, read past the checksum
	// tap; the trailing field does not cover itself.
	frame.br.Align()
	var want uint16
	if err := binary.Read(frame.r, binary.BigEndian, &want); err != nil {
		return buf, unexpected(err)
	}
	if got := frame.cr.sum16(); got != want {
		return buf, fmt.Errorf("frame.Frame.Parse: CRC-16 mismatch; expected 0x%04X, got 0x%04X: %w", want, got, ErrCRCMismatch)
	}
	return buf, nil
}

// correlate reverts any inter-channel decorrelation between the samples of
// the subframes.
func (frame *Frame) correlate() {
	switch frame.Channels {
	case ChannelsLeftSide:
		// 2 channels: left, side.
		left := frame.Subframes[0].Samples
		side := frame.Subframes[1].Samples
		for i := range side {
			// right = left - side
			side[i] = left[i] - side[i]
		}
	case ChannelsSideRight:
		// 2 channels: side, right.
		side := frame.Subframes[0].Samples
		right := frame.Subframes[1].Samples
		for i := range side {
			// left = right + side
			side[i] = right[i] + side[i]
		}
	case ChannelsMidSide:
		// 2 channels: mid, side.
		mid := frame.Subframes[0].Samples
		side := frame.Subframes[1].Samples
		for i := range side {
			// The integer division in mid = (left + right)/2 discards the least
			// significant bit. It can be reconstructed, since a sum A+B and a
			// difference A-B have the same least significant bit.
			m := mid[i]
			s := side[i]
			m *= 2
			m |= s & 1
			// left = (2*mid + side)/2
			// right = (2*mid - side)/2
			mid[i] = (m + s) / 2
			side[i] = (m - s) / 2
		}
	}
}

// SampleNumber returns the stream sample number of the first sample contained
// within the frame.
func (frame *Frame) SampleNumber() uint64 {
	if frame.HasFixedBlockSize {
		return frame.Num * uint64(frame.BlockSize)
	}
	return frame.Num
}

// Hash adds the decoded audio samples of the frame to a running MD5 hash. It
// can be used in conjunction with the StreamInfo MD5 checksum to verify the
// integrity of the decoded audio samples.
//
// The audio samples of the frame must be decoded before calling Hash.
func (frame *Frame) Hash(md5sum hash.Hash) {
	var buf [4]byte
	bps := frame.BitsPerSample
	n := int(bps+7) / 8
	for i := 0; i < int(frame.BlockSize); i++ {
		for _, subframe := range frame.Subframes {
			// Decoded samples are written in little endian byte order, using the
			// fewest bytes that hold the sample size.
			sample := subframe.Samples[i]
			for j := 0; j < n; j++ {
				buf[j] = uint8(sample >> uint(8*j))
			}
			md5sum.Write(buf[:n])
		}
	}
}

// unexpected returns io.ErrUnexpectedEOF if err is io.EOF, and err otherwise.
// The source was exhausted mid-frame.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
