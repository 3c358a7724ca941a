package frame

import (
	"fmt"
)

// A Header contains the basic properties of an audio frame, such as its block
// size, sample rate and channel count. Each frame header starts with a sync
// code, which allows a decoder to locate the start of a frame after stream
// desynchronization.
//
// ref: https://www.xiph.org/flac/format.html#frame_header
type Header struct {
	// Specifies if the block size is fixed or variable throughout the stream.
	HasFixedBlockSize bool
	// Block size in inter-channel samples, i.e. the number of audio samples in
	// each subframe. The last frame of a stream may be smaller than the
	// maximum declared by StreamInfo.
	BlockSize uint16
	// Sample rate in Hz; a 0 value implies unknown, get sample rate from
	// StreamInfo.
	SampleRate uint32
	// Specifies the number of channels (subframes) that exist in the frame,
	// their order and possible inter-channel decorrelation.
	Channels Channels
	// Sample size in bits-per-sample; a 0 value implies unknown, get sample
	// size from StreamInfo.
	BitsPerSample uint8
	// Specifies the frame number if the block size is fixed, and the first
	// sample number in the frame otherwise. When using fixed block size, the
	// first sample number in the frame can be derived by multiplying the frame
	// number with the block size (in samples).
	Num uint64
}

// SyncCode is the sync code of frame headers. Bit representation:
// 11111111111110.
const SyncCode = 0x3FFE

// Channels specifies the number of channels (subframes) that exist in a
// frame, their order and possible inter-channel decorrelation.
type Channels uint8

// Channel assignments. The following abbreviations are used:
//
//	C:   center (directly in front)
//	R:   right (standard stereo)
//	Sr:  side right (directly to the right)
//	Rs:  right surround (back right)
//	Cs:  center surround (rear center)
//	Ls:  left surround (back left)
//	Sl:  side left (directly to the left)
//	L:   left (standard stereo)
//	Lfe: low-frequency effect (placed according to room acoustics)
//
// The first 6 channel constants follow the SMPTE/ITU-R channel order:
//
//	L R C Lfe Ls Rs
const (
	ChannelsMono           Channels = iota // 1 channel: mono.
	ChannelsLR                             // 2 channels: left, right.
	ChannelsLRC                            // 3 channels: left, right, center.
	ChannelsLRLsRs                         // 4 channels: left, right, left surround, right surround.
	ChannelsLRCLsRs                        // 5 channels: left, right, center, left surround, right surround.
	ChannelsLRCLfeLsRs                     // 6 channels: left, right, center, LFE, left surround, right surround.
	ChannelsLRCLfeCsSlSr                   // 7 channels: left, right, center, LFE, center surround, side left, side right.
	ChannelsLRCLfeLsRsSlSr                 // 8 channels: left, right, center, LFE, left surround, right surround, side left, side right.
	ChannelsLeftSide                       // 2 channels: left, side; using inter-channel decorrelation.
	ChannelsSideRight                      // 2 channels: side, right; using inter-channel decorrelation.
	ChannelsMidSide                        // 2 channels: mid, side; using inter-channel decorrelation.
)

// nChannels specifies the number of channels used by each channel assignment.
var nChannels = [...]int{
	ChannelsMono:           1,
	ChannelsLR:             2,
	ChannelsLRC:            3,
	ChannelsLRLsRs:         4,
	ChannelsLRCLsRs:        5,
	ChannelsLRCLfeLsRs:     6,
	ChannelsLRCLfeCsSlSr:   7,
	ChannelsLRCLfeLsRsSlSr: 8,
	ChannelsLeftSide:       2,
	ChannelsSideRight:      2,
	ChannelsMidSide:        2,
}

// Count returns the number of channels (subframes) used by the provided
// channel assignment.
func (channels Channels) Count() int {
	return nChannels[channels]
}

// parseHeader reads and parses the header of an audio frame, verifying its
// CRC-8.
//
// Frame header format (pseudo code):
//
//	type FRAME_HEADER struct {
//	   sync_code            uint14 // 11111111111110
//	   _                    uint1
//	   has_variable_blocking bool
//	   block_size_spec      uint4
//	   sample_rate_spec     uint4
//	   channel_assignment   uint4
//	   sample_size_spec     uint3
//	   _                    uint1
//	   // "UTF-8" coded frame or sample number, from 1 to 7 bytes.
//	   num                  uint36
//	   switch block_size_spec {
//	   case 0110:
//	      block_size        uint8  // block_size-1
//	   case 0111:
//	      block_size        uint16 // block_size-1
//	   }
//	   switch sample_rate_spec {
//	   case 1100:
//	      sample_rate       uint8  // sample rate in kHz.
//	   case 1101:
//	      sample_rate       uint16 // sample rate in Hz.
//	   case 1110:
//	      sample_rate       uint16 // sample rate in daHz (tens of Hz).
//	   }
//	   crc8                 uint8
//	}
//
// ref: https://www.xiph.org/flac/format.html#frame_header
func (frame *Frame) parseHeader() error {
	br := frame.br

	// 14 bits: sync code. The first byte is read separately so that a source
	// exhausted at a frame boundary surfaces as a clean io.EOF.
	b, err := br.Read(8)
	if err != nil {
		return err
	}
	rest, err := br.Read(6)
	if err != nil {
		return unexpected(err)
	}
	if sync := b<<6 | rest; sync != SyncCode {
		return fmt.Errorf("frame.Frame.parseHeader: sync code mismatch; expected %014b, got %014b: %w", uint(SyncCode), sync, ErrInvalidSync)
	}

	// 1 bit: reserved.
	x, err := br.Read(1)
	if err != nil {
		return unexpected(err)
	}
	if x != 0 {
		return fmt.Errorf("frame.Frame.parseHeader: non-zero reserved bit")
	}

	// 1 bit: blocking strategy.
	//    0: fixed block size.
	//    1: variable block size.
	x, err = br.Read(1)
	if err != nil {
		return unexpected(err)
	}
	frame.HasFixedBlockSize = x == 0

	// 4 bits: block size specifier; resolved after the frame/sample number, as
	// it may require trailing byte reads.
	blockSizeSpec, err := br.Read(4)
	if err != nil {
		return unexpected(err)
	}

	// 4 bits: sample rate specifier; also resolved after the frame/sample
	// number.
	sampleRateSpec, err := br.Read(4)
	if err != nil {
		return unexpected(err)
	}

	// 4 bits: channel assignment.
	//    0000-0111: (number of independent channels)-1.
	//    1000: left/side stereo:  left, side (difference).
	//    1001: side/right stereo: side (difference), right.
	//    1010: mid/side stereo:   mid (average), side (difference).
	//    1011-1111: reserved.
	x, err = br.Read(4)
	if err != nil {
		return unexpected(err)
	}
	if x > uint64(ChannelsMidSide) {
		return fmt.Errorf("frame.Frame.parseHeader: reserved channel assignment bit pattern (%04b)", x)
	}
	frame.Channels = Channels(x)

	// 3 bits: sample size.
	//    000: get from StreamInfo.
	//    001: 8 bits-per-sample.
	//    010: 12 bits-per-sample.
	//    011: reserved.
	//    100: 16 bits-per-sample.
	//    101: 20 bits-per-sample.
	//    110: 24 bits-per-sample.
	//    111: reserved.
	x, err = br.Read(3)
	if err != nil {
		return unexpected(err)
	}
	switch x {
	case 0x0:
		// 000: get from StreamInfo.
	case 0x1:
		frame.BitsPerSample = 8
	case 0x2:
		frame.BitsPerSample = 12
	case 0x4:
		frame.BitsPerSample = 16
	case 0x5:
		frame.BitsPerSample = 20
	case 0x6:
		frame.BitsPerSample = 24
	default:
		// 011 and 111: reserved.
		return fmt.Errorf("frame.Frame.parseHeader: reserved sample size bit pattern (%03b)", x)
	}

	// 1 bit: reserved.
	x, err = br.Read(1)
	if err != nil {
		return unexpected(err)
	}
	if x != 0 {
		return fmt.Errorf("frame.Frame.parseHeader: non-zero reserved bit")
	}

	// 1 to 7 bytes: "UTF-8" coded frame or sample number.
	frame.Num, err = decodeUTF8Int(br)
	if err != nil {
		return err
	}

	// Block size.
	//    0000: reserved.
	//    0001: 192 samples.
	//    0010-0101: 576 * 2^(n-2) samples, i.e. 576/1152/2304/4608.
	//    0110: get 8 bit (block_size-1) from end of header.
	//    0111: get 16 bit (block_size-1) from end of header.
	//    1000-1111: 256 * 2^(n-8) samples, i.e. 256/512/1024/.../32768.
	switch {
	case blockSizeSpec == 0x0:
		return fmt.Errorf("frame.Frame.parseHeader: reserved block size bit pattern (%04b)", blockSizeSpec)
	case blockSizeSpec == 0x1:
		frame.BlockSize = 192
	case blockSizeSpec <= 0x5:
		frame.BlockSize = 576 << (blockSizeSpec - 0x2)
	case blockSizeSpec == 0x6:
		x, err = br.Read(8)
		if err != nil {
			return unexpected(err)
		}
		frame.BlockSize = uint16(x) + 1
	case blockSizeSpec == 0x7:
		x, err = br.Read(16)
		if err != nil {
			return unexpected(err)
		}
		frame.BlockSize = uint16(x) + 1
	default:
		frame.BlockSize = 256 << (blockSizeSpec - 0x8)
	}

	// Sample rate.
	//    0000: get from StreamInfo.
	//    0001: 88.2 kHz.
	//    0010: 176.4 kHz.
	//    0011: 192 kHz.
	//    0100: 8 kHz.
	//    0101: 16 kHz.
	//    0110: 22.05 kHz.
	//    0111: 24 kHz.
	//    1000: 32 kHz.
	//    1001: 44.1 kHz.
	//    1010: 48 kHz.
	//    1011: 96 kHz.
	//    1100: get 8 bit sample rate (in kHz) from end of header.
	//    1101: get 16 bit sample rate (in Hz) from end of header.
	//    1110: get 16 bit sample rate (in daHz) from end of header.
	//    1111: invalid, to prevent sync-fooling string of 1s.
	switch sampleRateSpec {
	case 0x0:
		// get from StreamInfo.
	case 0x1:
		frame.SampleRate = 88200
	case 0x2:
		frame.SampleRate = 176400
	case 0x3:
		frame.SampleRate = 192000
	case 0x4:
		frame.SampleRate = 8000
	case 0x5:
		frame.SampleRate = 16000
	case 0x6:
		frame.SampleRate = 22050
	case 0x7:
		frame.SampleRate = 24000
	case 0x8:
		frame.SampleRate = 32000
	case 0x9:
		frame.SampleRate = 44100
	case 0xA:
		frame.SampleRate = 48000
	case 0xB:
		frame.SampleRate = 96000
	case 0xC:
		// 8 bit sample rate in kHz.
		x, err = br.Read(8)
		if err != nil {
			return unexpected(err)
		}
		frame.SampleRate = uint32(x) * 1000
	case 0xD:
		// 16 bit sample rate in Hz.
		x, err = br.Read(16)
		if err != nil {
			return unexpected(err)
		}
		frame.SampleRate = uint32(x)
	case 0xE:
		// 16 bit sample rate in daHz (tens of Hz).
		x, err = br.Read(16)
		if err != nil {
			return unexpected(err)
		}
		frame.SampleRate = uint32(x) * 10
	default:
		return fmt.Errorf("frame.Frame.parseHeader: invalid sample rate bit pattern (%04b)", sampleRateSpec)
	}

	// 1 byte: CRC-8 of the preceding header bytes, which is excluded from its
	// own checksum but covered by the frame CRC-16.
	frame.cr.disableCRC8()
	want, err := br.Read(8)
	if err != nil {
		return unexpected(err)
	}
	if got := frame.cr.sum8(); got != uint8(want) {
		return fmt.Errorf("frame.Frame.parseHeader: CRC-8 mismatch; expected 0x%02X, got 0x%02X: %w", want, got, ErrCRCMismatch)
	}
	return nil
}
