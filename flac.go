// Package flac provides access to FLAC (Free Lossless Audio Codec) streams.
//
// A brief introduction of the FLAC stream format [1] follows. Each FLAC stream
// starts with a 32-bit signature ("fLaC"), followed by one or more metadata
// blocks, and then one or more audio frames. The first metadata block
// (StreamInfo) describes the basic properties of the audio stream and it is
// the only mandatory metadata block. Subsequent metadata blocks may appear in
// an arbitrary order.
//
// Please refer to the documentation of the meta [2] and the frame [3] packages
// for a brief introduction of their respective formats.
//
//	[1]: https://www.xiph.org/flac/format.html#stream
//	[2]: https://godoc.org/github.com/mewpkg/flac/meta
//	[3]: https://godoc.org/github.com/mewpkg/flac/frame
package flac

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mewpkg/flac/frame"
	"github.com/mewpkg/flac/meta"
)

var (
	// ErrInvalidSignature is returned when the data at the start of a stream
	// is not the FLAC signature "fLaC".
	ErrInvalidSignature = errors.New("flac: invalid stream signature")
	// ErrMissingStreamInfo is returned when the first metadata block of a
	// stream is not a StreamInfo block.
	ErrMissingStreamInfo = errors.New("flac: missing StreamInfo metadata block")
	// ErrSampleWidth is returned by ParseNext and NextSample when the stream
	// stores samples too wide for the sample width selected at open.
	ErrSampleWidth = errors.New("flac: insufficient sample width")
)

var (
	// flacSignature marks the beginning of a FLAC stream.
	flacSignature = []byte("fLaC")
	// id3Signature marks the beginning of an ID3v2 tag, which may prefix FLAC
	// files in the wild.
	id3Signature = []byte("ID3")
)

// Sample widths, as selected by the Width16 and Width32 options.
const (
	width16 = 16
	width32 = 32
)

// Stream provides access to the metadata blocks and audio frames of a FLAC
// stream.
type Stream struct {
	// The StreamInfo metadata block describing the basic properties of the
	// stream.
	Info *meta.StreamInfo
	// Zero or more metadata blocks, in the order they appear in the stream;
	// populated by Parse and ParseFile, left nil by New and Open.
	Blocks []*meta.Block
	// Underlying buffered reader of the stream.
	r *bufio.Reader
	// Underlying io.Closer of the stream; closed by Close if non-nil.
	c io.Closer
	// Declared sample width of the decode session, either 16 or 32 bits.
	width uint8
	// Sample buffer lent to successive frames; see Frame.ParseBuffer.
	buf [][]int32
	// State of the sample iterator; see NextSample.
	cur        *frame.Frame
	pcm16      []int16
	sampleIdx  int
	channelIdx int
	iterErr    error
}

// Option configures a decode session before any stream data is read.
type Option func(stream *Stream)

// Width16 declares that the session decodes into 16-bit samples. Opening
// succeeds regardless of the stream's declared bit depth, but if it exceeds 16
// bits, ParseNext and NextSample fail with ErrSampleWidth.
func Width16(stream *Stream) {
	stream.width = width16
}

// Width32 declares that the session decodes into 32-bit samples; this is the
// default and accommodates every legal FLAC bit depth.
func Width32(stream *Stream) {
	stream.width = width32
}

// New creates a new Stream for accessing the audio samples of r. It reads and
// parses the FLAC signature and the StreamInfo metadata block, and skips the
// remaining metadata blocks. Call Stream.ParseNext to parse one audio frame at
// a time, or Stream.NextSample to iterate over individual samples.
func New(r io.Reader, opts ...Option) (stream *Stream, err error) {
	stream = &Stream{r: bufio.NewReader(r), width: width32}
	for _, opt := range opts {
		opt(stream)
	}
	isLast, err := stream.parseStreamInfo()
	if err != nil {
		return nil, err
	}
	for !isLast {
		block, err := meta.New(stream.r)
		if err != nil {
			return nil, err
		}
		if err := block.Skip(); err != nil {
			return nil, err
		}
		isLast = block.IsLast
	}
	return stream, nil
}

// Parse creates a new Stream for accessing the metadata blocks and audio
// samples of r. It reads and parses the FLAC signature and all metadata
// blocks, recording them in Stream.Blocks.
func Parse(r io.Reader, opts ...Option) (stream *Stream, err error) {
	stream = &Stream{r: bufio.NewReader(r), width: width32}
	for _, opt := range opts {
		opt(stream)
	}
	isLast, err := stream.parseStreamInfo()
	if err != nil {
		return nil, err
	}
	for !isLast {
		block, err := meta.Parse(stream.r)
		if err != nil {
			return nil, err
		}
		stream.Blocks = append(stream.Blocks, block)
		isLast = block.IsLast
	}
	return stream, nil
}

// Open creates a new Stream for accessing the audio samples of path, skipping
// all metadata blocks but StreamInfo. It is the caller's responsibility to
// call Stream.Close.
func Open(path string, opts ...Option) (stream *Stream, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if stream, err = New(f, opts...); err != nil {
		f.Close()
		return nil, err
	}
	stream.c = f
	return stream, nil
}

// ParseFile creates a new Stream for accessing the metadata blocks and audio
// samples of path, parsing all metadata blocks. It is the caller's
// responsibility to call Stream.Close.
func ParseFile(path string, opts ...Option) (stream *Stream, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if stream, err = Parse(f, opts...); err != nil {
		f.Close()
		return nil, err
	}
	stream.c = f
	return stream, nil
}

// Close closes the underlying io.Closer of the stream, if any.
func (stream *Stream) Close() error {
	if stream.c == nil {
		return nil
	}
	return stream.c.Close()
}

// parseStreamInfo reads the FLAC signature and the mandatory StreamInfo
// metadata block of the stream, reporting whether it is the last metadata
// block. An ID3v2 tag prefixing the signature is skipped.
func (stream *Stream) parseStreamInfo() (isLast bool, err error) {
	if err := stream.skipID3v2(); err != nil {
		return false, err
	}
	var signature [4]byte
	if _, err := io.ReadFull(stream.r, signature[:]); err != nil {
		return false, err
	}
	if !bytes.Equal(signature[:], flacSignature) {
		return false, fmt.Errorf("flac.parseStreamInfo: signature mismatch; expected %q, got %q: %w", flacSignature, signature, ErrInvalidSignature)
	}
	block, err := meta.New(stream.r)
	if err != nil {
		return false, err
	}
	if block.Type != meta.TypeStreamInfo {
		return false, fmt.Errorf("flac.parseStreamInfo: first block is %v: %w", block.Type, ErrMissingStreamInfo)
	}
	if err := block.Parse(); err != nil {
		return false, err
	}
	stream.Info = block.Body.(*meta.StreamInfo)
	return block.IsLast, nil
}

// skipID3v2 skips an ID3v2 tag prefixing the stream, if present.
func (stream *Stream) skipID3v2() error {
	buf, err := stream.r.Peek(3)
	if err != nil {
		// Leave short streams to the signature check.
		if err == io.EOF {
			return nil
		}
		return err
	}
	if !bytes.Equal(buf, id3Signature) {
		return nil
	}

	// An ID3v2 tag starts with a 10 byte header; its size field is a 28-bit
	// "synchsafe" integer, 4 bytes of 7 bits each, and excludes the header
	// itself.
	header, err := stream.r.Peek(10)
	if err != nil {
		return unexpected(err)
	}
	size := 0
	for _, b := range header[6:10] {
		if b&0x80 != 0 {
			return fmt.Errorf("flac.skipID3v2: invalid ID3v2 synchsafe size byte (0x%02X)", b)
		}
		size = size<<7 | int(b&0x7F)
	}
	if _, err := stream.r.Discard(size + 10); err != nil {
		return unexpected(err)
	}
	return nil
}

// ParseNext reads and parses the next audio frame, including the audio samples
// of its subframes. The returned frame reuses the sample buffer of its
// predecessor; its samples remain valid until the next call.
//
// ParseNext returns io.EOF when the stream is exhausted at a frame boundary.
func (stream *Stream) ParseNext() (f *frame.Frame, err error) {
	if stream.width == width16 && stream.Info.BitsPerSample > 16 {
		return nil, fmt.Errorf("flac.Stream.ParseNext: stream declares %d bits-per-sample: %w", stream.Info.BitsPerSample, ErrSampleWidth)
	}
	f, err = frame.New(stream.r)
	if err != nil {
		// io.EOF at a frame boundary is the clean end of stream.
		return nil, err
	}
	if err := stream.verifyHeader(&f.Header); err != nil {
		return nil, err
	}
	// Frame headers may defer the sample size and sample rate to StreamInfo.
	if f.BitsPerSample == 0 {
		f.BitsPerSample = stream.Info.BitsPerSample
	}
	if f.SampleRate == 0 {
		f.SampleRate = stream.Info.SampleRate
	}
	stream.buf, err = f.ParseBuffer(stream.buf)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// verifyHeader checks a parsed frame header for consistency against the
// StreamInfo properties of the stream.
func (stream *Stream) verifyHeader(hdr *frame.Header) error {
	if hdr.BitsPerSample != 0 && hdr.BitsPerSample != stream.Info.BitsPerSample {
		return fmt.Errorf("flac.Stream.ParseNext: frame sample size (%d bits) differs from StreamInfo (%d bits)", hdr.BitsPerSample, stream.Info.BitsPerSample)
	}
	if n := hdr.Channels.Count(); n != int(stream.Info.NChannels) {
		return fmt.Errorf("flac.Stream.ParseNext: frame channel count (%d) differs from StreamInfo (%d)", n, stream.Info.NChannels)
	}
	if stream.Info.BlockSizeMax != 0 && hdr.BlockSize > stream.Info.BlockSizeMax {
		return fmt.Errorf("flac.Stream.ParseNext: frame block size (%d) exceeds StreamInfo maximum (%d)", hdr.BlockSize, stream.Info.BlockSizeMax)
	}
	return nil
}

// Resync discards stream data up to the next plausible frame sync sequence.
// It may be used to skip past corruption after ParseNext fails, at the cost of
// losing the unreadable frames; the next ParseNext resumes at the recovered
// position.
func (stream *Stream) Resync() error {
	for {
		buf, err := stream.r.Peek(2)
		if err != nil {
			return err
		}
		// 14-bit sync code (11111111111110) followed by a zero reserved bit
		// and the blocking strategy bit.
		if buf[0] == 0xFF && buf[1]&0xFC == 0xF8 {
			return nil
		}
		if _, err := stream.r.Discard(1); err != nil {
			return err
		}
	}
}

// unexpected returns io.ErrUnexpectedEOF if err is io.EOF, and err otherwise.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
