package meta_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/icza/bitio"
	"github.com/icza/mighty"
	"github.com/mewpkg/flac/meta"
)

// encodeStreamInfoBlock returns the raw bytes of a StreamInfo metadata block,
// marked as the last metadata block of the stream.
func encodeStreamInfoBlock(t *testing.T) []byte {
	eq := mighty.Eq(t)
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	// Block header: is_last, type StreamInfo, length 34.
	eq(nil, bw.WriteBits(0x1, 1))
	eq(nil, bw.WriteBits(0x00, 7))
	eq(nil, bw.WriteBits(34, 24))
	// Block body.
	eq(nil, bw.WriteBits(4096, 16))  // BlockSizeMin.
	eq(nil, bw.WriteBits(4096, 16))  // BlockSizeMax.
	eq(nil, bw.WriteBits(0, 24))     // FrameSizeMin.
	eq(nil, bw.WriteBits(0, 24))     // FrameSizeMax.
	eq(nil, bw.WriteBits(44100, 20)) // SampleRate.
	eq(nil, bw.WriteBits(1, 3))      // NChannels - 1.
	eq(nil, bw.WriteBits(15, 5))     // BitsPerSample - 1.
	eq(nil, bw.WriteBits(4096, 36))  // NSamples.
	eq(nil, bw.Close())
	// 16 bytes: MD5sum.
	var md5sum [16]byte
	for i := range md5sum {
		md5sum[i] = byte(i)
	}
	return append(buf.Bytes(), md5sum[:]...)
}

func TestParseStreamInfo(t *testing.T) {
	eq := mighty.Eq(t)
	block, err := meta.Parse(bytes.NewReader(encodeStreamInfoBlock(t)))
	eq(nil, err)
	eq(true, block.IsLast)
	eq(meta.TypeStreamInfo, block.Type)
	eq(int64(34), block.Length)
	si, ok := block.Body.(*meta.StreamInfo)
	eq(true, ok)
	eq(uint16(4096), si.BlockSizeMin)
	eq(uint16(4096), si.BlockSizeMax)
	eq(uint32(0), si.FrameSizeMin)
	eq(uint32(0), si.FrameSizeMax)
	eq(uint32(44100), si.SampleRate)
	eq(uint8(2), si.NChannels)
	eq(uint8(16), si.BitsPerSample)
	eq(uint64(4096), si.NSamples)
	eq(byte(0), si.MD5sum[0])
	eq(byte(15), si.MD5sum[15])
}

func TestParseInvalidBlockType(t *testing.T) {
	eq := mighty.Eq(t)
	// Block type 127 is invalid.
	data := []byte{0xFF, 0x00, 0x00, 0x00}
	_, err := meta.New(bytes.NewReader(data))
	eq(true, err != nil)
	// Block types 7 through 126 are reserved.
	data = []byte{0x07, 0x00, 0x00, 0x00}
	_, err = meta.New(bytes.NewReader(data))
	eq(true, err != nil)
}

func TestParsePadding(t *testing.T) {
	eq := mighty.Eq(t)
	// Padding block of 4 zero bytes.
	data := []byte{0x81, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00}
	block, err := meta.Parse(bytes.NewReader(data))
	eq(nil, err)
	eq(meta.TypePadding, block.Type)

	// Non-zero padding bytes are rejected.
	data = []byte{0x81, 0x00, 0x00, 0x04, 0x00, 0x42, 0x00, 0x00}
	_, err = meta.Parse(bytes.NewReader(data))
	eq(true, err != nil)
}

func TestParseVorbisComment(t *testing.T) {
	eq := mighty.Eq(t)
	body := new(bytes.Buffer)
	// In contrast to the rest of the FLAC format, Vorbis comment lengths are
	// stored in little-endian byte order.
	vendor := "reference libFLAC 1.3.2 20170101"
	eq(nil, binary.Write(body, binary.LittleEndian, uint32(len(vendor))))
	body.WriteString(vendor)
	tags := []string{"TITLE=test tone", "ARTIST=anon"}
	eq(nil, binary.Write(body, binary.LittleEndian, uint32(len(tags))))
	for _, tag := range tags {
		eq(nil, binary.Write(body, binary.LittleEndian, uint32(len(tag))))
		body.WriteString(tag)
	}

	data := []byte{0x84, 0x00, 0x00, byte(body.Len())}
	data = append(data, body.Bytes()...)
	block, err := meta.Parse(bytes.NewReader(data))
	eq(nil, err)
	eq(meta.TypeVorbisComment, block.Type)
	comment, ok := block.Body.(*meta.VorbisComment)
	eq(true, ok)
	eq(vendor, comment.Vendor)
	eq(2, len(comment.Tags))
	eq("TITLE", comment.Tags[0][0])
	eq("test tone", comment.Tags[0][1])
	eq("ARTIST", comment.Tags[1][0])
	eq("anon", comment.Tags[1][1])
}

func TestParseSeekTable(t *testing.T) {
	eq := mighty.Eq(t)
	body := new(bytes.Buffer)
	points := []meta.SeekPoint{
		{SampleNum: 0, Offset: 0, NSamples: 4096},
		{SampleNum: 4096, Offset: 8130, NSamples: 4096},
		{SampleNum: meta.PlaceholderPoint, Offset: 0, NSamples: 0},
	}
	for _, point := range points {
		eq(nil, binary.Write(body, binary.BigEndian, point))
	}

	data := []byte{0x83, 0x00, 0x00, byte(body.Len())}
	data = append(data, body.Bytes()...)
	block, err := meta.Parse(bytes.NewReader(data))
	eq(nil, err)
	eq(meta.TypeSeekTable, block.Type)
	table, ok := block.Body.(*meta.SeekTable)
	eq(true, ok)
	eq(len(points), len(table.Points))
	for i, want := range points {
		eq(want, table.Points[i])
	}
}

func TestParseApplication(t *testing.T) {
	eq := mighty.Eq(t)
	// Application block with ID "ref " and 2 bytes of data.
	data := []byte{0x82, 0x00, 0x00, 0x06, 'r', 'e', 'f', ' ', 0x12, 0x34}
	block, err := meta.Parse(bytes.NewReader(data))
	eq(nil, err)
	app, ok := block.Body.(*meta.Application)
	eq(true, ok)
	eq(uint32(0x72656620), app.ID)
	eq(2, len(app.Data))
}

func TestSkip(t *testing.T) {
	eq := mighty.Eq(t)
	// Two consecutive blocks; skipping the body of the first must leave the
	// reader at the header of the second.
	data := []byte{0x02, 0x00, 0x00, 0x06, 'r', 'e', 'f', ' ', 0x12, 0x34}
	data = append(data, 0x81, 0x00, 0x00, 0x02, 0x00, 0x00)
	r := bytes.NewReader(data)
	block, err := meta.New(r)
	eq(nil, err)
	eq(false, block.IsLast)
	eq(nil, block.Skip())
	block, err = meta.Parse(r)
	eq(nil, err)
	eq(true, block.IsLast)
	eq(meta.TypePadding, block.Type)
}
