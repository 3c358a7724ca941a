package meta

import (
	"encoding/binary"
	"fmt"
)

// SeekTable contains one or more pre-calculated audio frame seek points.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_seektable
type SeekTable struct {
	// One or more seek points.
	Points []SeekPoint
}

// A SeekPoint specifies the byte offset and initial sample number of a given
// target frame.
//
// ref: https://www.xiph.org/flac/format.html#seekpoint
type SeekPoint struct {
	// Sample number of the first sample in the target frame, or
	// 0xFFFFFFFFFFFFFFFF for a placeholder point.
	SampleNum uint64
	// Offset in bytes from the first byte of the first frame header to the
	// first byte of the target frame's header.
	Offset uint64
	// Number of samples in the target frame.
	NSamples uint16
}

// PlaceholderPoint is the sample number used to indicate placeholder seek
// points, which take up space in the table so that seek points may be added
// later without rewriting the entire file.
const PlaceholderPoint = 0xFFFFFFFFFFFFFFFF

// parseSeekTable reads and parses the body of a SeekTable metadata block.
//
// Seek table block body format (pseudo code):
//
//	type METADATA_BLOCK_SEEKTABLE struct {
//	   // One or more seek points.
//	   points []SeekPoint
//	}
//
//	type SeekPoint struct {
//	   sample_num uint64
//	   offset     uint64
//	   nsamples   uint16
//	}
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_seektable
func (block *Block) parseSeekTable() error {
	// Each seek point takes up 18 bytes.
	if block.Length%18 != 0 {
		return fmt.Errorf("meta.Block.parseSeekTable: invalid block length (%d); must be divisible by 18", block.Length)
	}
	n := block.Length / 18
	if n < 1 {
		return fmt.Errorf("meta.Block.parseSeekTable: at least one seek point is required")
	}

	table := &SeekTable{Points: make([]SeekPoint, n)}
	block.Body = table
	for i := range table.Points {
		if err := binary.Read(block.lr, binary.BigEndian, &table.Points[i]); err != nil {
			return unexpected(err)
		}
	}
	return nil
}
