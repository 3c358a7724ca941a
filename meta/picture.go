package meta

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Picture contains the image data of an embedded picture.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_picture
type Picture struct {
	// Picture type, in accordance with the ID3v2 APIC frame:
	//
	//	 0: Other.
	//	 1: 32x32 pixels PNG file icon.
	//	 2: Other file icon.
	//	 3: Cover (front).
	//	 4: Cover (back).
	//	 5: Leaflet page.
	//	 6: Media (e.g. label side of CD).
	//	 7: Lead artist, lead performer or soloist.
	//	 8: Artist or performer.
	//	 9: Conductor.
	//	10: Band or orchestra.
	//	11: Composer.
	//	12: Lyricist or text writer.
	//	13: Recording location.
	//	14: During recording.
	//	15: During performance.
	//	16: Movie or video screen capture.
	//	17: A bright colored fish.
	//	18: Illustration.
	//	19: Band or artist logotype.
	//	20: Publisher or studio logotype.
	Type uint32
	// MIME type string. The "-->" MIME type is used to signify that Data
	// contains an URL of the picture rather than its contents.
	MIME string
	// Description of the picture.
	Desc string
	// Image dimensions.
	Width, Height uint32
	// Color depth in bits-per-pixel.
	Depth uint32
	// Number of colors in palette; 0 for non-indexed pictures.
	NPalColors uint32
	// Image data.
	Data []byte
}

// parsePicture reads and parses the body of a Picture metadata block.
//
// Picture block body format (pseudo code):
//
//	type METADATA_BLOCK_PICTURE struct {
//	   type        uint32
//	   mime_len    uint32
//	   mime        [mime_len]byte
//	   desc_len    uint32
//	   desc        [desc_len]byte
//	   width       uint32
//	   height      uint32
//	   depth       uint32
//	   npal_colors uint32
//	   data_len    uint32
//	   data        [data_len]byte
//	}
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_picture
func (block *Block) parsePicture() error {
	pic := new(Picture)
	block.Body = pic

	// 32 bits: Type.
	if err := binary.Read(block.lr, binary.BigEndian, &pic.Type); err != nil {
		return unexpected(err)
	}
	if pic.Type > 20 {
		return fmt.Errorf("meta.Block.parsePicture: reserved picture type (%d)", pic.Type)
	}

	// 32 bits: MIME type length, followed by that many bytes of MIME type
	// string.
	var mimeLen uint32
	if err := binary.Read(block.lr, binary.BigEndian, &mimeLen); err != nil {
		return unexpected(err)
	}
	buf := make([]byte, mimeLen)
	if _, err := io.ReadFull(block.lr, buf); err != nil {
		return unexpected(err)
	}
	pic.MIME = string(buf)

	// 32 bits: description length, followed by that many bytes of
	// description.
	var descLen uint32
	if err := binary.Read(block.lr, binary.BigEndian, &descLen); err != nil {
		return unexpected(err)
	}
	buf = make([]byte, descLen)
	if _, err := io.ReadFull(block.lr, buf); err != nil {
		return unexpected(err)
	}
	pic.Desc = string(buf)

	// 32 bits: Width.
	// 32 bits: Height.
	// 32 bits: Depth.
	// 32 bits: NPalColors.
	fields := []*uint32{&pic.Width, &pic.Height, &pic.Depth, &pic.NPalColors}
	for _, field := range fields {
		if err := binary.Read(block.lr, binary.BigEndian, field); err != nil {
			return unexpected(err)
		}
	}

	// 32 bits: image data length, followed by that many bytes of image data.
	var dataLen uint32
	if err := binary.Read(block.lr, binary.BigEndian, &dataLen); err != nil {
		return unexpected(err)
	}
	pic.Data = make([]byte, dataLen)
	if _, err := io.ReadFull(block.lr, pic.Data); err != nil {
		return unexpected(err)
	}
	return nil
}
