package meta

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// VorbisComment contains a list of name-value pairs of human-readable
// metadata, such as the song title and the name of the artist.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_vorbis_comment
type VorbisComment struct {
	// Vendor name of the encoder.
	Vendor string
	// A list of tags, each represented by a name-value pair.
	Tags [][2]string
}

// parseVorbisComment reads and parses the body of a VorbisComment metadata
// block. In contrast to the rest of the FLAC format, the field lengths of
// Vorbis comments are stored in little-endian byte order.
//
// Vorbis comment block body format (pseudo code):
//
//	type METADATA_BLOCK_VORBIS_COMMENT struct {
//	   vendor_len uint32
//	   vendor     [vendor_len]byte
//	   ntags      uint32
//	   tags       [ntags]struct {
//	      len uint32
//	      // tag is on the format "NAME=VALUE".
//	      tag [len]byte
//	   }
//	}
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_vorbis_comment
func (block *Block) parseVorbisComment() error {
	comment := new(VorbisComment)
	block.Body = comment

	// 32 bits: vendor string length, followed by that many bytes of vendor
	// string.
	var vendorLen uint32
	if err := binary.Read(block.lr, binary.LittleEndian, &vendorLen); err != nil {
		return unexpected(err)
	}
	buf := make([]byte, vendorLen)
	if _, err := io.ReadFull(block.lr, buf); err != nil {
		return unexpected(err)
	}
	comment.Vendor = string(buf)

	// 32 bits: number of tags.
	var ntags uint32
	if err := binary.Read(block.lr, binary.LittleEndian, &ntags); err != nil {
		return unexpected(err)
	}
	if ntags == 0 {
		return nil
	}
	comment.Tags = make([][2]string, ntags)
	for i := range comment.Tags {
		// 32 bits: tag length, followed by that many bytes of tag on the
		// format "NAME=VALUE".
		var tagLen uint32
		if err := binary.Read(block.lr, binary.LittleEndian, &tagLen); err != nil {
			return unexpected(err)
		}
		buf = make([]byte, tagLen)
		if _, err := io.ReadFull(block.lr, buf); err != nil {
			return unexpected(err)
		}
		tag := string(buf)
		pos := strings.IndexByte(tag, '=')
		if pos == -1 {
			return fmt.Errorf("meta.Block.parseVorbisComment: malformed tag %q; missing '=' separator", tag)
		}
		comment.Tags[i][0] = tag[:pos]
		comment.Tags[i][1] = tag[pos+1:]
	}
	return nil
}
