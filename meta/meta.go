// Package meta implements access to FLAC metadata blocks.
//
// A FLAC metadata stream starts with a StreamInfo block, which is followed by
// zero or more other metadata blocks. Each block starts with a header which
// describes its type and length, making it possible to skip the body of
// uninteresting blocks.
//
// ref: https://www.xiph.org/flac/format.html#format_overview
package meta

import (
	"errors"
	"fmt"
	"io"

	"github.com/eaburns/bit"
)

// A Block contains the header and body of a metadata block.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block
type Block struct {
	// Metadata block header.
	Header
	// Metadata block body of type *StreamInfo, *Application, ... etc. Body is
	// initially nil, and gets populated by a call to Block.Parse.
	Body interface{}
	// Underlying reader of the metadata block body, limited to the block
	// length declared by the header.
	lr io.Reader
}

// New creates a new Block for accessing the metadata of r. It reads and parses
// a metadata block header.
//
// Call Block.Parse to parse the metadata block body, and call Block.Skip to
// ignore it.
func New(r io.Reader) (block *Block, err error) {
	block = new(Block)
	if err = block.parseHeader(r); err != nil {
		return block, err
	}
	block.lr = io.LimitReader(r, block.Length)
	return block, nil
}

// Parse reads and parses the header and body of a metadata block.
func Parse(r io.Reader) (block *Block, err error) {
	if block, err = New(r); err != nil {
		return block, err
	}
	if err = block.Parse(); err != nil {
		return block, err
	}
	return block, nil
}

// Parse reads and parses the metadata block body.
func (block *Block) Parse() error {
	switch block.Type {
	case TypeStreamInfo:
		return block.parseStreamInfo()
	case TypePadding:
		return block.verifyPadding()
	case TypeApplication:
		return block.parseApplication()
	case TypeSeekTable:
		return block.parseSeekTable()
	case TypeVorbisComment:
		return block.parseVorbisComment()
	case TypeCueSheet:
		return block.parseCueSheet()
	case TypePicture:
		return block.parsePicture()
	}
	return fmt.Errorf("meta.Block.Parse: support for block type %v not yet implemented", block.Type)
}

// Skip ignores the contents of the metadata block body.
func (block *Block) Skip() error {
	if _, err := io.Copy(io.Discard, block.lr); err != nil {
		return unexpected(err)
	}
	return nil
}

// A Header contains the type and length of a metadata block.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_header
type Header struct {
	// IsLast specifies if the block is the last metadata block.
	IsLast bool
	// Block types.
	Type Type
	// Length of body data in bytes.
	Length int64
}

// parseHeader reads and parses the header of a metadata block.
//
// Metadata block header format (pseudo code):
//
//	type METADATA_BLOCK_HEADER struct {
//	   is_last bool
//	   type    uint7
//	   length  uint24
//	}
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_header
func (block *Block) parseHeader(r io.Reader) error {
	br := bit.NewReader(r)
	// 1 bit: IsLast.
	// 7 bits: Type.
	// 24 bits: Length.
	fields, err := br.ReadFields(1, 7, 24)
	if err != nil {
		return unexpected(err)
	}
	block.IsLast = fields[0] != 0
	block.Type = Type(fields[1])
	block.Length = int64(fields[2])
	if block.Type == typeInvalid {
		return errors.New("meta.Block.parseHeader: invalid block type (127)")
	}
	if block.Type > TypePicture {
		return fmt.Errorf("meta.Block.parseHeader: reserved block type (%d)", block.Type)
	}
	return nil
}

// Type represents the type of a metadata block.
type Type uint8

// Metadata block types.
const (
	TypeStreamInfo Type = iota
	TypePadding
	TypeApplication
	TypeSeekTable
	TypeVorbisComment
	TypeCueSheet
	TypePicture
	// Types 7 through 126 are reserved for future use.
	typeInvalid Type = 127
)

func (t Type) String() string {
	switch t {
	case TypeStreamInfo:
		return "stream info"
	case TypePadding:
		return "padding"
	case TypeApplication:
		return "application"
	case TypeSeekTable:
		return "seek table"
	case TypeVorbisComment:
		return "vorbis comment"
	case TypeCueSheet:
		return "cue sheet"
	case TypePicture:
		return "picture"
	}
	return fmt.Sprintf("<unknown block type %d>", uint8(t))
}

// verifyPadding reads the body of a Padding block, verifying that it consists
// of zero bytes only.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_padding
func (block *Block) verifyPadding() error {
	buf := make([]byte, 4096)
	for {
		n, err := block.lr.Read(buf)
		for _, b := range buf[:n] {
			if b != 0 {
				return fmt.Errorf("meta.Block.verifyPadding: non-zero padding byte (0x%02X)", b)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
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
