package meta

import (
	"encoding/binary"
	"io"
)

// Application contains third party application specific data.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_application
type Application struct {
	// Registered application ID.
	//
	// ref: https://www.xiph.org/flac/id.html
	ID uint32
	// Application specific data.
	Data []byte
}

// parseApplication reads and parses the body of an Application metadata
// block.
func (block *Block) parseApplication() error {
	app := new(Application)
	block.Body = app

	// 32 bits: ID.
	if err := binary.Read(block.lr, binary.BigEndian, &app.ID); err != nil {
		return unexpected(err)
	}

	// The remainder of the block body is application specific data.
	var err error
	if app.Data, err = io.ReadAll(block.lr); err != nil {
		return unexpected(err)
	}
	return nil
}
