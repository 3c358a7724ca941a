package meta

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// CueSheet describes how tracks and index points are laid out within the
// stream. It can be used to store the table of contents of a compact disc.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_cuesheet
type CueSheet struct {
	// Media catalog number.
	MCN string
	// Number of lead-in samples. This field only has meaning for compact disc
	// cue sheets.
	NLeadInSamples uint64
	// Specifies if the cue sheet corresponds to a compact disc.
	IsCompactDisc bool
	// One or more tracks. The last track of a cue sheet is always the lead-out
	// track.
	Tracks []CueSheetTrack
}

// CueSheetTrack contains the start offset of a track and other track specific
// metadata.
type CueSheetTrack struct {
	// Track offset in samples, relative to the beginning of the FLAC audio
	// stream.
	Offset uint64
	// Track number; never 0. For compact discs the track number of the
	// lead-out track is 170, and for other media it is 255.
	Num uint8
	// International Standard Recording Code; empty if not present.
	//
	// ref: https://isrc.ifpi.org/
	ISRC string
	// Specifies if the track contains audio or data.
	IsAudio bool
	// Specifies if the track has been recorded with pre-emphasis.
	HasPreEmphasis bool
	// One or more track index points, except for the lead-out track which has
	// zero.
	Indicies []CueSheetTrackIndex
}

// A CueSheetTrackIndex specifies a position within a track.
type CueSheetTrackIndex struct {
	// Index point offset in samples, relative to the track offset.
	Offset uint64
	// Index point number; subsequent index points within a track have
	// monotonically increasing numbers.
	Num uint8
}

// parseCueSheet reads and parses the body of a CueSheet metadata block.
//
// Cue sheet block body format (pseudo code):
//
//	type METADATA_BLOCK_CUESHEET struct {
//	   mcn               [128]byte
//	   nlead_in_samples  uint64
//	   is_compact_disc   bool
//	   _                 uint7
//	   _                 [258]byte
//	   ntracks           uint8
//	   tracks            [ntracks]CueSheetTrack
//	}
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_cuesheet
func (block *Block) parseCueSheet() error {
	cs := new(CueSheet)
	block.Body = cs

	// 128 bytes: MCN, a printable ASCII string padded with NUL bytes.
	var mcn [128]byte
	if _, err := io.ReadFull(block.lr, mcn[:]); err != nil {
		return unexpected(err)
	}
	cs.MCN = strings.TrimRight(string(mcn[:]), "\x00")

	// 64 bits: NLeadInSamples.
	if err := binary.Read(block.lr, binary.BigEndian, &cs.NLeadInSamples); err != nil {
		return unexpected(err)
	}

	// 1 bit: IsCompactDisc.
	// 7 bits: reserved.
	var flags uint8
	if err := binary.Read(block.lr, binary.BigEndian, &flags); err != nil {
		return unexpected(err)
	}
	cs.IsCompactDisc = flags&0x80 != 0

	// 258 bytes: reserved.
	if _, err := io.CopyN(io.Discard, block.lr, 258); err != nil {
		return unexpected(err)
	}

	// 8 bits: number of tracks; at least 1 (the lead-out track).
	var ntracks uint8
	if err := binary.Read(block.lr, binary.BigEndian, &ntracks); err != nil {
		return unexpected(err)
	}
	if ntracks < 1 {
		return fmt.Errorf("meta.Block.parseCueSheet: at least one track (the lead-out track) is required")
	}

	cs.Tracks = make([]CueSheetTrack, ntracks)
	for i := range cs.Tracks {
		if err := cs.Tracks[i].parse(block.lr); err != nil {
			return err
		}
	}
	return nil
}

// parse reads and parses a cue sheet track.
//
// Cue sheet track format (pseudo code):
//
//	type CueSheetTrack struct {
//	   offset           uint64
//	   num              uint8
//	   isrc             [12]byte
//	   is_data          bool
//	   has_pre_emphasis bool
//	   _                uint6
//	   _                [13]byte
//	   nindicies        uint8
//	   indicies         [nindicies]CueSheetTrackIndex
//	}
//
//	type CueSheetTrackIndex struct {
//	   offset uint64
//	   num    uint8
//	   _      [3]byte
//	}
func (track *CueSheetTrack) parse(r io.Reader) error {
	// 64 bits: Offset.
	if err := binary.Read(r, binary.BigEndian, &track.Offset); err != nil {
		return unexpected(err)
	}

	// 8 bits: Num.
	if err := binary.Read(r, binary.BigEndian, &track.Num); err != nil {
		return unexpected(err)
	}
	if track.Num == 0 {
		return fmt.Errorf("meta.CueSheetTrack.parse: invalid track number (0)")
	}

	// 12 bytes: ISRC, padded with NUL bytes if not present.
	var isrc [12]byte
	if _, err := io.ReadFull(r, isrc[:]); err != nil {
		return unexpected(err)
	}
	track.ISRC = strings.TrimRight(string(isrc[:]), "\x00")

	// 1 bit: IsAudio, stored inverted as is_data.
	// 1 bit: HasPreEmphasis.
	// 6 bits: reserved.
	var flags uint8
	if err := binary.Read(r, binary.BigEndian, &flags); err != nil {
		return unexpected(err)
	}
	track.IsAudio = flags&0x80 == 0
	track.HasPreEmphasis = flags&0x40 != 0

	// 13 bytes: reserved.
	if _, err := io.CopyN(io.Discard, r, 13); err != nil {
		return unexpected(err)
	}

	// 8 bits: number of track index points; zero for the lead-out track only.
	var nindicies uint8
	if err := binary.Read(r, binary.BigEndian, &nindicies); err != nil {
		return unexpected(err)
	}
	if nindicies == 0 {
		return nil
	}
	track.Indicies = make([]CueSheetTrackIndex, nindicies)
	for i := range track.Indicies {
		index := &track.Indicies[i]
		// 64 bits: Offset.
		if err := binary.Read(r, binary.BigEndian, &index.Offset); err != nil {
			return unexpected(err)
		}
		// 8 bits: Num.
		if err := binary.Read(r, binary.BigEndian, &index.Num); err != nil {
			return unexpected(err)
		}
		// 3 bytes: reserved.
		if _, err := io.CopyN(io.Discard, r, 3); err != nil {
			return unexpected(err)
		}
	}
	return nil
}
