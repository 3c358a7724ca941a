// The metaflac tool lists the metadata blocks of FLAC files.
//
// Usage:
//
//	metaflac [-block-number NUMS] FILE.flac...
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/mewpkg/flac"
	"github.com/mewpkg/flac/meta"
	"github.com/pkg/errors"
)

var (
	// blockNums lists the metadata blocks to display, comma separated. All
	// blocks are displayed if left empty.
	blockNums = flag.String("block-number", "", "an optional comma-separated list of block numbers to display")
)

func usage() {
	fmt.Println("Usage: metaflac [OPTION]... FILE.flac...")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	var nums map[int]bool
	if *blockNums != "" {
		nums = make(map[int]bool)
		for _, s := range strings.Split(*blockNums, ",") {
			num, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				log.Fatalf("%+v", errors.WithStack(err))
			}
			nums[num] = true
		}
	}
	for _, path := range flag.Args() {
		if err := list(path, nums); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

// list prints the metadata blocks of the provided FLAC file, restricted to the
// given block numbers if nums is non-nil.
func list(path string, nums map[int]bool) error {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer stream.Close()

	// The StreamInfo block is not recorded in Blocks; print it as block 0 and
	// the recorded blocks after it.
	if nums == nil || nums[0] {
		fmt.Println("METADATA block #0")
		fmt.Printf("  type: %d (%v)\n", meta.TypeStreamInfo, meta.TypeStreamInfo)
		listStreamInfo(stream.Info)
	}
	for i, block := range stream.Blocks {
		num := i + 1
		if nums != nil && !nums[num] {
			continue
		}
		fmt.Printf("METADATA block #%d\n", num)
		fmt.Printf("  type: %d (%v)\n", block.Type, block.Type)
		fmt.Printf("  is last: %v\n", block.IsLast)
		fmt.Printf("  length: %d\n", block.Length)
		listBody(block)
	}
	return nil
}

func listStreamInfo(info *meta.StreamInfo) {
	fmt.Printf("  minimum blocksize: %d samples\n", info.BlockSizeMin)
	fmt.Printf("  maximum blocksize: %d samples\n", info.BlockSizeMax)
	fmt.Printf("  minimum framesize: %d bytes\n", info.FrameSizeMin)
	fmt.Printf("  maximum framesize: %d bytes\n", info.FrameSizeMax)
	fmt.Printf("  sample_rate: %d Hz\n", info.SampleRate)
	fmt.Printf("  channels: %d\n", info.NChannels)
	fmt.Printf("  bits-per-sample: %d\n", info.BitsPerSample)
	fmt.Printf("  total samples: %d\n", info.NSamples)
	fmt.Printf("  MD5 signature: %x\n", info.MD5sum)
}

func listBody(block *meta.Block) {
	switch body := block.Body.(type) {
	case *meta.Application:
		fmt.Printf("  application ID: %08X\n", body.ID)
		fmt.Printf("  data length: %d\n", len(body.Data))
	case *meta.SeekTable:
		fmt.Printf("  seek points: %d\n", len(body.Points))
		for i, point := range body.Points {
			if point.SampleNum == meta.PlaceholderPoint {
				fmt.Printf("    point %d: PLACEHOLDER\n", i)
				continue
			}
			fmt.Printf("    point %d: sample_number=%d, stream_offset=%d, frame_samples=%d\n", i, point.SampleNum, point.Offset, point.NSamples)
		}
	case *meta.VorbisComment:
		fmt.Printf("  vendor string: %s\n", body.Vendor)
		fmt.Printf("  comments: %d\n", len(body.Tags))
		for i, tag := range body.Tags {
			fmt.Printf("    comment[%d]: %s=%s\n", i, tag[0], tag[1])
		}
	case *meta.CueSheet:
		fmt.Printf("  media catalog number: %s\n", body.MCN)
		fmt.Printf("  lead-in: %d\n", body.NLeadInSamples)
		fmt.Printf("  is CD: %v\n", body.IsCompactDisc)
		fmt.Printf("  number of tracks: %d\n", len(body.Tracks))
	case *meta.Picture:
		fmt.Printf("  type: %d\n", body.Type)
		fmt.Printf("  MIME type: %s\n", body.MIME)
		fmt.Printf("  description: %s\n", body.Desc)
		fmt.Printf("  width: %d\n", body.Width)
		fmt.Printf("  height: %d\n", body.Height)
		fmt.Printf("  depth: %d\n", body.Depth)
		fmt.Printf("  colors: %d\n", body.NPalColors)
		fmt.Printf("  data length: %d\n", len(body.Data))
	}
}
