// The flac2wav tool converts FLAC files to WAV files.
//
// Usage:
//
//	flac2wav [-f] FILE.flac...
package main

import (
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/mewpkg/flac"
	"github.com/pkg/errors"
)

var cli struct {
	// Overwrite WAV files that already exist.
	Force bool `help:"Force overwrite of existing WAV files." short:"f"`
	// FLAC files to convert.
	Paths []string `arg:"" name:"FILE" help:"FLAC files to convert." type:"existingfile"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("flac2wav"),
		kong.Description("Convert FLAC files to WAV files."),
		kong.UsageOnError(),
	)
	for _, path := range cli.Paths {
		if err := flac2wav(path, cli.Force); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

// flac2wav converts the provided FLAC file to a WAV file.
func flac2wav(path string, force bool) error {
	stream, err := flac.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer stream.Close()

	wavPath := pathutil.TrimExt(path) + ".wav"
	if !force {
		if osutil.Exists(wavPath) {
			return errors.Errorf("WAV file %q already exists (use -f to overwrite)", wavPath)
		}
	}
	out, err := os.Create(wavPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer out.Close()

	enc := wav.NewEncoder(out, int(stream.Info.SampleRate), int(stream.Info.BitsPerSample), int(stream.Info.NChannels), 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: int(stream.Info.NChannels),
			SampleRate:  int(stream.Info.SampleRate),
		},
		SourceBitDepth: int(stream.Info.BitsPerSample),
	}
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				break
			}
			return errors.WithStack(err)
		}
		n := int(frame.BlockSize) * len(frame.Subframes)
		if cap(buf.Data) < n {
			buf.Data = make([]int, n)
		}
		buf.Data = buf.Data[:n]
		for i := 0; i < int(frame.BlockSize); i++ {
			for ch, subframe := range frame.Subframes {
				buf.Data[i*len(frame.Subframes)+ch] = int(subframe.Samples[i])
			}
		}
		if err := enc.Write(buf); err != nil {
			return errors.WithStack(err)
		}
	}
	// Close writes the WAV headers; an error here means a truncated file.
	if err := enc.Close(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
