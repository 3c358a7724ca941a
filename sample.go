package flac

// NextSample returns the next audio sample of the stream, interleaved by
// channel; for stereo the order is left, right, left, right. It parses frames
// on demand through ParseNext, and returns io.EOF once the stream is
// exhausted at a frame boundary.
//
// A decode error poisons the iterator and is returned by every subsequent
// call; Resync does not revive it.
func (stream *Stream) NextSample() (int32, error) {
	if stream.iterErr != nil {
		return 0, stream.iterErr
	}
	if stream.cur == nil || stream.sampleIdx >= int(stream.cur.BlockSize) {
		if err := stream.nextBlock(); err != nil {
			stream.iterErr = err
			return 0, err
		}
	}

	var sample int32
	if stream.width == width16 {
		sample = int32(stream.pcm16[stream.sampleIdx*len(stream.cur.Subframes)+stream.channelIdx])
	} else {
		sample = stream.cur.Subframes[stream.channelIdx].Samples[stream.sampleIdx]
	}
	stream.channelIdx++
	if stream.channelIdx >= len(stream.cur.Subframes) {
		stream.channelIdx = 0
		stream.sampleIdx++
	}
	return sample, nil
}

// nextBlock parses the next frame and resets the iterator cursor to its first
// inter-channel sample. For 16-bit sessions the decoded samples are
// interleaved into a reused narrow buffer.
func (stream *Stream) nextBlock() error {
	f, err := stream.ParseNext()
	if err != nil {
		return err
	}
	stream.cur = f
	stream.sampleIdx = 0
	stream.channelIdx = 0

	if stream.width == width16 {
		n := int(f.BlockSize) * len(f.Subframes)
		if cap(stream.pcm16) < n {
			stream.pcm16 = make([]int16, n)
		}
		stream.pcm16 = stream.pcm16[:n]
		for i := 0; i < int(f.BlockSize); i++ {
			for ch, subframe := range f.Subframes {
				stream.pcm16[i*len(f.Subframes)+ch] = int16(subframe.Samples[i])
			}
		}
	}
	return nil
}
