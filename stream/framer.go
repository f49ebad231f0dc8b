// Package stream publishes rendered audio to network listeners.
package stream

import (
	"sync/atomic"
	"time"

	"github.com/gordonklaus/ambient/audio"
)

const (
	Channels      = 2
	FrameDuration = 20 * time.Millisecond
)

// Framer cuts rendered blocks into interleaved 16-bit frames of
// FrameDuration.  Write never blocks: when the consumer falls behind, whole
// frames are dropped and counted.
type Framer struct {
	frameSize int // samples per frame, both channels
	pcm       []int16
	cur       []int16
	frames    chan []int16
	dropped   atomic.Uint64
}

// NewFramer returns a framer for audio at sampleRate that buffers up to depth
// frames.
func NewFramer(sampleRate float64, depth int) *Framer {
	n := int(sampleRate*FrameDuration.Seconds()) * Channels
	return &Framer{frameSize: n, cur: make([]int16, 0, n), frames: make(chan []int16, depth)}
}

// Write appends a stereo block.  It is safe to call from the render path.
func (f *Framer) Write(left, right audio.Audio) {
	f.pcm = audio.Interleave(f.pcm, left, right)
	for pcm := f.pcm; len(pcm) > 0; {
		n := copy(f.cur[len(f.cur):f.frameSize], pcm)
		f.cur = f.cur[:len(f.cur)+n]
		pcm = pcm[n:]
		if len(f.cur) == f.frameSize {
			select {
			case f.frames <- f.cur:
			default:
				f.dropped.Add(1)
			}
			f.cur = make([]int16, 0, f.frameSize)
		}
	}
}

// Frames returns the channel of complete frames.
func (f *Framer) Frames() <-chan []int16 { return f.frames }

// FrameSize returns the number of interleaved samples in each frame.
func (f *Framer) FrameSize() int { return f.frameSize }

// Dropped returns the number of frames discarded because nobody was reading.
func (f *Framer) Dropped() uint64 { return f.dropped.Load() }
