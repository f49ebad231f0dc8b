package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Oto plays through oto.  oto allows one context per process, so it is
// created on first Open and kept for the life of the program.
type Oto struct {
	mu     sync.Mutex
	player *oto.Player
	src    *otoSource
}

var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func otoContext(p Params) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   int(p.SampleRate),
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   time.Duration(float64(p.BufferSize) / p.SampleRate * float64(time.Second)),
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

func (o *Oto) Open(p Params, render RenderFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player != nil {
		return nil
	}
	ctx, err := otoContext(p)
	if err != nil {
		return fmt.Errorf("oto: new context: %w", err)
	}
	o.src = &otoSource{render: render, left: make(Audio, p.BufferSize), right: make(Audio, p.BufferSize)}
	o.player = ctx.NewPlayer(o.src)
	o.player.Play()
	return nil
}

func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}

// otoSource adapts a RenderFunc to the io.Reader oto pulls interleaved
// little-endian float32 frames from.
type otoSource struct {
	render      RenderFunc
	left, right Audio
}

func (s *otoSource) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if cap(s.left) < frames {
		s.left = make(Audio, frames)
		s.right = make(Audio, frames)
	}
	l, r := s.left[:frames], s.right[:frames]
	s.render(l, r)
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint32(p[8*i:], math.Float32bits(l[i]))
		binary.LittleEndian.PutUint32(p[8*i+4:], math.Float32bits(r[i]))
	}
	return frames * 8, nil
}
