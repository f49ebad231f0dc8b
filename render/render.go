// Package render bounces an engine to a WAV file faster than real time.
package render

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gordonklaus/ambient"
	"github.com/gordonklaus/ambient/audio"
	wav "github.com/youpy/go-wav"
)

// Playback stops this long before the end so the fade-out finishes inside
// the file.
const stopBefore = .6

// WAV renders seconds of b as 16-bit stereo PCM into w.
func WAV(ctx context.Context, b ambient.Blueprint, w io.Writer, seconds float64, opts ...ambient.Option) error {
	e, err := ambient.New(append(opts, ambient.WithOutput(&audio.Null{}))...)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.Init(ctx); err != nil {
		return err
	}
	if err := e.Configure(b); err != nil {
		return err
	}
	if err := e.Start(); err != nil {
		return err
	}

	p := e.Params()
	total := p.Samples(seconds)
	stopAt := total - p.Samples(stopBefore)
	ww := wav.NewWriter(w, uint32(total), 2, uint32(p.SampleRate), 16)
	left, right := make(audio.Audio, p.BufferSize), make(audio.Audio, p.BufferSize)
	samples := make([]wav.Sample, p.BufferSize)
	stopped := false
	for n := 0; n < total; {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !stopped && n >= stopAt {
			e.Stop()
			stopped = true
		}
		k := min(len(left), total-n)
		if !stopped {
			k = min(k, max(stopAt-n, 1))
		}
		e.Process(left[:k], right[:k])
		for i := 0; i < k; i++ {
			samples[i] = wav.Sample{Values: [2]int{int(audio.Int16(left[i])), int(audio.Int16(right[i]))}}
		}
		if err := ww.WriteSamples(samples[:k]); err != nil {
			return fmt.Errorf("write samples: %w", err)
		}
		n += k
	}
	return nil
}

// File renders into the WAV file at path.
func File(ctx context.Context, b ambient.Blueprint, path string, seconds float64, opts ...ambient.Option) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WAV(ctx, b, f, seconds, opts...); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
