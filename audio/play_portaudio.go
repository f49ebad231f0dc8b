package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudio plays through the default portaudio output device.
type PortAudio struct {
	mu     sync.Mutex
	stream *portaudio.Stream
}

func (o *PortAudio) Open(p Params, render RenderFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stream != nil {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: initialize: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, p.SampleRate, p.BufferSize, func(out [][]float32) {
		render(out[0], out[1])
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("portaudio: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("portaudio: start stream: %w", err)
	}
	o.stream = stream
	return nil
}

func (o *PortAudio) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stream == nil {
		return nil
	}
	err := o.stream.Stop()
	if cerr := o.stream.Close(); err == nil {
		err = cerr
	}
	o.stream = nil
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
