package audio

import (
	"errors"
	"fmt"
)

// RenderFunc fills one block of stereo output.  It is called on the device's
// real-time goroutine and must not block.
type RenderFunc func(left, right Audio)

// Output is an audio device that pulls blocks from a RenderFunc.
type Output interface {
	// Open acquires the device and starts pulling from render.
	Open(p Params, render RenderFunc) error
	// Close stops pulling and releases the device.
	Close() error
}

var ErrUnknownOutput = errors.New("unknown output")

// Outputs lists the names accepted by NewOutput.
var Outputs = []string{"portaudio", "oto", "null"}

// NewOutput returns the named output backend.
func NewOutput(name string) (Output, error) {
	switch name {
	case "portaudio", "":
		return &PortAudio{}, nil
	case "oto":
		return &Oto{}, nil
	case "null":
		return &Null{}, nil
	}
	return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownOutput, name, Outputs)
}

// Null is an output without a device.  Nothing pulls from it; the caller
// renders by hand.
type Null struct {
	opened bool
}

func (n *Null) Open(Params, RenderFunc) error {
	n.opened = true
	return nil
}

func (n *Null) Close() error {
	n.opened = false
	return nil
}
