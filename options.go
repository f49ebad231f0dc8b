package ambient

import (
	"log/slog"

	"github.com/gordonklaus/ambient/audio"
)

// Option configures an Engine in New.
type Option func(*Engine)

// WithOutput sets the output device.  The default is portaudio.
func WithOutput(o audio.Output) Option {
	return func(e *Engine) { e.output = o }
}

// WithSeed makes every random decision reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithLogger sets the logger.  By default the engine logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithParams sets the sample rate and block size.  The default is 48kHz in
// blocks of 1024.
func WithParams(p audio.Params) Option {
	return func(e *Engine) { e.params = p }
}

// WithTap calls f with every rendered block, on the render path.
func WithTap(f func(left, right audio.Audio)) Option {
	return func(e *Engine) { e.tap = f }
}

// WithObserver calls f with every scheduler decision, on the render path.
func WithObserver(f func(Event)) Option {
	return func(e *Engine) { e.observe = f }
}

// WithAnalyserSize sets the analysis window, a power of two.
func WithAnalyserSize(n int) Option {
	return func(e *Engine) { e.analyserSize = n }
}
