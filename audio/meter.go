package audio

import (
	"math"
	"sync"
	"sync/atomic"
)

type AmpMeter struct {
	windowSize float64
	buf        []float64
	i          int
	sum        float64
}

func NewAmpMeter(windowSize float64) *AmpMeter {
	return &AmpMeter{windowSize: windowSize}
}

func (a *AmpMeter) InitAudio(p Params) {
	a.buf = make([]float64, int(math.Max(1, p.SampleRate*a.windowSize)))
}

func (a *AmpMeter) Amplitude(x Audio) float64 {
	for _, x := range x {
		a.sum -= a.buf[a.i]
		a.buf[a.i] = float64(x) * float64(x)
		a.sum += a.buf[a.i]
		a.i = (a.i + 1) % len(a.buf)
	}
	return math.Sqrt(math.Max(0, a.sum) / float64(len(a.buf)))
}

// Analyser keeps the most recent window of output samples for visualization.
// The render path writes with Write; any number of readers may poll Waveform
// and Magnitudes concurrently.  Writes never block and never allocate.
type Analyser struct {
	slots []atomic.Uint32
	pos   atomic.Uint64

	mu   sync.Mutex // readers only
	spec *Spectrum
	tmp  []float32
}

func NewAnalyser(size int) (*Analyser, error) {
	spec, err := NewSpectrum(size)
	if err != nil {
		return nil, err
	}
	return &Analyser{
		slots: make([]atomic.Uint32, size),
		spec:  spec,
		tmp:   make([]float32, size),
	}, nil
}

// Size returns the window length in samples.
func (a *Analyser) Size() int { return len(a.slots) }

// Write appends the mono mix of a stereo block.
func (a *Analyser) Write(left, right Audio) {
	n := len(a.slots)
	pos := a.pos.Load()
	start := 0
	if len(left) > n {
		start = len(left) - n
		pos += uint64(start)
	}
	for i := start; i < len(left); i++ {
		x := left[i]
		if i < len(right) {
			x = (x + right[i]) / 2
		}
		a.slots[pos%uint64(n)].Store(math.Float32bits(x))
		pos++
	}
	a.pos.Store(pos)
}

// Waveform copies the window, oldest sample first, into dst and returns it.
func (a *Analyser) Waveform(dst []float32) []float32 {
	n := uint64(len(a.slots))
	pos := a.pos.Load()
	dst = dst[:0]
	for i := uint64(0); i < n; i++ {
		dst = append(dst, math.Float32frombits(a.slots[(pos+i)%n].Load()))
	}
	return dst
}

// Magnitudes writes the dB spectrum of the window (Size()/2 bins) into dst.
func (a *Analyser) Magnitudes(dst []float32) []float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tmp = a.Waveform(a.tmp)
	return a.spec.Decibels(dst, a.tmp)
}
