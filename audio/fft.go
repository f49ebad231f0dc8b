package audio

import (
	"fmt"
	"math"

	"github.com/ktye/fft"
)

// Convolver convolves a signal with a long impulse response using uniformly
// partitioned overlap-save FFT convolution.  Output lags input by one block.
type Convolver struct {
	fft   fft.FFT
	block int
	parts [][]complex128 // spectra of the impulse response partitions
	fdl   [][]complex128 // spectra of recent input blocks, a ring indexed by head
	head  int
	in    []float64 // previous block followed by the block being filled
	acc   []complex128
	out   []float64
	i     int
}

// NewConvolver prepares ir for convolution in blocks of blockSize samples,
// which must be a power of two.
func NewConvolver(ir []float64, blockSize int) (*Convolver, error) {
	if blockSize <= 0 || blockSize&(blockSize-1) != 0 {
		return nil, fmt.Errorf("convolver: block size %d is not a power of two", blockSize)
	}
	f, err := fft.New(2 * blockSize)
	if err != nil {
		return nil, fmt.Errorf("convolver: %w", err)
	}
	n := (len(ir) + blockSize - 1) / blockSize
	if n == 0 {
		n = 1
	}
	c := &Convolver{
		fft:   f,
		block: blockSize,
		parts: make([][]complex128, n),
		fdl:   make([][]complex128, n),
		in:    make([]float64, 2*blockSize),
		acc:   make([]complex128, 2*blockSize),
		out:   make([]float64, blockSize),
	}
	for p := range c.parts {
		buf := make([]complex128, 2*blockSize)
		for k := 0; k < blockSize && p*blockSize+k < len(ir); k++ {
			buf[k] = complex(ir[p*blockSize+k], 0)
		}
		c.parts[p] = f.Transform(buf)
		c.fdl[p] = make([]complex128, 2*blockSize)
	}
	return c, nil
}

// Partitions returns the number of impulse response partitions.
func (c *Convolver) Partitions() int { return len(c.parts) }

func (c *Convolver) Filter(x float64) float64 {
	y := c.out[c.i]
	c.in[c.block+c.i] = x
	c.i++
	if c.i == c.block {
		c.i = 0
		c.process()
	}
	return y
}

func (c *Convolver) process() {
	P := len(c.parts)
	c.head = (c.head + 1) % P
	x := c.fdl[c.head]
	for k, v := range c.in {
		x[k] = complex(v, 0)
	}
	c.fdl[c.head] = c.fft.Transform(x)

	for k := range c.acc {
		c.acc[k] = 0
	}
	for p, h := range c.parts {
		x := c.fdl[(c.head-p+P)%P]
		for k := range c.acc {
			c.acc[k] += x[k] * h[k]
		}
	}
	y := c.fft.Inverse(c.acc)
	for k := range c.out {
		c.out[k] = real(y[c.block+k])
	}
	copy(c.in[:c.block], c.in[c.block:])
}

// Spectrum computes Hann-windowed magnitude spectra of fixed-size windows.
type Spectrum struct {
	fft    fft.FFT
	window []float64
	buf    []complex128
}

func NewSpectrum(size int) (*Spectrum, error) {
	f, err := fft.New(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: %w", err)
	}
	w := make([]float64, size)
	for i := range w {
		w[i] = (1 - math.Cos(2*math.Pi*float64(i)/float64(size))) / 2
	}
	return &Spectrum{fft: f, window: w, buf: make([]complex128, size)}, nil
}

// Decibels writes the magnitude of the first len(x)/2 bins of x, in dB
// relative to a full-scale sine, into dst and returns it.  Silence reads as
// -100 dB.
func (s *Spectrum) Decibels(dst []float32, x []float32) []float32 {
	n := len(s.window)
	for i := range s.buf {
		v := 0.0
		if i < len(x) {
			v = float64(x[i])
		}
		s.buf[i] = complex(v*s.window[i], 0)
	}
	y := s.fft.Transform(s.buf)
	dst = dst[:0]
	for k := 0; k < n/2; k++ {
		m := 4 * math.Hypot(real(y[k]), imag(y[k])) / float64(n)
		db := -100.0
		if m > 1e-5 {
			db = 20 * math.Log10(m)
		}
		dst = append(dst, float32(db))
	}
	return dst
}
