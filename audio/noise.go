package audio

import (
	"math"
	"math/rand"
)

// Color selects the spectral tilt of a Noise source.
type Color int

const (
	White Color = iota
	Pink
	Brown
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Pink:
		return "pink"
	case Brown:
		return "brown"
	}
	return "unknown"
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Noise generates white, pink or brown noise with unit-ish peak from a
// caller-supplied random source.
type Noise struct {
	Color Color
	rand  *rand.Rand
	b     [7]float64
}

func NewNoise(c Color, r *rand.Rand) *Noise {
	return &Noise{Color: c, rand: r}
}

func (n *Noise) Sing() float64 {
	w := 2*n.rand.Float64() - 1
	switch n.Color {
	case Pink:
		// Paul Kellet's refined pink filter.
		b := &n.b
		b[0] = .99886*b[0] + w*.0555179
		b[1] = .99332*b[1] + w*.0750759
		b[2] = .96900*b[2] + w*.1538520
		b[3] = .86650*b[3] + w*.3104856
		b[4] = .55000*b[4] + w*.5329522
		b[5] = -.7616*b[5] - w*.0168980
		y := b[0] + b[1] + b[2] + b[3] + b[4] + b[5] + b[6] + w*.5362
		b[6] = w * .115926
		return y * .11
	case Brown:
		n.b[0] = (n.b[0] + .02*w) / 1.02
		return n.b[0] * 3.5
	}
	return w
}

// SlowRand is a smoothly wandering random control signal.
type SlowRand struct {
	freq  float64
	i, n  int
	x     [4]float64
	rand  *rand.Rand
	t, dt float64
}

func NewSlowRand(freq float64, r *rand.Rand) *SlowRand {
	return &SlowRand{freq: freq, rand: r}
}

func (r *SlowRand) InitAudio(p Params) {
	n := p.SampleRate / r.freq / 2
	r.n = int(math.Max(1, n))
	r.dt = 1 / float64(r.n)
}

func (r *SlowRand) Sing() float64 {
	r.i--
	if r.i < 0 {
		r.i = r.n - 1
		r.x[0] = r.x[1]
		r.x[1] = r.x[2]
		r.x[2] = r.x[3]
		r.x[3] = .8 * (2*r.rand.Float64() - 1)
		r.t = 0
	}
	r.t += r.dt
	return Interp3(r.t, r.x[0], r.x[1], r.x[2], r.x[3])
}

// Interp3 is cubic Hermite interpolation between x1 and x2 at t in [0,1].
func Interp3(t, x0, x1, x2, x3 float64) float64 {
	c1 := (x2 - x0) / 2
	c2 := x0 - 2.5*x1 + 2*x2 - x3/2
	c3 := (x3-x0)/2 + 1.5*(x1-x2)
	return ((c3*t+c2)*t+c1)*t + x1
}
