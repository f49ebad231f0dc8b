package audio

import "math"

// A soft limiter.  The RMS amplitude of the output (averaged over the attack
// time) will approach the supplied limit; this means that much of the signal
// will actually exceed the limit.
type Limiter struct {
	limit         float64
	attack, decay float64
	down, up      float64
	amp           float64
	rms           *RMS
	delay         *ConstDelay
}

func NewLimiter(limit, attack, decay float64) *Limiter {
	return &Limiter{limit: limit, attack: attack, decay: decay, rms: NewRMS(attack), delay: NewConstDelay(attack)}
}

func (c *Limiter) InitAudio(p Params) {
	c.down = -1 / (c.attack * p.SampleRate)
	c.up = 1 / (c.decay * p.SampleRate)
	c.rms.InitAudio(p)
	c.delay.InitAudio(p)
}

func (c *Limiter) Limit(x float64) float64 {
	gain := math.Exp2(c.amp)
	c.rms.Add(x)
	if y := c.rms.Amplitude() / c.limit; y > 0 && math.Tanh(y)/y < gain {
		c.amp += c.down
	} else if c.amp < 0 {
		c.amp = math.Min(0, c.amp+c.up)
	}
	return gain * c.delay.Delay(x)
}

// RMS tracks the root-mean-square amplitude over a sliding window.
type RMS struct {
	window float64
	buf    []float64
	i      int
	sum    float64
}

func NewRMS(window float64) *RMS {
	return &RMS{window: window}
}

func (r *RMS) InitAudio(p Params) {
	n := int(r.window * p.SampleRate)
	if n < 1 {
		n = 1
	}
	r.buf = make([]float64, n)
	r.i, r.sum = 0, 0
}

func (r *RMS) Add(x float64) {
	r.sum -= r.buf[r.i]
	r.buf[r.i] = x * x
	r.sum += r.buf[r.i]
	r.i = (r.i + 1) % len(r.buf)
}

func (r *RMS) Amplitude() float64 {
	return math.Sqrt(math.Max(0, r.sum) / float64(len(r.buf)))
}
