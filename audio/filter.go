package audio

import "math"

type DCFilter struct {
	a, x, y float64
}

func (f *DCFilter) InitAudio(p Params) {
	rc := 1 / (2 * math.Pi * 10)
	f.a = rc / (rc + 1/p.SampleRate)
}

func (f *DCFilter) Filter(x float64) float64 {
	f.y = f.a * (f.y + x - f.x)
	f.x = x
	return f.y
}

// LowPass is a 12dB/octave resonant lowpass biquad (RBJ cookbook).
type LowPass struct {
	Params Params
	Q      float64
	freq   float64
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func NewLowPass(freq, q float64) *LowPass {
	return &LowPass{freq: freq, Q: q}
}

func (f *LowPass) InitAudio(p Params) {
	f.Params = p
	if f.Q == 0 {
		f.Q = 1
	}
	f.SetFreq(f.freq)
}

// SetFreq recomputes the coefficients for a new cutoff, clamped below Nyquist.
func (f *LowPass) SetFreq(freq float64) *LowPass {
	f.freq = freq
	if f.Params.SampleRate == 0 {
		return f
	}
	freq = math.Max(10, math.Min(freq, .45*f.Params.SampleRate))
	w := 2 * math.Pi * freq / f.Params.SampleRate
	sin, cos := math.Sincos(w)
	alpha := sin / (2 * f.Q)
	a0 := 1 + alpha
	f.b1 = (1 - cos) / a0
	f.b0 = f.b1 / 2
	f.b2 = f.b0
	f.a1 = -2 * cos / a0
	f.a2 = (1 - alpha) / a0
	return f
}

func (f *LowPass) Freq() float64 { return f.freq }

func (f *LowPass) Filter(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}
