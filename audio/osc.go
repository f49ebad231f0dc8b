package audio

import "math"

// Shape selects the waveform an Osc renders.
type Shape int

const (
	Sine Shape = iota
	Triangle
	Square
	Sawtooth
	AMSawtooth
	FMSine
	Custom
)

var shapeNames = [...]string{"sine", "triangle", "square", "sawtooth", "amsawtooth", "fmsine", "custom"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return "unknown"
	}
	return shapeNames[s]
}

func (s Shape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

const (
	amHarmonicity = 1.5
	fmHarmonicity = 3
	fmIndex       = 2
)

// Osc is a band-limited oscillator with a selectable shape.  Custom renders
// the sum of the Partials harmonics, normalized to unit peak.
type Osc struct {
	Params   Params
	Shape    Shape
	Partials []float64
	freq     float64
	dt       float64
	phase    float64
	modPhase float64
	norm     float64
}

func NewOsc(shape Shape, partials ...float64) *Osc {
	return &Osc{Shape: shape, Partials: partials}
}

func (o *Osc) InitAudio(p Params) {
	o.Params = p
	o.norm = 0
	for _, a := range o.Partials {
		o.norm += math.Abs(a)
	}
	if o.norm == 0 {
		o.norm = 1
	}
	o.SetFreq(o.freq)
}

func (o *Osc) SetFreq(freq float64) *Osc {
	o.freq = freq
	if o.Params.SampleRate > 0 {
		o.dt = freq / o.Params.SampleRate
	}
	return o
}

func (o *Osc) Freq() float64 { return o.freq }

// Reset restarts the waveform at phase zero.
func (o *Osc) Reset() { o.phase, o.modPhase = 0, 0 }

func (o *Osc) Sing() float64 {
	p, dt := o.phase, o.dt
	var y float64
	switch o.Shape {
	case Triangle:
		y = 1 - 4*math.Abs(p-.5)
	case Square:
		y = -1
		if p < .5 {
			y = 1
		}
		y += polyBLEP(p, dt)
		y -= polyBLEP(math.Mod(p+.5, 1), dt)
	case Sawtooth:
		y = 2*p - 1 - polyBLEP(p, dt)
	case AMSawtooth:
		y = (2*p - 1 - polyBLEP(p, dt)) * (1 + math.Sin(2*math.Pi*o.modPhase)) / 2
		_, o.modPhase = math.Modf(o.modPhase + dt*amHarmonicity)
	case FMSine:
		y = math.Sin(2*math.Pi*p + fmIndex*math.Sin(2*math.Pi*o.modPhase))
		_, o.modPhase = math.Modf(o.modPhase + dt*fmHarmonicity)
	case Custom:
		for k, a := range o.Partials {
			if h := float64(k + 1); h*dt < .5 {
				y += a * math.Sin(2*math.Pi*h*p)
			}
		}
		y /= o.norm
	default:
		y = math.Sin(2 * math.Pi * p)
	}
	_, o.phase = math.Modf(p + dt)
	return y
}

// polyBLEP smooths the discontinuity of a unit step at phase zero.
func polyBLEP(t, dt float64) float64 {
	switch {
	case dt <= 0:
		return 0
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

// MIDIFreq returns the equal-tempered frequency of a MIDI note number (A4 = 69 = 440 Hz).
func MIDIFreq(note float64) float64 {
	return 440 * math.Exp2((note-69)/12)
}
