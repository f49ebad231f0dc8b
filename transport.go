package ambient

import (
	"math"

	"github.com/gordonklaus/ambient/audio"
)

// Subdivision is a musical interval of the transport.
type Subdivision int

const (
	Measure Subdivision = iota
	Half
	Quarter
	Eighth
)

var subdivisionNames = [...]string{"1m", "2n", "4n", "8n"}

func (s Subdivision) String() string { return enumString(subdivisionNames[:], int(s)) }

func (s Subdivision) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Beats returns the length of s in quarter-note beats, assuming 4/4.
func (s Subdivision) Beats() float64 {
	switch s {
	case Measure:
		return 4
	case Half:
		return 2
	case Quarter:
		return 1
	case Eighth:
		return .5
	}
	return 1
}

// Transport is the shared time base.  It counts samples forever and, while
// running, advances a beat position at the current tempo.  Loops fire on beat
// boundaries; tasks fire after a number of seconds of rendered samples
// whether or not the transport is running.
//
// A Transport belongs to the render path and is not safe for concurrent use.
type Transport struct {
	Params  audio.Params
	bpm     float64
	running bool
	beat    float64
	samples int64
	starts  int
	tasks   audio.EventDelay
	loops   []*Loop
}

func NewTransport(bpm float64) *Transport {
	t := &Transport{}
	t.SetTempo(bpm)
	return t
}

func (t *Transport) InitAudio(p audio.Params) {
	t.Params = p
	t.tasks.Params = p
}

// SetTempo changes the beat rate from the next sample on.  Loop positions are
// kept in beats, so pending ticks keep their place in the bar.
func (t *Transport) SetTempo(bpm float64) {
	t.bpm = clamp(bpm, MinTempo, MaxTempo)
}

func (t *Transport) Tempo() float64 { return t.bpm }

// Seconds returns the current length of s.
func (t *Transport) Seconds(s Subdivision) float64 {
	return s.Beats() * 60 / t.bpm
}

// Start rewinds to beat zero and runs every active loop from there.
func (t *Transport) Start() {
	t.running = true
	t.beat = 0
	t.starts++
	for _, l := range t.loops {
		l.next = 0
	}
}

func (t *Transport) Stop()         { t.running = false }
func (t *Transport) Running() bool { return t.running }
func (t *Transport) Beat() float64 { return t.beat }

// Samples returns the number of samples rendered since the transport was
// created.  It never goes backwards.
func (t *Transport) Samples() int64 { return t.samples }

// Starts returns how many times Start has been called.
func (t *Transport) Starts() int { return t.starts }

// ScheduleAfter runs f after d seconds of rendered samples.
func (t *Transport) ScheduleAfter(d float64, f func()) *audio.Task {
	return t.tasks.Delay(d, f)
}

// Loop calls f every interval of s, starting on the next multiple of s.
func (t *Transport) Loop(s Subdivision, f func(beat float64)) *Loop {
	l := &Loop{Interval: s, f: f, t: t}
	if t.running {
		step := s.Beats()
		l.next = math.Ceil(t.beat/step) * step
	}
	t.loops = append(t.loops, l)
	return l
}

// Loops returns the number of live loops.
func (t *Transport) Loops() int { return len(t.loops) }

// Step advances one sample.
func (t *Transport) Step() {
	t.samples++
	t.tasks.Step()
	if !t.running {
		return
	}
	for i := 0; i < len(t.loops); i++ {
		l := t.loops[i]
		if t.beat >= l.next {
			beat := l.next
			l.next += l.Interval.Beats()
			l.f(beat)
		}
	}
	t.beat += t.bpm / 60 / t.Params.SampleRate
}

// Loop is a periodic callback bound to a Transport subdivision.
type Loop struct {
	Interval Subdivision
	f        func(beat float64)
	next     float64
	t        *Transport
}

// Dispose removes the loop from its transport.  It is safe to call more than
// once.
func (l *Loop) Dispose() {
	if l.t == nil {
		return
	}
	loops := l.t.loops
	for i, x := range loops {
		if x == l {
			l.t.loops = append(loops[:i], loops[i+1:]...)
			break
		}
	}
	l.t = nil
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
