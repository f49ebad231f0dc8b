package ambient

import (
	"math"
	"math/rand"
)

const (
	padChance  = .7
	leadChance = .6
)

// Event records one scheduler decision.
type Event struct {
	Voice VoiceKind `json:"voice"`
	Beat  float64   `json:"beat"`
	Draw  float64   `json:"draw"`
	Fired bool      `json:"fired"`
	Notes []int     `json:"notes,omitempty"`
}

// voiceRand returns the random source for kind.  Each voice draws from its
// own stream so that one voice's decisions never shift another's.
func voiceRand(seed int64, kind VoiceKind) *rand.Rand {
	return rand.New(rand.NewSource(seed*int64(numVoiceKinds+1) + int64(kind) + 1))
}

// pitchRand returns the source of lead transpositions, kept apart from the
// lead's trigger draws so that chaos does not change when the lead fires.
func pitchRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed * int64(numVoiceKinds+1)))
}

// scheduler binds each voice to a transport loop gated by its trigger rule.
type scheduler struct {
	transport *Transport
	rands     [numVoiceKinds]*rand.Rand
	pitch     *rand.Rand
	observe   func(Event)
	loops     []*Loop
}

func newScheduler(t *Transport, seed int64, observe func(Event)) *scheduler {
	s := &scheduler{transport: t, pitch: pitchRand(seed), observe: observe}
	for k := range s.rands {
		s.rands[k] = voiceRand(seed, VoiceKind(k))
	}
	return s
}

// schedule replaces the current loops with one per voice.
func (s *scheduler) schedule(vs []voice) {
	s.dispose()
	for _, v := range vs {
		v := v
		r := s.rands[v.Kind()]
		sub := subdivisionOf(v)
		s.loops = append(s.loops, s.transport.Loop(sub, func(beat float64) {
			ev := s.tick(v, r, beat)
			if s.observe != nil {
				s.observe(ev)
			}
		}))
	}
}

func (s *scheduler) dispose() {
	for _, l := range s.loops {
		l.Dispose()
	}
	s.loops = nil
}

func subdivisionOf(v voice) Subdivision {
	switch v := v.(type) {
	case *Texture:
		return Half
	case *Lead:
		return v.Settings.Subdivision
	}
	return Measure
}

// tick draws once from r and applies v's trigger rule.
func (s *scheduler) tick(v voice, r *rand.Rand, beat float64) Event {
	x := r.Float64()
	ev := Event{Voice: v.Kind(), Beat: beat, Draw: x}
	switch v := v.(type) {
	case *Pad:
		if x < padChance {
			ev.Fired = true
			ev.Notes = v.Chord()
			v.Play(ev.Notes, s.transport.Seconds(Measure))
		}
	case *Texture:
		if x > v.Settings.Threshold {
			ev.Fired = true
			v.Play(s.transport.Seconds(Half))
		}
	case *Lead:
		if x < leadChance {
			note := v.Settings.Root
			if v.Settings.Chaos {
				note += transpose(s.pitch.Float64())
			}
			ev.Fired = true
			ev.Notes = []int{note}
			v.Play(note, s.transport.Seconds(v.Settings.Subdivision))
		}
	}
	return ev
}

// transpose maps a uniform draw in [0, 1) to a semitone offset in [-11, 11].
func transpose(x float64) int {
	return int(math.Floor(x*23)) - 11
}
