package audio

import "math"

type envStage int

const (
	envIdle envStage = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

// ADSR is an attack/decay/sustain/release envelope.  Attack is linear from
// the current level; decay and release approach their targets exponentially,
// getting within 1% in the given time.
type ADSR struct {
	Params                         Params
	Attack, Decay, Sustain, Release float64
	stage                          envStage
	x                              float64
	up                             float64
	down, rel                      float64
	hold                           int
}

func NewADSR(attack, decay, sustain, release float64) *ADSR {
	return &ADSR{Attack: attack, Decay: decay, Sustain: sustain, Release: release}
}

func (e *ADSR) InitAudio(p Params) {
	e.Params = p
	e.down = math.Pow(.01, 1/(p.SampleRate*math.Max(e.Decay, 1e-3)))
	e.rel = math.Pow(.01, 1/(p.SampleRate*math.Max(e.Release, 1e-3)))
}

// TriggerAttack starts the attack from the current level, so retriggering a
// sounding envelope does not click.
func (e *ADSR) TriggerAttack() {
	e.stage = envAttack
	e.hold = -1
	e.up = (1 - e.x) / math.Max(1, e.Attack*e.Params.SampleRate)
}

// TriggerRelease starts the release stage immediately.
func (e *ADSR) TriggerRelease() {
	if e.stage != envIdle {
		e.stage = envRelease
	}
	e.hold = -1
}

// TriggerAttackRelease attacks now and releases after duration seconds.
func (e *ADSR) TriggerAttackRelease(duration float64) {
	e.TriggerAttack()
	e.hold = int(duration * e.Params.SampleRate)
}

func (e *ADSR) Sing() float64 {
	if e.hold >= 0 {
		if e.hold == 0 {
			e.TriggerRelease()
		} else {
			e.hold--
		}
	}
	switch e.stage {
	case envAttack:
		e.x += e.up
		if e.x >= 1 {
			e.x = 1
			e.stage = envDecay
		}
	case envDecay:
		e.x = e.Sustain + (e.x-e.Sustain)*e.down
		if math.Abs(e.x-e.Sustain) < 1e-4 {
			e.x = e.Sustain
			e.stage = envSustain
		}
	case envRelease:
		e.x *= e.rel
		if e.x < 1e-4 {
			e.x = 0
			e.stage = envIdle
		}
	}
	return e.x
}

func (e *ADSR) Value() float64 { return e.x }

// Done reports whether the envelope has finished its release.
func (e *ADSR) Done() bool {
	return e.stage == envIdle
}
