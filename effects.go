package ambient

import (
	"github.com/gordonklaus/ambient/audio"
)

const (
	tuneTime      = .5
	fadeInTime    = 1
	fadeOutTime   = .5
	delayFeedback = .2
	delayWet      = .3
	maxDelay      = 1
	filterQ       = 1
)

// Effects is the fixed chain every voice feeds: lowpass, ping-pong delay,
// convolution reverb, a DC blocker, master gain and an output limiter.
type Effects struct {
	Params audio.Params
	Cutoff audio.Param
	Master audio.Param
	Filter *audio.LowPass
	Delay  *audio.PingPongDelay
	Reverb *audio.Reverb
	dcL    audio.DCFilter
	dcR    audio.DCFilter
	limitL *audio.Limiter
	limitR *audio.Limiter
}

func NewEffects(s Settings) *Effects {
	e := &Effects{
		Filter: audio.NewLowPass(s.Cutoff, filterQ),
		Delay:  audio.NewPingPongDelay(60/s.Tempo*Eighth.Beats(), delayFeedback, delayWet, maxDelay),
		Reverb: audio.NewReverb(s.ReverbWet),
		limitL: audio.NewLimiter(.9, .005, .2),
		limitR: audio.NewLimiter(.9, .005, .2),
	}
	e.Cutoff.Set(s.Cutoff)
	return e
}

func (e *Effects) InitAudio(p audio.Params) {
	e.Params = p
	e.Cutoff.InitAudio(p)
	e.Master.InitAudio(p)
	e.Filter.InitAudio(p)
	e.Delay.InitAudio(p)
	e.Reverb.InitAudio(p)
	e.dcL.InitAudio(p)
	e.dcR.InitAudio(p)
	e.limitL.InitAudio(p)
	e.limitR.InitAudio(p)
}

// Tune ramps the chain toward s.  The reverb impulse is installed separately
// since it is built off the render path.
func (e *Effects) Tune(s Settings) {
	e.Cutoff.RampTo(s.Cutoff, tuneTime)
	e.Delay.Time.RampTo(60/s.Tempo*Eighth.Beats(), tuneTime)
	e.Reverb.Wet.RampTo(s.ReverbWet, tuneTime)
}

// Process runs one mono sample through the chain.
func (e *Effects) Process(x float64) (left, right float64) {
	if c := e.Cutoff.Sing(); c != e.Filter.Freq() {
		e.Filter.SetFreq(c)
	}
	left, right = e.Delay.Filter(e.Filter.Filter(x))
	left, right = e.Reverb.Filter(left, right)
	left, right = e.dcL.Filter(left), e.dcR.Filter(right)
	g := e.Master.Sing()
	return e.limitL.Limit(g * left), e.limitR.Limit(g * right)
}
