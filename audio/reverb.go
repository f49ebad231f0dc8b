package audio

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

const (
	reverbBlock    = 1024
	reverbPreDelay = .01
	reverbFade     = .05
)

// Impulse is a stereo reverb impulse response prepared for convolution.
type Impulse struct {
	Decay float64
	l, r  *Convolver
}

// GenerateImpulse builds a stereo impulse response of exponentially decaying
// noise that falls by 60dB over decay seconds, normalized to unit energy per
// channel.  It checks ctx between partitions of work.
func GenerateImpulse(ctx context.Context, p Params, decay float64, r *rand.Rand) (*Impulse, error) {
	if decay <= 0 {
		return nil, fmt.Errorf("reverb: decay %.2fs must be positive", decay)
	}
	n := int((decay + reverbPreDelay) * p.SampleRate)
	pre := int(reverbPreDelay * p.SampleRate)
	k := math.Log(1000) / (decay * p.SampleRate)
	ch := [2][]float64{make([]float64, n), make([]float64, n)}
	for c := range ch {
		energy := 0.0
		for i := pre; i < n; i++ {
			if i%reverbBlock == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			v := (2*r.Float64() - 1) * math.Exp(-k*float64(i-pre))
			ch[c][i] = v
			energy += v * v
		}
		if energy > 0 {
			g := 1 / math.Sqrt(energy)
			for i := range ch[c] {
				ch[c][i] *= g
			}
		}
	}
	l, err := NewConvolver(ch[0], reverbBlock)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := NewConvolver(ch[1], reverbBlock)
	if err != nil {
		return nil, err
	}
	return &Impulse{Decay: decay, l: l, r: rc}, nil
}

// Reverb is a stereo convolution reverb with a ramped wet/dry mix.  Swapping
// the impulse crossfades from the old response to the new one.
type Reverb struct {
	Params Params
	Wet    Param
	cur    *Impulse
	prev   *Impulse
	fade   Param
}

func NewReverb(wet float64) *Reverb {
	r := &Reverb{}
	r.Wet.Set(wet)
	r.fade.Set(1)
	return r
}

func (r *Reverb) InitAudio(p Params) {
	r.Params = p
	r.Wet.InitAudio(p)
	r.fade.InitAudio(p)
}

// SetImpulse installs imp, crossfading from the current impulse if any.
func (r *Reverb) SetImpulse(imp *Impulse) {
	if r.cur != nil {
		r.prev = r.cur
		r.fade.Set(0)
		r.fade.RampTo(1, reverbFade)
	}
	r.cur = imp
}

// Impulse returns the impulse currently in use, or nil.
func (r *Reverb) Impulse() *Impulse { return r.cur }

func (r *Reverb) Filter(left, right float64) (float64, float64) {
	wet := r.Wet.Sing()
	if r.cur == nil {
		return left, right
	}
	wl, wr := r.cur.l.Filter(left), r.cur.r.Filter(right)
	if r.prev != nil {
		g := r.fade.Sing()
		pl, pr := r.prev.l.Filter(left), r.prev.r.Filter(right)
		wl = g*wl + (1-g)*pl
		wr = g*wr + (1-g)*pr
		if !r.fade.Ramping() {
			r.prev = nil
		}
	}
	return (1-wet)*left + wet*wl, (1-wet)*right + wet*wr
}
