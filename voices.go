package ambient

import (
	"math"
	"math/rand"

	"github.com/gordonklaus/ambient/audio"
)

// VoiceKind names one of the three generative voices.
type VoiceKind int

const (
	PadVoice VoiceKind = iota
	TextureVoice
	LeadVoice
	numVoiceKinds
)

var voiceNames = [...]string{"pad", "texture", "lead"}

func (k VoiceKind) String() string { return enumString(voiceNames[:], int(k)) }

func (k VoiceKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

const (
	retireTime        = .02
	padPolyphony      = 16
	leadFilterBase    = 300
	leadFilterOctaves = 3
)

// voice is a generator in the bank.  Retiring fades it out, after which it
// reports Done.
type voice interface {
	audio.Voice
	Kind() VoiceKind
	retire()
}

// fader is the retire fade shared by all voices.
type fader struct {
	gain    audio.Param
	retired bool
}

func (f *fader) InitAudio(p audio.Params) {
	f.gain.InitAudio(p)
	if !f.retired {
		f.gain.Set(1)
	}
}

func (f *fader) retire() {
	f.retired = true
	f.gain.RampTo(0, retireTime)
}

func (f *fader) faded() bool { return f.retired && !f.gain.Ramping() }

// Pad is a polyphonic sustained chord voice.
type Pad struct {
	Params   audio.Params
	Settings PadSettings
	notes    audio.MultiVoice
	level    float64
	fader    fader
}

func NewPad(s PadSettings) *Pad {
	return &Pad{Settings: s, notes: audio.MultiVoice{Max: padPolyphony}, level: dbToGain(padLevel)}
}

func (p *Pad) InitAudio(params audio.Params) {
	p.Params = params
	p.notes.InitAudio(params)
	p.fader.InitAudio(params)
}

func (p *Pad) Kind() VoiceKind { return PadVoice }
func (p *Pad) retire()         { p.fader.retire() }

// Chord returns the MIDI notes of the pad's chord.
func (p *Pad) Chord() []int {
	notes := make([]int, len(p.Settings.Scale))
	for i, n := range p.Settings.Scale {
		notes[i] = p.Settings.Root + n
	}
	return notes
}

// Play sounds notes for duration seconds, then lets them release.
func (p *Pad) Play(notes []int, duration float64) {
	amp := 1 / float64(len(notes))
	for _, n := range notes {
		note := &padNote{osc: audio.NewOsc(p.Settings.Shape, p.Settings.Partials...), env: audio.NewADSR(2, 3, .6, 4), amp: amp}
		note.osc.SetFreq(audio.MIDIFreq(float64(n)))
		p.notes.Add(note)
		note.env.TriggerAttackRelease(duration)
	}
}

// Notes returns the number of sounding notes.
func (p *Pad) Notes() int { return p.notes.Len() }

func (p *Pad) Sing() float64 {
	return p.level * p.fader.gain.Sing() * p.notes.Sing()
}

func (p *Pad) Done() bool { return p.fader.faded() }

type padNote struct {
	osc *audio.Osc
	env *audio.ADSR
	amp float64
}

func (n *padNote) InitAudio(p audio.Params) {
	n.osc.InitAudio(p)
	n.env.InitAudio(p)
}

func (n *padNote) Sing() float64 { return n.amp * n.env.Sing() * n.osc.Sing() }
func (n *padNote) Done() bool    { return n.env.Done() }

// Texture is a noise bed whose bursts swell slowly.
type Texture struct {
	Settings TextureSettings
	noise    *audio.Noise
	env      *audio.ADSR
	swell    *audio.SlowRand
	level    float64
	fader    fader
}

func NewTexture(s TextureSettings, r *rand.Rand) *Texture {
	return &Texture{
		Settings: s,
		noise:    audio.NewNoise(s.Color, r),
		env:      audio.NewADSR(1, .5, .5, 2),
		swell:    audio.NewSlowRand(.25, r),
		level:    dbToGain(s.Level),
	}
}

func (t *Texture) InitAudio(p audio.Params) {
	t.env.InitAudio(p)
	t.swell.InitAudio(p)
	t.fader.InitAudio(p)
}

func (t *Texture) Kind() VoiceKind { return TextureVoice }
func (t *Texture) retire()         { t.fader.retire() }

// Play swells the noise for duration seconds, then releases.
func (t *Texture) Play(duration float64) { t.env.TriggerAttackRelease(duration) }

func (t *Texture) Sing() float64 {
	swell := 1 + .25*t.swell.Sing()
	return t.level * swell * t.fader.gain.Sing() * t.env.Sing() * t.noise.Sing()
}

func (t *Texture) Done() bool { return t.fader.faded() }

// Lead is a monophonic plucked arpeggio: an oscillator through a lowpass
// whose cutoff follows its own envelope.
type Lead struct {
	Settings  LeadSettings
	osc       *audio.Osc
	env       *audio.ADSR
	filterEnv *audio.ADSR
	filter    *audio.LowPass
	level     float64
	fader     fader
}

func NewLead(s LeadSettings) *Lead {
	return &Lead{
		Settings:  s,
		osc:       audio.NewOsc(s.Shape),
		env:       audio.NewADSR(.01, .2, .2, .4),
		filterEnv: audio.NewADSR(.01, .3, .2, .4),
		filter:    audio.NewLowPass(leadFilterBase, filterQ),
		level:     dbToGain(leadLevel),
	}
}

func (l *Lead) InitAudio(p audio.Params) {
	l.osc.InitAudio(p)
	l.env.InitAudio(p)
	l.filterEnv.InitAudio(p)
	l.filter.InitAudio(p)
	l.fader.InitAudio(p)
}

func (l *Lead) Kind() VoiceKind { return LeadVoice }
func (l *Lead) retire()         { l.fader.retire() }

// Play sounds note for duration seconds.  Retriggering a sounding note glides
// its envelope up from the current level.
func (l *Lead) Play(note int, duration float64) {
	l.osc.SetFreq(audio.MIDIFreq(float64(note)))
	l.env.TriggerAttackRelease(duration)
	l.filterEnv.TriggerAttackRelease(duration)
}

func (l *Lead) Sing() float64 {
	if f := leadFilterBase * math.Exp2(leadFilterOctaves*l.filterEnv.Sing()); f != l.filter.Freq() {
		l.filter.SetFreq(f)
	}
	x := l.filter.Filter(l.osc.Sing())
	return l.level * l.fader.gain.Sing() * l.env.Sing() * x
}

func (l *Lead) Done() bool { return l.fader.faded() }

// bank mixes the live voices and the ones fading out after a rebuild.
type bank struct {
	live     []voice
	retiring []voice
}

// replace retires the live voices and installs vs in their place.
func (b *bank) replace(vs []voice) {
	for _, v := range b.live {
		v.retire()
		b.retiring = append(b.retiring, v)
	}
	b.live = vs
}

func (b *bank) Sing() float64 {
	sum := 0.0
	for _, v := range b.live {
		sum += v.Sing()
	}
	j := 0
	for _, v := range b.retiring {
		sum += v.Sing()
		if !v.Done() {
			b.retiring[j] = v
			j++
		}
	}
	for i := j; i < len(b.retiring); i++ {
		b.retiring[i] = nil
	}
	b.retiring = b.retiring[:j]
	return sum
}

// count returns the number of live voices of kind k.
func (b *bank) count(k VoiceKind) int {
	n := 0
	for _, v := range b.live {
		if v.Kind() == k {
			n++
		}
	}
	return n
}
