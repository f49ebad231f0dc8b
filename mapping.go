package ambient

import (
	"math"
	"strings"

	"github.com/gordonklaus/ambient/audio"
)

// Settings is everything the engine derives from a Blueprint.
type Settings struct {
	Tempo       float64 `json:"tempo"`
	Cutoff      float64 `json:"cutoff"`
	ReverbDecay float64 `json:"reverb_decay"`
	ReverbWet   float64 `json:"reverb_wet"`

	Pad     PadSettings     `json:"pad"`
	Texture TextureSettings `json:"texture"`
	Lead    LeadSettings    `json:"lead"`
}

type PadSettings struct {
	Shape    audio.Shape `json:"shape"`
	Partials []float64   `json:"partials,omitempty"`
	Root     int         `json:"root"`
	Scale    []int       `json:"scale"`
}

type TextureSettings struct {
	Color     audio.Color `json:"color"`
	Level     float64     `json:"level_db"`
	Threshold float64     `json:"threshold"`
}

type LeadSettings struct {
	Present     bool        `json:"present"`
	Shape       audio.Shape `json:"shape"`
	Root        int         `json:"root"`
	Subdivision Subdivision `json:"subdivision"`
	Chaos       bool        `json:"chaos"`
}

// MIDI note numbers, C4 = 60.
const (
	C2 = 36
	C3 = 48
	C4 = 60
	C5 = 72
)

const (
	padLevel  = -10 // dB
	leadLevel = -12 // dB
)

type voicing struct {
	pad      audio.Shape
	partials []float64
	noise    audio.Color
	lead     audio.Shape
}

// Unknown palettes use the PaletteUnset row.
var palettes = [numPalettes]voicing{
	PaletteUnset:  {pad: audio.Triangle, noise: audio.Pink, lead: audio.Sine},
	WarmSynth:     {pad: audio.Triangle, noise: audio.Pink, lead: audio.Sine},
	GlassyDigital: {pad: audio.FMSine, noise: audio.Pink, lead: audio.Triangle},
	Distorted:     {pad: audio.Sawtooth, noise: audio.Pink, lead: audio.Sawtooth},
	Retro8Bit:     {pad: audio.Square, noise: audio.White, lead: audio.Square},
	OrganicWind:   {pad: audio.Custom, partials: []float64{1, .2, .01}, noise: audio.Brown, lead: audio.Sine},
}

func (p Palette) voicing() voicing {
	if !p.valid() {
		p = PaletteUnset
	}
	return palettes[p]
}

// Derive maps a blueprint onto engine settings.  It never fails: numbers are
// clamped into range and unknown enums take their defaults.
func Derive(b Blueprint) Settings {
	brightness := clamp(b.TimbreBrightness, 0, 1)
	density := clamp(b.RhythmDensity, 0, 1)
	space := clamp(b.SpatialReverb, 0, 1)
	chaos := clamp(b.ChaosFactor, 0, 1)
	v := b.SonicPalette.voicing()

	s := Settings{
		Tempo:       clamp(b.TempoBPM, MinTempo, MaxTempo),
		Cutoff:      clamp(200+8000*brightness, 200, 8200),
		ReverbDecay: 1 + 10*space,
		ReverbWet:   .2 + .6*space,
	}

	s.Pad = PadSettings{Shape: v.pad, Partials: v.partials, Root: padRoot(b.PitchRange), Scale: scale(b)}
	if b.SonicPalette == WarmSynth && b.HarmonicComplexity == Dissonant {
		s.Pad.Shape = audio.AMSawtooth
	}

	s.Texture = TextureSettings{
		Color:     v.noise,
		Level:     -15 + 5*density,
		Threshold: clamp(1-density, .1, 1),
	}

	s.Lead = LeadSettings{
		Present:     !(density < .3 && b.SonicPalette != Retro8Bit),
		Shape:       v.lead,
		Root:        C4,
		Subdivision: Quarter,
		Chaos:       chaos > .5,
	}
	if b.PitchRange == PitchLow {
		s.Lead.Root = C3
	}
	if s.Tempo > 100 {
		s.Lead.Subdivision = Eighth
	}
	return s
}

func padRoot(p PitchRange) int {
	switch p {
	case PitchLow:
		return C2
	case PitchHigh:
		return C5
	}
	return C3
}

func scale(b Blueprint) []int {
	tone := strings.ToLower(b.EmotionalTone)
	minor := strings.Contains(tone, "sad") || strings.Contains(tone, "dark")
	return chord(minor, b.HarmonicComplexity == Complex, b.HarmonicComplexity == Dissonant)
}

// chord returns the pad's intervals in semitones above the root.  The
// extensions are independent of each other.
func chord(minor, seventh, tritone bool) []int {
	s := []int{0, 4, 7}
	if minor {
		s[1] = 3
	}
	if tritone {
		s = append(s, 6)
	}
	if seventh {
		s = append(s, 11)
	}
	return s
}

func dbToGain(db float64) float64 { return math.Pow(10, db/20) }
