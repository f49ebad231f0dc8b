package ambient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// Blueprint is the semantic description of a scene's sound.  It is treated
// as an immutable snapshot once handed to an Engine.
type Blueprint struct {
	TempoBPM           float64    `json:"tempo_bpm"`
	PitchRange         PitchRange `json:"pitch_range"`
	HarmonicComplexity Complexity `json:"harmonic_complexity"`
	SonicPalette       Palette    `json:"sonic_palette"`
	TimbreBrightness   float64    `json:"timbre_brightness"`
	RhythmDensity      float64    `json:"rhythm_density"`
	SpatialReverb      float64    `json:"spatial_reverb"`
	ChaosFactor        float64    `json:"chaos_factor"`
	EmotionalTone      string     `json:"emotional_tone"`
	KeyElements        []string   `json:"key_elements"`
	SceneDescription   string     `json:"scene_description"`
}

const (
	MinTempo = 40
	MaxTempo = 160
)

// ParseBlueprint decodes a JSON blueprint and validates it.
func ParseBlueprint(r io.Reader) (Blueprint, error) {
	var b Blueprint
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			return Blueprint{}, fe
		}
		return Blueprint{}, fmt.Errorf("%w: %v", ErrInvalidBlueprint, err)
	}
	if err := b.Validate(); err != nil {
		return Blueprint{}, err
	}
	return b, nil
}

// Validate rejects out-of-range and unset fields.  The first problem found
// is returned as a *FieldError.
func (b Blueprint) Validate() error {
	if math.IsNaN(b.TempoBPM) || b.TempoBPM < MinTempo || b.TempoBPM > MaxTempo {
		return &FieldError{"tempo_bpm", b.TempoBPM, fmt.Sprintf("must be in [%d, %d]", MinTempo, MaxTempo)}
	}
	if !b.PitchRange.valid() {
		return &FieldError{"pitch_range", b.PitchRange, "must be one of low, mid, high, wide"}
	}
	if !b.HarmonicComplexity.valid() {
		return &FieldError{"harmonic_complexity", b.HarmonicComplexity, "must be one of simple, complex, dissonant"}
	}
	if !b.SonicPalette.valid() {
		return &FieldError{"sonic_palette", b.SonicPalette, "must be one of warm_synth, glassy_digital, distorted, retro_8bit, organic_wind"}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"timbre_brightness", b.TimbreBrightness},
		{"rhythm_density", b.RhythmDensity},
		{"spatial_reverb", b.SpatialReverb},
		{"chaos_factor", b.ChaosFactor},
	} {
		if math.IsNaN(f.v) || f.v < 0 || f.v > 1 {
			return &FieldError{f.name, f.v, "must be in [0, 1]"}
		}
	}
	return nil
}

// Palette names the timbral family of a scene.  The zero value is unset.
type Palette int

const (
	PaletteUnset Palette = iota
	WarmSynth
	GlassyDigital
	Distorted
	Retro8Bit
	OrganicWind
	numPalettes
)

var paletteNames = [...]string{"", "warm_synth", "glassy_digital", "distorted", "retro_8bit", "organic_wind"}

func (p Palette) String() string               { return enumString(paletteNames[:], int(p)) }
func (p Palette) valid() bool                  { return p > PaletteUnset && p < numPalettes }
func (p Palette) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Palette) UnmarshalText(b []byte) error {
	i, err := parseEnum("sonic_palette", paletteNames[:], string(b))
	*p = Palette(i)
	return err
}

// PitchRange places the harmony in a register.  The zero value is unset.
type PitchRange int

const (
	PitchUnset PitchRange = iota
	PitchLow
	PitchMid
	PitchHigh
	PitchWide
	numPitchRanges
)

var pitchNames = [...]string{"", "low", "mid", "high", "wide"}

func (p PitchRange) String() string               { return enumString(pitchNames[:], int(p)) }
func (p PitchRange) valid() bool                  { return p > PitchUnset && p < numPitchRanges }
func (p PitchRange) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PitchRange) UnmarshalText(b []byte) error {
	i, err := parseEnum("pitch_range", pitchNames[:], string(b))
	*p = PitchRange(i)
	return err
}

// Complexity selects chord extensions.  The zero value is unset.
type Complexity int

const (
	ComplexityUnset Complexity = iota
	Simple
	Complex
	Dissonant
	numComplexities
)

var complexityNames = [...]string{"", "simple", "complex", "dissonant"}

func (c Complexity) String() string               { return enumString(complexityNames[:], int(c)) }
func (c Complexity) valid() bool                  { return c > ComplexityUnset && c < numComplexities }
func (c Complexity) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Complexity) UnmarshalText(b []byte) error {
	i, err := parseEnum("harmonic_complexity", complexityNames[:], string(b))
	*c = Complexity(i)
	return err
}

func enumString(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func parseEnum(field string, names []string, s string) (int, error) {
	for i, n := range names {
		if i > 0 && n == s {
			return i, nil
		}
	}
	return 0, &FieldError{field, s, "unknown value"}
}
