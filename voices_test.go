package ambient

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gordonklaus/ambient/audio"
)

var voiceParams = audio.Params{SampleRate: 8000}

func peak(v audio.Voice, n int) float64 {
	m := 0.0
	for i := 0; i < n; i++ {
		m = math.Max(m, math.Abs(v.Sing()))
	}
	return m
}

func TestVoicesSilentUntilPlayed(t *testing.T) {
	s := Derive(example)
	pad := NewPad(s.Pad)
	tex := NewTexture(s.Texture, rand.New(rand.NewSource(1)))
	lead := NewLead(s.Lead)
	for _, v := range []audio.Voice{pad, tex, lead} {
		audio.Init(v, voiceParams)
		if p := peak(v, 800); p != 0 {
			t.Errorf("%T: peak %v before play", v, p)
		}
	}
	pad.Play(pad.Chord(), 1)
	tex.Play(1)
	lead.Play(C3, .25)
	for _, v := range []audio.Voice{pad, tex, lead} {
		if p := peak(v, 8000); p == 0 || p > 1 {
			t.Errorf("%T: peak %v after play", v, p)
		}
	}
}

func TestPadPolyphonyIsCapped(t *testing.T) {
	pad := NewPad(Derive(Blueprint{HarmonicComplexity: Complex}).Pad)
	audio.Init(pad, voiceParams)
	for i := 0; i < 6; i++ {
		pad.Play(pad.Chord(), 4)
		pad.Sing()
	}
	if n := pad.Notes(); n != padPolyphony {
		t.Errorf("Notes = %d, want %d", n, padPolyphony)
	}
}

func TestRetiredVoiceFadesOut(t *testing.T) {
	lead := NewLead(Derive(example).Lead)
	audio.Init(lead, voiceParams)
	lead.Play(C4, 10)
	peak(lead, 800)
	lead.retire()
	n := 0
	for !lead.Done() {
		lead.Sing()
		n++
	}
	if want := int(retireTime * voiceParams.SampleRate); n != want {
		t.Errorf("faded in %d samples, want %d", n, want)
	}
	if x := lead.Sing(); x != 0 {
		t.Errorf("retired voice still sounds: %v", x)
	}
}

func TestBankReplace(t *testing.T) {
	var b bank
	build := func() []voice {
		s := Derive(example)
		vs := []voice{NewPad(s.Pad), NewTexture(s.Texture, rand.New(rand.NewSource(1))), NewLead(s.Lead)}
		for _, v := range vs {
			audio.Init(v, voiceParams)
		}
		return vs
	}
	for i := 0; i < 5; i++ {
		b.replace(build())
		b.Sing()
	}
	if len(b.retiring) != 12 {
		t.Errorf("retiring = %d, want 12", len(b.retiring))
	}
	for i := 0; i < int(retireTime*voiceParams.SampleRate)+1; i++ {
		b.Sing()
	}
	if len(b.retiring) != 0 {
		t.Errorf("retiring = %d after fade", len(b.retiring))
	}
	for k := VoiceKind(0); k < numVoiceKinds; k++ {
		if n := b.count(k); n != 1 {
			t.Errorf("%d live %v voices", n, k)
		}
	}
}
