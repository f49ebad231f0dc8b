package audio

import (
	"context"
	"math"
	"math/rand"
	"testing"
)

func TestGenerateImpulse(t *testing.T) {
	p := Params{SampleRate: 8000}
	imp, err := GenerateImpulse(context.Background(), p, 2, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if imp.Decay != 2 {
		t.Errorf("Decay = %v, want 2", imp.Decay)
	}
	want := (int(2.01*8000) + reverbBlock - 1) / reverbBlock
	if got := imp.l.Partitions(); got != want {
		t.Errorf("partitions = %d, want %d", got, want)
	}

	if _, err := GenerateImpulse(context.Background(), p, 0, rand.New(rand.NewSource(1))); err == nil {
		t.Error("expected error for zero decay")
	}
}

func TestGenerateImpulseCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateImpulse(ctx, Params{SampleRate: 8000}, 1, rand.New(rand.NewSource(1)))
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestReverbTail(t *testing.T) {
	p := Params{SampleRate: 8000}
	imp, err := GenerateImpulse(context.Background(), p, 1, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatal(err)
	}
	r := NewReverb(1)
	Init(r, p)
	r.SetImpulse(imp)

	energy := 0.0
	for i := 0; i < 8000; i++ {
		x := 0.0
		if i == 0 {
			x = 1
		}
		l, rr := r.Filter(x, x)
		if i > 2*reverbBlock {
			energy += l*l + rr*rr
		}
	}
	if energy == 0 {
		t.Error("no reverb tail")
	}
}

func TestReverbDryWithoutImpulse(t *testing.T) {
	r := NewReverb(.8)
	Init(r, Params{SampleRate: 8000})
	if l, rr := r.Filter(.5, -.25); l != .5 || rr != -.25 {
		t.Errorf("got (%v, %v), want dry passthrough", l, rr)
	}
}

func TestReverbSwapCrossfades(t *testing.T) {
	p := Params{SampleRate: 8000}
	a, _ := GenerateImpulse(context.Background(), p, 1, rand.New(rand.NewSource(3)))
	b, _ := GenerateImpulse(context.Background(), p, 2, rand.New(rand.NewSource(4)))
	r := NewReverb(1)
	Init(r, p)
	r.SetImpulse(a)
	o := NewOsc(Sine)
	Init(o, p)
	o.SetFreq(220)

	var prev float64
	before, after := 0.0, 0.0
	const swap = 3*reverbBlock + 7
	for i := 0; i < 4*reverbBlock; i++ {
		if i == swap {
			r.SetImpulse(b)
		}
		l, _ := r.Filter(o.Sing(), 0)
		jump := math.Abs(l - prev)
		switch {
		case i > 2*reverbBlock && i < swap:
			before = math.Max(before, jump)
		case i >= swap:
			after = math.Max(after, jump)
		}
		prev = l
	}
	if r.Impulse() != b {
		t.Error("new impulse not installed")
	}
	if after > 1.5*before+.01 {
		t.Errorf("swap produced a jump of %.3f, steady state %.3f", after, before)
	}
}
