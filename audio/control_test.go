package audio

import (
	"math"
	"testing"
)

func TestParamRamp(t *testing.T) {
	c := NewParam(0)
	Init(c, Params{SampleRate: 100})
	c.RampTo(1, .5)
	if !c.Ramping() {
		t.Fatal("expected ramp in progress")
	}
	prev := 0.0
	for i := 0; i < 50; i++ {
		x := c.Sing()
		if d := x - prev; d < 0 || d > .0201 {
			t.Fatalf("step %d: jump %.4f", i, d)
		}
		prev = x
	}
	if c.Value() != 1 || c.Ramping() {
		t.Errorf("after ramp: value %v ramping %v", c.Value(), c.Ramping())
	}
	if c.Sing() != 1 {
		t.Error("value should hold after ramp")
	}
}

func TestParamRampFromMidRamp(t *testing.T) {
	c := NewParam(1)
	Init(c, Params{SampleRate: 1000})
	c.RampTo(0, .5)
	for i := 0; i < 250; i++ {
		c.Sing()
	}
	mid := c.Value()
	if math.Abs(mid-.5) > 1e-9 {
		t.Fatalf("halfway value %v, want .5", mid)
	}
	c.RampTo(1, 1)
	if x := c.Sing(); math.Abs(x-mid) > .001 {
		t.Errorf("reversed ramp jumped from %v to %v", mid, x)
	}
	if c.Target() != 1 {
		t.Errorf("target %v, want 1", c.Target())
	}
}

func TestParamZeroTimeIsImmediate(t *testing.T) {
	c := NewParam(3)
	Init(c, Params{SampleRate: 1000})
	c.RampTo(7, 0)
	if c.Value() != 7 || c.Ramping() {
		t.Errorf("value %v ramping %v, want immediate 7", c.Value(), c.Ramping())
	}
}
