package audio

import (
	"math"
	"math/rand"
	"testing"
)

func TestNoiseDeterministic(t *testing.T) {
	for _, c := range []Color{White, Pink, Brown} {
		a := NewNoise(c, rand.New(rand.NewSource(7)))
		b := NewNoise(c, rand.New(rand.NewSource(7)))
		for i := 0; i < 1000; i++ {
			if x, y := a.Sing(), b.Sing(); x != y {
				t.Fatalf("%s: sample %d differs: %v != %v", c, i, x, y)
			}
		}
	}
}

func TestNoiseLevels(t *testing.T) {
	for _, c := range []Color{White, Pink, Brown} {
		n := NewNoise(c, rand.New(rand.NewSource(1)))
		sum, peak := 0.0, 0.0
		const count = 100000
		for i := 0; i < count; i++ {
			x := n.Sing()
			sum += x * x
			peak = math.Max(peak, math.Abs(x))
		}
		rms := math.Sqrt(sum / count)
		if rms < .05 || rms > .8 {
			t.Errorf("%s: rms %.3f out of range", c, rms)
		}
		if peak > 2 {
			t.Errorf("%s: peak %.3f too large", c, peak)
		}
	}
}

func TestBrownNoiseIsDarker(t *testing.T) {
	// Mean absolute sample-to-sample difference tracks high-frequency energy.
	diff := func(c Color) float64 {
		n := NewNoise(c, rand.New(rand.NewSource(3)))
		prev, sum := n.Sing(), 0.0
		for i := 0; i < 10000; i++ {
			x := n.Sing()
			sum += math.Abs(x - prev)
			prev = x
		}
		return sum
	}
	w, p, b := diff(White), diff(Pink), diff(Brown)
	if !(w > p && p > b) {
		t.Errorf("expected white > pink > brown roughness, got %.1f %.1f %.1f", w, p, b)
	}
}

func TestSlowRandBounded(t *testing.T) {
	r := NewSlowRand(4, rand.New(rand.NewSource(1)))
	Init(r, Params{SampleRate: 1000})
	for i := 0; i < 10000; i++ {
		if x := r.Sing(); math.Abs(x) > 1.5 {
			t.Fatalf("sample %d = %v out of range", i, x)
		}
	}
}
