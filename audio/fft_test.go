package audio

import (
	"math"
	"math/rand"
	"testing"
)

func directConvolve(x, h []float64) []float64 {
	y := make([]float64, len(x))
	for n := range y {
		for k := 0; k < len(h) && k <= n; k++ {
			y[n] += h[k] * x[n-k]
		}
	}
	return y
}

func TestConvolverMatchesDirect(t *testing.T) {
	const block = 16
	r := rand.New(rand.NewSource(1))
	h := make([]float64, 53)
	for i := range h {
		h[i] = r.Float64() - .5
	}
	x := make([]float64, 300)
	for i := range x {
		x[i] = r.Float64() - .5
	}

	c, err := NewConvolver(h, block)
	if err != nil {
		t.Fatal(err)
	}
	if c.Partitions() != 4 {
		t.Errorf("Partitions = %d, want 4", c.Partitions())
	}
	want := directConvolve(x, h)
	for n, v := range x {
		y := c.Filter(v)
		if n < block {
			if y != 0 {
				t.Fatalf("output before latency at %d: %v", n, y)
			}
			continue
		}
		if d := math.Abs(y - want[n-block]); d > 1e-9 {
			t.Fatalf("sample %d: got %.6f, want %.6f", n, y, want[n-block])
		}
	}
}

func TestConvolverRejectsBadBlock(t *testing.T) {
	if _, err := NewConvolver([]float64{1}, 100); err == nil {
		t.Error("expected error for non power-of-two block")
	}
}

func TestSpectrumPeak(t *testing.T) {
	const size = 256
	s, err := NewSpectrum(size)
	if err != nil {
		t.Fatal(err)
	}
	x := make([]float32, size)
	for i := range x {
		x[i] = float32(math.Sin(2 * math.Pi * 32 * float64(i) / size))
	}
	db := s.Decibels(nil, x)
	if len(db) != size/2 {
		t.Fatalf("len = %d, want %d", len(db), size/2)
	}
	best := 0
	for k := range db {
		if db[k] > db[best] {
			best = k
		}
	}
	if best != 32 {
		t.Errorf("peak bin %d, want 32", best)
	}
	if math.Abs(float64(db[32])) > 1 {
		t.Errorf("full-scale sine reads %.2f dB, want ~0", db[32])
	}

	silent := s.Decibels(nil, make([]float32, size))
	for k, v := range silent {
		if v != -100 {
			t.Fatalf("silent bin %d = %v, want -100", k, v)
		}
	}
}
