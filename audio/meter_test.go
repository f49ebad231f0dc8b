package audio

import (
	"math"
	"testing"
)

func TestAmpMeter(t *testing.T) {
	m := NewAmpMeter(1)
	Init(m, Params{SampleRate: 4})
	if a := m.Amplitude(Audio{.5, -.5, .5, -.5}); math.Abs(a-.5) > 1e-6 {
		t.Errorf("Amplitude = %v, want .5", a)
	}
}

func TestAnalyserWaveformOrder(t *testing.T) {
	a, err := NewAnalyser(4)
	if err != nil {
		t.Fatal(err)
	}
	a.Write(Audio{1, 2, 3}, Audio{1, 2, 3})
	a.Write(Audio{4, 5}, Audio{4, 5})
	got := a.Waveform(nil)
	want := []float32{2, 3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Waveform = %v, want %v", got, want)
		}
	}
}

func TestAnalyserLongBlockKeepsTail(t *testing.T) {
	a, _ := NewAnalyser(4)
	a.Write(Audio{1, 2, 3, 4, 5, 6, 7}, Audio{-1, -2, -3, -4, -5, -6, -7})
	for _, v := range a.Waveform(nil) {
		if v != 0 {
			t.Fatalf("mono mix of opposite channels should be 0, got %v", v)
		}
	}
	a.Write(Audio{1, 2, 3, 4, 5, 6, 7}, Audio{1, 2, 3, 4, 5, 6, 7})
	got := a.Waveform(nil)
	want := []float32{4, 5, 6, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Waveform = %v, want %v", got, want)
		}
	}
}

func TestAnalyserMagnitudes(t *testing.T) {
	const size = 256
	a, err := NewAnalyser(size)
	if err != nil {
		t.Fatal(err)
	}
	block := make(Audio, size)
	for i := range block {
		block[i] = float32(.5 * math.Sin(2*math.Pi*16*float64(i)/size))
	}
	a.Write(block, block)
	db := a.Magnitudes(nil)
	if len(db) != size/2 {
		t.Fatalf("len = %d, want %d", len(db), size/2)
	}
	if math.Abs(float64(db[16])+6.02) > 1 {
		t.Errorf("bin 16 = %.2f dB, want ~-6", db[16])
	}
}
