package render

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gordonklaus/ambient"
	"github.com/gordonklaus/ambient/audio"
	wav "github.com/youpy/go-wav"
)

var blueprint = ambient.Blueprint{
	TempoBPM:           120,
	PitchRange:         ambient.PitchMid,
	HarmonicComplexity: ambient.Simple,
	SonicPalette:       ambient.Retro8Bit,
	TimbreBrightness:   .6,
	RhythmDensity:      .9,
	SpatialReverb:      .2,
	ChaosFactor:        .7,
}

var params = audio.Params{SampleRate: 8000, BufferSize: 256}

func TestWAV(t *testing.T) {
	var buf bytes.Buffer
	if err := WAV(context.Background(), blueprint, &buf, 3, ambient.WithParams(params), ambient.WithSeed(3)); err != nil {
		t.Fatal(err)
	}

	r := wav.NewReader(bytes.NewReader(buf.Bytes()))
	f, err := r.Format()
	if err != nil {
		t.Fatal(err)
	}
	if f.NumChannels != 2 || f.SampleRate != 8000 || f.BitsPerSample != 16 {
		t.Errorf("format = %+v", f)
	}

	var frames []wav.Sample
	for {
		s, err := r.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		frames = append(frames, s...)
	}
	if len(frames) != 24000 {
		t.Fatalf("%d frames, want 24000", len(frames))
	}
	loud := false
	for _, s := range frames[:16000] {
		if s.Values[0] != 0 || s.Values[1] != 0 {
			loud = true
			break
		}
	}
	if !loud {
		t.Error("render is silent")
	}
	if last := frames[len(frames)-1]; last.Values[0] != 0 || last.Values[1] != 0 {
		t.Errorf("last frame %v, want silence after the fade", last.Values)
	}
}

func TestFileRemovedOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := File(ctx, blueprint, path, 1, ambient.WithParams(params)); err == nil {
		t.Fatal("File succeeded with a canceled context")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial file left behind: %v", err)
	}
}
