package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestNewOutput(t *testing.T) {
	for name, want := range map[string]interface{}{
		"":          &PortAudio{},
		"portaudio": &PortAudio{},
		"oto":       &Oto{},
		"null":      &Null{},
	} {
		o, err := NewOutput(name)
		if err != nil {
			t.Fatalf("NewOutput(%q): %v", name, err)
		}
		switch want.(type) {
		case *PortAudio:
			if _, ok := o.(*PortAudio); !ok {
				t.Errorf("NewOutput(%q) = %T", name, o)
			}
		case *Oto:
			if _, ok := o.(*Oto); !ok {
				t.Errorf("NewOutput(%q) = %T", name, o)
			}
		case *Null:
			if _, ok := o.(*Null); !ok {
				t.Errorf("NewOutput(%q) = %T", name, o)
			}
		}
	}
	if _, err := NewOutput("alsa"); !errors.Is(err, ErrUnknownOutput) {
		t.Errorf("err = %v, want ErrUnknownOutput", err)
	}
}

func TestOtoSourceInterleaves(t *testing.T) {
	s := &otoSource{render: func(l, r Audio) {
		for i := range l {
			l[i] = float32(i)
			r[i] = -float32(i)
		}
	}}
	p := make([]byte, 3*8)
	n, err := s.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read = %d, %v", n, err)
	}
	for i := 0; i < 3; i++ {
		l := math.Float32frombits(binary.LittleEndian.Uint32(p[8*i:]))
		r := math.Float32frombits(binary.LittleEndian.Uint32(p[8*i+4:]))
		if l != float32(i) || r != -float32(i) {
			t.Errorf("frame %d = (%v, %v)", i, l, r)
		}
	}
}
