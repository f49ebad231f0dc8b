package audio

import (
	"fmt"
	"reflect"
)

// Initer is implemented by units that need to know the rendering parameters
// before they produce samples.
type Initer interface {
	InitAudio(Params)
}

// Params describes the rendering context shared by every unit in a graph.
type Params struct {
	SampleRate float64
	BufferSize int
}

func (p *Params) InitAudio(q Params) { *p = q }

// Seconds converts a sample count to seconds.
func (p Params) Seconds(n int) float64 { return float64(n) / p.SampleRate }

// Samples converts seconds to a whole number of samples.
func (p Params) Samples(t float64) int { return int(t * p.SampleRate) }

// Init walks x and calls InitAudio on every Initer it finds, descending into
// struct fields and slice elements that are not themselves Initers.
func Init(x interface{}, p Params) {
	if err := initVal(reflect.ValueOf(x), p); err != nil {
		panic("audio.Init: " + err.Error())
	}
}

var initerType = reflect.TypeOf(new(Initer)).Elem()

func initVal(v reflect.Value, p Params) (err error) {
	if !v.IsValid() || v.Kind() == reflect.Ptr && v.IsNil() || !v.CanInterface() {
		return
	}

	v = reflect.Indirect(v)
	if v.CanAddr() && v.Type().Name() != "" && v.Kind() != reflect.Interface {
		v = v.Addr()
	}
	if x, ok := v.Interface().(Initer); ok {
		x.InitAudio(p)
		return
	}

	defer func() {
		if err != nil {
			err = fmt.Errorf("%s\n\t%#v", err, v)
		}
	}()
	if t := v.Type(); reflect.PtrTo(t).Implements(initerType) {
		return fmt.Errorf("%s does not implement audio.Initer but *%s does.\nInit stack:", t, t)
	}

	v = reflect.Indirect(v)
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err = initVal(v.Field(i), p); err != nil {
				return
			}
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if err = initVal(v.Index(i), p); err != nil {
				return
			}
		}
	}

	return
}
