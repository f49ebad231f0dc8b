package audio

import "math"

type ConstDelay struct {
	delay float64
	buf   []float64
	i     int
}

func NewConstDelay(delay float64) *ConstDelay {
	return &ConstDelay{delay: delay}
}

func (d *ConstDelay) InitAudio(p Params) {
	n := int(d.delay * p.SampleRate)
	if n < 1 {
		n = 1
	}
	d.buf = make([]float64, n)
	d.i = 0
}

func (d *ConstDelay) Delay(x float64) float64 {
	y := d.buf[d.i]
	d.buf[d.i] = x
	d.i = (d.i + 1) % len(d.buf)
	return y
}

// DelayLine is a delay whose length, in seconds, may vary continuously up to
// the maximum given at construction.  Reads interpolate linearly.
type DelayLine struct {
	Params Params
	max    float64
	buf    []float64
	i      int
}

func NewDelayLine(max float64) *DelayLine {
	return &DelayLine{max: max}
}

func (d *DelayLine) InitAudio(p Params) {
	d.Params = p
	d.buf = make([]float64, int(d.max*p.SampleRate)+2)
	d.i = 0
}

// Read returns the input from t seconds before the next Write, so reading a
// one-sample delay returns the most recent Write.
func (d *DelayLine) Read(t float64) float64 {
	n := len(d.buf)
	s := math.Max(1, math.Min(t*d.Params.SampleRate, float64(n-2)))
	k, frac := math.Modf(s)
	j := d.i - int(k) + 1
	if j < 0 {
		j += n
	}
	j2 := j - 1
	if j2 < 0 {
		j2 += n
	}
	return d.buf[j]*(1-frac) + d.buf[j2]*frac
}

func (d *DelayLine) Write(x float64) {
	d.i = (d.i + 1) % len(d.buf)
	d.buf[d.i] = x
}

// PingPongDelay bounces echoes of a mono input between the left and right
// channels.  The left echo arrives after Time, the right one after 2*Time.
type PingPongDelay struct {
	Time     Param
	Feedback Param
	Wet      Param
	l, r     *DelayLine
}

func NewPingPongDelay(time, feedback, wet, max float64) *PingPongDelay {
	d := &PingPongDelay{l: NewDelayLine(max), r: NewDelayLine(max)}
	d.Time.Set(time)
	d.Feedback.Set(feedback)
	d.Wet.Set(wet)
	return d
}

func (d *PingPongDelay) InitAudio(p Params) {
	d.Time.InitAudio(p)
	d.Feedback.InitAudio(p)
	d.Wet.InitAudio(p)
	d.l.InitAudio(p)
	d.r.InitAudio(p)
}

func (d *PingPongDelay) Filter(x float64) (left, right float64) {
	t, fb, wet := d.Time.Sing(), d.Feedback.Sing(), d.Wet.Sing()
	el, er := d.l.Read(t), d.r.Read(t)
	d.l.Write(x + fb*er)
	d.r.Write(el)
	dry := (1 - wet) * x
	return dry + wet*el, dry + wet*er
}
