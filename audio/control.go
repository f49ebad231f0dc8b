package audio

// Param is a control value that moves between targets along linear ramps,
// one step per sample, so changes never produce discontinuities.
type Param struct {
	params Params
	x      float64
	target float64
	dx     float64
	n      int
}

func NewParam(x float64) *Param {
	return &Param{x: x, target: x}
}

func (c *Param) InitAudio(p Params) { c.params = p }

// Set jumps to x immediately, cancelling any ramp in progress.
func (c *Param) Set(x float64) {
	c.x, c.target, c.dx, c.n = x, x, 0, 0
}

// RampTo moves from the current value to x over t seconds.
func (c *Param) RampTo(x, t float64) {
	n := int(t * c.params.SampleRate)
	if n <= 0 {
		c.Set(x)
		return
	}
	c.target = x
	c.n = n
	c.dx = (x - c.x) / float64(n)
}

func (c *Param) Sing() float64 {
	if c.n > 0 {
		c.n--
		c.x += c.dx
		if c.n == 0 {
			c.x = c.target // this is necessary to land exactly on the target
		}
	}
	return c.x
}

func (c *Param) Value() float64  { return c.x }
func (c *Param) Target() float64 { return c.target }

// Ramping reports whether a ramp is in progress.
func (c *Param) Ramping() bool { return c.n > 0 }
