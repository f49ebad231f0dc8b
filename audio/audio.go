package audio

import "math"

// Audio is a block of mono samples.
type Audio []float32

func (a *Audio) InitAudio(p Params) {
	*a = make(Audio, p.BufferSize)
}

// Peak returns the largest absolute sample value.
func (z Audio) Peak() float32 {
	var m float32
	for _, x := range z {
		if x < 0 {
			x = -x
		}
		if x > m {
			m = x
		}
	}
	return m
}

// Int16 converts a sample in [-1,1] to 16-bit PCM, clipping out-of-range values.
func Int16(x float32) int16 {
	if x != x {
		return 0
	}
	y := math.Round(float64(x) * 32767)
	if y > 32767 {
		return 32767
	}
	if y < -32768 {
		return -32768
	}
	return int16(y)
}

// Interleave writes left and right into dst as L,R,L,R... 16-bit PCM and
// returns the filled part of dst.
func Interleave(dst []int16, left, right Audio) []int16 {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	if cap(dst) < 2*n {
		dst = make([]int16, 2*n)
	}
	dst = dst[:2*n]
	for i := 0; i < n; i++ {
		dst[2*i] = Int16(left[i])
		dst[2*i+1] = Int16(right[i])
	}
	return dst
}
