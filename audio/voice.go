package audio

// Voice is a sound that renders until it is done.
type Voice interface {
	Sing() float64
	Done() bool
}

// MultiVoice mixes a set of voices, dropping each once it is done.  When Max
// is positive, adding a voice beyond Max drops the oldest.
type MultiVoice struct {
	Params Params
	Max    int
	voices []Voice
}

func (m *MultiVoice) InitAudio(p Params) { m.Params = p }

func (m *MultiVoice) Add(v Voice) {
	Init(v, m.Params)
	if m.Max > 0 && len(m.voices) >= m.Max {
		n := copy(m.voices, m.voices[len(m.voices)-m.Max+1:])
		m.voices = m.voices[:n]
	}
	m.voices = append(m.voices, v)
}

// Len returns the number of sounding voices.
func (m *MultiVoice) Len() int { return len(m.voices) }

func (m *MultiVoice) Sing() float64 {
	sum := 0.0
	j := 0
	for _, v := range m.voices {
		sum += v.Sing()
		if !v.Done() {
			m.voices[j] = v
			j++
		}
	}
	for i := j; i < len(m.voices); i++ {
		m.voices[i] = nil
	}
	m.voices = m.voices[:j]
	return sum
}

func (m *MultiVoice) Done() bool {
	return len(m.voices) == 0
}
