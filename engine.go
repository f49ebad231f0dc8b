// Package ambient renders generative ambience from a Blueprint.
//
// An Engine owns one signal graph: a Transport, an effects chain and a bank
// of three voices (pad, texture and lead) whose notes are gated by seeded
// randomness on transport ticks.  Control methods (Init, Configure, Start,
// Stop, Close) may be called from any goroutine.  They never touch the graph
// directly; they queue commands that the render path applies between
// buffers.
package ambient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/ambient/audio"
)

// State is the lifecycle state of an Engine.
type State int

const (
	Uninitialized State = iota
	Ready
	Configured
	Playing
	Stopped
	Closed
)

var stateNames = [...]string{"uninitialized", "ready", "configured", "playing", "stopped", "closed"}

func (s State) String() string { return enumString(stateNames[:], int(s)) }

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

const (
	DefaultAnalyserSize = 256
	levelWindow         = .3
	decayTolerance      = .25
	commandBuffer       = 64
	impulseSalt         = 0x5eed
)

// Engine renders one soundscape.  Create it with New and call Init before
// anything else.
type Engine struct {
	params       audio.Params
	seed         int64
	log          *slog.Logger
	output       audio.Output
	tap          func(left, right audio.Audio)
	observe      func(Event)
	analyserSize int
	analyser     *audio.Analyser
	cmds         chan func()
	done         chan struct{}
	closeOnce    sync.Once
	voices       atomic.Int32
	level        atomic.Uint64

	initMu   sync.Mutex
	mu       sync.Mutex
	state    State
	settings *Settings
	decay    float64
	irGen    int
	issued   uint64

	turn   *sync.Cond
	served uint64 // guarded by turn.L

	// Render path only.
	transport *Transport
	fx        *Effects
	bank      bank
	sched     *scheduler
	noise     *rand.Rand
	disposal  *audio.Task
	fadeIns   int
	meter     *audio.AmpMeter
}

// New returns an Uninitialized engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		params:       audio.Params{SampleRate: 48000, BufferSize: 1024},
		seed:         time.Now().UnixNano(),
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		output:       &audio.PortAudio{},
		analyserSize: DefaultAnalyserSize,
		cmds:         make(chan func(), commandBuffer),
		done:         make(chan struct{}),
		turn:         sync.NewCond(new(sync.Mutex)),
	}
	for _, o := range opts {
		o(e)
	}
	a, err := audio.NewAnalyser(e.analyserSize)
	if err != nil {
		return nil, fmt.Errorf("analyser: %w", err)
	}
	e.analyser = a

	s := Derive(Blueprint{})
	e.transport = NewTransport(s.Tempo)
	e.fx = NewEffects(s)
	e.noise = rand.New(rand.NewSource(e.seed))
	e.sched = newScheduler(e.transport, e.seed, e.observe)
	e.meter = audio.NewAmpMeter(levelWindow)
	audio.Init(e.transport, e.params)
	audio.Init(e.fx, e.params)
	audio.Init(e.meter, e.params)
	return e, nil
}

// Init builds the reverb impulse and opens the output.  The engine becomes
// Ready only once both have succeeded.  Calling Init on an initialized engine
// does nothing.
func (e *Engine) Init(ctx context.Context) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	switch e.State() {
	case Uninitialized:
	case Closed:
		return ErrClosed
	default:
		return nil
	}

	start := time.Now()
	decay := Derive(Blueprint{}).ReverbDecay
	imp, err := e.generateImpulse(ctx, decay)
	if err != nil {
		return fmt.Errorf("reverb impulse: %w", err)
	}
	e.send(func() { e.fx.Reverb.SetImpulse(imp) })

	if err := e.output.Open(e.params, e.Process); err != nil {
		e.log.Error("open output", slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrOutputUnavailable, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Closed {
		e.output.Close()
		return ErrClosed
	}
	e.state = Ready
	e.decay = decay
	e.log.Info("engine ready",
		slog.Float64("sample_rate", e.params.SampleRate),
		slog.Int("buffer_size", e.params.BufferSize),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (e *Engine) generateImpulse(ctx context.Context, decay float64) (*audio.Impulse, error) {
	type result struct {
		imp *audio.Impulse
		err error
	}
	done := make(chan result, 1)
	r := rand.New(rand.NewSource(e.seed ^ impulseSalt))
	go func() {
		imp, err := audio.GenerateImpulse(ctx, e.params, decay, r)
		done <- result{imp, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.imp, res.err
	}
}

// Configure retunes the graph for b and rebuilds the voices.  It does not
// start playback, and an engine that is already playing keeps playing.
func (e *Engine) Configure(b Blueprint) error {
	s := Derive(b)
	return e.control(func() (func(), error) {
		switch e.state {
		case Closed:
			return nil, ErrClosed
		case Uninitialized:
			return nil, ErrNotReady
		}

		voices := e.buildVoices(s)
		if math.Abs(s.ReverbDecay-e.decay) > decayTolerance {
			e.decay = s.ReverbDecay
			e.irGen++
			go e.rebuildImpulse(e.irGen, s.ReverbDecay)
		}
		e.settings = &s
		if e.state != Playing {
			e.state = Configured
		}
		e.log.Info("configured",
			slog.Float64("tempo", s.Tempo),
			slog.Float64("cutoff", s.Cutoff),
			slog.Float64("reverb_decay", s.ReverbDecay),
			slog.Float64("reverb_wet", s.ReverbWet),
			slog.Bool("lead", s.Lead.Present),
			slog.String("state", e.state.String()))
		return func() {
			if e.disposal.Cancel() {
				e.teardown()
			}
			for _, v := range voices {
				audio.Init(v, e.params)
			}
			e.transport.SetTempo(s.Tempo)
			e.fx.Tune(s)
			e.bank.replace(voices)
			e.sched.schedule(voices)
			e.voices.Store(int32(len(e.bank.live)))
		}, nil
	})
}

func (e *Engine) buildVoices(s Settings) []voice {
	vs := []voice{NewPad(s.Pad), NewTexture(s.Texture, e.noise)}
	if s.Lead.Present {
		vs = append(vs, NewLead(s.Lead))
	}
	return vs
}

func (e *Engine) rebuildImpulse(gen int, decay float64) {
	imp, err := audio.GenerateImpulse(context.Background(), e.params, decay, rand.New(rand.NewSource(e.seed^impulseSalt)))
	if err != nil {
		e.log.Error("rebuild reverb impulse", slog.Float64("decay", decay), slog.Any("error", err))
		return
	}
	e.control(func() (func(), error) {
		if gen != e.irGen || e.state == Closed {
			return nil, nil
		}
		e.log.Debug("reverb impulse rebuilt", slog.Float64("decay", decay))
		return func() { e.fx.Reverb.SetImpulse(imp) }, nil
	})
}

// Start runs the transport and fades the master in.  If a stop is still
// fading out, Start cancels its teardown and fades back in without
// restarting the transport.
func (e *Engine) Start() error {
	return e.control(func() (func(), error) {
		switch e.state {
		case Closed:
			return nil, ErrClosed
		case Uninitialized:
			return nil, ErrNotReady
		case Ready:
			return nil, ErrNotConfigured
		case Playing:
			return nil, nil
		}
		e.state = Playing
		e.log.Info("started")
		return func() {
			e.fadeIns++
			e.fx.Master.RampTo(1, fadeInTime)
			if e.disposal.Cancel() {
				e.disposal = nil
				return
			}
			if len(e.sched.loops) == 0 {
				e.sched.schedule(e.bank.live)
			}
			e.transport.Start()
		}, nil
	})
}

// Stop fades the master out and then, on the transport clock, stops the
// transport and disposes the loops.
func (e *Engine) Stop() error {
	return e.control(func() (func(), error) {
		switch e.state {
		case Closed:
			return nil, ErrClosed
		case Playing:
		default:
			return nil, nil
		}
		e.state = Stopped
		e.log.Info("stopped")
		return func() {
			e.fx.Master.RampTo(0, fadeOutTime)
			e.disposal.Cancel()
			e.disposal = e.transport.ScheduleAfter(fadeOutTime, e.teardown)
		}, nil
	})
}

func (e *Engine) teardown() {
	e.transport.Stop()
	e.sched.dispose()
	e.disposal = nil
}

// Close releases the output.  The engine cannot be used afterwards.  Control
// calls blocked on a full command queue return before Close takes the lock.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() { close(e.done) })
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Closed {
		return nil
	}
	prev := e.state
	e.state = Closed
	if prev == Uninitialized {
		return nil
	}
	if err := e.output.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	e.log.Info("closed")
	return nil
}

// control runs f with mu held and queues the command it returns after mu is
// released, so a full queue never blocks State or Close.  Commands are
// queued in the order of the state changes that produced them: each takes a
// ticket under mu and waits its turn to send.
func (e *Engine) control(f func() (func(), error)) error {
	e.mu.Lock()
	cmd, err := f()
	if cmd == nil {
		e.mu.Unlock()
		return err
	}
	ticket := e.issued
	e.issued++
	e.mu.Unlock()

	e.turn.L.Lock()
	for e.served != ticket {
		e.turn.Wait()
	}
	e.turn.L.Unlock()
	e.send(cmd)
	e.turn.L.Lock()
	e.served++
	e.turn.Broadcast()
	e.turn.L.Unlock()
	return err
}

// send queues f for the render path.  After Close, f is dropped.
func (e *Engine) send(f func()) {
	select {
	case e.cmds <- f:
	case <-e.done:
	}
}

// Process renders one block.  It is called by the output device; with the
// null output the caller must call it to make time pass.
func (e *Engine) Process(left, right audio.Audio) {
	for drained := false; !drained; {
		select {
		case f := <-e.cmds:
			f()
		default:
			drained = true
		}
	}
	for i := range left {
		e.transport.Step()
		l, r := e.fx.Process(e.bank.Sing())
		left[i] = float32(l)
		if i < len(right) {
			right[i] = float32(r)
		}
	}
	e.analyser.Write(left, right)
	e.level.Store(math.Float64bits(e.meter.Amplitude(left)))
	if e.tap != nil {
		e.tap(left, right)
	}
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Settings returns the settings of the last Configure, if any.
func (e *Engine) Settings() (Settings, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.settings == nil {
		return Settings{}, false
	}
	return *e.settings, true
}

// Params returns the rendering parameters.
func (e *Engine) Params() audio.Params { return e.params }

// Analyser returns the tap on the rendered output.
func (e *Engine) Analyser() *audio.Analyser { return e.analyser }

// Status is a snapshot for monitoring.  Level is the RMS of the left
// output channel over the last 300ms.
type Status struct {
	State    State     `json:"state"`
	Voices   int       `json:"voices"`
	Level    float64   `json:"level"`
	Settings *Settings `json:"settings,omitempty"`
}

// Status returns a snapshot of the engine for monitoring.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		State:    e.state,
		Voices:   int(e.voices.Load()),
		Level:    math.Float64frombits(e.level.Load()),
		Settings: e.settings,
	}
}
