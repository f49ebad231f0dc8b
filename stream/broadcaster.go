package stream

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

// listenerDepth is about three seconds of 20ms frames.
const listenerDepth = 150

// Broadcaster fans the frames of one Framer out to any number of listeners.
// The listener set is copied on write, so forwarding a frame takes no lock.
type Broadcaster struct {
	framer    *Framer
	mu        sync.Mutex // serializes changes to listeners
	listeners atomic.Pointer[[]*Listener]
	frames    atomic.Uint64
	dropped   atomic.Uint64
}

// Listener receives frames from a Broadcaster.
type Listener struct {
	C       <-chan []int16
	c       chan []int16
	done    chan struct{}
	dropped atomic.Uint64
}

// Done is closed when the listener is unsubscribed.
func (l *Listener) Done() <-chan struct{} { return l.done }

// Dropped returns the number of frames skipped because C was full.
func (l *Listener) Dropped() uint64 { return l.dropped.Load() }

// NewBroadcaster distributes the frames cut by f.
func NewBroadcaster(f *Framer) *Broadcaster {
	b := &Broadcaster{framer: f}
	b.listeners.Store(&[]*Listener{})
	return b
}

func (b *Broadcaster) Subscribe() *Listener {
	c := make(chan []int16, listenerDepth)
	l := &Listener{C: c, c: c, done: make(chan struct{})}
	b.mu.Lock()
	defer b.mu.Unlock()
	ls := append(slices.Clone(*b.listeners.Load()), l)
	b.listeners.Store(&ls)
	return l
}

// Unsubscribe removes l and closes its Done channel.  Unsubscribing twice is
// harmless.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	old := *b.listeners.Load()
	i := slices.Index(old, l)
	if i < 0 {
		return
	}
	ls := slices.Delete(slices.Clone(old), i, i+1)
	b.listeners.Store(&ls)
	close(l.done)
}

func (b *Broadcaster) ListenerCount() int { return len(*b.listeners.Load()) }

// Stats counts the frames that passed through a Broadcaster.
type Stats struct {
	Listeners int `json:"listeners"`
	// Frames forwarded from the framer.
	Frames uint64 `json:"frames"`
	// Frames skipped for slow listeners, summed over listeners.
	Dropped uint64 `json:"dropped"`
	// Frames the framer discarded because the broadcaster fell behind.
	Overruns uint64 `json:"overruns"`
}

func (b *Broadcaster) Stats() Stats {
	return Stats{
		Listeners: b.ListenerCount(),
		Frames:    b.frames.Load(),
		Dropped:   b.dropped.Load(),
		Overruns:  b.framer.Dropped(),
	}
}

// Run forwards frames until ctx is done.  A listener that is not keeping up
// misses frames rather than stalling the others.
func (b *Broadcaster) Run(ctx context.Context) {
	frames := b.framer.Frames()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			b.frames.Add(1)
			for _, l := range *b.listeners.Load() {
				select {
				case l.c <- frame:
				default:
					l.dropped.Add(1)
					b.dropped.Add(1)
				}
			}
		}
	}
}
