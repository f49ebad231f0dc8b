package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gordonklaus/ambient/audio"
)

// testFramer returns a Framer whose frames channel the test feeds directly.
func testFramer(depth int) *Framer {
	return &Framer{frameSize: 2, frames: make(chan []int16, depth)}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster(testFramer(0))
	if b.ListenerCount() != 0 {
		t.Errorf("initial ListenerCount = %d, want 0", b.ListenerCount())
	}

	l1 := b.Subscribe()
	l2 := b.Subscribe()
	if b.ListenerCount() != 2 {
		t.Errorf("ListenerCount = %d, want 2", b.ListenerCount())
	}

	b.Unsubscribe(l1)
	b.Unsubscribe(l1)
	if b.ListenerCount() != 1 {
		t.Errorf("ListenerCount = %d, want 1", b.ListenerCount())
	}
	select {
	case <-l1.Done():
	default:
		t.Error("Done not closed after Unsubscribe")
	}

	b.Unsubscribe(l2)
	if b.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d, want 0", b.ListenerCount())
	}
}

func TestBroadcastDelivers(t *testing.T) {
	f := testFramer(10)
	b := NewBroadcaster(f)
	listeners := []*Listener{b.Subscribe(), b.Subscribe(), b.Subscribe()}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	f.frames <- []int16{42, -42}
	for i, l := range listeners {
		select {
		case got := <-l.C:
			if got[0] != 42 || got[1] != -42 {
				t.Errorf("listener %d got %v", i, got)
			}
		case <-time.After(time.Second):
			t.Errorf("listener %d timed out", i)
		}
	}
}

func TestBroadcastDropsForSlowListener(t *testing.T) {
	f := testFramer(0)
	b := NewBroadcaster(f)
	slow := b.Subscribe()
	fast := b.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	received := 0
	for i := 0; i < 200; i++ {
		f.frames <- []int16{int16(i)}
		<-fast.C
		received++
	}
	if received != 200 {
		t.Errorf("fast listener got %d frames", received)
	}

	// The last send may still be in flight to the slow listener.
	deadline := time.Now().Add(time.Second)
	for slow.Dropped() < 50 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if len(slow.C) != listenerDepth || slow.Dropped() != 50 {
		t.Errorf("slow listener holds %d frames and dropped %d", len(slow.C), slow.Dropped())
	}
	st := b.Stats()
	if st.Listeners != 2 || st.Frames != 200 || st.Dropped != 50 || st.Overruns != 0 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestStatsCountFramerOverruns(t *testing.T) {
	f := NewFramer(8000, 1)
	b := NewBroadcaster(f)
	block := make(audio.Audio, 160)
	for i := 0; i < 4; i++ {
		f.Write(block, block)
	}
	if st := b.Stats(); st.Overruns != 3 || st.Frames != 0 {
		t.Errorf("Stats = %+v, want 3 overruns and no frames", st)
	}
}

func TestBroadcastStops(t *testing.T) {
	for name, stop := range map[string]func(cancel context.CancelFunc, f *Framer){
		"cancel": func(cancel context.CancelFunc, _ *Framer) { cancel() },
		"close":  func(_ context.CancelFunc, f *Framer) { close(f.frames) },
	} {
		f := testFramer(0)
		b := NewBroadcaster(f)
		ctx, cancel := context.WithCancel(context.Background())

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Run(ctx)
		}()
		stop(cancel, f)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Errorf("%s: broadcaster did not stop", name)
		}
		cancel()
	}
}
