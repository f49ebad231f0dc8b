package audio

// EventDelay runs callbacks after a number of seconds measured in rendered
// samples.  Events are kept as a delta list: each entry stores the samples
// remaining after the one before it.
type EventDelay struct {
	Params Params
	events []delayEvent
}

type delayEvent struct {
	n    int
	task *Task
}

// Task is a handle to a pending EventDelay callback.
type Task struct {
	f        func()
	canceled bool
	done     bool
}

// Cancel prevents the callback from running.  It reports whether the task
// was still pending.
func (t *Task) Cancel() bool {
	if t == nil || t.done || t.canceled {
		return false
	}
	t.canceled = true
	return true
}

// Pending reports whether the callback has neither run nor been canceled.
func (t *Task) Pending() bool {
	return t != nil && !t.done && !t.canceled
}

func (d *EventDelay) Delay(t float64, f func()) *Task {
	if d.Params.SampleRate == 0 {
		panic("EventDelay.Delay called before InitAudio")
	}
	task := &Task{f: f}
	n := int(t * d.Params.SampleRate)
	i := 0
	for ; i < len(d.events); i++ {
		e := &d.events[i]
		if n < e.n {
			e.n -= n
			break
		}
		n -= e.n
	}
	d.events = append(d.events, delayEvent{})
	copy(d.events[i+1:], d.events[i:])
	d.events[i] = delayEvent{n, task}
	return task
}

func (d *EventDelay) Step() {
	if len(d.events) > 0 {
		d.events[0].n--
		for len(d.events) > 0 {
			e := &d.events[0]
			if e.n > 0 {
				break
			}
			t := e.task
			d.events = d.events[1:]
			if !t.canceled {
				t.done = true
				t.f()
			}
		}
	}
}

// Len returns the number of queued events, including canceled ones not yet due.
func (d *EventDelay) Len() int { return len(d.events) }
