package cst820

import "sync"

// Listener receives touch events. Touch is called with display
// coordinates.
type Listener interface {
	Touch(tp TouchPoint)
	Release()
}

// Deferrer runs functions later, outside the caller's context, in the
// order they were deferred. Every deferred function must eventually run.
type Deferrer interface {
	Defer(f func())
}

// delivery is a touch event bound for a fixed set of listeners.
type delivery struct {
	tp        TouchPoint
	listeners []Listener
	done      *sync.WaitGroup
}

func (d delivery) run() {
	defer d.done.Done()
	for _, l := range d.listeners {
		l.Touch(d.tp)
	}
}

func (d *Device) dispatchTouch(tp TouchPoint) {
	d.inflight.Add(1)
	d.deferrer.Defer(delivery{tp: tp, listeners: d.listeners, done: &d.inflight}.run)
}

// dispatchRelease notifies listeners directly; there is no payload to
// compute. Listeners see every earlier touch before the release.
func (d *Device) dispatchRelease() {
	d.inflight.Wait()
	for _, l := range d.listeners {
		l.Release()
	}
}
