package cst820

import (
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// signalStore hands touch interrupts from the edge watcher to the poll
// loop. Only signal sets pending and only consume clears it.
type signalStore struct {
	pending atomic.Bool
	// wake holds at most one token telling the poll loop to look at
	// pending.
	wake chan struct{}
	pin  gpio.PinIn
}

func newSignalStore(pin gpio.PinIn) *signalStore {
	return &signalStore{
		wake: make(chan struct{}, 1),
		pin:  pin,
	}
}

// signal records a touch interrupt. It never blocks or allocates.
func (s *signalStore) signal() {
	s.pending.Store(true)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// consume reports and clears the pending flag.
func (s *signalStore) consume() bool {
	return s.pending.Swap(false)
}

// reset clears the flag and any wake token.
func (s *signalStore) reset() {
	s.pending.Store(false)
	select {
	case <-s.wake:
	default:
	}
}

// edgeTimeout bounds each wait for an edge so the watcher notices when it
// is stopped.
const edgeTimeout = 100 * time.Millisecond

// watchEdges calls s.signal for every falling edge on the interrupt pin
// until done is closed. It plays the part of the interrupt handler and
// does nothing but signal.
func (s *signalStore) watchEdges(done <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	for {
		select {
		case <-done:
			return
		default:
		}
		if s.pin.WaitForEdge(edgeTimeout) {
			s.signal()
		}
	}
}
