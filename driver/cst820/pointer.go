package cst820

import (
	"sync"

	"tinygo.org/x/drivers/touch"
)

// Pointer is a Listener that remembers the latest contact. It implements
// touch.Pointer for code written against the TinyGo touch drivers.
type Pointer struct {
	mu       sync.Mutex
	last     TouchPoint
	touching bool
}

func (p *Pointer) Touch(tp TouchPoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = tp
	p.touching = true
}

func (p *Pointer) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touching = false
}

// ReadTouchPoint returns the latest contact with a Z of 1, or the zero
// Point if the screen is not touched.
func (p *Pointer) ReadTouchPoint() touch.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.touching {
		return touch.Point{}
	}
	return touch.Point{X: int(p.last.X), Y: int(p.last.Y), Z: 1}
}

var _ touch.Pointer = (*Pointer)(nil)
