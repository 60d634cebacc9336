// Package cst820 implements a driver for the Hynitron CST820 capacitive
// touch controller.
//
// The interrupt line is watched for falling edges which only mark a touch
// as pending. Register reads, coordinate rotation and listener dispatch all
// happen in Poll, called from a single poll loop such as Run.
package cst820

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"touchpanel.dev/sched"
)

var (
	// ErrNotReady is returned by Poll before Configure has completed.
	ErrNotReady = errors.New("cst820: device not configured")
	// ErrConfigured is returned by a second call to Configure.
	ErrConfigured = errors.New("cst820: device already configured")
	// ErrBus wraps register transfer failures.
	ErrBus = errors.New("bus transfer failed")
)

type Config struct {
	// Address defaults to DefaultAddress.
	Address uint16
	// Rotation of the display relative to the sensor.
	Rotation Rotation
	// Width and Height of the display in pixels.
	Width, Height int
	Listeners     []Listener
	// Deferrer delivers touch events. If nil, the device runs its own
	// sched.Queue.
	Deferrer Deferrer
	// Logger defaults to log.Default().
	Logger *log.Logger
	// Verbose enables per-frame diagnostics.
	Verbose bool
}

// State is the setup progress of a Device.
type State int

const (
	Uninitialized State = iota
	PinsConfigured
	InterruptArmed
	Resetting
	SettleWaiting
	GestureConfigured
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case PinsConfigured:
		return "pins configured"
	case InterruptArmed:
		return "interrupt armed"
	case Resetting:
		return "resetting"
	case SettleWaiting:
		return "settle waiting"
	case GestureConfigured:
		return "gesture configured"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Device struct {
	bus       Bus
	addr      uint16
	intr      gpio.PinIn
	rst       gpio.PinOut
	rotation  Rotation
	dims      image.Point
	listeners []Listener
	deferrer  Deferrer
	queue     *sched.Queue
	log       *log.Logger
	verbose   bool

	state  State
	store  *signalStore
	done   chan struct{}
	exited chan struct{}
	sleep  func(time.Duration)
	// Scratch space for register writes.
	scratch [2]byte

	// inflight counts touch deliveries not yet run by the deferrer.
	inflight sync.WaitGroup
}

// New creates a driver for the chip on bus. The reset pin may be nil. The
// device must be set up with Configure before use.
func New(bus Bus, intr gpio.PinIn, rst gpio.PinOut, cfg Config) *Device {
	d := &Device{
		bus:       bus,
		addr:      cfg.Address,
		intr:      intr,
		rst:       rst,
		rotation:  cfg.Rotation,
		dims:      image.Pt(cfg.Width, cfg.Height),
		listeners: cfg.Listeners,
		deferrer:  cfg.Deferrer,
		log:       cfg.Logger,
		verbose:   cfg.Verbose,
		store:     newSignalStore(intr),
		sleep:     time.Sleep,
	}
	if d.addr == 0 {
		d.addr = DefaultAddress
	}
	if d.log == nil {
		d.log = log.Default()
	}
	return d
}

// State returns the setup progress of the device.
func (d *Device) State() State {
	return d.state
}

func (d *Device) advance(s State) {
	if s != d.state+1 {
		panic(fmt.Sprintf("cst820: invalid transition %v -> %v", d.state, s))
	}
	d.state = s
}

// Configure resets the chip and enables gesture mode. It blocks for the
// duration of the reset and the settling of the interrupt line, typically
// under a second.
func (d *Device) Configure() error {
	if d.state != Uninitialized {
		return ErrConfigured
	}
	if d.intr == nil {
		return errors.New("cst820: missing interrupt pin")
	}
	d.logConfig()

	if d.rst != nil {
		if err := d.rst.Out(gpio.High); err != nil {
			d.logf("reset pin: %v", err)
		}
	}
	if err := d.intr.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return fmt.Errorf("cst820: interrupt pin: %w", err)
	}
	d.advance(PinsConfigured)

	if err := d.intr.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return fmt.Errorf("cst820: interrupt pin: %w", err)
	}
	d.done = make(chan struct{})
	d.exited = make(chan struct{})
	go d.store.watchEdges(d.done, d.exited)
	d.advance(InterruptArmed)

	d.advance(Resetting)
	if err := d.hardReset(); err != nil {
		d.logf("reset: %v", err)
	}

	d.advance(SettleWaiting)
	pulses, settled := d.awaitSettle()
	if !settled {
		d.logf("interrupt line still pulsing after %v, continuing", settleTimeout)
	}
	d.debugf("%d pulses after reset", pulses)
	d.store.reset()

	d.enableGesture()
	d.advance(GestureConfigured)

	if d.deferrer == nil {
		d.queue = sched.NewQueue()
		d.deferrer = d.queue
	}
	d.advance(Ready)
	return nil
}

// Poll reads and dispatches a touch event if an interrupt arrived since
// the last call. Touches are delivered through the deferrer, releases
// directly. A failed read produces no event and an error wrapping ErrBus.
// Poll returns ErrNotReady before Configure and after Close.
func (d *Device) Poll() error {
	if d.state != Ready || d.done == nil {
		return ErrNotReady
	}
	if !d.store.consume() {
		return nil
	}
	raw, err := d.readFrame()
	if err != nil {
		return fmt.Errorf("cst820: %w: %w", ErrBus, err)
	}
	f := DecodeFrame(raw)
	switch f.Kind {
	case Release:
		d.dispatchRelease()
	case Unsupported:
		d.debugf("touch count %d out of range (must be between 0 and 1)", f.Count)
	case Touch:
		tp := f.Point
		p := Transform(image.Pt(int(tp.X), int(tp.Y)), d.rotation, d.dims)
		d.debugf("touch raw (%d, %d) -> (%d, %d) state %d", tp.X, tp.Y, p.X, p.Y, tp.State)
		tp.X, tp.Y = uint16(p.X), uint16(p.Y)
		d.dispatchTouch(tp)
	}
	return nil
}

// Run polls the device whenever an interrupt arrives, until ctx is done.
// Poll errors are logged.
func (d *Device) Run(ctx context.Context) error {
	if d.state != Ready {
		return ErrNotReady
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.store.wake:
		}
		if err := d.Poll(); err != nil {
			d.logf("%v", err)
		}
	}
}

// Close stops the interrupt watcher and, if the device owns it, the
// delivery queue.
func (d *Device) Close() {
	if d.done != nil {
		close(d.done)
		<-d.exited
		d.done = nil
	}
	if d.queue != nil {
		d.queue.Close()
		d.queue = nil
	}
}

func (d *Device) logConfig() {
	rst := "none"
	if d.rst != nil {
		rst = d.rst.String()
	}
	d.logf("address 0x%02x, interrupt pin %s, reset pin %s, rotation %v, display %dx%d",
		d.addr, d.intr, rst, d.rotation, d.dims.X, d.dims.Y)
}

func (d *Device) logf(format string, args ...any) {
	d.log.Printf("cst820: "+format, args...)
}

func (d *Device) debugf(format string, args ...any) {
	if d.verbose {
		d.logf(format, args...)
	}
}
