package cst820

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

const (
	// resetDelay is held after each edge of the reset pulse.
	resetDelay = 300 * time.Millisecond
	// After reset the chip pulses the interrupt line roughly every 10ms
	// for a while. It is considered settled after a quiet settleWindow.
	settleWindow = 50 * time.Millisecond
	// settleTimeout bounds the wait in case the pulses never stop.
	settleTimeout = time.Second
)

func (d *Device) hardReset() error {
	if d.rst == nil {
		return nil
	}
	if err := d.rst.Out(gpio.Low); err != nil {
		return err
	}
	d.sleep(resetDelay)
	if err := d.rst.Out(gpio.High); err != nil {
		return err
	}
	d.sleep(resetDelay)
	return nil
}

// awaitSettle waits until no interrupt arrives for settleWindow. It
// reports the number of pulses seen and false if it gave up after
// settleTimeout.
func (d *Device) awaitSettle() (int, bool) {
	deadline := time.NewTimer(settleTimeout)
	defer deadline.Stop()
	window := time.NewTimer(settleWindow)
	defer window.Stop()
	pulses := 0
	for {
		select {
		case <-d.store.wake:
			pulses++
			window.Reset(settleWindow)
		case <-window.C:
			return pulses, true
		case <-deadline.C:
			return pulses, false
		}
	}
}
