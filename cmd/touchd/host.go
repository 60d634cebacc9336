package main

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

type hardware struct {
	bus  i2c.BusCloser
	intr gpio.PinIn
	rst  gpio.PinOut
}

func openHardware(busName, intName, rstName string) (*hardware, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	// An empty name selects the first available bus.
	b, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("i2c: %w", err)
	}
	if err := b.SetSpeed(400 * physic.KiloHertz); err != nil {
		b.Close()
		return nil, fmt.Errorf("i2c: %w", err)
	}
	hw := &hardware{bus: b}
	intr := gpioreg.ByName(intName)
	if intr == nil {
		b.Close()
		return nil, fmt.Errorf("unknown interrupt pin %q", intName)
	}
	hw.intr = intr
	if rstName != "" {
		rst := gpioreg.ByName(rstName)
		if rst == nil {
			b.Close()
			return nil, fmt.Errorf("unknown reset pin %q", rstName)
		}
		hw.rst = rst
	}
	return hw, nil
}

func (h *hardware) Close() error {
	h.intr.Halt()
	return h.bus.Close()
}
