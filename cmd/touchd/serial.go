package main

import (
	"io"

	"github.com/tarm/serial"
)

// openSerial opens dev for streaming the event trace. Events are written
// as unframed CBOR items, back to back.
func openSerial(dev string, baud int) (io.ReadWriteCloser, error) {
	s, err := serial.OpenPort(&serial.Config{Name: dev, Baud: baud})
	if err != nil {
		return nil, err
	}
	return s, nil
}
