package cst820

// RegisterMap lists the register addresses of the CST820 that the driver
// uses. The touch registers are read as one block starting at WorkMode.
type RegisterMap struct {
	WorkMode uint8
	// Bits 3-0: number of touch points.
	TouchCount uint8
	// Bits 7-6: event flag. Bits 3-0: X[11:8].
	XHigh uint8
	// X[7:0].
	XLow uint8
	// Bits 7-4: touch ID. Bits 3-0: Y[11:8].
	YHigh uint8
	// Y[7:0].
	YLow uint8
	// 0x01 enters gesture mode, 0x00 leaves it.
	GestureEnable uint8
	// Gesture code, only valid in gesture mode.
	GestureID uint8
}

var registers = RegisterMap{
	WorkMode:      0x00,
	TouchCount:    0x02,
	XHigh:         0x03,
	XLow:          0x04,
	YHigh:         0x05,
	YLow:          0x06,
	GestureEnable: 0xd0,
	GestureID:     0xd3,
}

// Registers returns the register map of the chip.
func Registers() RegisterMap {
	return registers
}

const (
	// DefaultAddress is the default I²C address.
	DefaultAddress = 0x15

	// FrameSize is the length of the status block read on every touch
	// interrupt.
	FrameSize = 7

	gestureModeOn = 0x01
)

// TouchPoint is a single contact reported by the chip.
type TouchPoint struct {
	// ID is the touch count of the frame, not a contact identifier.
	ID uint8
	// State is the 2-bit event flag of the contact.
	State uint8
	X, Y  uint16
}

type FrameKind int

const (
	Release FrameKind = iota
	Touch
	// Unsupported marks frames reporting more than one contact.
	Unsupported
)

func (k FrameKind) String() string {
	switch k {
	case Release:
		return "release"
	case Touch:
		return "touch"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Frame is a decoded status block.
type Frame struct {
	Kind FrameKind
	// Count is the number of touch points reported.
	Count int
	// Point is valid only for Touch frames and holds raw sensor
	// coordinates.
	Point TouchPoint
}

// DecodeFrame decodes a status block read from the WorkMode register.
func DecodeFrame(raw [FrameSize]byte) Frame {
	r := registers
	count := int(raw[r.TouchCount] & 0x0f)
	switch {
	case count == 0:
		return Frame{Kind: Release}
	case count > 1:
		return Frame{Kind: Unsupported, Count: count}
	}
	xh, yh := raw[r.XHigh], raw[r.YHigh]
	return Frame{
		Kind:  Touch,
		Count: count,
		Point: TouchPoint{
			ID:    uint8(count),
			State: xh >> 6,
			X:     uint16(xh&0x0f)<<8 | uint16(raw[r.XLow]),
			Y:     uint16(yh&0x0f)<<8 | uint16(raw[r.YLow]),
		},
	}
}

// Bus is the register transport. It is satisfied by periph's i2c.Bus and
// TinyGo's machine.I2C.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

func (d *Device) readFrame() ([FrameSize]byte, error) {
	var frame [FrameSize]byte
	req := d.scratch[:1]
	req[0] = registers.WorkMode
	if err := d.bus.Tx(d.addr, req, frame[:]); err != nil {
		return frame, err
	}
	return frame, nil
}

func (d *Device) writeReg(reg, val uint8) error {
	req := d.scratch[:2]
	req[0], req[1] = reg, val
	return d.bus.Tx(d.addr, req, nil)
}

func (d *Device) readReg(reg uint8) (uint8, error) {
	req, resp := d.scratch[:1], d.scratch[1:2]
	req[0] = reg
	err := d.bus.Tx(d.addr, req, resp)
	return resp[0], err
}

// enableGesture turns on gesture mode and reads the register back. The
// result is only logged.
func (d *Device) enableGesture() {
	if err := d.writeReg(registers.GestureEnable, gestureModeOn); err != nil {
		d.logf("gesture enable: %v", err)
		return
	}
	v, err := d.readReg(registers.GestureEnable)
	if err != nil {
		d.logf("gesture read back: %v", err)
		return
	}
	d.logf("gestures enabled: 0x%02x", v)
}
