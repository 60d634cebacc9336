package cst820

import (
	"fmt"
	"image"
)

// Rotation is the orientation of the display relative to the sensor.
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// ParseRotation converts a rotation in degrees.
func ParseRotation(degrees int) (Rotation, error) {
	switch degrees {
	case 0:
		return Rotate0, nil
	case 90:
		return Rotate90, nil
	case 180:
		return Rotate180, nil
	case 270:
		return Rotate270, nil
	}
	return 0, fmt.Errorf("cst820: unsupported rotation: %d", degrees)
}

func (r Rotation) String() string {
	switch r {
	case Rotate0:
		return "0°"
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	}
	return fmt.Sprintf("Rotation(%d)", int(r))
}

// Transform maps the sensor point p to display coordinates for a display
// of size dims. Coordinates beyond dims are clamped at zero.
func Transform(p image.Point, r Rotation, dims image.Point) image.Point {
	var t image.Point
	switch r {
	case Rotate90:
		t = image.Pt(p.Y, dims.X-p.X)
	case Rotate180:
		t = image.Pt(dims.X-p.X, dims.Y-p.Y)
	case Rotate270:
		t = image.Pt(p.X, dims.Y-p.Y)
	default:
		t = p
	}
	t.X = max(t.X, 0)
	t.Y = max(t.Y, 0)
	return t
}
