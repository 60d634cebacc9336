package trace

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Render draws the strokes of events in black on a white image of size
// dims. A stroke is the path through consecutive touches and ends at a
// release. Strokes of a single touch are drawn as dots.
func Render(events []Event, dims image.Point, strokeWidth float64) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: dims})
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	width, height := dims.X, dims.Y
	dasher := rasterx.NewDasher(width, height, rasterx.NewScannerGV(width, height, img, img.Bounds()))
	dasher.SetStroke(fixed.Int26_6(strokeWidth*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, nil, 0)
	dasher.SetColor(color.Black)
	dots := rasterx.NewFiller(width, height, rasterx.NewScannerGV(width, height, img, img.Bounds()))
	dots.SetColor(color.Black)

	var stroke []Event
	flush := func() {
		switch len(stroke) {
		case 0:
		case 1:
			e := stroke[0]
			rasterx.AddCircle(float64(e.X), float64(e.Y), strokeWidth/2, dots)
		default:
			for i, e := range stroke {
				p := rasterx.ToFixedP(float64(e.X), float64(e.Y))
				if i == 0 {
					dasher.Start(p)
				} else {
					dasher.Line(p)
				}
			}
			dasher.Stop(false)
		}
		stroke = stroke[:0]
	}
	for _, e := range events {
		switch e.Kind {
		case TouchEvent:
			if n := len(stroke); n > 0 && stroke[n-1].X == e.X && stroke[n-1].Y == e.Y {
				continue
			}
			stroke = append(stroke, e)
		case ReleaseEvent:
			flush()
		}
	}
	flush()
	dasher.Draw()
	dots.Draw()
	return img
}
