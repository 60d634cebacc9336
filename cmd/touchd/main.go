// Command touchd reads a CST820 touch controller on a Linux host and logs,
// records or forwards its events.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/signal"
	"time"

	"tinygo.org/x/drivers/touch"
	"touchpanel.dev/driver/cst820"
	"touchpanel.dev/sched"
	"touchpanel.dev/trace"
)

var (
	busName   = flag.String("i2c", "", "I²C bus, empty for the first available")
	addr      = flag.Uint("addr", cst820.DefaultAddress, "I²C address")
	intPin    = flag.String("int", "GPIO4", "interrupt pin")
	rstPin    = flag.String("rst", "", "reset pin, empty for none")
	rotation  = flag.Int("rotation", 0, "display rotation in degrees (0, 90, 180, 270)")
	width     = flag.Int("width", 240, "display width")
	height    = flag.Int("height", 320, "display height")
	record    = flag.String("record", "", "record events to file")
	serialDev = flag.String("serial", "", "forward events to serial device")
	baud      = flag.Int("baud", 115200, "serial baud rate")
	pngOut    = flag.String("png", "", "render the touch trace to a PNG file on exit")
	status    = flag.Duration("status", 0, "log the current contact at this interval, 0 to disable")
	verbose   = flag.Bool("v", false, "verbose driver logging")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "touchd: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	rot, err := cst820.ParseRotation(*rotation)
	if err != nil {
		return err
	}
	if err := lockMemory(); err != nil {
		log.Printf("touchd: %v", err)
	}
	hw, err := openHardware(*busName, *intPin, *rstPin)
	if err != nil {
		return err
	}
	defer hw.Close()

	listeners := []cst820.Listener{logListener{}}
	var sinks []trace.Sink
	if *record != "" {
		f, err := os.Create(*record)
		if err != nil {
			return err
		}
		defer f.Close()
		sinks = append(sinks, trace.NewWriter(f))
	}
	if *serialDev != "" {
		s, err := openSerial(*serialDev, *baud)
		if err != nil {
			return fmt.Errorf("serial: %w", err)
		}
		defer s.Close()
		sinks = append(sinks, trace.NewWriter(s))
	}
	var buf *trace.Buffer
	if *pngOut != "" {
		buf = new(trace.Buffer)
		sinks = append(sinks, buf)
	}
	var rec *trace.Recorder
	if len(sinks) > 0 {
		rec = trace.NewRecorder(sinks...)
		listeners = append(listeners, rec)
	}

	var ptr *cst820.Pointer
	if *status > 0 {
		ptr = new(cst820.Pointer)
		listeners = append(listeners, ptr)
	}

	queue := sched.NewQueue()
	dims := image.Pt(*width, *height)
	dev := cst820.New(hw.bus, hw.intr, hw.rst, cst820.Config{
		Address:   uint16(*addr),
		Rotation:  rot,
		Width:     dims.X,
		Height:    dims.Y,
		Listeners: listeners,
		Deferrer:  queue,
		Verbose:   *verbose,
	})
	if err := dev.Configure(); err != nil {
		dev.Close()
		queue.Close()
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), stopSignals...)
	defer stop()
	if ptr != nil {
		go samplePointer(ctx, ptr, *status, func(p touch.Point) {
			log.Printf("contact (%d, %d)", p.X, p.Y)
		})
	}
	err = dev.Run(ctx)
	dev.Close()
	queue.Close()
	if !errors.Is(err, context.Canceled) {
		return err
	}
	if rec != nil {
		if err := rec.Err(); err != nil {
			return err
		}
	}
	if buf != nil {
		return writePNG(*pngOut, trace.Render(buf.Events, dims, 4))
	}
	return nil
}

type logListener struct{}

func (logListener) Touch(tp cst820.TouchPoint) {
	log.Printf("touch (%d, %d) id %d state %d", tp.X, tp.Y, tp.ID, tp.State)
}

func (logListener) Release() {
	log.Printf("release")
}

// samplePointer reads p every interval until ctx is done and reports
// contacts that differ from the previous report.
func samplePointer(ctx context.Context, p touch.Pointer, interval time.Duration, report func(touch.Point)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	var last touch.Point
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		pt := p.ReadTouchPoint()
		if pt.Z == 0 || pt == last {
			continue
		}
		last = pt
		report(pt)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
