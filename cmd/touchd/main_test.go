package main

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tinygo.org/x/drivers/touch"
	"touchpanel.dev/driver/cst820"
	"touchpanel.dev/trace"
)

func TestWritePNG(t *testing.T) {
	events := []trace.Event{
		{Kind: trace.TouchEvent, X: 10, Y: 10},
		{Kind: trace.TouchEvent, X: 200, Y: 300},
		{Kind: trace.ReleaseEvent},
	}
	path := filepath.Join(t.TempDir(), "trace.png")
	if err := writePNG(path, trace.Render(events, image.Pt(240, 320), 4)); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 240 || cfg.Height != 320 {
		t.Errorf("got %dx%d image, want 240x320", cfg.Width, cfg.Height)
	}
}

func TestSamplePointer(t *testing.T) {
	ptr := new(cst820.Pointer)
	ptr.Touch(cst820.TouchPoint{ID: 1, State: 1, X: 120, Y: 80})
	ctx, cancel := context.WithCancel(context.Background())
	reports := make(chan touch.Point, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		samplePointer(ctx, ptr, time.Millisecond, func(p touch.Point) {
			reports <- p
		})
	}()
	want := touch.Point{X: 120, Y: 80, Z: 1}
	select {
	case got := <-reports:
		if got != want {
			t.Errorf("got contact %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no contact reported")
	}
	// An unchanged contact and a released pointer are not reported.
	ptr.Release()
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done
	if n := len(reports); n != 0 {
		t.Errorf("got %d extra reports, want none", n)
	}
}
