package cst820

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestConsumePending(t *testing.T) {
	s := newSignalStore(nil)
	if s.consume() {
		t.Fatal("pending before any signal")
	}
	s.signal()
	if !s.consume() {
		t.Error("first consume missed the signal")
	}
	if s.consume() {
		t.Error("second consume reported a signal")
	}
}

func TestSignalNotLost(t *testing.T) {
	s := newSignalStore(nil)
	for i := 0; i < 1000; i++ {
		done := make(chan struct{})
		go func() {
			s.signal()
			close(done)
		}()
		<-s.wake
		if !s.consume() {
			t.Fatalf("signal %d lost", i)
		}
		<-done
	}
}

func TestSignalAfterConsume(t *testing.T) {
	s := newSignalStore(nil)
	s.signal()
	<-s.wake
	s.consume()
	s.signal()
	select {
	case <-s.wake:
	default:
		t.Fatal("no wake token for a signal after consume")
	}
	if !s.consume() {
		t.Error("signal after consume not observed by the next consume")
	}
}

func TestWatchEdges(t *testing.T) {
	pin := &gpiotest.Pin{N: "INT", EdgesChan: make(chan gpio.Level, 1)}
	s := newSignalStore(pin)
	done, exited := make(chan struct{}), make(chan struct{})
	go s.watchEdges(done, exited)
	pin.EdgesChan <- gpio.Low
	select {
	case <-s.wake:
	case <-time.After(time.Second):
		t.Fatal("edge not signalled")
	}
	if !s.consume() {
		t.Error("edge did not set pending")
	}
	close(done)
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
