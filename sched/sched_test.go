package sched

import (
	"slices"
	"sync"
	"testing"
	"time"
)

func TestOrder(t *testing.T) {
	q := NewQueue()
	var got []int
	for i := 0; i < 100; i++ {
		q.Defer(func() {
			got = append(got, i)
		})
	}
	q.Close()
	if len(got) != 100 {
		t.Fatalf("ran %d tasks, want 100", len(got))
	}
	if !slices.IsSorted(got) {
		t.Errorf("tasks ran out of order: %v", got)
	}
}

func TestDeferDoesNotBlock(t *testing.T) {
	q := NewQueue()
	defer q.Close()
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	q.Defer(func() {
		defer wg.Done()
		<-release
	})
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			q.Defer(func() {})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Defer blocked behind a running task")
	}
	close(release)
	wg.Wait()
}

func TestDeferAfterClose(t *testing.T) {
	q := NewQueue()
	q.Close()
	q.Defer(func() {
		t.Error("task ran after Close")
	})
	q.Close()
}
