package hub

import (
	"sync"
	"testing"
	"time"
)

func TestLatestValueWins(t *testing.T) {
	h := New[int]()
	sub := h.Subscribe()

	h.Publish(1)
	h.Publish(2)
	h.Publish(3)

	select {
	case v := <-sub:
		if v != 3 {
			t.Fatalf("expected latest value 3, got %d", v)
		}
	default:
		t.Fatal("no value buffered")
	}
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	h := New[int]()
	_ = h.Subscribe() // never consumed

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.Publish(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher blocked on a stuck subscriber")
	}
}

func TestFanout(t *testing.T) {
	h := New[string]()
	a := h.Subscribe()
	b := h.Subscribe()
	h.Publish("tick")
	if v := <-a; v != "tick" {
		t.Errorf("subscriber a got %q", v)
	}
	if v := <-b; v != "tick" {
		t.Errorf("subscriber b got %q", v)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := New[int]()
	sub := h.Subscribe()
	h.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatal("unsubscribed channel should be closed")
	}
	// Publishing after unsubscribe must not panic.
	h.Publish(1)
}

func TestCloseDeliversBufferedValue(t *testing.T) {
	h := New[int]()
	sub := h.Subscribe()
	h.Publish(42)
	h.Close()

	v, ok := <-sub
	if !ok || v != 42 {
		t.Fatalf("expected buffered 42 before close, got %d ok=%t", v, ok)
	}
	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed")
	}

	// Idempotent close and post-close operations.
	h.Close()
	h.Publish(7)
	if _, ok := <-h.Subscribe(); ok {
		t.Fatal("subscribe after close should return a closed channel")
	}
}

func TestConcurrentPublishSubscribe(t *testing.T) {
	h := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sub := h.Subscribe()
			for j := 0; j < 100; j++ {
				h.Publish(j)
				select {
				case <-sub:
				default:
				}
			}
			h.Unsubscribe(sub)
		}(i)
	}
	wg.Wait()
	h.Close()
}
