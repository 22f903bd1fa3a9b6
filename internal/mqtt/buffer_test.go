package mqtt

import (
	"fmt"
	"testing"
)

func TestRingBufferPushDrain(t *testing.T) {
	r := newRingBuffer(4)
	if r.len() != 0 {
		t.Fatalf("new buffer should be empty, len=%d", r.len())
	}

	r.push(bufferedMsg{topic: "a", payload: []byte("1")})
	r.push(bufferedMsg{topic: "b", payload: []byte("2")})
	if r.len() != 2 {
		t.Fatalf("expected len 2, got %d", r.len())
	}

	msgs := r.drainAll()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].topic != "a" || msgs[1].topic != "b" {
		t.Errorf("expected oldest-first order, got %q then %q", msgs[0].topic, msgs[1].topic)
	}
	if r.len() != 0 {
		t.Errorf("buffer should be empty after drain, len=%d", r.len())
	}
}

func TestRingBufferDrainEmpty(t *testing.T) {
	r := newRingBuffer(4)
	if msgs := r.drainAll(); msgs != nil {
		t.Errorf("expected nil from empty drain, got %d messages", len(msgs))
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	r := newRingBuffer(3)
	for i := 0; i < 5; i++ {
		r.push(bufferedMsg{topic: fmt.Sprintf("t%d", i)})
	}
	if r.len() != 3 {
		t.Fatalf("expected len capped at 3, got %d", r.len())
	}
	if r.dropped != 2 {
		t.Errorf("expected 2 dropped, got %d", r.dropped)
	}

	msgs := r.drainAll()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range []string{"t2", "t3", "t4"} {
		if msgs[i].topic != want {
			t.Errorf("msg %d: expected %q, got %q", i, want, msgs[i].topic)
		}
	}
	if r.dropped != 0 {
		t.Errorf("dropped counter should reset after drain, got %d", r.dropped)
	}
}

func TestRingBufferReuseAfterDrain(t *testing.T) {
	r := newRingBuffer(2)
	r.push(bufferedMsg{topic: "x"})
	r.drainAll()

	r.push(bufferedMsg{topic: "y"})
	r.push(bufferedMsg{topic: "z"})
	msgs := r.drainAll()
	if len(msgs) != 2 || msgs[0].topic != "y" || msgs[1].topic != "z" {
		t.Errorf("unexpected messages after reuse: %+v", msgs)
	}
}

func TestRingBufferWrapAround(t *testing.T) {
	r := newRingBuffer(3)
	// Fill, overflow once so head wraps, then verify ordering.
	for i := 0; i < 4; i++ {
		r.push(bufferedMsg{topic: fmt.Sprintf("t%d", i)})
	}
	msgs := r.drainAll()
	if len(msgs) != 3 || msgs[0].topic != "t1" || msgs[2].topic != "t3" {
		t.Errorf("unexpected wrap-around ordering: %+v", msgs)
	}
}
