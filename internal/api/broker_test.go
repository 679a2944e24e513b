package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("q1")
	defer b.Unsubscribe("q1", ch)

	b.Publish("q1", SSEEvent{Type: "route.computed", Data: map[string]any{"queryId": "q1"}})
	select {
	case evt := <-ch:
		if evt.Type != "route.computed" {
			t.Fatalf("got %q", evt.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestBrokerOtherTopicIgnored(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("q1")
	defer b.Unsubscribe("q1", ch)

	b.Publish("q2", SSEEvent{Type: "route.computed"})
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("q1")
	defer b.Unsubscribe("q1", ch)

	// Overflow the buffer; Publish must drop rather than block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish("q1", SSEEvent{Type: "query.started"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestBrokerUnsubscribeCloses(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("q1")
	b.Unsubscribe("q1", ch)
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
}
