package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestHubBroadcastsToClients(t *testing.T) {
	h := NewHub("test", nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	c := newClient()
	h.Register(c)
	if !h.HasClients() {
		t.Fatalf("expected a registered client")
	}
	h.Publish("status", map[string]int{"n": 1})

	select {
	case data := <-c.send:
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type != "status" || string(msg.Payload) != `{"n":1}` {
			t.Fatalf("unexpected message %s", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no broadcast received")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := <-c.send; ok {
		t.Fatalf("expected client channel closed on shutdown")
	}
	c.trySend([]byte("late"))
	h.Unregister(c)
}

func TestClientDropsWhenFull(t *testing.T) {
	c := newClient()
	for i := 0; i < cap(c.send)+4; i++ {
		c.sendJSON("ping", nil)
	}
	if len(c.send) != cap(c.send) {
		t.Fatalf("expected a full buffer, got %d", len(c.send))
	}
}
