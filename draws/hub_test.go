package draws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	return hub
}

func waitRegistered(t *testing.T, hub *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		n := len(hub.rooms[room])
		hub.mu.RUnlock()
		if n == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %q never reached %d clients", room, want)
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case body := <-c.send:
		var msg Message
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestHubBroadcastToRoom(t *testing.T) {
	hub := startHub(t)

	a1 := NewClient("a1", hub, nil, "division:1")
	a2 := NewClient("a2", hub, nil, "division:1")
	b1 := NewClient("b1", hub, nil, "division:2")
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b1)
	waitRegistered(t, hub, "division:1", 2)
	waitRegistered(t, hub, "division:2", 1)

	hub.BroadcastToRoom("division:1", EventMatchUpdated, map[string]int{"match_id": 7})

	for _, c := range []*Client{a1, a2} {
		msg := receive(t, c)
		if msg.Type != EventMatchUpdated {
			t.Errorf("client %s: type = %q, want %q", c.ID, msg.Type, EventMatchUpdated)
		}
		if msg.Room != "division:1" {
			t.Errorf("client %s: room = %q, want %q", c.ID, msg.Room, "division:1")
		}
	}

	select {
	case body := <-b1.send:
		t.Fatalf("client in another room received %s", body)
	default:
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)

	c := NewClient("c1", hub, nil, "division:3")
	hub.Register(c)
	waitRegistered(t, hub, "division:3", 1)

	hub.Unregister(c)
	waitRegistered(t, hub, "division:3", 0)

	select {
	case _, ok := <-c.send:
		if ok {
			t.Fatal("expected send channel closed, got a message")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed after unregister")
	}
}

func TestHubBroadcastSkipsFullBuffer(t *testing.T) {
	hub := startHub(t)

	c := NewClient("slow", hub, nil, "division:4")
	hub.Register(c)
	waitRegistered(t, hub, "division:4", 1)

	for i := 0; i < cap(c.send); i++ {
		c.send <- []byte("{}")
	}

	done := make(chan struct{})
	go func() {
		hub.BroadcastToRoom("division:4", EventStandingsUpdated, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a full client buffer")
	}
	if got := len(c.send); got != cap(c.send) {
		t.Fatalf("buffer length = %d, want %d", got, cap(c.send))
	}
}
