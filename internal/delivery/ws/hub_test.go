package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mmuslimabdulj/calcvault/internal/domain"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// newMockClient creates a client without a websocket connection
func newMockClient(hub *Hub) *Client {
	return NewClient(hub, nil, "user-1")
}

func startHub(t *testing.T, historySize int) *Hub {
	t.Helper()
	hub := NewHub(historySize, discard)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	for i := 0; i < 50; i++ {
		if hub.ClientCount() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients, got %d", n, hub.ClientCount())
}

// nextEvent reads one event or fails after a short timeout
func nextEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var e Event
		if err := json.Unmarshal(raw, &e); err != nil {
			t.Fatalf("bad event %s: %v", raw, err)
		}
		return e
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func stateWith(texts ...string) domain.AppState {
	s := domain.NewAppState()
	for _, text := range texts {
		s.Messages = append(s.Messages, domain.NewMessage("u", domain.BroadcastID, text, time.Now()))
	}
	return s
}

func TestNewClient(t *testing.T) {
	hub := NewHub(0, nil)
	c := NewClient(hub, nil, "user-1")

	if c.ID == "" || c.UserID != "user-1" || c.hub != hub || c.send == nil {
		t.Errorf("Unexpected client %+v", c)
	}
	if hub.history.cap != domain.MaxHistorySize {
		t.Errorf("Expected default history size %d, got %d", domain.MaxHistorySize, hub.history.cap)
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := startHub(t, 10)
	client := newMockClient(hub)

	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.Unregister(client)
	waitForClients(t, hub, 0)

	if _, ok := <-client.send; ok {
		t.Error("Expected send channel closed after unregister")
	}

	// double unregister is harmless
	hub.Unregister(client)
}

func TestHub_PublishState(t *testing.T) {
	hub := startHub(t, 10)
	client := newMockClient(hub)
	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.PublishState(stateWith("one", "two"))

	for _, want := range []string{"one", "two"} {
		e := nextEvent(t, client)
		if e.Type != EventMessage {
			t.Fatalf("Expected message event, got %s", e.Type)
		}
		var m domain.Message
		json.Unmarshal(e.Payload, &m)
		if m.Text != want {
			t.Errorf("Expected %s, got %s", want, m.Text)
		}
	}
	if e := nextEvent(t, client); e.Type != EventSnapshot {
		t.Errorf("Expected snapshot event, got %s", e.Type)
	}

	// only the new message is announced the second time
	hub.PublishState(stateWith("one", "two", "three"))
	e := nextEvent(t, client)
	var m domain.Message
	json.Unmarshal(e.Payload, &m)
	if e.Type != EventMessage || m.Text != "three" {
		t.Errorf("Expected message 'three', got %s %s", e.Type, m.Text)
	}
}

func TestHub_ReplaysToNewClients(t *testing.T) {
	hub := startHub(t, 2)
	hub.PublishState(stateWith("a", "b", "c"))

	// let the hub drain the broadcast channel
	time.Sleep(20 * time.Millisecond)

	client := newMockClient(hub)
	hub.Register(client)

	var texts []string
	for i := 0; i < 2; i++ {
		e := nextEvent(t, client)
		var m domain.Message
		json.Unmarshal(e.Payload, &m)
		texts = append(texts, m.Text)
	}
	if texts[0] != "b" || texts[1] != "c" {
		t.Errorf("Expected last two messages [b c], got %v", texts)
	}

	e := nextEvent(t, client)
	if e.Type != EventSnapshot {
		t.Fatalf("Expected latest snapshot last, got %s", e.Type)
	}
	var st domain.AppState
	json.Unmarshal(e.Payload, &st)
	if len(st.Messages) != 3 {
		t.Errorf("Expected snapshot with 3 messages, got %d", len(st.Messages))
	}
}

func TestHub_Prime(t *testing.T) {
	hub := startHub(t, 10)
	hub.Prime(stateWith("old"))

	client := newMockClient(hub)
	hub.Register(client)
	waitForClients(t, hub, 1)

	hub.PublishState(stateWith("old", "new"))
	e := nextEvent(t, client)
	var m domain.Message
	json.Unmarshal(e.Payload, &m)
	if m.Text != "new" {
		t.Errorf("Expected only 'new' announced, got %s", m.Text)
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(10, discard)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := newMockClient(hub)
	hub.Register(client)
	waitForClients(t, hub, 1)

	cancel()
	<-stopped

	if _, ok := <-client.send; ok {
		t.Error("Expected client channel closed on shutdown")
	}
	// calls after shutdown must not block
	hub.Broadcast([]byte(`{}`))
	hub.Unregister(client)
}

func TestHub_RaceCondition(t *testing.T) {
	hub := startHub(t, 10)

	done := make(chan struct{})
	for i := 0; i < 50; i++ {
		go func() {
			c := newMockClient(hub)
			hub.Register(c)
			time.Sleep(time.Millisecond)
			hub.Unregister(c)
			done <- struct{}{}
		}()
	}
	go hub.PublishState(stateWith("x"))

	for i := 0; i < 50; i++ {
		<-done
	}
	waitForClients(t, hub, 0)
}

func TestClient_SendBufferFull(t *testing.T) {
	c := &Client{send: make(chan []byte, 1)}
	c.Send([]byte("1"))
	c.Send([]byte("2")) // dropped, must not block

	if got := <-c.send; string(got) != "1" {
		t.Errorf("Expected first message kept, got %s", got)
	}
}
