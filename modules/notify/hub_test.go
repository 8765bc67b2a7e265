package notify

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// fakeConn records written messages in place of a WebSocket connection.
type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	c.messages = append(c.messages, buf)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *fakeConn) last(t *testing.T) Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		t.Fatal("no messages written")
	}
	var env Envelope
	if err := json.Unmarshal(c.messages[len(c.messages)-1], &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		hub.Wait()
	})
	return hub
}

// waitFor polls until cond holds or the deadline expires.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestHub_PushDeliversToAllUserConnections(t *testing.T) {
	hub := startHub(t)

	connA := &fakeConn{}
	connB := &fakeConn{}
	hub.Register(&Client{ID: "a", Conn: connA})
	hub.Register(&Client{ID: "b", Conn: connB})
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	hub.Join("a", 7)
	hub.Join("b", 7)
	if got := hub.UserClientCount(7); got != 2 {
		t.Fatalf("UserClientCount(7) = %d, want 2", got)
	}

	hub.Push(7, "taskCreated", map[string]string{"message": "hello"})
	waitFor(t, func() bool { return connA.count() == 1 && connB.count() == 1 })

	env := connA.last(t)
	if env.Type != "taskCreated" {
		t.Errorf("envelope type = %q, want %q", env.Type, "taskCreated")
	}
}

func TestHub_PushIgnoresOtherUsers(t *testing.T) {
	hub := startHub(t)

	mine := &fakeConn{}
	theirs := &fakeConn{}
	hub.Register(&Client{ID: "mine", Conn: mine})
	hub.Register(&Client{ID: "theirs", Conn: theirs})
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	hub.Join("mine", 1)
	hub.Join("theirs", 2)

	hub.Push(1, "taskUpdated", nil)
	waitFor(t, func() bool { return mine.count() == 1 })

	if theirs.count() != 0 {
		t.Errorf("other user received %d messages, want 0", theirs.count())
	}
}

func TestHub_PushToAbsentUserIsDropped(t *testing.T) {
	hub := startHub(t)

	conn := &fakeConn{}
	hub.Register(&Client{ID: "a", Conn: conn})
	waitFor(t, func() bool { return hub.ClientCount() == 1 })
	hub.Join("a", 1)

	// Delivery to a user with no bound connections is silently dropped.
	hub.Push(42, "taskShared", nil)
	hub.Push(1, "taskShared", nil)
	waitFor(t, func() bool { return conn.count() == 1 })
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := startHub(t)

	conn := &fakeConn{}
	hub.Register(&Client{ID: "a", Conn: conn})
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.Join("a", 1)
	hub.Leave("a")
	if got := hub.UserClientCount(1); got != 0 {
		t.Fatalf("UserClientCount(1) = %d after leave, want 0", got)
	}

	hub.Push(1, "taskCreated", nil)

	// Give the delivery loop a chance to misbehave before asserting.
	time.Sleep(50 * time.Millisecond)
	if conn.count() != 0 {
		t.Errorf("received %d messages after leave, want 0", conn.count())
	}
}

func TestHub_RejoinSwitchesUser(t *testing.T) {
	hub := startHub(t)

	conn := &fakeConn{}
	hub.Register(&Client{ID: "a", Conn: conn})
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.Join("a", 1)
	hub.Join("a", 2)

	if got := hub.UserClientCount(1); got != 0 {
		t.Errorf("UserClientCount(1) = %d after rejoin, want 0", got)
	}
	if got := hub.UserClientCount(2); got != 1 {
		t.Errorf("UserClientCount(2) = %d, want 1", got)
	}
}

func TestHub_UnregisterCleansUp(t *testing.T) {
	hub := startHub(t)

	conn := &fakeConn{}
	client := &Client{ID: "a", Conn: conn}
	hub.Register(client)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })
	hub.Join("a", 1)

	hub.Unregister(client)
	waitFor(t, func() bool { return hub.ClientCount() == 0 })

	if got := hub.UserClientCount(1); got != 0 {
		t.Errorf("UserClientCount(1) = %d after unregister, want 0", got)
	}
}
