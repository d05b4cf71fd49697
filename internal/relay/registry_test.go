package relay

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func newTestClient(buffer int) *Client {
	return &Client{
		ID:   uuid.New(),
		send: make(chan []byte, buffer),
	}
}

func register(r *Registry, buffer int) *Client {
	c := newTestClient(buffer)
	r.Register(c)
	return c
}

func drain(c *Client) [][]byte {
	var frames [][]byte
	for {
		select {
		case f, ok := <-c.send:
			if !ok {
				return frames
			}
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func TestJoinAndBroadcast(t *testing.T) {
	r := NewRegistry()
	dash := register(r, 8)
	driver := register(r, 8)

	r.Join(dash, GroupDashboard)
	r.Join(driver, GroupDrivers)

	r.Broadcast(GroupDashboard, []byte("ping"))

	if got := drain(dash); len(got) != 1 || string(got[0]) != "ping" {
		t.Fatalf("dashboard got %d frames, want exactly 1", len(got))
	}
	if got := drain(driver); len(got) != 0 {
		t.Errorf("driver got %d frames, want 0", len(got))
	}
}

func TestDoubleJoinDeliversOnce(t *testing.T) {
	r := NewRegistry()
	c := register(r, 8)

	r.Join(c, GroupDashboard)
	r.Join(c, GroupDashboard)

	r.Broadcast(GroupDashboard, []byte("once"))
	if got := drain(c); len(got) != 1 {
		t.Fatalf("got %d frames after double join, want 1", len(got))
	}
}

func TestLeaveStopsDelivery(t *testing.T) {
	r := NewRegistry()
	c := register(r, 8)

	r.Join(c, GroupDashboard)
	r.Leave(c, GroupDashboard)

	r.Broadcast(GroupDashboard, []byte("gone"))
	if got := drain(c); len(got) != 0 {
		t.Fatalf("got %d frames after leave, want 0", len(got))
	}
}

func TestRemoveClearsAllGroupsAndClosesSend(t *testing.T) {
	r := NewRegistry()
	c := register(r, 8)

	r.Join(c, GroupDashboard)
	r.Join(c, GroupDrivers)
	r.Remove(c)

	if n := r.GroupSize(GroupDashboard); n != 0 {
		t.Errorf("dashboard still has %d members", n)
	}
	if n := r.GroupSize(GroupDrivers); n != 0 {
		t.Errorf("drivers still has %d members", n)
	}

	if _, open := <-c.send; open {
		t.Error("send channel still open after Remove")
	}

	// Second Remove must be a no-op, not a double close.
	r.Remove(c)
}

func TestJoinAfterRemoveIgnored(t *testing.T) {
	r := NewRegistry()
	c := register(r, 8)
	r.Remove(c)

	r.Join(c, GroupDashboard)
	if n := r.GroupSize(GroupDashboard); n != 0 {
		t.Fatalf("removed client rejoined a group")
	}
}

func TestBroadcastEvictsStuckClient(t *testing.T) {
	r := NewRegistry()
	healthy := register(r, 8)
	stuck := register(r, 1)

	r.Join(healthy, GroupDashboard)
	r.Join(stuck, GroupDashboard)

	// Fill the stuck client's buffer, then broadcast again.
	r.Broadcast(GroupDashboard, []byte("a"))
	r.Broadcast(GroupDashboard, []byte("b"))

	if got := drain(healthy); len(got) != 2 {
		t.Errorf("healthy client got %d frames, want 2", len(got))
	}
	if n := r.GroupSize(GroupDashboard); n != 1 {
		t.Errorf("group size = %d after eviction, want 1", n)
	}
}

func TestSendSkipsRemovedClient(t *testing.T) {
	r := NewRegistry()
	c := register(r, 8)
	r.Remove(c)

	// Must not panic on the closed channel.
	r.Send(c, []byte("late"))
}

func TestConcurrentJoinLeaveBroadcast(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := register(r, 64)
			group := fmt.Sprintf("group-%d", n%5)
			for j := 0; j < 100; j++ {
				r.Join(c, group)
				r.Broadcast(group, []byte("x"))
				drain(c)
				r.Leave(c, group)
			}
			r.Remove(c)
		}(i)
	}
	wg.Wait()

	for n := 0; n < 5; n++ {
		group := fmt.Sprintf("group-%d", n)
		if size := r.GroupSize(group); size != 0 {
			t.Errorf("%s still has %d members after teardown", group, size)
		}
	}
}
