package app

import (
	"testing"
	"time"

	"venue/internal/protocol"
)

func TestTickDeliversOneSnapshotPerViewer(t *testing.T) {
	h := newTestHub(RejectPolicy{})
	conns := make(map[string]*fakeConn)
	for i := 0; i < 3; i++ {
		v, c := connectViewer(t, h)
		conns[v.ID] = c
	}

	NewBroadcaster(h, time.Millisecond).Tick()

	for id, c := range conns {
		msgs := c.messages()
		if len(msgs) != 1 {
			t.Fatalf("viewer %s expected 1 message, got %d", id, len(msgs))
		}
		resp := decodeResponse(t, msgs[0])
		if resp.Type != protocol.TypeExpState {
			t.Fatalf("expected ExpState, got %s", resp.Type)
		}
		if resp.Parameters["playerId"] != id {
			t.Fatalf("playerId %s, want %s", resp.Parameters["playerId"], id)
		}
		if len(resp.ExpState.Viewers) != 3 {
			t.Fatalf("snapshot lists %d viewers, want 3", len(resp.ExpState.Viewers))
		}
	}
}

func TestTickIsolatesDeadChannel(t *testing.T) {
	h := newTestHub(RejectPolicy{})
	dead, deadConn := connectViewer(t, h)
	var live []*fakeConn
	for i := 0; i < 2; i++ {
		_, c := connectViewer(t, h)
		live = append(live, c)
	}
	deadConn.fail()

	NewBroadcaster(h, time.Millisecond).Tick()

	// The dead channel triggered disconnect cleanup mid-sweep; every
	// still-connected viewer must receive the tick regardless. They may
	// also see the resulting DeleteUser notification.
	for i, c := range live {
		var expStates int
		for _, m := range c.messages() {
			if decodeResponse(t, m).Type == protocol.TypeExpState {
				expStates++
			}
		}
		if expStates != 1 {
			t.Fatalf("live viewer %d expected 1 ExpState, got %d", i, expStates)
		}
	}
	if _, ok := h.Session.Viewer(dead.ID); ok {
		t.Fatal("dead viewer should have been cleaned up")
	}
}
