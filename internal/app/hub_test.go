package app

import (
	"encoding/json"
	"errors"
	"testing"

	"venue/internal/core"
	"venue/internal/domain"
	"venue/internal/protocol"
)

func newTestHub(policy OverflowPolicy) *Hub {
	return NewHub(core.NewSession(), NewRegistry(), policy, 30)
}

func connectViewer(t *testing.T, h *Hub) (domain.Viewer, *fakeConn) {
	t.Helper()
	c := &fakeConn{}
	v, err := h.Connect(c)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return v, c
}

func decodeResponse(t *testing.T, data []byte) protocol.Response {
	t.Helper()
	var resp protocol.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestDisconnectNotifiesPeersAndFreesSeat(t *testing.T) {
	h := newTestHub(RejectPolicy{})
	a, _ := connectViewer(t, h)
	b, connB := connectViewer(t, h)

	room, err := h.Session.CreateRoom(2)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if _, _, err := h.EnterRoom(a.ID, room.ID); err != nil {
		t.Fatalf("EnterRoom: %v", err)
	}

	h.Disconnect(a.ID)

	if _, ok := h.Session.Viewer(a.ID); ok {
		t.Fatal("disconnected viewer still in session")
	}
	got, _ := h.Session.Room(room.ID)
	if got.Armchairs[0].Busy {
		t.Fatal("seat not freed on disconnect")
	}

	msgs := connB.messages()
	if len(msgs) != 1 {
		t.Fatalf("peer expected 1 notification, got %d", len(msgs))
	}
	resp := decodeResponse(t, msgs[0])
	if resp.Type != protocol.TypeDeleteUser {
		t.Fatalf("expected DeleteUser, got %s", resp.Type)
	}
	if resp.Parameters["playerId"] != a.ID {
		t.Fatalf("DeleteUser names %s, want %s", resp.Parameters["playerId"], a.ID)
	}
	if _, listed := resp.ExpState.Viewers[a.ID]; listed {
		t.Fatal("snapshot still lists the removed viewer")
	}
	if _, listed := resp.ExpState.Viewers[b.ID]; !listed {
		t.Fatal("snapshot lost the remaining viewer")
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	h := newTestHub(RejectPolicy{})
	_, connB := connectViewer(t, h)
	a, _ := connectViewer(t, h)

	h.Disconnect(a.ID)
	h.Disconnect(a.ID)

	if got := len(connB.messages()); got != 1 {
		t.Fatalf("peer expected exactly 1 DeleteUser, got %d", got)
	}
}

func TestDeliverClosedChannelTriggersCleanup(t *testing.T) {
	h := newTestHub(RejectPolicy{})
	a, connA := connectViewer(t, h)
	connA.fail()

	err := h.Deliver(a.ID, []byte("x"))
	if !errors.Is(err, ErrChannelClosed) {
		t.Fatalf("expected ErrChannelClosed, got %v", err)
	}
	if _, ok := h.Session.Viewer(a.ID); ok {
		t.Fatal("viewer with dead channel not cleaned up")
	}
	if h.Registry.Len() != 0 {
		t.Fatalf("registry should be empty, has %d", h.Registry.Len())
	}
}

func TestRelayDeliversVerbatim(t *testing.T) {
	h := newTestHub(RejectPolicy{})
	from, connFrom := connectViewer(t, h)
	to, connTo := connectViewer(t, h)

	sdp := `v=0 o=- 4611731400430051336 2 IN IP4 127.0.0.1`
	if err := h.Relay(protocol.ActionOffer, from.ID, to.ID, sdp); err != nil {
		t.Fatalf("Relay: %v", err)
	}

	msgs := connTo.messages()
	if len(msgs) != 1 {
		t.Fatalf("target expected exactly 1 message, got %d", len(msgs))
	}
	var env protocol.SignalEnvelope
	if err := json.Unmarshal(msgs[0], &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Kind != protocol.ActionOffer || env.From != from.ID || env.Data != sdp {
		t.Fatalf("envelope mangled: %+v", env)
	}
	if len(connFrom.messages()) != 0 {
		t.Fatal("sender must not receive anything on relay success")
	}
}

func TestRelayUnknownTargetDropped(t *testing.T) {
	h := newTestHub(RejectPolicy{})
	from, connFrom := connectViewer(t, h)

	err := h.Relay(protocol.ActionCandidate, from.ID, "ghost", "candidate:1")
	if !errors.Is(err, ErrUnknownRecipient) {
		t.Fatalf("expected ErrUnknownRecipient, got %v", err)
	}
	if len(connFrom.messages()) != 0 {
		t.Fatal("no error notification may reach the sender")
	}
}

func TestCreateRoomRequiresElevation(t *testing.T) {
	h := newTestHub(RejectPolicy{})
	v, _ := connectViewer(t, h)

	if _, err := h.CreateRoom(v.ID, 10); !errors.Is(err, core.ErrNotElevated) {
		t.Fatalf("expected ErrNotElevated, got %v", err)
	}

	if err := h.Session.ElevateRole(v.ID); err != nil {
		t.Fatalf("ElevateRole: %v", err)
	}
	room, err := h.CreateRoom(v.ID, 10)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if room.Capacity != 10 {
		t.Fatalf("expected capacity 10, got %d", room.Capacity)
	}
}

func TestEnterRoomDefaultsToActiveRoom(t *testing.T) {
	h := newTestHub(RejectPolicy{})
	v, _ := connectViewer(t, h)
	room, _ := h.Session.CreateRoom(3)

	seat, overflow, err := h.EnterRoom(v.ID, "")
	if err != nil {
		t.Fatalf("EnterRoom: %v", err)
	}
	if overflow {
		t.Fatal("no overflow expected")
	}
	if seat.RoomID != room.ID || seat.SeatIndex != 1 {
		t.Fatalf("unexpected seat %+v", seat)
	}
}

func TestEnterRoomOverflowAuto(t *testing.T) {
	h := newTestHub(AutoRoomPolicy{})
	first, _ := connectViewer(t, h)
	second, _ := connectViewer(t, h)
	room, _ := h.Session.CreateRoom(1)

	if _, _, err := h.EnterRoom(first.ID, room.ID); err != nil {
		t.Fatalf("first join: %v", err)
	}

	seat, overflow, err := h.EnterRoom(second.ID, room.ID)
	if err != nil {
		t.Fatalf("overflow join: %v", err)
	}
	if !overflow {
		t.Fatal("expected overflow redirect")
	}
	if seat.RoomID == room.ID {
		t.Fatal("overflow seat must be in a fresh room")
	}
	fresh, ok := h.Session.Room(seat.RoomID)
	if !ok || fresh.Capacity != 1 {
		t.Fatalf("overflow room should copy capacity 1, got %+v ok=%v", fresh, ok)
	}
}

func TestEnterRoomOverflowReject(t *testing.T) {
	h := newTestHub(RejectPolicy{})
	first, _ := connectViewer(t, h)
	second, _ := connectViewer(t, h)
	room, _ := h.Session.CreateRoom(1)

	if _, _, err := h.EnterRoom(first.ID, room.ID); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, _, err := h.EnterRoom(second.ID, room.ID); !errors.Is(err, core.ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if len(h.Session.Rooms()) != 1 {
		t.Fatal("reject policy must not create rooms")
	}
}
