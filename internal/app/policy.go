package app

import "venue/internal/core"

// OverflowPolicy decides what happens when a join hits a full room.
type OverflowPolicy interface {
	OnRoomFull(h *Hub, viewerID, roomID string) (core.SeatAssignment, error)
}

// AutoRoomPolicy creates a fresh room with the same capacity and seats
// the viewer there.
type AutoRoomPolicy struct{}

func (AutoRoomPolicy) OnRoomFull(h *Hub, viewerID, roomID string) (core.SeatAssignment, error) {
	full, ok := h.Session.Room(roomID)
	if !ok {
		return core.SeatAssignment{}, core.ErrUnknownRoom
	}
	room, err := h.Session.CreateRoom(full.Capacity)
	if err != nil {
		return core.SeatAssignment{}, err
	}
	return h.Session.JoinRoom(room.ID, viewerID)
}

// RejectPolicy reports the full room back to the caller unchanged.
type RejectPolicy struct{}

func (RejectPolicy) OnRoomFull(h *Hub, viewerID, roomID string) (core.SeatAssignment, error) {
	return core.SeatAssignment{}, core.ErrRoomFull
}
